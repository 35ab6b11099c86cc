package resource

import (
	"fmt"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/gputypes"
)

// TextureKey holds the creation parameters of a texture. Two requests with
// equal keys may share one texture. Name is a debug label and does not take
// part in matching.
type TextureKey struct {
	Name    string
	Sampler driver.SamplerType
	Levels  uint8
	Format  gputypes.TextureFormat
	Samples uint8
	Width   uint32
	Height  uint32
	Depth   uint32
	Usage   gputypes.TextureUsage
	Swizzle driver.SwizzleMapping
}

// Equal reports whether two keys describe interchangeable textures.
func (k TextureKey) Equal(o TextureKey) bool {
	return k.match() == o.match()
}

// match returns the key used for cache lookups: no name, at least one
// sample and a normalized swizzle.
func (k TextureKey) match() TextureKey {
	k.Name = ""
	k.Samples = max(k.Samples, 1)
	k.Swizzle = k.Swizzle.Normalize()
	return k
}

// Size estimates the memory footprint of the texture in bytes:
// width*height*depth texels, times the sample count when multisampled, plus
// a third for the mip chain when Levels > 1.
func (k TextureKey) Size() uint64 {
	b := blockOf(k.Format)
	bw, bh := FormatBlockExtent(k.Format)
	w := (uint64(k.Width) + uint64(bw) - 1) / uint64(bw)
	h := (uint64(k.Height) + uint64(bh) - 1) / uint64(bh)

	size := w * h * uint64(k.Depth) * uint64(b.bytes)
	if k.Samples > 1 {
		size *= uint64(k.Samples)
	}
	if k.Levels > 1 {
		size += size / 3
	}
	return size
}

// Descriptor returns the driver descriptor for the key.
func (k TextureKey) Descriptor() driver.TextureDescriptor {
	return driver.TextureDescriptor{
		Label:   k.Name,
		Sampler: k.Sampler,
		Levels:  k.Levels,
		Format:  k.Format,
		Samples: max(k.Samples, 1),
		Width:   k.Width,
		Height:  k.Height,
		Depth:   k.Depth,
		Usage:   k.Usage,
	}
}

// String returns a compact description, e.g. "ssao 2D RGBA8Unorm 1920x1080x1 L1 S1 rgba".
func (k TextureKey) String() string {
	return fmt.Sprintf("%s %v %v %dx%dx%d L%d S%d %v",
		k.Name, k.Sampler, k.Format, k.Width, k.Height, k.Depth, k.Levels, max(k.Samples, 1), k.Swizzle)
}
