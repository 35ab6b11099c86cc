package driver

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// SamplerType is the shape of a texture as seen by shaders.
type SamplerType uint8

const (
	// Sampler2D is a regular 2D texture.
	Sampler2D SamplerType = iota

	// Sampler2DArray is an array of 2D layers; Depth is the layer count.
	Sampler2DArray

	// SamplerCubemap is a cube map; Depth is the number of cubes.
	SamplerCubemap

	// Sampler3D is a volume texture; Depth is the number of slices.
	Sampler3D

	// SamplerExternal is a texture backed by an external image.
	SamplerExternal
)

// String returns a human-readable name for the sampler type.
func (s SamplerType) String() string {
	switch s {
	case Sampler2D:
		return "2D"
	case Sampler2DArray:
		return "2DArray"
	case SamplerCubemap:
		return "Cubemap"
	case Sampler3D:
		return "3D"
	case SamplerExternal:
		return "External"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// Dimension returns the WebGPU texture dimension backing the sampler type.
func (s SamplerType) Dimension() gputypes.TextureDimension {
	if s == Sampler3D {
		return gputypes.TextureDimension3D
	}
	return gputypes.TextureDimension2D
}

// ViewDimension returns the WebGPU view dimension matching the sampler type.
func (s SamplerType) ViewDimension() gputypes.TextureViewDimension {
	switch s {
	case Sampler2DArray:
		return gputypes.TextureViewDimension2DArray
	case SamplerCubemap:
		return gputypes.TextureViewDimensionCube
	case Sampler3D:
		return gputypes.TextureViewDimension3D
	default:
		return gputypes.TextureViewDimension2D
	}
}

// Swizzle selects the source of one texture channel.
type Swizzle uint8

const (
	// SwizzleIdentity keeps the channel as is.
	SwizzleIdentity Swizzle = iota

	// SwizzleChannel0 reads the first (red) channel.
	SwizzleChannel0

	// SwizzleChannel1 reads the second (green) channel.
	SwizzleChannel1

	// SwizzleChannel2 reads the third (blue) channel.
	SwizzleChannel2

	// SwizzleChannel3 reads the fourth (alpha) channel.
	SwizzleChannel3

	// SwizzleZero substitutes 0.
	SwizzleZero

	// SwizzleOne substitutes 1.
	SwizzleOne
)

var swizzleNames = [...]string{"_", "r", "g", "b", "a", "0", "1"}

// String returns a one-character name for the swizzle.
func (s Swizzle) String() string {
	if int(s) < len(swizzleNames) {
		return swizzleNames[s]
	}
	return "?"
}

// SwizzleMapping remaps the four channels of a texture.
// The zero value is the identity mapping.
type SwizzleMapping [4]Swizzle

// DefaultSwizzle is the identity mapping.
var DefaultSwizzle = SwizzleMapping{}

// Normalize returns the mapping with every channel that reads itself
// rewritten to SwizzleIdentity, so equivalent mappings compare equal.
func (m SwizzleMapping) Normalize() SwizzleMapping {
	for i, s := range m {
		if s == SwizzleChannel0+Swizzle(i) {
			m[i] = SwizzleIdentity
		}
	}
	return m
}

// IsIdentity reports whether the mapping leaves every channel unchanged.
func (m SwizzleMapping) IsIdentity() bool {
	return m.Normalize() == DefaultSwizzle
}

// String formats the mapping as four characters, e.g. "rgba" or "r001".
func (m SwizzleMapping) String() string {
	var b strings.Builder
	for i, s := range m {
		if s == SwizzleIdentity {
			s = SwizzleChannel0 + Swizzle(i)
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// TextureDescriptor describes a texture allocation.
type TextureDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Sampler is the texture shape.
	Sampler SamplerType

	// Levels is the number of mip levels (at least 1).
	Levels uint8

	// Format is the pixel format.
	Format gputypes.TextureFormat

	// Samples is the MSAA sample count (at least 1).
	Samples uint8

	// Width, Height and Depth are the extents in texels. Depth is the layer,
	// cube or slice count depending on Sampler.
	Width, Height, Depth uint32

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// Validate reports descriptors that no driver can allocate.
func (d TextureDescriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 || d.Depth == 0 {
		return fmt.Errorf("%w: texture %q has extent %dx%dx%d",
			ErrInvalidDescriptor, d.Label, d.Width, d.Height, d.Depth)
	}
	return nil
}

// MaxColorAttachments is the number of color attachments of a render target.
const MaxColorAttachments = 4

// TargetBuffers is a set of render target attachment points.
type TargetBuffers uint8

const (
	// TargetColor0 is the first color attachment.
	TargetColor0 TargetBuffers = 1 << iota
	// TargetColor1 is the second color attachment.
	TargetColor1
	// TargetColor2 is the third color attachment.
	TargetColor2
	// TargetColor3 is the fourth color attachment.
	TargetColor3
	// TargetDepth is the depth attachment.
	TargetDepth
	// TargetStencil is the stencil attachment.
	TargetStencil
)

// Attachment binds one texture subresource to a render target.
type Attachment struct {
	Texture TextureHandle
	Level   uint8
	Layer   uint16
}

// RenderTargetDescriptor describes a render target allocation.
type RenderTargetDescriptor struct {
	Label   string
	Width   uint32
	Height  uint32
	Samples uint8
	Layers  uint8
	Color   [MaxColorAttachments]Attachment
	Depth   Attachment
	Stencil Attachment
}

// TargetBuffers returns the set of attachment points that name a texture.
func (d *RenderTargetDescriptor) TargetBuffers() TargetBuffers {
	var t TargetBuffers
	for i, a := range d.Color {
		if a.Texture.IsValid() {
			t |= TargetColor0 << i
		}
	}
	if d.Depth.Texture.IsValid() {
		t |= TargetDepth
	}
	if d.Stencil.Texture.IsValid() {
		t |= TargetStencil
	}
	return t
}
