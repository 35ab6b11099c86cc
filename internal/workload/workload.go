// Package workload is a synthetic render graph. Each frame it allocates the
// transient textures of a small deferred pipeline through a
// resource.TextureCache, sized by the current dynamic resolution scale, and
// reports the GPU time the frame would cost.
package workload

import (
	"fmt"
	"math"
	"time"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/framepace/resolution"
	"github.com/gogpu/framepace/resource"
	"github.com/gogpu/gputypes"
)

// Pass is one node of the graph. It writes a single transient texture.
type Pass struct {
	Name    string
	Sampler driver.SamplerType
	Format  gputypes.TextureFormat
	Samples uint8
	Levels  uint8
	Swizzle driver.SwizzleMapping

	// Relative is the texture extent relative to the scaled viewport. Zero
	// means the pass uses the fixed Width and Height instead.
	Relative float64

	// Width, Height and Depth size passes that do not follow the viewport.
	Width, Height, Depth uint32

	// Cost is the GPU time per million texels written.
	Cost time.Duration

	// Attach makes the texture a color or depth attachment of the frame's
	// render target.
	Attach bool
}

func (p Pass) extent(w, h uint32) (uint32, uint32, uint32) {
	depth := max(p.Depth, 1)
	if p.Relative == 0 {
		return max(p.Width, 1), max(p.Height, 1), depth
	}
	sw := uint32(math.Max(1, math.Round(float64(w)*p.Relative)))
	sh := uint32(math.Max(1, math.Round(float64(h)*p.Relative)))
	return sw, sh, depth
}

func (p Pass) key(w, h uint32) resource.TextureKey {
	tw, th, td := p.extent(w, h)
	usage := gputypes.TextureUsageTextureBinding
	if p.Attach {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	return resource.TextureKey{
		Name:    p.Name,
		Sampler: p.Sampler,
		Levels:  max(p.Levels, 1),
		Format:  p.Format,
		Samples: max(p.Samples, 1),
		Width:   tw,
		Height:  th,
		Depth:   td,
		Usage:   usage,
		Swizzle: p.Swizzle,
	}
}

// Load scales the cost of frame n. It models scene complexity changing over
// time.
type Load func(n uint64) float64

// Graph is the render graph of one viewport.
type Graph struct {
	Width, Height uint32
	Passes        []Pass

	// Base is the cost of work that does not scale with resolution.
	Base time.Duration

	Load Load
}

// Default returns a deferred pipeline for a width x height viewport:
// G-buffer, depth, half resolution ambient occlusion, a mipmapped bloom
// chain, a fixed-size shadow map and a 3D color grading table.
func Default(width, height uint32) *Graph {
	return &Graph{
		Width:  width,
		Height: height,
		Base:   2 * time.Millisecond,
		Passes: []Pass{
			{Name: "shadow-map", Format: gputypes.TextureFormatDepth32Float, Width: 2048, Height: 2048, Cost: 300 * time.Microsecond},
			{Name: "gbuffer-albedo", Format: gputypes.TextureFormatRGBA8UnormSrgb, Relative: 1, Cost: 1200 * time.Microsecond, Attach: true},
			{Name: "gbuffer-normal", Format: gputypes.TextureFormatRGBA16Float, Relative: 1, Cost: 900 * time.Microsecond, Attach: true},
			{Name: "depth", Format: gputypes.TextureFormatDepth24PlusStencil8, Relative: 1, Cost: 400 * time.Microsecond, Attach: true},
			{Name: "ssao", Format: gputypes.TextureFormatR8Unorm, Relative: 0.5, Cost: 2 * time.Millisecond,
				Swizzle: driver.SwizzleMapping{driver.SwizzleChannel0, driver.SwizzleChannel0, driver.SwizzleChannel0, driver.SwizzleOne}},
			{Name: "lighting", Format: gputypes.TextureFormatRGBA16Float, Relative: 1, Cost: 2500 * time.Microsecond},
			{Name: "bloom", Format: gputypes.TextureFormatRG11B10Ufloat, Relative: 0.5, Levels: 5, Cost: 1 * time.Millisecond},
			{Name: "color-grading", Sampler: driver.Sampler3D, Format: gputypes.TextureFormatRGBA8Unorm, Width: 32, Height: 32, Depth: 32, Cost: 50 * time.Microsecond},
		},
	}
}

// Frame is the outcome of one Run.
type Frame struct {
	N        uint64
	Width    uint32
	Height   uint32
	Textures int
	Bytes    uint64
	Cost     time.Duration
}

func (f Frame) String() string {
	return fmt.Sprintf("frame %d: %dx%d, %d textures (%d bytes), %v",
		f.N, f.Width, f.Height, f.Textures, f.Bytes, f.Cost)
}

// Run records frame n. Every pass texture is taken from tc, the attachment
// passes are grouped in a render target, and everything is handed back to
// tc before returning. The scaled viewport comes from s.
func (g *Graph) Run(tc *resource.TextureCache, s resolution.Scale, n uint64) (Frame, error) {
	w, h := s.Apply(g.Width, g.Height)
	f := Frame{N: n, Width: w, Height: h}

	handles := make([]driver.TextureHandle, 0, len(g.Passes))
	defer func() {
		for _, th := range handles {
			tc.DestroyTexture(th)
		}
	}()

	target := driver.RenderTargetDescriptor{Label: "main", Width: w, Height: h, Samples: 1}
	color := 0

	for _, p := range g.Passes {
		key := p.key(w, h)
		th, err := tc.CreateTexture(key)
		if err != nil {
			return f, fmt.Errorf("workload: pass %q: %w", p.Name, err)
		}
		handles = append(handles, th)
		f.Textures++
		f.Bytes += key.Size()
		f.Cost += time.Duration(float64(p.Cost) * float64(key.Width) * float64(key.Height) * float64(key.Depth) / 1e6)

		if !p.Attach {
			continue
		}
		switch {
		case key.Format.IsDepthStencil():
			target.Depth.Texture = th
			if key.Format.HasStencil() {
				target.Stencil.Texture = th
			}
		case color < driver.MaxColorAttachments:
			target.Color[color].Texture = th
			color++
		}
	}

	if target.TargetBuffers() != 0 {
		rt, err := tc.CreateRenderTarget(target)
		if err != nil {
			return f, fmt.Errorf("workload: %w", err)
		}
		tc.DestroyRenderTarget(rt)
	}

	f.Cost += g.Base
	if g.Load != nil {
		f.Cost = time.Duration(float64(f.Cost) * max(g.Load(n), 0))
	}
	return f, nil
}
