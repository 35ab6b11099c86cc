package haldriver

import (
	"fmt"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// defaultUsage applies to descriptors that leave Usage empty.
const defaultUsage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst

type texture struct {
	tex     hal.Texture
	desc    driver.TextureDescriptor
	swizzle driver.SwizzleMapping
}

type renderTarget struct {
	desc  driver.RenderTargetDescriptor
	views []hal.TextureView
}

// CreateTexture allocates a hal texture.
func (d *Driver) CreateTexture(desc driver.TextureDescriptor) (driver.TextureHandle, error) {
	return d.createTexture(desc, driver.SwizzleMapping{})
}

// CreateTextureSwizzled allocates a hal texture and records swizzle for
// [Driver.Swizzle].
func (d *Driver) CreateTextureSwizzled(desc driver.TextureDescriptor, swizzle driver.SwizzleMapping) (driver.TextureHandle, error) {
	return d.createTexture(desc, swizzle)
}

func (d *Driver) createTexture(desc driver.TextureDescriptor, swizzle driver.SwizzleMapping) (driver.TextureHandle, error) {
	if err := desc.Validate(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, driver.ErrClosed
	}

	layers := desc.Depth
	if desc.Sampler == driver.SamplerCubemap {
		layers *= 6
	}
	usage := desc.Usage
	if usage == 0 {
		usage = defaultUsage
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: layers},
		MipLevelCount: uint32(max(desc.Levels, 1)),
		SampleCount:   uint32(max(desc.Samples, 1)),
		Dimension:     desc.Sampler.Dimension(),
		Format:        desc.Format,
		Usage:         usage,
	})
	if err != nil {
		return 0, fmt.Errorf("haldriver: create texture %q: %w", desc.Label, err)
	}

	h := driver.TextureHandle(d.handle())
	d.textures[h] = &texture{tex: tex, desc: desc, swizzle: swizzle}
	if !swizzle.IsIdentity() {
		slogger().Debug("haldriver: swizzle recorded", "texture", h, "swizzle", swizzle)
	}
	return h, nil
}

// DestroyTexture releases a texture. It panics for unknown handles.
func (d *Driver) DestroyTexture(h driver.TextureHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[h]
	if !ok {
		panic(fmt.Errorf("haldriver: %w: %v", driver.ErrInvalidHandle, h))
	}
	delete(d.textures, h)
	d.device.DestroyTexture(t.tex)
}

// Texture returns the hal texture behind h.
func (d *Driver) Texture(h driver.TextureHandle) (hal.Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[h]
	if !ok {
		return nil, false
	}
	return t.tex, true
}

// Swizzle returns the channel mapping h was created with, as passed to
// [Driver.CreateTextureSwizzled]. hal views carry
// no component mapping, so shaders sampling h apply it themselves.
func (d *Driver) Swizzle(h driver.TextureHandle) (driver.SwizzleMapping, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[h]
	if !ok {
		return driver.SwizzleMapping{}, false
	}
	return t.swizzle, true
}

// CreateRenderTarget creates one texture view per attachment, in the order
// color 0 to 3, depth, stencil.
func (d *Driver) CreateRenderTarget(desc driver.RenderTargetDescriptor) (driver.RenderTargetHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, driver.ErrClosed
	}

	rt := &renderTarget{desc: desc}
	add := func(a driver.Attachment, aspect gputypes.TextureAspect) error {
		if !a.Texture.IsValid() {
			return nil
		}
		t, ok := d.textures[a.Texture]
		if !ok {
			return fmt.Errorf("haldriver: render target %q: %w: %v", desc.Label, driver.ErrInvalidHandle, a.Texture)
		}
		view, err := d.device.CreateTextureView(t.tex, &hal.TextureViewDescriptor{
			Label:           desc.Label,
			Format:          t.desc.Format,
			Dimension:       viewDimension(desc.Layers),
			Aspect:          aspect,
			BaseMipLevel:    uint32(a.Level),
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(a.Layer),
			ArrayLayerCount: uint32(max(desc.Layers, 1)),
		})
		if err != nil {
			return fmt.Errorf("haldriver: render target %q: create view: %w", desc.Label, err)
		}
		rt.views = append(rt.views, view)
		return nil
	}

	for _, a := range desc.Color {
		if err := add(a, gputypes.TextureAspectAll); err != nil {
			d.destroyViews(rt.views)
			return 0, err
		}
	}
	if err := add(desc.Depth, gputypes.TextureAspectDepthOnly); err != nil {
		d.destroyViews(rt.views)
		return 0, err
	}
	if err := add(desc.Stencil, gputypes.TextureAspectStencilOnly); err != nil {
		d.destroyViews(rt.views)
		return 0, err
	}

	h := driver.RenderTargetHandle(d.handle())
	d.targets[h] = rt
	return h, nil
}

func viewDimension(layers uint8) gputypes.TextureViewDimension {
	if layers > 1 {
		return gputypes.TextureViewDimension2DArray
	}
	return gputypes.TextureViewDimension2D
}

// RenderTargetViews returns the attachment views of rt.
func (d *Driver) RenderTargetViews(rt driver.RenderTargetHandle) []hal.TextureView {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.targets[rt]
	if !ok {
		return nil
	}
	return append([]hal.TextureView(nil), t.views...)
}

// DestroyRenderTarget destroys the views of rt. Attached textures are not
// affected. It panics for unknown handles.
func (d *Driver) DestroyRenderTarget(rt driver.RenderTargetHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.targets[rt]
	if !ok {
		panic(fmt.Errorf("haldriver: %w: %v", driver.ErrInvalidHandle, rt))
	}
	delete(d.targets, rt)
	d.destroyViews(t.views)
}

func (d *Driver) destroyViews(views []hal.TextureView) {
	for _, v := range views {
		d.device.DestroyTextureView(v)
	}
}
