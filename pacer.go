package framepace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/framepace/frameinfo"
	"github.com/gogpu/framepace/resolution"
	"github.com/gogpu/framepace/resource"
)

// Pacer errors.
var (
	// ErrNilDriver is returned by New without a driver.
	ErrNilDriver = errors.New("framepace: nil driver")

	// ErrFrameInProgress is returned by BeginFrame and Close while a frame
	// is open.
	ErrFrameInProgress = errors.New("framepace: frame in progress")

	// ErrNoFrame is returned by EndFrame without a matching BeginFrame.
	ErrNoFrame = errors.New("framepace: no frame in progress")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("framepace: pacer closed")
)

// Stats is a snapshot of a Pacer.
type Stats struct {
	FrameID  uint32
	Last     frameinfo.FrameInfo
	Frames   frameinfo.Stats
	Textures resource.Stats
	Scale    resolution.Scale
}

// Pacer drives the frame time estimator, the texture cache and the
// resolution controller in frame order. See the package documentation.
//
// BeginFrame, EndFrame and Close are safe for concurrent use. The texture
// cache returned by Textures is not; use it from the thread that renders.
type Pacer struct {
	mu sync.Mutex

	drv      driver.Driver
	opts     options
	frames   *frameinfo.Manager
	textures *resource.TextureCache
	res      *resolution.Controller

	frameID uint32
	inFrame bool
	closed  bool
}

// New creates a Pacer on drv. The Pacer owns drv: Close closes it.
func New(drv driver.Driver, opts ...Option) (*Pacer, error) {
	if drv == nil {
		return nil, ErrNilDriver
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	frames, err := frameinfo.NewManager(drv)
	if err != nil {
		return nil, fmt.Errorf("framepace: %w", err)
	}
	p := &Pacer{
		drv:      drv,
		opts:     o,
		frames:   frames,
		textures: resource.NewTextureCache(drv, o.cache),
		res:      resolution.New(o.resolution),
	}
	Logger().Info("framepace: pacer created",
		"target", o.frame.TargetFrameTime,
		"headroom", o.frame.HeadRoomRatio,
		"maxAge", p.textures.Config().MaxAge,
		"dynamicResolution", p.res.Options().Enabled)
	return p, nil
}

// BeginFrame opens the next frame. It retires the oldest finished timer
// query, starts measuring this frame and updates the resolution scale. The
// returned FrameInfo describes the most recent measured frame; it is not
// Valid until a few frames have been measured.
func (p *Pacer) BeginFrame() (frameinfo.FrameInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return frameinfo.FrameInfo{}, ErrClosed
	case p.inFrame:
		return frameinfo.FrameInfo{}, fmt.Errorf("%w: frame %d", ErrFrameInProgress, p.frameID)
	}
	p.inFrame = true

	p.frames.BeginFrame(p.opts.frame, p.frameID, p.opts.clock())
	info := p.frames.LastFrameInfo()
	p.res.Update(info)
	return info, nil
}

// EndFrame closes the frame opened by BeginFrame and runs one texture cache
// GC step.
func (p *Pacer) EndFrame() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return ErrClosed
	case !p.inFrame:
		return ErrNoFrame
	}
	p.frames.EndFrame()
	p.textures.GC()
	p.frameID++
	p.inFrame = false
	return nil
}

// Textures returns the texture cache for the frame's transient textures.
func (p *Pacer) Textures() *resource.TextureCache {
	return p.textures
}

// Resolution returns the current viewport scale. It is the identity when
// dynamic resolution is disabled.
func (p *Pacer) Resolution() resolution.Scale {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.res.Scale()
}

// FrameID returns the id of the open frame, or of the next one between
// frames.
func (p *Pacer) FrameID() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameID
}

// History returns up to n measured frames, newest first.
func (p *Pacer) History(n int) []frameinfo.FrameInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames.History(n)
}

// Stats returns a snapshot of the Pacer.
func (p *Pacer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		FrameID:  p.frameID,
		Last:     p.frames.LastFrameInfo(),
		Frames:   p.frames.Stats(),
		Textures: p.textures.Stats(),
		Scale:    p.res.Scale(),
	}
}

// Close terminates the estimator, then the texture cache, then closes the
// driver. It fails without releasing anything while a frame is open or a
// texture from Textures is still in use. Calling Close again is a no-op.
func (p *Pacer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	if p.inFrame {
		return fmt.Errorf("%w: frame %d", ErrFrameInProgress, p.frameID)
	}
	if n := p.textures.Stats().InUse; n > 0 {
		return fmt.Errorf("framepace: %w: %d textures", resource.ErrTexturesInUse, n)
	}
	p.closed = true

	s := p.frames.Stats()
	p.frames.Terminate()
	p.textures.Terminate()
	if err := p.drv.Close(); err != nil {
		Logger().Warn("framepace: driver close failed", "err", err)
		return fmt.Errorf("framepace: close driver: %w", err)
	}
	Logger().Info("framepace: pacer closed",
		"frames", p.frameID, "measured", s.Retired, "skipped", s.Skipped, "failed", s.Failed)
	return nil
}
