// Package resolution turns the frame time estimator's workload scale into
// a dynamic render resolution.
package resolution

import (
	"math"

	"github.com/gogpu/framepace/frameinfo"
)

// Options configures a Controller.
type Options struct {
	// Enabled turns scaling on. A disabled controller always reports 1.
	Enabled bool

	// MinScale and MaxScale bound the per-axis scale.
	MinScale float64
	MaxScale float64

	// Homogeneous scales both axes by the same factor. Otherwise the
	// horizontal axis absorbs as much of the change as it can before the
	// vertical axis is touched.
	Homogeneous bool
}

// DefaultOptions returns an enabled, homogeneous controller scaling each
// axis between 0.5 and 1.
func DefaultOptions() Options {
	return Options{Enabled: true, MinScale: 0.5, MaxScale: 1, Homogeneous: true}
}

func (o Options) normalized() Options {
	if !(o.MinScale > 0) {
		o.MinScale = 0.5
	}
	if !(o.MaxScale > 0) {
		o.MaxScale = 1
	}
	if o.MaxScale < o.MinScale {
		o.MinScale, o.MaxScale = o.MaxScale, o.MinScale
	}
	return o
}

// Scale is a per-axis viewport scale.
type Scale struct {
	X, Y float64
}

// Identity is the unscaled viewport.
var Identity = Scale{1, 1}

// Apply scales a viewport. Each dimension is at least one pixel.
func (s Scale) Apply(width, height uint32) (uint32, uint32) {
	w := uint32(math.Round(float64(width) * s.X))
	h := uint32(math.Round(float64(height) * s.Y))
	return max(w, 1), max(h, 1)
}

// Area returns the fraction of pixels rendered.
func (s Scale) Area() float64 { return s.X * s.Y }

// Controller tracks the current render scale.
type Controller struct {
	opts  Options
	scale Scale
}

// New creates a controller starting at MaxScale, or Identity when disabled.
func New(opts Options) *Controller {
	opts = opts.normalized()
	c := &Controller{opts: opts, scale: Identity}
	if opts.Enabled {
		c.scale = Scale{opts.MaxScale, opts.MaxScale}
	}
	return c
}

// Options returns the normalized options.
func (c *Controller) Options() Options { return c.opts }

// Scale returns the current scale.
func (c *Controller) Scale() Scale { return c.scale }

// Update derives a new scale from a frame sample. Invalid samples keep the
// previous scale.
//
// info.Scale is the ratio of the workload the GPU can afford to the one it
// had, so it applies to the pixel count: homogeneous scaling takes its
// square root on both axes.
func (c *Controller) Update(info frameinfo.FrameInfo) Scale {
	if !c.opts.Enabled || !info.Valid || !(info.Scale > 0) {
		return c.scale
	}
	lo, hi := c.opts.MinScale, c.opts.MaxScale
	if c.opts.Homogeneous {
		s := clamp(math.Sqrt(info.Scale), lo, hi)
		c.scale = Scale{s, s}
		return c.scale
	}
	x := clamp(info.Scale, lo, hi)
	y := clamp(info.Scale/x, lo, hi)
	c.scale = Scale{x, y}
	return c.scale
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
