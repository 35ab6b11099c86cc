package framepace

import (
	"time"

	"github.com/gogpu/framepace/frameinfo"
	"github.com/gogpu/framepace/resolution"
	"github.com/gogpu/framepace/resource"
)

// Option configures a Pacer during creation.
//
// Example:
//
//	// 60 Hz with default caching
//	p, err := framepace.New(drv)
//
//	// 120 Hz, 10% head room, dynamic resolution
//	cfg := frameinfo.ConfigForRate(120)
//	cfg.HeadRoomRatio = 0.1
//	p, err := framepace.New(drv,
//	    framepace.WithFrameRate(cfg),
//	    framepace.WithDynamicResolution(resolution.DefaultOptions()))
type Option func(*options)

type options struct {
	frame      frameinfo.Config
	cache      resource.Config
	resolution resolution.Options
	clock      func() time.Time
}

// defaultOptions returns the default pacer options: 60 Hz, default texture
// cache, no dynamic resolution, wall clock.
func defaultOptions() options {
	return options{
		frame: frameinfo.DefaultConfig(),
		cache: resource.DefaultConfig(),
		clock: time.Now,
	}
}

// WithFrameRate sets the frame time estimator configuration.
func WithFrameRate(cfg frameinfo.Config) Option {
	return func(o *options) {
		o.frame = cfg
	}
}

// WithTextureCache sets the texture cache configuration.
func WithTextureCache(cfg resource.Config) Option {
	return func(o *options) {
		o.cache = cfg
	}
}

// WithDynamicResolution enables the resolution controller. Pass
// resolution.DefaultOptions() for the usual 50% to 100% range.
func WithDynamicResolution(opts resolution.Options) Option {
	return func(o *options) {
		o.resolution = opts
	}
}

// WithClock sets the clock used to timestamp vsync. It defaults to
// time.Now; simulations pass a virtual clock.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}
