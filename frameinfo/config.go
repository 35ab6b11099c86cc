package frameinfo

import "time"

// Estimator constants.
const (
	// PoolCount is the number of timer queries that may be in flight.
	PoolCount = 4

	// MaxFrameTimeHistory is the capacity of the frame time history.
	MaxFrameTimeHistory = 16

	// MinValidSamples is the number of samples required before the
	// controller runs.
	MinValidSamples = 3

	// IntegralMin and IntegralMax bound the integral term to prevent
	// windup. The bounds are in log2 units of the scale.
	IntegralMin = -6.0
	IntegralMax = 2.0
)

// Config holds the estimator parameters. It is passed on every BeginFrame so
// that callers can change the target frame rate at any time.
type Config struct {
	// TargetFrameTime is the frame budget, e.g. 1/60 s.
	TargetFrameTime time.Duration

	// HeadRoomRatio is the fraction of the budget kept as margin, in [0, 1].
	HeadRoomRatio float64

	// OneOverTau is the inverse of the controller time constant, in frames.
	OneOverTau float64

	// HistorySize is the number of samples the median filter considers.
	// It is capped to MaxFrameTimeHistory.
	HistorySize int
}

// DefaultConfig returns the configuration for a 60 Hz display.
func DefaultConfig() Config {
	return Config{
		TargetFrameTime: time.Second / 60,
		HeadRoomRatio:   0,
		OneOverTau:      1.0 / 8,
		HistorySize:     15,
	}
}

// ConfigForRate returns the default configuration with the target frame
// time of the given refresh rate in Hz. Non-positive rates yield the
// default.
func ConfigForRate(hz float64) Config {
	cfg := DefaultConfig()
	if hz > 0 {
		cfg.TargetFrameTime = time.Duration(float64(time.Second) / hz)
	}
	return cfg
}

// normalized returns a copy with out-of-range fields clamped or replaced by
// their defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.TargetFrameTime <= 0 {
		c.TargetFrameTime = def.TargetFrameTime
	}
	if !(c.OneOverTau > 0) {
		c.OneOverTau = def.OneOverTau
	}
	c.HeadRoomRatio = clamp(c.HeadRoomRatio, 0, 1)
	if c.HistorySize < 1 {
		c.HistorySize = 1
	}
	if c.HistorySize > MaxFrameTimeHistory {
		c.HistorySize = MaxFrameTimeHistory
	}
	return c
}

// clamp also maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
