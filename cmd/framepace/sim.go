package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/framepace"
	"github.com/gogpu/framepace/driver/simdriver"
	"github.com/gogpu/framepace/frameinfo"
	"github.com/gogpu/framepace/internal/workload"
	"github.com/gogpu/framepace/resolution"
	"github.com/gogpu/framepace/resource"
	"github.com/spf13/cobra"
)

// simConfig holds the flags shared by simulate and watch.
type simConfig struct {
	frames     int
	rate       float64
	headroom   float64
	tau        float64
	history    int
	latency    int
	width      uint32
	height     uint32
	scenario   string
	factor     float64
	dynres     bool
	minScale   float64
	maxAge     uint32
	cacheBytes uint64
	hashed     bool
}

func defaultSimConfig() simConfig {
	fc := frameinfo.DefaultConfig()
	return simConfig{
		frames:   600,
		rate:     60,
		headroom: fc.HeadRoomRatio,
		tau:      fc.OneOverTau,
		history:  fc.HistorySize,
		latency:  2,
		width:    1920,
		height:   1080,
		scenario: "spike",
		factor:   2,
		dynres:   true,
		minScale: resolution.DefaultOptions().MinScale,
		maxAge:   resource.DefaultMaxAge,
	}
}

func (c *simConfig) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&c.frames, "frames", c.frames, "number of frames to simulate")
	f.Float64Var(&c.rate, "rate", c.rate, "target frame rate in Hz")
	f.Float64Var(&c.headroom, "headroom", c.headroom, "fraction of the frame budget kept free (0-1)")
	f.Float64Var(&c.tau, "one-over-tau", c.tau, "controller responsiveness (1/frames)")
	f.IntVar(&c.history, "history", c.history, "frames in the median filter (1-16)")
	f.IntVar(&c.latency, "latency", c.latency, "frames before a timer query result is available")
	f.Uint32Var(&c.width, "width", c.width, "viewport width")
	f.Uint32Var(&c.height, "height", c.height, "viewport height")
	f.StringVar(&c.scenario, "scenario", c.scenario, fmt.Sprintf("scene load over time %v", workload.Scenarios))
	f.Float64Var(&c.factor, "factor", c.factor, "peak load multiplier of the scenario")
	f.BoolVar(&c.dynres, "dynamic-resolution", c.dynres, "scale the viewport with the controller output")
	f.Float64Var(&c.minScale, "min-scale", c.minScale, "lowest per-axis viewport scale")
	f.Uint32Var(&c.maxAge, "max-age", c.maxAge, "GC calls a cached texture may stay idle")
	f.Uint64Var(&c.cacheBytes, "cache-bytes", c.cacheBytes, "texture cache budget in bytes (0 = unbounded)")
	f.BoolVar(&c.hashed, "hashed", c.hashed, "use the hashed texture cache containers")
}

func (c simConfig) frameConfig() frameinfo.Config {
	fc := frameinfo.ConfigForRate(c.rate)
	fc.HeadRoomRatio = c.headroom
	fc.OneOverTau = c.tau
	fc.HistorySize = c.history
	return fc
}

// sample is the state of the simulation after one frame.
type sample struct {
	Frame    uint64
	Cost     time.Duration
	Info     frameinfo.FrameInfo
	Scale    resolution.Scale
	Width    uint32
	Height   uint32
	Textures resource.Stats
	Missed   bool
}

// simulation renders the synthetic workload through a Pacer on the
// simulated driver with a virtual clock that advances by whole vsync
// intervals.
type simulation struct {
	cfg    simConfig
	period time.Duration
	drv    *simdriver.Driver
	pacer  *framepace.Pacer
	graph  *workload.Graph

	clock time.Time
	cost  time.Duration
	n     uint64
}

func newSimulation(cfg simConfig) (*simulation, error) {
	if cfg.frames < 0 {
		return nil, fmt.Errorf("invalid --frames %d", cfg.frames)
	}
	if cfg.width == 0 || cfg.height == 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", cfg.width, cfg.height)
	}
	load, err := workload.ParseLoad(cfg.scenario, uint64(cfg.frames), cfg.factor)
	if err != nil {
		return nil, err
	}

	fc := cfg.frameConfig()
	s := &simulation{
		cfg:    cfg,
		period: fc.TargetFrameTime,
		clock:  time.Unix(0, 0),
		graph:  workload.Default(cfg.width, cfg.height),
	}
	s.graph.Load = load
	s.drv = simdriver.New(simdriver.Options{
		Latency: cfg.latency,
		Cost:    func(uint64) time.Duration { return s.cost },
	})

	opts := []framepace.Option{
		framepace.WithFrameRate(fc),
		framepace.WithTextureCache(resource.Config{
			MaxAge:        cfg.maxAge,
			MaxCacheBytes: cfg.cacheBytes,
			Hashed:        cfg.hashed,
		}),
		framepace.WithClock(func() time.Time { return s.clock }),
	}
	if cfg.dynres {
		ro := resolution.DefaultOptions()
		ro.MinScale = cfg.minScale
		opts = append(opts, framepace.WithDynamicResolution(ro))
	}
	s.pacer, err = framepace.New(s.drv, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// step renders one frame.
func (s *simulation) step() (sample, error) {
	info, err := s.pacer.BeginFrame()
	if err != nil {
		return sample{}, err
	}
	scale := s.pacer.Resolution()
	f, err := s.graph.Run(s.pacer.Textures(), scale, s.n)
	if err != nil {
		_ = s.pacer.EndFrame()
		return sample{}, err
	}
	// The simulated query reads the cost when the frame ends.
	s.cost = f.Cost
	if err := s.pacer.EndFrame(); err != nil {
		return sample{}, err
	}

	vsyncs := max(1, (f.Cost+s.period-1)/s.period)
	s.clock = s.clock.Add(vsyncs * s.period)

	out := sample{
		Frame:    s.n,
		Cost:     f.Cost,
		Info:     info,
		Scale:    scale,
		Width:    f.Width,
		Height:   f.Height,
		Textures: s.pacer.Textures().Stats(),
		Missed:   f.Cost > s.period,
	}
	s.n++
	return out, nil
}

func (s *simulation) close() error {
	return s.pacer.Close()
}

// summary aggregates a finished run.
type summary struct {
	Frames   int
	Missed   int
	Mean     time.Duration
	P95      time.Duration
	Worst    time.Duration
	Target   time.Duration
	Scale    resolution.Scale
	Pacer    framepace.Stats
	Driver   simdriver.Stats
	Elapsed  time.Duration
	Textures resource.Stats
}

func summarize(samples []sample, s *simulation) summary {
	sum := summary{
		Frames: len(samples),
		Target: s.period,
		Pacer:  s.pacer.Stats(),
		Driver: s.drv.Stats(),
	}
	if len(samples) == 0 {
		return sum
	}
	costs := make([]time.Duration, len(samples))
	var total time.Duration
	for i, sm := range samples {
		costs[i] = sm.Cost
		total += sm.Cost
		if sm.Missed {
			sum.Missed++
		}
	}
	slices.Sort(costs)
	sum.Mean = total / time.Duration(len(costs))
	sum.P95 = costs[(len(costs)*95+99)/100-1]
	sum.Worst = costs[len(costs)-1]
	last := samples[len(samples)-1]
	sum.Scale = last.Scale
	sum.Textures = last.Textures
	sum.Elapsed = s.clock.Sub(time.Unix(0, 0))
	return sum
}
