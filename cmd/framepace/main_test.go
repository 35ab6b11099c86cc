package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
)

func testSimConfig(frames int, scenario string, factor float64) simConfig {
	cfg := defaultSimConfig()
	cfg.frames = frames
	cfg.scenario = scenario
	cfg.factor = factor
	return cfg
}

func TestRunSimulation(t *testing.T) {
	samples, sum, err := runSimulation(testSimConfig(120, "steady", 1))
	if err != nil {
		t.Fatalf("runSimulation() error = %v", err)
	}
	if len(samples) != 120 || sum.Frames != 120 {
		t.Fatalf("got %d samples, summary of %d frames, want 120", len(samples), sum.Frames)
	}
	for i, s := range samples {
		if s.Frame != uint64(i) {
			t.Fatalf("samples[%d].Frame = %d", i, s.Frame)
		}
		if s.Textures.InUse != 0 {
			t.Fatalf("frame %d left %d textures in use", i, s.Textures.InUse)
		}
	}
	if sum.Pacer.Frames.Retired == 0 {
		t.Error("no frame was measured")
	}
	if sum.Mean <= 0 || sum.P95 < sum.Mean/2 || sum.Worst < sum.P95 {
		t.Errorf("summary mean %v p95 %v worst %v is inconsistent", sum.Mean, sum.P95, sum.Worst)
	}
	if sum.Elapsed < 120*sum.Target {
		t.Errorf("Elapsed = %v, want at least one vsync per frame", sum.Elapsed)
	}
}

func TestRunSimulationDeterministic(t *testing.T) {
	cfg := testSimConfig(90, "wave", 2)
	a, _, err := runSimulation(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := runSimulation(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with the same configuration differ")
	}
}

func TestSpikeScalesDown(t *testing.T) {
	samples, _, err := runSimulation(testSimConfig(120, "spike", 3))
	if err != nil {
		t.Fatal(err)
	}
	minScale, minX := 1.0, 1.0
	for _, s := range samples {
		if s.Info.Valid {
			minScale = min(minScale, s.Info.Scale)
		}
		minX = min(minX, s.Scale.X)
	}
	if minScale >= 1 {
		t.Errorf("workload scale never dropped below 1 during a 3x spike")
	}
	if minX >= 1 {
		t.Errorf("viewport scale never dropped below 1 during a 3x spike")
	}
}

func TestNewSimulationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*simConfig)
	}{
		{"negative frames", func(c *simConfig) { c.frames = -1 }},
		{"empty viewport", func(c *simConfig) { c.width = 0 }},
		{"unknown scenario", func(c *simConfig) { c.scenario = "earthquake" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultSimConfig()
			tt.mutate(&cfg)
			if _, err := newSimulation(cfg); err == nil {
				t.Error("newSimulation() succeeded")
			}
		})
	}
}

func TestRenderPlot(t *testing.T) {
	samples, sum, err := runSimulation(testSimConfig(60, "spike", 2))
	if err != nil {
		t.Fatal(err)
	}
	img, err := renderPlot(samples, sum.Target)
	if err != nil {
		t.Fatalf("renderPlot() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != plotWidth || b.Dy() != plotHeight {
		t.Errorf("plot bounds = %v, want %dx%d", b, plotWidth, plotHeight)
	}
	if _, err := renderPlot(samples[:1], sum.Target); !errors.Is(err, errShortRun) {
		t.Errorf("renderPlot(1 sample) error = %v, want %v", err, errShortRun)
	}

	path := filepath.Join(t.TempDir(), "run.png")
	if err := writePlot(path, samples, sum.Target); err != nil {
		t.Fatalf("writePlot() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if cfg.Width != plotWidth || cfg.Height != plotHeight {
		t.Errorf("png is %dx%d, want %dx%d", cfg.Width, cfg.Height, plotWidth, plotHeight)
	}
}

func TestNiceCeil(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{1, 1},
		{1.3, 2},
		{3, 5},
		{16.7, 20},
		{25, 50},
		{60, 100},
	}
	for _, tt := range tests {
		if got := niceCeil(tt.in); got != tt.want {
			t.Errorf("niceCeil(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline([]float64{0, 1, 2, 5}, 4, 2); got != "▁▄██" {
		t.Errorf("sparkline() = %q, want %q", got, "▁▄██")
	}
	if got := sparkline([]float64{0}, 3, 1); got != "▁  " {
		t.Errorf("short sparkline = %q, want padding", got)
	}
	if got := []rune(sparkline(make([]float64, 50), 10, 1)); len(got) != 10 {
		t.Errorf("sparkline width = %d, want 10", len(got))
	}
}

func TestLoopedLoad(t *testing.T) {
	load, err := loopedLoad(testSimConfig(60, "spike", 2))
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []uint64{25, 85, 145} {
		if got := load(n); got != 2 {
			t.Errorf("load(%d) = %v, want the spike to repeat", n, got)
		}
	}
}

func TestWatchModelAdvance(t *testing.T) {
	m, err := newWatchModel(testSimConfig(60, "steady", 1), 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer m.sim.close()
	if m.perTick != 3 {
		t.Errorf("perTick = %d, want 3 frames per 50ms at 60 Hz", m.perTick)
	}
	for range 100 {
		m.Update(tickMsg(time.Now()))
	}
	if len(m.history) != watchHistory {
		t.Errorf("history holds %d frames, want %d", len(m.history), watchHistory)
	}
	if !strings.Contains(m.View(), "framepace watch") {
		t.Errorf("View() = %q", m.View())
	}
	m.setFactor(0)
	if m.cfg.factor != 0.25 {
		t.Errorf("factor = %v, want the 0.25 floor", m.cfg.factor)
	}
}

func TestParseBackend(t *testing.T) {
	if b, err := parseBackend("Vulkan"); err != nil || b != gputypes.BackendVulkan {
		t.Errorf("parseBackend(Vulkan) = %v, %v", b, err)
	}
	if b, err := parseBackend("noop"); err != nil || b != gputypes.BackendEmpty {
		t.Errorf("parseBackend(noop) = %v, %v", b, err)
	}
	if _, err := parseBackend("glide"); err == nil {
		t.Error("parseBackend(glide) succeeded")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
		{5 << 30, "5.00 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	plot := filepath.Join(t.TempDir(), "pacing.png")
	out, err := execute(t, "simulate", "--frames", "60", "--every", "20", "--plot", plot)
	if err != nil {
		t.Fatalf("simulate error = %v\n%s", err, out)
	}
	for _, want := range []string{"spike scenario at 60 Hz", "over budget", "plot written to"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(plot); err != nil {
		t.Errorf("plot not written: %v", err)
	}

	if _, err := execute(t, "simulate", "--scenario", "earthquake"); err == nil {
		t.Error("simulate with an unknown scenario succeeded")
	}
}

func TestDriversCommand(t *testing.T) {
	out, err := execute(t, "drivers")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"hal", "sim", gputypes.BackendEmpty.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestProbeCommand(t *testing.T) {
	out, err := execute(t, "probe", "--backend", "noop", "--frames", "10", "--rate", "1000")
	if err != nil {
		t.Fatalf("probe error = %v\n%s", err, out)
	}
	for _, want := range []string{"Noop Adapter", "CPU fallback", "10 in"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "probe", "--backend", "glide"); err == nil {
		t.Error("probe with an unknown backend succeeded")
	}
}
