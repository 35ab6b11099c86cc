package framepace

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/framepace/driver/simdriver"
	"github.com/gogpu/framepace/frameinfo"
	"github.com/gogpu/framepace/resolution"
	"github.com/gogpu/framepace/resource"
	"github.com/gogpu/gputypes"
)

func newTestPacer(t *testing.T, sim simdriver.Options, opts ...Option) (*Pacer, *simdriver.Driver) {
	t.Helper()
	d := simdriver.New(sim)
	p, err := New(d, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, d
}

func runFrames(t *testing.T, p *Pacer, n int) {
	t.Helper()
	for range n {
		if _, err := p.BeginFrame(); err != nil {
			t.Fatalf("BeginFrame() error = %v", err)
		}
		if err := p.EndFrame(); err != nil {
			t.Fatalf("EndFrame() error = %v", err)
		}
	}
}

var colorKey = resource.TextureKey{
	Name:   "color",
	Format: gputypes.TextureFormatRGBA8Unorm,
	Width:  64, Height: 64, Depth: 1,
	Levels: 1,
}

func TestNewNilDriver(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilDriver) {
		t.Errorf("New(nil) error = %v, want ErrNilDriver", err)
	}
}

func TestPacerFrameOrder(t *testing.T) {
	p, _ := newTestPacer(t, simdriver.Options{Cost: func(uint64) time.Duration { return 8 * time.Millisecond }})

	runFrames(t, p, 10)
	s := p.Stats()
	if s.FrameID != 10 || p.FrameID() != 10 {
		t.Errorf("FrameID = %d, want 10", s.FrameID)
	}
	if s.Frames.Issued != 10 || s.Frames.Retired != 9 {
		t.Errorf("Frames = %+v, want 10 issued and 9 retired", s.Frames)
	}
	if !s.Last.Valid || s.Last.FrameID != 8 || s.Last.Duration != 8*time.Millisecond {
		t.Errorf("Last = %+v, want a valid 8ms sample of frame 8", s.Last)
	}
	if s.Textures.Age != 10 {
		t.Errorf("texture cache age = %d, want one GC per frame", s.Textures.Age)
	}
	if got := p.History(0); len(got) != 9 || got[0].FrameID != 8 {
		t.Errorf("History(0) has %d frames, newest %+v", len(got), got[0])
	}
}

func TestPacerDynamicResolution(t *testing.T) {
	p, _ := newTestPacer(t,
		simdriver.Options{Cost: func(uint64) time.Duration { return 30 * time.Millisecond }},
		WithDynamicResolution(resolution.DefaultOptions()))

	if got := p.Resolution(); got != resolution.Identity {
		t.Fatalf("initial Resolution() = %+v, want identity", got)
	}
	runFrames(t, p, 20)
	got := p.Resolution()
	if got.X >= 1 || got.X != got.Y || got.X < 0.5 {
		t.Errorf("Resolution() = %+v after frames twice over budget, want a homogeneous scale in [0.5, 1)", got)
	}
}

func TestPacerResolutionDisabled(t *testing.T) {
	p, _ := newTestPacer(t, simdriver.Options{Cost: func(uint64) time.Duration { return 30 * time.Millisecond }})
	runFrames(t, p, 20)
	if got := p.Resolution(); got != resolution.Identity {
		t.Errorf("Resolution() = %+v with dynamic resolution disabled, want identity", got)
	}
	if s := p.Stats(); s.Last.Scale >= 1 {
		t.Errorf("workload scale = %v, want < 1", s.Last.Scale)
	}
}

func TestPacerClock(t *testing.T) {
	start := time.Unix(1000, 0)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * 16 * time.Millisecond)
	}
	p, _ := newTestPacer(t, simdriver.Options{}, WithClock(clock), WithFrameRate(frameinfo.ConfigForRate(60)))
	runFrames(t, p, 2)

	if got, want := p.Stats().Last.Vsync, start.Add(16*time.Millisecond); !got.Equal(want) {
		t.Errorf("Vsync of frame 0 = %v, want %v", got, want)
	}
}

func TestPacerErrors(t *testing.T) {
	p, _ := newTestPacer(t, simdriver.Options{})

	if err := p.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("EndFrame() without BeginFrame error = %v, want ErrNoFrame", err)
	}
	if _, err := p.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.BeginFrame(); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("second BeginFrame() error = %v, want ErrFrameInProgress", err)
	}
	if err := p.Close(); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("Close() during a frame error = %v, want ErrFrameInProgress", err)
	}
	if err := p.EndFrame(); err != nil {
		t.Fatal(err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := p.BeginFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("BeginFrame() after Close error = %v, want ErrClosed", err)
	}
	if err := p.EndFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("EndFrame() after Close error = %v, want ErrClosed", err)
	}
}

func TestPacerCloseReleasesEverything(t *testing.T) {
	p, d := newTestPacer(t, simdriver.Options{Latency: 2})

	if _, err := p.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	h, err := p.Textures().CreateTexture(colorKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.EndFrame(); err != nil {
		t.Fatal(err)
	}

	if err := p.Close(); !errors.Is(err, resource.ErrTexturesInUse) {
		t.Fatalf("Close() with a texture in use error = %v, want ErrTexturesInUse", err)
	}
	p.Textures().DestroyTexture(h)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s := d.Stats()
	if s.QueriesDestroyed != frameinfo.PoolCount || s.TexturesDestroyed != 1 || s.LiveTextures != 0 {
		t.Errorf("driver Stats() = %+v after Close", s)
	}
	if _, err := d.CreateTimerQuery(); !errors.Is(err, driver.ErrClosed) {
		t.Errorf("driver still open after Close: %v", err)
	}
}

func TestPacerRecyclesTextures(t *testing.T) {
	p, d := newTestPacer(t, simdriver.Options{}, WithTextureCache(resource.Config{MaxAge: 3}))

	for range 5 {
		if _, err := p.BeginFrame(); err != nil {
			t.Fatal(err)
		}
		h, err := p.Textures().CreateTexture(colorKey)
		if err != nil {
			t.Fatal(err)
		}
		p.Textures().DestroyTexture(h)
		if err := p.EndFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.Stats().TexturesCreated; got != 1 {
		t.Errorf("driver created %d textures, want 1 reused across frames", got)
	}

	runFrames(t, p, 3)
	s := p.Stats().Textures
	if s.Cached != 0 || s.Evictions != 1 {
		t.Errorf("texture Stats() = %v, want the idle texture released after MaxAge frames", s)
	}
}
