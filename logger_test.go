package framepace

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/framepace/driver/simdriver"
	"github.com/gogpu/framepace/frameinfo"
	"github.com/gogpu/framepace/resource"
)

// captureLogs installs a text logger at level and restores the previous
// one when the test ends.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func TestNopHandler(t *testing.T) {
	var h slog.Handler = nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = true", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle() = %v", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.Int("frame", 1)}).(nopHandler); !ok {
		t.Error("WithAttrs() did not stay silent")
	}
	if _, ok := h.WithGroup("pacer").(nopHandler); !ok {
		t.Error("WithGroup() did not stay silent")
	}
}

func TestLoggerSilentByDefault(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() = nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
}

func TestSetLogger(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)
	Logger().Info("frame paced", "frame", 7)
	if !strings.Contains(buf.String(), "frame paced") {
		t.Errorf("log output = %q", buf.String())
	}

	SetLogger(nil)
	if l := Logger(); l == nil || l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not install a silent logger")
	}
}

func TestSetLoggerPropagates(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)
	if frameinfo.Logger() != custom {
		t.Error("SetLogger did not reach frameinfo")
	}
	if resource.Logger() != custom {
		t.Error("SetLogger did not reach resource")
	}

	SetLogger(nil)
	if frameinfo.Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left frameinfo logging")
	}
	if resource.Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left resource logging")
	}
}

func TestPacerLifecycleIsLogged(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	p, err := New(simdriver.New(simdriver.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"framepace: pacer created", "frameinfo: query pool released", "framepace: pacer closed"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestSetLoggerWhilePacing(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	p, err := New(simdriver.New(simdriver.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 50 {
			if _, err := p.BeginFrame(); err != nil {
				t.Error(err)
				return
			}
			if err := p.EndFrame(); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		debug := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}))
		for range 50 {
			SetLogger(debug)
			SetLogger(nil)
		}
	}()
	wg.Wait()
}

func BenchmarkLoggerDisabled(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("frame", "id", 1)
	}
}
