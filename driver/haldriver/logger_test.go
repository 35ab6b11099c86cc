package haldriver

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDeviceEventsAreLogged(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	d, err := Open(gputypes.BackendEmpty)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	dev, queue := openNoop(t)
	nd, err := New(dev, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer nd.Close()
	if _, err := nd.CreateTimerQuery(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"haldriver: device opened", "adapter=\"Noop Adapter\"", "timing submissions on the CPU"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output lacks %q:\n%s", want, buf.String())
		}
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}
