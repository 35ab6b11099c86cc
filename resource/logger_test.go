package resource

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/framepace/driver/simdriver"
)

func TestDumpLogsEntries(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	c := NewTextureCache(simdriver.New(simdriver.Options{}), DefaultConfig())
	k := colorKey(4, 4)
	k.Name = "shadow-map"
	c.DestroyTexture(mustCreate(t, c, k))
	mustCreate(t, c, colorKey(8, 8))

	buf.Reset()
	c.Dump()
	out := buf.String()
	for _, want := range []string{"resource: cached", "name=shadow-map", "resource: in use"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() output missing %q:\n%s", want, out)
		}
	}
}
