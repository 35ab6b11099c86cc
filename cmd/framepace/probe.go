package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gogpu/framepace"
	"github.com/gogpu/framepace/driver/haldriver"
	"github.com/gogpu/framepace/frameinfo"
	"github.com/gogpu/framepace/internal/workload"
	"github.com/gogpu/gputypes"
	"github.com/spf13/cobra"

	// Register the hal backends probe can open.
	_ "github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

var backendNames = map[string]gputypes.Backend{
	"vulkan": gputypes.BackendVulkan,
	"metal":  gputypes.BackendMetal,
	"dx12":   gputypes.BackendDX12,
	"gl":     gputypes.BackendGL,
	"noop":   gputypes.BackendEmpty,
}

func parseBackend(name string) (gputypes.Backend, error) {
	b, ok := backendNames[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(backendNames))
		for n := range backendNames {
			names = append(names, n)
		}
		slices.Sort(names)
		return 0, fmt.Errorf("unknown backend %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return b, nil
}

func newProbeCmd() *cobra.Command {
	var (
		backend       string
		frames        int
		rate          float64
		width, height uint32
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Pace the synthetic workload on a real GPU device",
		Long: `Opens a device through the wgpu hal, reports whether it supports GPU
timestamps, and paces the synthetic workload's texture traffic on it in real
time. Without timestamp queries the timer falls back to CPU submission time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames <= 0 {
				return fmt.Errorf("invalid --frames %d", frames)
			}
			drv, err := openHAL(backend)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeAdapter(out, drv)
			return runProbe(out, drv, frames, rate, width, height)
		},
	}
	f := cmd.Flags()
	f.StringVar(&backend, "backend", "", "hal backend: vulkan, metal, dx12, gl or noop (default: first that opens)")
	f.IntVar(&frames, "frames", 120, "number of frames to render")
	f.Float64Var(&rate, "rate", 60, "target frame rate in Hz")
	f.Uint32Var(&width, "width", 1280, "viewport width")
	f.Uint32Var(&height, "height", 720, "viewport height")
	return cmd
}

func openHAL(name string) (*haldriver.Driver, error) {
	if name == "" {
		return haldriver.OpenDefault()
	}
	b, err := parseBackend(name)
	if err != nil {
		return nil, err
	}
	return haldriver.Open(b)
}

func writeAdapter(w io.Writer, drv *haldriver.Driver) {
	info := drv.AdapterInfo()
	timestamps := badStyle.Render("no (CPU fallback)")
	if drv.GPUTimestamps() {
		timestamps = okStyle.Render("yes")
	}
	fmt.Fprintln(w, titleStyle.Render("adapter"))
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("name      "), info.Name)
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("backend   "), info.Backend)
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("type      "), info.DeviceType)
	if info.Driver != "" {
		fmt.Fprintf(w, "%s %s\n", dimStyle.Render("driver    "), info.Driver)
	}
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("timestamps"), timestamps)
}

// runProbe paces frames on the wall clock. The Pacer owns drv and closes
// it.
func runProbe(w io.Writer, drv *haldriver.Driver, frames int, rate float64, width, height uint32) error {
	fc := frameinfo.ConfigForRate(rate)
	p, err := framepace.New(drv, framepace.WithFrameRate(fc))
	if err != nil {
		_ = drv.Close()
		return err
	}
	g := workload.Default(width, height)

	start := time.Now()
	var last workload.Frame
	for n := range frames {
		if _, err := p.BeginFrame(); err != nil {
			_ = p.Close()
			return err
		}
		last, err = g.Run(p.Textures(), p.Resolution(), uint64(n))
		if endErr := p.EndFrame(); err == nil {
			err = endErr
		}
		if err != nil {
			_ = p.Close()
			return err
		}
		time.Sleep(time.Until(start.Add(time.Duration(n+1) * fc.TargetFrameTime)))
	}
	elapsed := time.Since(start)

	measured := p.History(frameinfo.MaxFrameTimeHistory)
	st := p.Stats()
	if err := p.Close(); err != nil {
		return err
	}

	fmt.Fprintln(w, titleStyle.Render("run"))
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("frames    "),
		printer.Sprintf("%d in %v (%d measured, %d unmeasured)", frames, elapsed.Round(time.Millisecond), st.Frames.Retired, st.Frames.Skipped+st.Frames.Failed))
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("last frame"), last)
	if len(measured) > 0 {
		ds := make([]time.Duration, len(measured))
		for i, fi := range measured {
			ds[i] = fi.Duration
		}
		slices.Sort(ds)
		fmt.Fprintf(w, "%s min %s  median %s  max %s\n", dimStyle.Render("gpu time  "),
			formatMillis(ds[0]), formatMillis(ds[len(ds)/2]), formatMillis(ds[len(ds)-1]))
	}
	fmt.Fprintf(w, "%s %.3f\n", dimStyle.Render("scale     "), st.Last.Scale)
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("textures  "),
		printer.Sprintf("%d hits, %d misses, %d cached", st.Textures.Hits, st.Textures.Misses, st.Textures.Cached))
	return nil
}
