package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/framepace/internal/workload"
	"github.com/spf13/cobra"
)

const watchHistory = 120

func newWatchCmd() *cobra.Command {
	cfg := defaultSimConfig()
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the controller react to the simulated workload live",
		Long: `Runs the simulation in a terminal dashboard. The load scenario repeats
every --frames frames. Keys: space pauses, +/- change the load factor, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newWatchModel(cfg, interval)
			if err != nil {
				return err
			}
			defer m.sim.close()
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
	cfg.addFlags(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 50*time.Millisecond, "wall time between dashboard updates")
	return cmd
}

type tickMsg time.Time

// watchModel steps the simulation by one interval of virtual frames per
// tick.
type watchModel struct {
	cfg      simConfig
	sim      *simulation
	interval time.Duration
	perTick  int

	history  []sample
	last     sample
	width    int
	paused   bool
	quitting bool
	err      error
}

func newWatchModel(cfg simConfig, interval time.Duration) (*watchModel, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid --interval %v", interval)
	}
	sim, err := newSimulation(cfg)
	if err != nil {
		return nil, err
	}
	if sim.graph.Load, err = loopedLoad(cfg); err != nil {
		_ = sim.close()
		return nil, err
	}
	return &watchModel{
		cfg:      cfg,
		sim:      sim,
		interval: interval,
		perTick:  max(1, int(math.Round(cfg.rate*interval.Seconds()))),
		width:    80,
		history:  make([]sample, 0, watchHistory),
	}, nil
}

func (m *watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if !m.paused {
			m.advance()
		}
		if m.err != nil {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "+":
			m.setFactor(m.cfg.factor + 0.25)
		case "-":
			m.setFactor(m.cfg.factor - 0.25)
		}
	}
	return m, nil
}

// advance renders perTick frames.
func (m *watchModel) advance() {
	for range m.perTick {
		s, err := m.sim.step()
		if err != nil {
			m.err = err
			return
		}
		m.last = s
		m.history = append(m.history, s)
		if len(m.history) > watchHistory {
			m.history = m.history[1:]
		}
	}
}

// setFactor swaps the load scenario for one with a new peak factor.
func (m *watchModel) setFactor(f float64) {
	f = math.Max(0.25, f)
	cfg := m.cfg
	cfg.factor = f
	load, err := loopedLoad(cfg)
	if err != nil {
		m.err = err
		return
	}
	m.cfg = cfg
	m.sim.graph.Load = load
}

func (m *watchModel) View() string {
	if m.quitting {
		if m.err != nil {
			return badStyle.Render("error: "+m.err.Error()) + "\n"
		}
		return ""
	}
	target := m.sim.period
	width := max(20, min(m.width-12, watchHistory))

	costs := make([]float64, len(m.history))
	scales := make([]float64, len(m.history))
	for i, s := range m.history {
		costs[i] = float64(s.Cost) / float64(target)
		scales[i] = s.Info.Scale
	}

	var b strings.Builder
	state := okStyle.Render("running")
	if m.paused {
		state = warnStyle.Render("paused")
	}
	fmt.Fprintf(&b, "%s %s\n\n", titleStyle.Render(fmt.Sprintf("framepace watch: %s x%.2f at %.0f Hz", m.cfg.scenario, m.cfg.factor, m.cfg.rate)), state)

	costStyle := okStyle
	if m.last.Missed {
		costStyle = badStyle
	}
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("gpu  "), costStyle.Render(sparkline(costs, width, 2)))
	fmt.Fprintf(&b, "%s %s\n\n", dimStyle.Render("scale"), lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Render(sparkline(scales, width, 1)))

	ps := m.sim.pacer.Stats()
	info := ps.Last
	rows := [][2]string{
		{"frame", printer.Sprintf("%d", ps.FrameID)},
		{"gpu time", formatMillis(m.last.Cost) + " / " + formatMillis(target)},
		{"denoised", formatMillis(info.Denoised)},
		{"pid", fmt.Sprintf("error %.3f  integral %.3f  derivative %.3f", info.PID.Error, info.PID.Integral, info.PID.Derivative)},
		{"scale", fmt.Sprintf("workload %.3f  viewport %dx%d", info.Scale, m.last.Width, m.last.Height)},
		{"textures", printer.Sprintf("%d cached (%s), %d hits, %d misses, %d evicted",
			ps.Textures.Cached, formatBytes(ps.Textures.CacheBytes), ps.Textures.Hits, ps.Textures.Misses, ps.Textures.Evictions)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s\n", dimStyle.Render(fmt.Sprintf("%-9s", r[0])), r[1])
	}
	b.WriteString("\n" + dimStyle.Render("space pause  +/- load  q quit") + "\n")
	return b.String()
}

// loopedLoad returns the scenario load repeating every cfg.frames frames.
func loopedLoad(cfg simConfig) (workload.Load, error) {
	load, err := workload.ParseLoad(cfg.scenario, uint64(cfg.frames), cfg.factor)
	if err != nil || cfg.frames <= 0 {
		return load, err
	}
	period := uint64(cfg.frames)
	return func(n uint64) float64 { return load(n % period) }, nil
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline renders the last width values, scaled so that top fills a
// cell. Larger values are clipped.
func sparkline(values []float64, width int, top float64) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	out := make([]rune, 0, width)
	for _, v := range values {
		i := int(v / top * float64(len(sparkBlocks)-1))
		out = append(out, sparkBlocks[min(max(i, 0), len(sparkBlocks)-1)])
	}
	for len(out) < width {
		out = append(out, ' ')
	}
	return string(out)
}
