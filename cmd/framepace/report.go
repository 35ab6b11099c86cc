package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Padding(0, 1)
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// printer formats counts and byte totals with locale grouping.
var printer = message.NewPrinter(language.English)

func formatBytes(n uint64) string {
	const unit = 1024
	switch {
	case n < unit:
		return printer.Sprintf("%d B", n)
	case n < unit*unit:
		return printer.Sprintf("%.1f KiB", float64(n)/unit)
	case n < unit*unit*unit:
		return printer.Sprintf("%.1f MiB", float64(n)/(unit*unit))
	default:
		return printer.Sprintf("%.2f GiB", float64(n)/(unit*unit*unit))
	}
}

func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 2, 64) + "ms"
}

// frameTable renders every every-th sample. Frames over budget are
// highlighted.
func frameTable(samples []sample, every int, target time.Duration) string {
	every = max(every, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("frame", "gpu", "measured", "denoised", "error", "integral", "scale", "viewport", "cached")

	missed := map[int]bool{}
	row := 0
	for i, s := range samples {
		if i%every != 0 && i != len(samples)-1 {
			continue
		}
		measured, denoised, pidErr, integral := "-", "-", "-", "-"
		if s.Info.Duration > 0 {
			measured = formatMillis(s.Info.Duration)
		}
		if s.Info.Valid {
			denoised = formatMillis(s.Info.Denoised)
			pidErr = strconv.FormatFloat(s.Info.PID.Error, 'f', 3, 64)
			integral = strconv.FormatFloat(s.Info.PID.Integral, 'f', 3, 64)
		}
		t.Row(
			printer.Sprintf("%d", s.Frame),
			formatMillis(s.Cost),
			measured,
			denoised,
			pidErr,
			integral,
			strconv.FormatFloat(s.Info.Scale, 'f', 3, 64),
			fmt.Sprintf("%dx%d", s.Width, s.Height),
			formatBytes(s.Textures.CacheBytes),
		)
		missed[row] = s.Cost > target
		row++
	}
	t.StyleFunc(func(r, c int) lipgloss.Style {
		switch {
		case r == table.HeaderRow:
			return headerStyle
		case c == 1 && missed[dataRow(r)]:
			return badStyle
		case c == 1:
			return okStyle
		default:
			return cellStyle
		}
	})
	return t.Render()
}

// dataRow converts a StyleFunc row index into a data row index. Data rows
// follow the header row.
func dataRow(r int) int {
	return r - (table.HeaderRow + 1)
}

func writeSummary(w io.Writer, title string, sum summary) {
	budget := okStyle
	if sum.Missed > 0 {
		budget = warnStyle
	}
	if sum.Frames > 0 && sum.Missed*10 > sum.Frames {
		budget = badStyle
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(r, c int) lipgloss.Style {
			if c == 0 {
				return dimStyle.Padding(0, 1)
			}
			return cellStyle
		})
	t.Row("frames", printer.Sprintf("%d (%d measured, %d unmeasured)",
		sum.Frames, sum.Pacer.Frames.Retired, sum.Pacer.Frames.Skipped+sum.Pacer.Frames.Failed))
	t.Row("target", formatMillis(sum.Target))
	t.Row("gpu time", fmt.Sprintf("mean %s  p95 %s  worst %s",
		formatMillis(sum.Mean), formatMillis(sum.P95), formatMillis(sum.Worst)))
	t.Row("over budget", budget.Render(printer.Sprintf("%d", sum.Missed)))
	t.Row("final scale", fmt.Sprintf("workload %.3f  viewport %.3f x %.3f",
		sum.Pacer.Last.Scale, sum.Scale.X, sum.Scale.Y))
	t.Row("textures", printer.Sprintf("%d created, %d hits, %d misses, %d evicted",
		sum.Driver.TexturesCreated, sum.Textures.Hits, sum.Textures.Misses, sum.Textures.Evictions))
	t.Row("texture cache", fmt.Sprintf("%s in %d entries",
		formatBytes(sum.Textures.CacheBytes), sum.Textures.Cached))
	t.Row("simulated time", sum.Elapsed.Round(time.Millisecond).String())

	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, t.Render())
}
