// Package output renders run summaries to the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/docload/docload/internal/metrics"
)

// ColorScheme defines the colors used for summary elements.
type ColorScheme struct {
	Title   *color.Color
	Label   *color.Color
	Value   *color.Color
	Success *color.Color
	Error   *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:   color.New(color.FgCyan, color.Bold),
		Label:   color.New(color.FgYellow),
		Value:   color.New(color.FgWhite),
		Success: color.New(color.FgGreen, color.Bold),
		Error:   color.New(color.FgRed, color.Bold),
	}
}

// NoColorScheme returns a scheme with all colors disabled.
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	scheme.Title.DisableColor()
	scheme.Label.DisableColor()
	scheme.Value.DisableColor()
	scheme.Success.DisableColor()
	scheme.Error.DisableColor()
	return scheme
}

// Console writes run summaries. Colors are enabled only when writing to a
// terminal.
type Console struct {
	w      io.Writer
	scheme *ColorScheme
}

// NewConsole creates a Console over w. Passing os.Stdout enables colors when
// stdout is a TTY.
func NewConsole(w io.Writer) *Console {
	scheme := NoColorScheme()
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		scheme = DefaultColorScheme()
	}
	return &Console{w: w, scheme: scheme}
}

// Summary prints the end-of-run report from a metrics snapshot.
func (c *Console) Summary(snap *metrics.Snapshot) {
	fmt.Fprintln(c.w)
	c.scheme.Title.Fprintln(c.w, "Run summary")
	c.scheme.Title.Fprintln(c.w, "===========")

	c.row("Duration", snap.Elapsed.Round(time.Millisecond).String())
	c.row("Commands", fmt.Sprintf("%d", snap.Total))
	c.row("Throughput", fmt.Sprintf("%.1f/s", snap.Throughput))
	c.row("Bytes received", fmt.Sprintf("%d", snap.Bytes))

	if snap.Failed > 0 {
		c.scheme.Label.Fprintf(c.w, "%-16s", "Failed")
		c.scheme.Error.Fprintf(c.w, "%d (%.2f%%)\n", snap.Failed, snap.ErrorRate*100)
	} else {
		c.scheme.Label.Fprintf(c.w, "%-16s", "Failed")
		c.scheme.Success.Fprintln(c.w, "0")
	}

	fmt.Fprintln(c.w)
	c.scheme.Title.Fprintln(c.w, "Latency")
	c.latency(snap.Latency)

	if len(snap.Tasks) > 0 {
		fmt.Fprintln(c.w)
		c.scheme.Title.Fprintln(c.w, "Per task")
		for _, task := range snap.Tasks {
			c.scheme.Label.Fprintf(c.w, "%s (%d):\n", task.Name, task.Latency.Count)
			c.latency(task.Latency)
		}
	}
}

func (c *Console) latency(stats metrics.LatencyStats) {
	c.row("  p50", stats.P50.Round(time.Microsecond).String())
	c.row("  p90", stats.P90.Round(time.Microsecond).String())
	c.row("  p95", stats.P95.Round(time.Microsecond).String())
	c.row("  p99", stats.P99.Round(time.Microsecond).String())
	c.row("  max", stats.Max.Round(time.Microsecond).String())
}

func (c *Console) row(label, value string) {
	c.scheme.Label.Fprintf(c.w, "%-16s", label)
	c.scheme.Value.Fprintln(c.w, value)
}
