package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/docload/docload/internal/metrics"
)

func sampleSnapshot() *metrics.Snapshot {
	return &metrics.Snapshot{
		Total:      120,
		Succeeded:  118,
		Failed:     2,
		Bytes:      4096,
		Elapsed:    2 * time.Second,
		Throughput: 60.0,
		ErrorRate:  2.0 / 120.0,
		Latency: metrics.LatencyStats{
			Count: 120,
			P50:   3 * time.Millisecond,
			P90:   8 * time.Millisecond,
			P95:   12 * time.Millisecond,
			P99:   40 * time.Millisecond,
			Max:   55 * time.Millisecond,
		},
		Tasks: []metrics.TaskStats{
			{Name: "wl_insert", Latency: metrics.LatencyStats{Count: 100, P50: 2 * time.Millisecond}},
			{Name: "wl_find", Latency: metrics.LatencyStats{Count: 20, P50: 5 * time.Millisecond}},
		},
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Summary(sampleSnapshot())
	out := buf.String()

	for _, want := range []string{
		"Run summary",
		"Duration",
		"2s",
		"Commands",
		"120",
		"Throughput",
		"60.0/s",
		"Bytes received",
		"4096",
		"Failed",
		"2 (1.67%)",
		"Latency",
		"p50",
		"3ms",
		"p99",
		"40ms",
		"max",
		"55ms",
		"Per task",
		"wl_insert (100):",
		"wl_find (20):",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestSummaryZeroFailures(t *testing.T) {
	var buf bytes.Buffer
	snap := sampleSnapshot()
	snap.Failed = 0
	snap.Tasks = nil
	NewConsole(&buf).Summary(snap)
	out := buf.String()

	if !strings.Contains(out, "Failed") {
		t.Error("summary missing the Failed row")
	}
	if strings.Contains(out, "%") && strings.Contains(out, "(0.00%)") {
		t.Error("zero failures should not print a percentage")
	}
	if strings.Contains(out, "Per task") {
		t.Error("summary printed an empty per-task section")
	}
}

func TestSummaryHasNoColorCodesOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Summary(sampleSnapshot())
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("summary to a buffer contains ANSI escapes")
	}
}
