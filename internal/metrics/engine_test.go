package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestEngineCounts(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 8; i++ {
		e.Record(Outcome{Category: "DocumentDB", Name: "wl_insert", Duration: 2 * time.Millisecond, ResponseSize: 100})
	}
	for i := 0; i < 2; i++ {
		e.Record(Outcome{Category: "DocumentDB-Error", Name: "wl_insert", Duration: 5 * time.Millisecond, Err: errors.New("boom")})
	}

	snap := e.GetSnapshot()
	if snap.Total != 10 || snap.Succeeded != 8 || snap.Failed != 2 {
		t.Errorf("counts = %d/%d/%d, want 10 total, 8 ok, 2 failed",
			snap.Total, snap.Succeeded, snap.Failed)
	}
	if snap.Bytes != 800 {
		t.Errorf("bytes = %d, want 800", snap.Bytes)
	}
	if snap.ErrorRate != 0.2 {
		t.Errorf("error rate = %v, want 0.2", snap.ErrorRate)
	}
	if snap.Throughput <= 0 {
		t.Errorf("throughput = %v, want positive", snap.Throughput)
	}
}

func TestEngineLatencyPercentiles(t *testing.T) {
	e := NewEngine()
	for i := 1; i <= 100; i++ {
		e.Record(Outcome{Name: "wl_find", Duration: time.Duration(i) * time.Millisecond})
	}

	snap := e.GetSnapshot()
	if snap.Latency.Count != 100 {
		t.Fatalf("count = %d, want 100", snap.Latency.Count)
	}
	// Histogram resolution is 3 significant figures; allow 1% slack.
	approx := func(got, want time.Duration) bool {
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		return diff <= want/100+time.Microsecond
	}
	if !approx(snap.Latency.P50, 50*time.Millisecond) {
		t.Errorf("p50 = %v, want ~50ms", snap.Latency.P50)
	}
	if !approx(snap.Latency.P99, 99*time.Millisecond) {
		t.Errorf("p99 = %v, want ~99ms", snap.Latency.P99)
	}
	if !approx(snap.Latency.Max, 100*time.Millisecond) {
		t.Errorf("max = %v, want ~100ms", snap.Latency.Max)
	}
	if !approx(snap.Latency.Min, time.Millisecond) {
		t.Errorf("min = %v, want ~1ms", snap.Latency.Min)
	}
}

func TestEngineClampsOutOfRangeDurations(t *testing.T) {
	e := NewEngine()
	e.Record(Outcome{Name: "wl_fast", Duration: 0})
	e.Record(Outcome{Name: "wl_slow", Duration: 2 * time.Hour})

	snap := e.GetSnapshot()
	if snap.Latency.Count != 2 {
		t.Fatalf("count = %d, want both clamped outcomes recorded", snap.Latency.Count)
	}
	if snap.Latency.Max > time.Hour+time.Minute {
		t.Errorf("max = %v, want clamped to the histogram ceiling", snap.Latency.Max)
	}
}

func TestEnginePerTaskBreakdown(t *testing.T) {
	e := NewEngine()
	e.Record(Outcome{Name: "wl_b", Duration: time.Millisecond})
	e.Record(Outcome{Name: "wl_a", Duration: time.Millisecond})
	e.Record(Outcome{Name: "wl_a", Duration: time.Millisecond})
	e.Record(Outcome{Duration: time.Millisecond}) // unnamed, overall only

	snap := e.GetSnapshot()
	if len(snap.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(snap.Tasks))
	}
	if snap.Tasks[0].Name != "wl_a" || snap.Tasks[1].Name != "wl_b" {
		t.Errorf("task order = %q, %q, want sorted by name", snap.Tasks[0].Name, snap.Tasks[1].Name)
	}
	if snap.Tasks[0].Latency.Count != 2 || snap.Tasks[1].Latency.Count != 1 {
		t.Errorf("task counts = %d/%d, want 2 and 1",
			snap.Tasks[0].Latency.Count, snap.Tasks[1].Latency.Count)
	}
	if snap.Latency.Count != 4 {
		t.Errorf("overall count = %d, want 4 including the unnamed outcome", snap.Latency.Count)
	}
}

func TestEngineActiveWorkers(t *testing.T) {
	e := NewEngine()
	e.SetActiveWorkers(12)
	if got := e.GetSnapshot().ActiveWorkers; got != 12 {
		t.Errorf("active workers = %d, want 12", got)
	}
}

func TestEngineConcurrentRecord(t *testing.T) {
	e := NewEngine()
	const workers, per = 16, 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				e.Record(Outcome{Name: "wl_t", Duration: time.Millisecond, ResponseSize: 1})
			}
		}()
	}
	wg.Wait()

	snap := e.GetSnapshot()
	if snap.Total != workers*per || snap.Bytes != workers*per {
		t.Errorf("total = %d bytes = %d, want %d each", snap.Total, snap.Bytes, workers*per)
	}
	if snap.Latency.Count != workers*per {
		t.Errorf("histogram count = %d, want %d", snap.Latency.Count, workers*per)
	}
}
