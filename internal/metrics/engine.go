// Package metrics aggregates execution outcome events using HDR histograms.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Outcome is the event emitted after each concrete command executes. Success
// and failure both arrive as events; failures carry Err and are never raised
// into the scheduler.
type Outcome struct {
	// Category groups outcomes for reporting, e.g. "DocumentDB" or
	// "DocumentDB-Error".
	Category string

	// Name is the fully qualified task name (workload_task).
	Name string

	// Duration is how long the command took, successful or not.
	Duration time.Duration

	// Err is non-nil for failed commands.
	Err error

	// ResponseSize is the approximate size in bytes of the returned
	// result, zero on failure.
	ResponseSize int64
}

// Engine collects outcomes from all virtual users.
//
// Latencies go into an overall HDR histogram plus one histogram per task
// name; counts use atomics so the hot path takes at most one short mutex.
// Safe for concurrent use.
type Engine struct {
	histMu  sync.Mutex
	overall *hdrhistogram.Histogram

	taskMu sync.RWMutex
	tasks  map[string]*hdrhistogram.Histogram

	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	bytes     atomic.Int64

	activeWorkers atomic.Int32
	start         time.Time
}

// Histogram range: 1 microsecond to 1 hour, 3 significant figures.
const (
	histMin     = 1
	histMax     = 3600000000
	histSigFigs = 3
)

// NewEngine creates an empty metrics engine.
func NewEngine() *Engine {
	return &Engine{
		overall: hdrhistogram.New(histMin, histMax, histSigFigs),
		tasks:   make(map[string]*hdrhistogram.Histogram),
		start:   time.Now(),
	}
}

// Record folds one outcome into the aggregates.
func (e *Engine) Record(o Outcome) {
	micros := o.Duration.Microseconds()
	if micros < histMin {
		micros = histMin
	}
	if micros > histMax {
		micros = histMax
	}

	e.histMu.Lock()
	e.overall.RecordValue(micros)
	e.histMu.Unlock()

	if o.Name != "" {
		e.recordTask(o.Name, micros)
	}

	e.total.Add(1)
	e.bytes.Add(o.ResponseSize)
	if o.Err != nil {
		e.failed.Add(1)
	} else {
		e.succeeded.Add(1)
	}
}

// RecordValue is NOT thread-safe on the histogram itself, so the per-task
// histogram is updated under the map lock.
func (e *Engine) recordTask(name string, micros int64) {
	e.taskMu.Lock()
	defer e.taskMu.Unlock()
	h, ok := e.tasks[name]
	if !ok {
		h = hdrhistogram.New(histMin, histMax, histSigFigs)
		e.tasks[name] = h
	}
	h.RecordValue(micros)
}

// SetActiveWorkers updates the live worker count for reporting.
func (e *Engine) SetActiveWorkers(n int) {
	e.activeWorkers.Store(int32(n))
}

// LatencyStats summarizes one histogram.
type LatencyStats struct {
	Count  int64
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	P50    time.Duration
	P90    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// Snapshot is a point-in-time view of everything the engine has seen.
type Snapshot struct {
	Total         int64
	Succeeded     int64
	Failed        int64
	Bytes         int64
	Elapsed       time.Duration
	Throughput    float64
	ErrorRate     float64
	ActiveWorkers int
	Latency       LatencyStats
	Tasks         []TaskStats
}

// TaskStats is the per-task breakdown, sorted by name for stable output.
type TaskStats struct {
	Name    string
	Latency LatencyStats
}

func statsFrom(h *hdrhistogram.Histogram) LatencyStats {
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return LatencyStats{
		Count: h.TotalCount(),
		Min:   us(h.Min()),
		Max:   us(h.Max()),
		Mean:  time.Duration(h.Mean()) * time.Microsecond,
		P50:   us(h.ValueAtQuantile(50)),
		P90:   us(h.ValueAtQuantile(90)),
		P95:   us(h.ValueAtQuantile(95)),
		P99:   us(h.ValueAtQuantile(99)),
	}
}

// GetSnapshot captures current totals and percentiles.
func (e *Engine) GetSnapshot() *Snapshot {
	e.histMu.Lock()
	latency := statsFrom(e.overall)
	e.histMu.Unlock()

	elapsed := time.Since(e.start)
	total := e.total.Load()
	failed := e.failed.Load()

	throughput := 0.0
	if elapsed.Seconds() > 0 {
		throughput = float64(total) / elapsed.Seconds()
	}
	errorRate := 0.0
	if total > 0 {
		errorRate = float64(failed) / float64(total)
	}

	snap := &Snapshot{
		Total:         total,
		Succeeded:     e.succeeded.Load(),
		Failed:        failed,
		Bytes:         e.bytes.Load(),
		Elapsed:       elapsed,
		Throughput:    throughput,
		ErrorRate:     errorRate,
		ActiveWorkers: int(e.activeWorkers.Load()),
		Latency:       latency,
	}

	e.taskMu.RLock()
	for name, h := range e.tasks {
		snap.Tasks = append(snap.Tasks, TaskStats{Name: name, Latency: statsFrom(h)})
	}
	e.taskMu.RUnlock()
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].Name < snap.Tasks[j].Name })

	return snap
}
