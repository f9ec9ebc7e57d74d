package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docload/docload/internal/metrics"
	"github.com/docload/docload/internal/workload"
)

// fakeExecutor counts executions per task id and never touches a database.
type fakeExecutor struct {
	calls       atomic.Int64
	disconnects atomic.Int64

	mu     sync.Mutex
	byTask map[string]int
	delay  time.Duration
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{byTask: make(map[string]int)}
}

func (f *fakeExecutor) Execute(_ context.Context, _ workload.Task, taskID string) metrics.Outcome {
	f.calls.Add(1)
	f.mu.Lock()
	f.byTask[taskID]++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return metrics.Outcome{Category: "DocumentDB", Name: taskID, Duration: time.Millisecond}
}

func (f *fakeExecutor) Disconnect(context.Context) {
	f.disconnects.Add(1)
}

func twoTaskWorkload() *workload.Workload {
	return &workload.Workload{
		Name: "wl",
		Tasks: []workload.Task{
			{Name: "heavy", Weight: 9, Command: workload.CommandDefinition{Kind: workload.KindFind}},
			{Name: "light", Weight: 1, Command: workload.CommandDefinition{Kind: workload.KindFind}},
		},
	}
}

func TestVURunIteration(t *testing.T) {
	exec := newFakeExecutor()
	engine := metrics.NewEngine()
	vu := NewVirtualUser(1, twoTaskWorkload(), exec, engine, 42)

	for i := 0; i < 10; i++ {
		if err := vu.RunIteration(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if vu.Iteration() != 10 {
		t.Errorf("iterations = %d, want 10", vu.Iteration())
	}
	if exec.calls.Load() != 10 {
		t.Errorf("executor calls = %d, want 10", exec.calls.Load())
	}
	if engine.GetSnapshot().Total != 10 {
		t.Errorf("recorded outcomes = %d, want 10", engine.GetSnapshot().Total)
	}
	if vu.State() != VUStateIdle {
		t.Errorf("state = %v, want idle between iterations", vu.State())
	}
}

func TestVUWeightedSelection(t *testing.T) {
	exec := newFakeExecutor()
	vu := NewVirtualUser(1, twoTaskWorkload(), exec, metrics.NewEngine(), 42)

	const iterations = 2000
	for i := 0; i < iterations; i++ {
		if err := vu.RunIteration(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	heavy := exec.byTask["wl_heavy"]
	light := exec.byTask["wl_light"]
	if heavy+light != iterations {
		t.Fatalf("task counts = %d+%d, want %d", heavy, light, iterations)
	}
	// 9:1 weighting; allow generous slack around the 90% expectation.
	if heavy < iterations*80/100 || heavy > iterations*97/100 {
		t.Errorf("heavy task ran %d of %d, want roughly 9 in 10", heavy, iterations)
	}
}

func TestVUStopLifecycle(t *testing.T) {
	vu := NewVirtualUser(1, twoTaskWorkload(), newFakeExecutor(), metrics.NewEngine(), 1)

	vu.RequestStop()
	if vu.State() != VUStateStopping {
		t.Errorf("state = %v, want stopping", vu.State())
	}
	vu.RequestStop() // idempotent; must not panic on the closed channel

	if err := vu.RunIteration(context.Background()); err == nil {
		t.Error("iteration after stop request did not error")
	}

	vu.MarkStopped()
	if vu.State() != VUStateStopped {
		t.Errorf("state = %v, want stopped", vu.State())
	}
	if !vu.WaitForStop(time.Second) {
		t.Error("WaitForStop timed out on a stopped VU")
	}
}

func TestVUCancelledContext(t *testing.T) {
	vu := NewVirtualUser(1, twoTaskWorkload(), newFakeExecutor(), metrics.NewEngine(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := vu.RunIteration(ctx); err == nil {
		t.Error("iteration with cancelled context did not error")
	}
}

func TestVUEmptyWorkload(t *testing.T) {
	vu := NewVirtualUser(1, &workload.Workload{Name: "empty"}, newFakeExecutor(), metrics.NewEngine(), 1)
	if err := vu.RunIteration(context.Background()); err == nil {
		t.Error("iteration on a task-less workload did not error")
	}
}
