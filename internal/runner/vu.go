// Package runner schedules virtual users that repeatedly execute weighted
// workload tasks and feed outcome events into the metrics engine.
package runner

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/docload/docload/internal/metrics"
	"github.com/docload/docload/internal/workload"
)

// Executor runs one task's command against the database and reports the
// outcome. Implementations own their connection; the runner never inspects
// it.
type Executor interface {
	Execute(ctx context.Context, task workload.Task, taskID string) metrics.Outcome
	Disconnect(ctx context.Context)
}

// VUState represents the lifecycle state of a virtual user.
type VUState int32

const (
	VUStateIdle VUState = iota
	VUStateRunning
	VUStateStopping
	VUStateStopped
)

func (s VUState) String() string {
	switch s {
	case VUStateIdle:
		return "idle"
	case VUStateRunning:
		return "running"
	case VUStateStopping:
		return "stopping"
	case VUStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// VirtualUser is one simulated client. Each VU owns its executor (and so its
// database connection), picks tasks by weight, and records one outcome per
// iteration.
type VirtualUser struct {
	ID       int
	Workload *workload.Workload

	exec    Executor
	metrics *metrics.Engine

	// Weighted pick list: each task appears Weight times, mirroring the
	// workload's declared distribution.
	taskPool []int
	rng      *rand.Rand

	state     atomic.Int32
	stopCh    chan struct{}
	stopped   atomic.Bool
	doneCh    chan struct{}
	iteration atomic.Int64
}

// NewVirtualUser creates a VU over its own executor. seed keeps task
// selection reproducible per VU when the run is seeded.
func NewVirtualUser(id int, wl *workload.Workload, exec Executor, engine *metrics.Engine, seed int64) *VirtualUser {
	pool := make([]int, 0, len(wl.Tasks))
	for i, t := range wl.Tasks {
		w := t.Weight
		if w < 1 {
			w = 1
		}
		for n := 0; n < w; n++ {
			pool = append(pool, i)
		}
	}
	return &VirtualUser{
		ID:       id,
		Workload: wl,
		exec:     exec,
		metrics:  engine,
		taskPool: pool,
		rng:      rand.New(rand.NewSource(seed + int64(id))),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (vu *VirtualUser) State() VUState {
	return VUState(vu.state.Load())
}

// Iteration returns how many iterations this VU has started.
func (vu *VirtualUser) Iteration() int64 {
	return vu.iteration.Load()
}

// RunIteration executes one weighted task and records its outcome.
func (vu *VirtualUser) RunIteration(ctx context.Context) error {
	if s := vu.State(); s == VUStateStopping || s == VUStateStopped {
		return fmt.Errorf("vu %d is stopping or stopped", vu.ID)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-vu.stopCh:
		return nil
	default:
	}

	if len(vu.taskPool) == 0 {
		return fmt.Errorf("workload %q has no tasks", vu.Workload.Name)
	}

	vu.state.Store(int32(VUStateRunning))
	vu.iteration.Add(1)

	task := vu.Workload.Tasks[vu.taskPool[vu.rng.Intn(len(vu.taskPool))]]
	taskID := vu.Workload.Name + "_" + task.Name

	outcome := vu.exec.Execute(ctx, task, taskID)
	vu.metrics.Record(outcome)

	vu.state.Store(int32(VUStateIdle))
	return nil
}

// RequestStop signals the VU to stop after the current iteration.
func (vu *VirtualUser) RequestStop() {
	if vu.stopped.CompareAndSwap(false, true) {
		vu.state.Store(int32(VUStateStopping))
		close(vu.stopCh)
	}
}

// MarkStopped is called by the scheduler when the VU goroutine exits.
func (vu *VirtualUser) MarkStopped() {
	vu.state.Store(int32(VUStateStopped))
	select {
	case <-vu.doneCh:
	default:
		close(vu.doneCh)
	}
}

// WaitForStop blocks until the VU has fully stopped or the timeout elapses.
func (vu *VirtualUser) WaitForStop(timeout time.Duration) bool {
	select {
	case <-vu.doneCh:
		return true
	case <-time.After(timeout):
		return false
	}
}
