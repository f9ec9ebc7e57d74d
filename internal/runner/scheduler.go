package runner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/docload/docload/internal/metrics"
	"github.com/docload/docload/internal/workload"
)

// ExecutorFactory builds one executor per virtual user, so every VU gets its
// own database connection.
type ExecutorFactory func(vuID int) Executor

// Options configures a load run.
type Options struct {
	// Users is the number of concurrent virtual users.
	Users int

	// Duration bounds the run; zero means run until the context is
	// cancelled.
	Duration time.Duration

	// Seed makes per-VU task selection reproducible; zero picks a
	// time-based seed.
	Seed int64

	// StopTimeout bounds the wait for VUs to finish their final
	// iteration. Defaults to 10s.
	StopTimeout time.Duration
}

// Scheduler spawns virtual users over a set of workloads and runs them until
// the duration elapses or the context is cancelled. Workloads are assigned
// to VUs round-robin.
type Scheduler struct {
	workloads []*workload.Workload
	factory   ExecutorFactory
	metrics   *metrics.Engine
	log       *zap.Logger
	opts      Options

	mu  sync.Mutex
	vus []*VirtualUser
	wg  sync.WaitGroup
}

// NewScheduler creates a scheduler.
func NewScheduler(workloads []*workload.Workload, factory ExecutorFactory, engine *metrics.Engine, log *zap.Logger, opts Options) *Scheduler {
	if opts.Users < 1 {
		opts.Users = 1
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 10 * time.Second
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Scheduler{
		workloads: workloads,
		factory:   factory,
		metrics:   engine,
		log:       log,
		opts:      opts,
	}
}

// Run blocks until the run finishes. It always stops VUs and waits for them
// before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.workloads) == 0 {
		return nil
	}
	runCtx := ctx
	var cancel context.CancelFunc
	if s.opts.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.opts.Duration)
		defer cancel()
	}

	s.mu.Lock()
	for id := 1; id <= s.opts.Users; id++ {
		wl := s.workloads[(id-1)%len(s.workloads)]
		vu := NewVirtualUser(id, wl, s.factory(id), s.metrics, s.opts.Seed)
		s.vus = append(s.vus, vu)
		s.wg.Add(1)
		go s.runVU(runCtx, vu)
	}
	s.metrics.SetActiveWorkers(len(s.vus))
	s.mu.Unlock()

	s.log.Info("load started",
		zap.Int("users", s.opts.Users),
		zap.Int("workloads", len(s.workloads)),
		zap.Duration("duration", s.opts.Duration))

	<-runCtx.Done()
	s.Stop()
	s.wg.Wait()
	s.metrics.SetActiveWorkers(0)

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Stop asks every VU to stop after its current iteration.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, vu := range s.vus {
		vu.RequestStop()
	}
}

// VUs returns the scheduled virtual users.
func (s *Scheduler) VUs() []*VirtualUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*VirtualUser, len(s.vus))
	copy(out, s.vus)
	return out
}

func (s *Scheduler) runVU(ctx context.Context, vu *VirtualUser) {
	defer s.wg.Done()
	defer vu.MarkStopped()
	defer func() {
		// Disconnect in the background with a fresh context; the run
		// context is usually already cancelled here.
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		vu.exec.Disconnect(dctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-vu.stopCh:
			return
		default:
		}
		if err := vu.RunIteration(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("vu iteration aborted", zap.Int("vu", vu.ID), zap.Error(err))
			return
		}
	}
}
