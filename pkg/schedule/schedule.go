// Package schedule runs named background jobs at fixed intervals.
//
//	s := schedule.New()
//	s.Every(4*time.Minute, "markets.warm", warmMarkets)
//	s.Start(ctx)
//	defer s.Wait()
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agromap/agromap/pkg/logger"
)

// Job is one unit of scheduled work. ctx is cancelled when the scheduler
// stops.
type Job func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	job      Job
}

// Scheduler owns a set of jobs. Each job runs on its own goroutine, so a
// slow run delays only its own next tick and never overlaps itself.
type Scheduler struct {
	mu      sync.Mutex
	entries []entry
	wg      sync.WaitGroup
	started bool
}

func New() *Scheduler { return &Scheduler{} }

// Every registers job to run once at Start and then every interval.
// Registrations after Start are ignored; non-positive intervals too.
func (s *Scheduler) Every(interval time.Duration, name string, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || interval <= 0 {
		return
	}
	s.entries = append(s.entries, entry{name: name, interval: interval, job: job})
}

// Start launches every job. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
	}
	logger.Info("schedule: started", "jobs", len(s.entries))
}

// Wait blocks until every job loop has exited after ctx ended.
func (s *Scheduler) Wait() { s.wg.Wait() }

// List describes the registered jobs, e.g. "markets.warm  [4m0s]".
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.name, e.interval))
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context, e entry) {
	defer s.wg.Done()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		run(ctx, e)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func run(ctx context.Context, e entry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("schedule: job panicked", "job", e.name, "panic", r)
		}
	}()
	start := time.Now()
	if err := e.job(ctx); err != nil {
		logger.Warn("schedule: job failed", "job", e.name, "error", err)
		return
	}
	logger.Debug("schedule: job done", "job", e.name, "duration", time.Since(start))
}
