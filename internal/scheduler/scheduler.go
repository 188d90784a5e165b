package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is one periodic pass. Exactly one of Every or DailyAt must be set:
// Every runs on a fixed interval; DailyAt ("HH:MM", server-local) runs once
// per calendar day, guarded by an idempotency key of job id + date so a
// re-fired tick never repeats a day's pass.
type Job struct {
	ID      string
	Every   time.Duration
	DailyAt string
	Run     func(ctx context.Context, now time.Time)
}

// Scheduler drives the periodic notification passes. The last-run guards are
// explicit per-instance state behind the mutex, not package globals.
type Scheduler struct {
	mu       sync.Mutex
	jobs     []Job
	ranDay   map[string]string
	lastRun  map[string]time.Time
	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func New(jobs []Job) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		ranDay:   make(map[string]string),
		lastRun:  make(map[string]time.Time),
		interval: time.Minute,
		now:      time.Now,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx, s.now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	for _, job := range s.jobs {
		if !s.claim(job, now) {
			continue
		}
		slog.Debug("scheduler pass starting", "job", job.ID)
		job.Run(ctx, now)
	}
}

// claim decides whether the job is due and records the run under the mutex,
// so a slow pass can never be double-claimed by the next tick.
func (s *Scheduler) claim(job Job, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.DailyAt != "" {
		due, err := dailyDue(job.DailyAt, now)
		if err != nil {
			slog.Error("invalid job schedule", "job", job.ID, "at", job.DailyAt, "error", err)
			return false
		}
		day := now.Format("2006-01-02")
		if !due || s.ranDay[job.ID] == day {
			return false
		}
		s.ranDay[job.ID] = day
		return true
	}

	if job.Every <= 0 {
		return false
	}
	last, ok := s.lastRun[job.ID]
	if ok && now.Sub(last) < job.Every {
		return false
	}
	s.lastRun[job.ID] = now
	return true
}

// dailyDue reports whether now has passed today's at ("HH:MM") mark.
func dailyDue(at string, now time.Time) (bool, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(at, "%d:%d", &hh, &mm); err != nil {
		return false, err
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return false, fmt.Errorf("out of range: %s", at)
	}
	mark := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
	return !now.Before(mark), nil
}
