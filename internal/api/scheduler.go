package api

import (
	"context"
	"log"
	"time"
)

// Scheduler runs a scrape once a day at a fixed hour. It computes the
// next fire time explicitly instead of polling the clock, and has an
// explicit start/stop lifecycle.
type Scheduler struct {
	hour   int
	runner *Runner
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler firing daily at the given local hour
func NewScheduler(hour int, runner *Runner) *Scheduler {
	return &Scheduler{
		hour:   hour,
		runner: runner,
		done:   make(chan struct{}),
	}
}

// NextFireTime returns the next occurrence of the scheduled hour after now
func NextFireTime(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start launches the scheduling loop in the background
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.loop(ctx)
}

// Stop cancels the loop and waits for it to exit
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// NextUpdate returns when the next scheduled run fires
func (s *Scheduler) NextUpdate() time.Time {
	return NextFireTime(time.Now(), s.hour)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	for {
		next := NextFireTime(time.Now(), s.hour)
		log.Printf("Next update scheduled for %s", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		log.Printf("Running scheduled scrape...")
		if err := s.runner.TryRun(ctx); err != nil {
			log.Printf("Scheduled scrape failed: %v", err)
		} else {
			log.Printf("Scheduled scrape complete")
		}
	}
}
