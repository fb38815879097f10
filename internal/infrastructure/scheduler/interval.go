package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"ArticlesHarmonizer/internal/ports"
)

// ErrInvalidInterval is returned by Start when the interval is not positive.
var ErrInvalidInterval = errors.New("scheduler interval must be positive")

// IntervalScheduler runs a job once at start and then every interval, one run at a time.
type IntervalScheduler struct {
	interval time.Duration
	location *time.Location

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; trigger times are reported in loc (UTC when nil).
func NewIntervalScheduler(interval time.Duration, loc *time.Location) *IntervalScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &IntervalScheduler{interval: interval, location: loc}
}

// Start launches the ticking goroutine. Calling Start on a running scheduler is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if s.interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		job(time.Now().In(s.location))
		for {
			select {
			case t := <-ticker.C:
				// a tick queued while a long job ran is dropped if we were stopped meanwhile
				select {
				case <-stop:
					return
				case <-ctx.Done():
					return
				default:
				}
				job(t.In(s.location))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker and waits for an in-flight job until ctx expires.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
