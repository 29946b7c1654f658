package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ASongADay/internal/ports"
)

// DailyScheduler fires a job once a day at a fixed wall-clock time.
type DailyScheduler struct {
	hour     int
	minute   int
	location *time.Location
	now      func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses an "HH:MM" trigger time in the given location.
func NewDailyScheduler(at string, loc *time.Location) (*DailyScheduler, error) {
	parsed, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid daily trigger %q: %w", at, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{
		hour:     parsed.Hour(),
		minute:   parsed.Minute(),
		location: loc,
		now:      time.Now,
	}, nil
}

// Next returns the first trigger strictly after t.
func (d *DailyScheduler) Next(t time.Time) time.Time {
	local := t.In(d.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start runs job at every trigger until ctx is done or Stop is called.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop, d.done = stop, done

	go func() {
		defer close(done)
		for {
			wait := d.Next(d.now()).Sub(d.now())
			timer := time.NewTimer(wait)
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the timer goroutine and waits for an in-flight job.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

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
