// Package scheduler evicts stale extractions from the key/value store.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultMaxAge   = 30 * time.Minute
)

// Store is the part of the key/value store the janitor touches.
type Store interface {
	ExtractionTime(ctx context.Context) (time.Time, bool, error)
	RemoveExtraction(ctx context.Context) error
}

// Ticker is the subset of *time.Ticker the janitor needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock abstracts wall time so tests can drive the janitor.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

type Option func(*Janitor)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(j *Janitor) { j.clock = c }
}

// WithInterval sets how often the store is checked.
func WithInterval(d time.Duration) Option {
	return func(j *Janitor) {
		if d > 0 {
			j.interval = d
		}
	}
}

// WithMaxAge sets how old an extraction may get before it is removed.
func WithMaxAge(d time.Duration) Option {
	return func(j *Janitor) {
		if d > 0 {
			j.maxAge = d
		}
	}
}

// Janitor periodically removes the stored extraction once it is older than
// maxAge. Only one sweep loop runs at a time.
type Janitor struct {
	store    Store
	clock    Clock
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Janitor {
	j := &Janitor{
		store:    store,
		clock:    RealClock,
		interval: DefaultInterval,
		maxAge:   DefaultMaxAge,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Start launches the sweep loop. It returns an error if already running.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return errors.New("janitor is already running")
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.done = make(chan struct{})

	j.logger.Debug("Janitor starting", "interval", j.interval, "max_age", j.maxAge)

	ticker := j.clock.NewTicker(j.interval)
	go j.run(ctx, ticker, j.stopCh, j.done)

	return nil
}

// Stop ends the sweep loop and waits for it to exit. Calling Stop on a
// janitor that is not running is a no-op.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	close(j.stopCh)
	done := j.done
	j.mu.Unlock()

	<-done
	j.logger.Debug("Janitor stopped")
}

func (j *Janitor) run(ctx context.Context, ticker Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C():
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error("Failed to sweep stored extraction", "error", err)
			}
		}
	}
}

// Sweep removes the stored extraction if it has expired. It reports whether
// anything was removed.
func (j *Janitor) Sweep(ctx context.Context) (bool, error) {
	at, ok, err := j.store.ExtractionTime(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read extraction time: %w", err)
	}
	if !ok {
		return false, nil
	}

	age := j.clock.Now().Sub(at)
	if age <= j.maxAge {
		return false, nil
	}

	if err := j.store.RemoveExtraction(ctx); err != nil {
		return false, fmt.Errorf("failed to remove expired extraction: %w", err)
	}
	j.logger.Info("Removed expired extraction", "age", age.Round(time.Second))
	return true, nil
}
