package nonce

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultJanitorInterval is used when NewJanitor is given no interval.
const DefaultJanitorInterval = 5 * time.Minute

// Expirer is a store that can purge its expired entries.
type Expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired entries so stores without native
// expiry don't grow without bound. Any Expirer can be swept, not only
// nonce stores.
type Janitor struct {
	Store    Expirer
	Logger   *slog.Logger
	Interval time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewJanitor creates a janitor. A non-positive interval defaults to
// DefaultJanitorInterval and a nil logger to slog.Default().
func NewJanitor(store Expirer, logger *slog.Logger, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Janitor{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the purge loop in the background until Stop. Starting twice,
// or after Stop, does nothing.
func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started || j.stopped {
		return
	}
	j.started = true
	go j.run()
	j.Logger.Debug("janitor started", "interval", j.Interval)
}

// Stop ends the loop and waits for an in-progress purge. It returns at once
// when the janitor was never started, and is safe to call twice.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if j.stopped {
		j.mu.Unlock()
		return
	}
	j.stopped = true
	close(j.stopCh)
	wait := j.started
	j.mu.Unlock()

	if wait {
		<-j.doneCh
	}
	j.Logger.Debug("janitor stopped")
}

func (j *Janitor) run() {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.purge()
		case <-j.stopCh:
			return
		}
	}
}

func (j *Janitor) purge() {
	n, err := j.Store.DeleteExpired(context.Background())
	if err != nil {
		j.Logger.Error("failed to delete expired entries", "error", err)
		return
	}
	if n > 0 {
		j.Logger.Debug("deleted expired entries", "count", n)
	}
}
