package session

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrNotFound is returned by Get when no session exists for the id
var ErrNotFound = errors.New("session not found")

const (
	DefaultTimeout       = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Store keeps sessions by conversation id. Implementations are safe for
// concurrent use and hand out copies, so callers must Save to persist changes.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Sweep removes every session idle for longer than the store timeout as
	// of now and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// Option configures a store
type Option func(*options)

type options struct {
	timeout       time.Duration
	sweepInterval time.Duration
	clock         func() time.Time
}

func defaultOptions() options {
	return options{
		timeout:       DefaultTimeout,
		sweepInterval: DefaultSweepInterval,
		clock:         time.Now,
	}
}

// WithTimeout sets the idle timeout after which a session is evicted
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSweepInterval sets how often the background sweep runs. Zero or a
// negative value disables the background sweep; Sweep can still be called.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		o.sweepInterval = d
	}
}

// WithClock overrides the time source used by the background sweep
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

func expired(s *Session, now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// runSweeper calls st.Sweep every interval until ctx is cancelled, then
// closes done.
func runSweeper(ctx context.Context, st Store, o options, done chan<- struct{}) {
	defer close(done)
	if o.sweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(o.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.Sweep(ctx, o.clock())
			if err != nil {
				slog.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("evicted idle sessions", "count", n)
			}
		}
	}
}
