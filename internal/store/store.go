package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitea.jw6.us/james/vcardedit/internal/metrics"
)

const (
	defaultTTL         = 2 * time.Hour
	defaultMaxSessions = 1000
)

// Options tunes the in-memory session store.
type Options struct {
	TTL         time.Duration
	MaxSessions int
}

// Store aggregates repositories backed by process memory.
type Store struct {
	Sessions SessionRepository
}

// New wires the in-memory repositories.
func New(opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	return &Store{
		Sessions: newMemSessionRepo(opts.TTL, opts.MaxSessions, time.Now),
	}
}

// HealthCheck verifies that the session repository answers.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeStore(ctx, "store.healthcheck")()
	_, err := s.Sessions.Count(ctx)
	return err
}

// RunJanitor purges expired sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			purged, err := s.Sessions.PurgeExpired(ctx, now)
			if err != nil {
				zap.L().Warn("Session purge failed", zap.Error(err))
				continue
			}
			if purged > 0 {
				zap.L().Debug("Expired sessions purged", zap.Int("count", purged))
			}
			if n, err := s.Sessions.Count(ctx); err == nil {
				metrics.SetActiveSessions(n)
			}
		}
	}
}
