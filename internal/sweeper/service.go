// Package sweeper runs the periodic reclamation pass: expired sessions out
// of memory, stale decisions out of the cache. The schedule is a cron
// expression so operators can tune sweep pressure without a rebuild.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var sweepCronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type SessionStore interface {
	EvictExpired() int
}

type DecisionCache interface {
	Purge() int
}

type Service struct {
	cronExpr string
	sessions SessionStore
	cache    DecisionCache
	logger   *slog.Logger
	now      func() time.Time
}

func New(cronExpr string, sessions SessionStore, cache DecisionCache, logger *slog.Logger) *Service {
	return &Service{
		cronExpr: cronExpr,
		sessions: sessions,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Start(ctx context.Context) error {
	schedule, err := sweepCronParser.Parse(s.cronExpr)
	if err != nil {
		return fmt.Errorf("parse sweep cron expression %q: %w", s.cronExpr, err)
	}
	s.logger.Info("sweeper started", "cron", s.cronExpr)

	for {
		next := schedule.Next(s.now())
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sweeper stopped")
			return nil
		case <-timer.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	evicted := 0
	if s.sessions != nil {
		evicted = s.sessions.EvictExpired()
	}
	purged := 0
	if s.cache != nil {
		purged = s.cache.Purge()
	}
	if evicted > 0 || purged > 0 {
		s.logger.Info("sweep completed", "sessions_evicted", evicted, "decisions_purged", purged)
	}
}
