package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically expires idle sessions.
type Sweeper struct {
	manager  *Manager
	logger   *zerolog.Logger
	interval time.Duration
	maxIdle  time.Duration
	stopChan chan struct{}
}

// NewSweeper creates a sweeper that removes sessions idle for longer than
// maxIdle, checking every interval.
func NewSweeper(manager *Manager, logger *zerolog.Logger, interval, maxIdle time.Duration) *Sweeper {
	return &Sweeper{
		manager:  manager,
		logger:   logger,
		interval: interval,
		maxIdle:  maxIdle,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic expiry sweep
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("maxIdle", s.maxIdle).
		Msg("Starting session sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Session sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Session sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if removed := s.manager.Sweep(s.maxIdle); removed > 0 {
				s.logger.Info().
					Int("removed", removed).
					Int("remaining", s.manager.Len()).
					Msg("Expired idle sessions")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *Sweeper) Stop() {
	close(s.stopChan)
}
