package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultReaperInterval = 5 * time.Minute

// ReaperService evicts idle sessions on a periodic schedule. A TTL of zero
// disables it entirely: sessions then live until deleted or shutdown.
type ReaperService struct {
	registry *SessionRegistry
	ttl      time.Duration
	logger   *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewReaperService(registry *SessionRegistry, ttl time.Duration, logger *zap.Logger) *ReaperService {
	return &ReaperService{
		registry: registry,
		ttl:      ttl,
		logger:   logger,
		interval: defaultReaperInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *ReaperService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the reaper in a background goroutine.
func (s *ReaperService) Start() {
	if s.ttl <= 0 {
		s.logger.Info("session reaper disabled")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session reaper started",
			zap.Duration("interval", s.interval),
			zap.Duration("ttl", s.ttl),
		)

		for {
			select {
			case <-ticker.C:
				if n := s.registry.evictIdle(s.ttl); n > 0 {
					s.logger.Info("evicted idle sessions",
						zap.Int("evicted", n),
						zap.Int("remaining", s.registry.Len()),
					)
				}
			case <-s.stopCh:
				s.logger.Info("session reaper stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the reaper.
func (s *ReaperService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
