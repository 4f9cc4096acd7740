package auctions

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler is the single countdown clock: one tick per second applied to
// every active auction through the registry's per-auction lock. Broadcast
// happens after each commit through the hub's buffered channels, so a slow
// subscriber can never stall the loop. One auction's failure is logged and
// the loop continues for the rest.
type Scheduler struct {
	engine   *Service
	interval time.Duration
	logger   *zap.Logger
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates the countdown scheduler. interval <= 0 means 1s.
func NewScheduler(engine *Service, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the tick loop. Call Stop to release it. A stopped
// scheduler can be started again.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, done)
	s.logger.Info("countdown scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts the tick loop and waits for it to drain.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	<-s.done
	s.done = nil
	s.logger.Info("countdown scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range s.engine.registry.IDs() {
				if err := s.engine.Tick(id); err != nil {
					// deleted between the scan and the tick: a no-op
					if errors.Is(err, ErrNotFound) {
						continue
					}
					s.logger.Warn("tick failed", zap.String("auction_id", id), zap.Error(err))
				}
			}
		}
	}
}
