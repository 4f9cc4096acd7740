package livesource

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// gift value is count × unit diamond value, the way the live platform
// prices stacked gifts.
type giftKind struct {
	name     string
	diamonds float64
}

var simGifts = []giftKind{
	{"Rose", 1},
	{"Finger Heart", 5},
	{"Doughnut", 30},
	{"Hand Hearts", 100},
	{"Galaxy", 1000},
}

var simDonors = []string{"luna_live", "maxpower", "gift_goblin", "ava.r", "nonstop_nico", "pixelpau"}

// Simulator is a Source that emits pseudo-random gifts on an interval.
// One emitting goroutine per attached auction, cancelled on Detach.
type Simulator struct {
	interval time.Duration
	logger   *zap.Logger
	mu       sync.Mutex
	streams  map[string]context.CancelFunc
}

// NewSimulator creates a gift simulator. interval <= 0 defaults to 3s.
func NewSimulator(interval time.Duration, logger *zap.Logger) *Simulator {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		interval: interval,
		logger:   logger,
		streams:  make(map[string]context.CancelFunc),
	}
}

// Attach starts emitting gifts for the auction until Detach or ctx cancel.
func (s *Simulator) Attach(ctx context.Context, streamer, auctionID string, onGift GiftFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streams[auctionID]; ok {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.streams[auctionID] = cancel
	go s.run(runCtx, streamer, auctionID, onGift)
	s.logger.Info("simulator attached",
		zap.String("streamer", streamer),
		zap.String("auction_id", auctionID))
	return nil
}

// Detach stops the emitter for the auction. Idempotent.
func (s *Simulator) Detach(auctionID string) {
	s.mu.Lock()
	cancel := s.streams[auctionID]
	delete(s.streams, auctionID)
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		s.logger.Info("simulator detached", zap.String("auction_id", auctionID))
	}
}

func (s *Simulator) run(ctx context.Context, streamer, auctionID string, onGift GiftFunc) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			donor := simDonors[rand.Intn(len(simDonors))]
			gift := simGifts[rand.Intn(len(simGifts))]
			count := 1 + rand.Intn(5)
			amount := float64(count) * gift.diamonds
			onGift(donor, amount, gift.name, "")
		}
	}
}
