package auctions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/streamcraft/auction-backend/internal/livesource"
	"github.com/streamcraft/auction-backend/internal/models"
)

// Broadcaster is what the engine needs from the realtime hub: ordered
// fan-out of events to an auction's subscribers, and dropping the whole
// subscriber set when the auction is deleted. Implemented by realtime.Hub.
type Broadcaster interface {
	Publish(auctionID, eventType string, data any)
	DropRoom(auctionID string)
}

// Snapshot is the external view of one auction.
type Snapshot struct {
	ID               string               `json:"id"`
	Streamer         string               `json:"streamer"`
	Title            string               `json:"title"`
	TimerMinutes     int                  `json:"timer_minutes"`
	Status           models.AuctionStatus `json:"status"`
	OverlayURL       string               `json:"overlay_url"`
	CreatedAt        time.Time            `json:"created_at"`
	StartedAt        *time.Time           `json:"started_at,omitempty"`
	EndedAt          *time.Time           `json:"ended_at,omitempty"`
	RemainingSeconds *int                 `json:"remaining_seconds,omitempty"`
}

// CreateParams are the fields accepted when creating an auction.
// ID is optional; a uuid is generated when it is empty.
type CreateParams struct {
	ID           string
	Streamer     string
	Title        string
	TimerMinutes int
}

// UpdateParams are the draft-only editable fields. Nil leaves a field as is.
type UpdateParams struct {
	Streamer     *string
	Title        *string
	TimerMinutes *int
}

// Service is the auction engine: it composes the registry, the broadcast
// hub and the live gift source into the lifecycle commands the API layer
// calls. Every mutation commits through the registry first; events and
// live-source calls happen after, outside the auction's lock.
type Service struct {
	registry *Registry
	hub      Broadcaster
	source   livesource.Source
	logger   *zap.Logger
	baseURL  string
	topN     int
}

// NewService wires the engine. topN <= 0 falls back to DefaultTopDonors.
func NewService(registry *Registry, hub Broadcaster, source livesource.Source, baseURL string, topN int, logger *zap.Logger) *Service {
	if topN <= 0 {
		topN = DefaultTopDonors
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		hub:      hub,
		source:   source,
		logger:   logger,
		baseURL:  baseURL,
		topN:     topN,
	}
}

// Create registers a new draft auction.
func (s *Service) Create(p CreateParams) (Snapshot, error) {
	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	a := models.NewAuction(id, p.Streamer, p.Title, p.TimerMinutes)
	if err := s.registry.Add(a); err != nil {
		return Snapshot{}, err
	}
	s.logger.Info("auction created",
		zap.String("auction_id", id),
		zap.String("streamer", p.Streamer),
		zap.Int("timer_minutes", p.TimerMinutes))
	return s.toSnapshot(a.Clone()), nil
}

// Update edits a draft auction.
func (s *Service) Update(id string, p UpdateParams) (Snapshot, error) {
	var out models.Auction
	err := s.registry.With(id, func(st *auctionState) error {
		if err := st.Auction.Update(p.Title, p.Streamer, p.TimerMinutes); err != nil {
			return err
		}
		out = st.Auction.Clone()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return s.toSnapshot(out), nil
}

// Start activates the auction, creates its ledger and attaches the live
// source. The attach is best effort and runs after the commit: a source
// failure never rolls back the transition.
func (s *Service) Start(id string) (Snapshot, error) {
	var out models.Auction
	err := s.registry.With(id, func(st *auctionState) error {
		if err := st.Auction.Start(); err != nil {
			return err
		}
		if st.Ledger == nil {
			st.Ledger = NewLedger(id)
		}
		out = st.Auction.Clone()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.publishStatus(id, out.Status)
	streamer := out.Streamer
	go func() {
		if err := s.source.Attach(context.Background(), streamer, id, s.giftFunc(id)); err != nil {
			s.logger.Warn("live source attach failed, auction continues without gifts",
				zap.String("auction_id", id),
				zap.String("streamer", streamer),
				zap.Error(err))
		}
	}()
	s.logger.Info("auction started", zap.String("auction_id", id), zap.String("streamer", streamer))
	return s.toSnapshot(out), nil
}

// Pause freezes the countdown.
func (s *Service) Pause(id string) (Snapshot, error) {
	return s.transition(id, func(a *models.Auction) error { return a.Pause() })
}

// Resume continues a paused auction.
func (s *Service) Resume(id string) (Snapshot, error) {
	return s.transition(id, func(a *models.Auction) error { return a.Resume() })
}

// Stop ends the auction manually and detaches the live source.
func (s *Service) Stop(id string) (Snapshot, error) {
	snap, err := s.transition(id, func(a *models.Auction) error { return a.Stop() })
	if err != nil {
		return Snapshot{}, err
	}
	go s.source.Detach(id)
	s.logger.Info("auction stopped", zap.String("auction_id", id))
	return snap, nil
}

// AdjustTime shifts the countdown by delta seconds. If the shift drives an
// active auction to zero it completes, and subscribers see the time update
// followed by the status change.
func (s *Service) AdjustTime(id string, delta int) (Snapshot, error) {
	var out models.Auction
	err := s.registry.With(id, func(st *auctionState) error {
		if err := st.Auction.AdjustTime(delta); err != nil {
			return err
		}
		out = st.Auction.Clone()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.publishTime(id, out.RemainingSeconds)
	if out.Status == models.StatusCompleted {
		s.publishStatus(id, out.Status)
	}
	return s.toSnapshot(out), nil
}

// Tick applies one second of countdown to an auction. Non-active auctions
// are left untouched. Called by the scheduler for every registered id; a
// concurrently deleted auction surfaces as ErrNotFound, which the scheduler
// treats as a no-op.
func (s *Service) Tick(id string) error {
	var (
		out    models.Auction
		ticked bool
	)
	err := s.registry.With(id, func(st *auctionState) error {
		if st.Auction.Status != models.StatusActive {
			return nil
		}
		if err := st.Auction.AdjustTime(-1); err != nil {
			return err
		}
		out = st.Auction.Clone()
		ticked = true
		return nil
	})
	if err != nil || !ticked {
		return err
	}
	s.publishTime(id, out.RemainingSeconds)
	if out.Status == models.StatusCompleted {
		s.publishStatus(id, out.Status)
		s.logger.Info("auction completed", zap.String("auction_id", id))
	}
	return nil
}

// Delete discards the auction, its ledger and its subscribers, and detaches
// the live source. Legal from any status.
func (s *Service) Delete(id string) error {
	if !s.registry.Delete(id) {
		return ErrNotFound
	}
	go s.source.Detach(id)
	s.hub.DropRoom(id)
	s.logger.Info("auction deleted", zap.String("auction_id", id))
	return nil
}

// Get returns a snapshot of one auction.
func (s *Service) Get(id string) (Snapshot, error) {
	a, err := s.registry.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.toSnapshot(a), nil
}

// List returns snapshots of every auction.
func (s *Service) List() []Snapshot {
	auctions := s.registry.List()
	out := make([]Snapshot, len(auctions))
	for i, a := range auctions {
		out[i] = s.toSnapshot(a)
	}
	return out
}

// TopDonors returns the current ranking. An auction that never started has
// no ledger yet and reports an empty ranking.
func (s *Service) TopDonors(id string, limit int) (LedgerSnapshot, error) {
	if limit <= 0 {
		limit = s.topN
	}
	var snap LedgerSnapshot
	err := s.registry.With(id, func(st *auctionState) error {
		if st.Ledger == nil {
			snap = LedgerSnapshot{AuctionID: id, TopDonors: []RankedDonor{}}
			return nil
		}
		snap = st.Ledger.Snapshot(limit)
		return nil
	})
	if err != nil {
		return LedgerSnapshot{}, err
	}
	return snap, nil
}

// HandleGift records one gift from the live source. Gifts for auctions that
// are not active, unknown ids and malformed payloads are logged and dropped;
// the source keeps emitting after an auction ends and that is not an error.
func (s *Service) HandleGift(id, donor string, amount float64, giftName, avatarURL string) {
	if donor == "" || amount <= 0 {
		s.logger.Warn("gift dropped: malformed payload",
			zap.String("auction_id", id),
			zap.String("donor", donor),
			zap.Float64("amount", amount))
		return
	}
	var (
		snap     LedgerSnapshot
		recorded bool
	)
	err := s.registry.With(id, func(st *auctionState) error {
		if st.Auction.Status != models.StatusActive || st.Ledger == nil {
			s.logger.Info("gift dropped: auction not active",
				zap.String("auction_id", id),
				zap.String("status", string(st.Auction.Status)),
				zap.String("donor", donor),
				zap.Float64("amount", amount))
			return nil
		}
		if _, err := st.Ledger.Record(donor, amount, giftName, avatarURL); err != nil {
			return fmt.Errorf("record donation: %w", err)
		}
		snap = st.Ledger.Snapshot(s.topN)
		recorded = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("gift dropped: auction gone", zap.String("auction_id", id))
			return
		}
		s.logger.Warn("gift dropped", zap.String("auction_id", id), zap.Error(err))
		return
	}
	if !recorded {
		return
	}
	s.logger.Info("donation recorded",
		zap.String("auction_id", id),
		zap.String("donor", donor),
		zap.Float64("amount", amount),
		zap.String("gift", giftName))
	s.hub.Publish(id, "donation_update", snap)
}

// InitialData is the payload sent to a subscriber right after it registers.
func (s *Service) InitialData(id string) (any, error) {
	a, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"streamer":          a.Streamer,
		"title":             a.Title,
		"status":            a.Status,
		"remaining_seconds": a.RemainingSeconds,
		"timer_minutes":     a.TimerMinutes,
	}, nil
}

func (s *Service) giftFunc(id string) livesource.GiftFunc {
	return func(donor string, amount float64, giftName, avatarURL string) {
		s.HandleGift(id, donor, amount, giftName, avatarURL)
	}
}

// transition runs a pure state-machine command and publishes the resulting
// status to subscribers.
func (s *Service) transition(id string, cmd func(a *models.Auction) error) (Snapshot, error) {
	var out models.Auction
	err := s.registry.With(id, func(st *auctionState) error {
		if err := cmd(st.Auction); err != nil {
			return err
		}
		out = st.Auction.Clone()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.publishStatus(id, out.Status)
	return s.toSnapshot(out), nil
}

func (s *Service) publishStatus(id string, status models.AuctionStatus) {
	s.hub.Publish(id, "status_change", map[string]any{"status": status})
}

func (s *Service) publishTime(id string, remaining *int) {
	seconds := 0
	if remaining != nil {
		seconds = *remaining
	}
	s.hub.Publish(id, "time_update", map[string]any{"remaining_seconds": seconds})
}

func (s *Service) toSnapshot(a models.Auction) Snapshot {
	return Snapshot{
		ID:               a.ID,
		Streamer:         a.Streamer,
		Title:            a.Title,
		TimerMinutes:     a.TimerMinutes,
		Status:           a.Status,
		OverlayURL:       fmt.Sprintf("%s/overlay/auction/%s", s.baseURL, a.ID),
		CreatedAt:        a.CreatedAt,
		StartedAt:        a.StartedAt,
		EndedAt:          a.EndedAt,
		RemainingSeconds: a.RemainingSeconds,
	}
}
