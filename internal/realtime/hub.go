package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// subscriberBuffer is the per-subscriber event queue. A subscriber that
// falls this far behind is evicted rather than allowed to stall delivery.
const subscriberBuffer = 256

// Event is the envelope pushed to overlay and admin subscribers.
type Event struct {
	Type      string `json:"type"`
	AuctionID string `json:"auction_id"`
	Data      any    `json:"data,omitempty"`
}

// Subscriber is one registered listener for an auction's events. Events
// arrive on Events() in the order they were published; the channel is
// closed on unsubscribe or eviction.
type Subscriber struct {
	ID        string
	AuctionID string
	events    chan Event
}

// Events returns the subscriber's ordered event stream.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Hub maintains auction_id -> set of subscribers and fans events out to
// them. It owns only the subscriber table, never auction data. Delivery to
// one subscriber cannot block or abort delivery to another: sends are
// non-blocking and a subscriber with a full buffer is dropped while the
// rest still receive the event.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Subscriber
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[string]map[string]*Subscriber),
		logger: logger,
	}
}

// Subscribe registers a new subscriber for an auction.
func (h *Hub) Subscribe(auctionID string) *Subscriber {
	sub := &Subscriber{
		ID:        uuid.New().String(),
		AuctionID: auctionID,
		events:    make(chan Event, subscriberBuffer),
	}
	h.mu.Lock()
	room := h.rooms[auctionID]
	if room == nil {
		room = make(map[string]*Subscriber)
		h.rooms[auctionID] = room
	}
	room[sub.ID] = sub
	h.mu.Unlock()
	h.logger.Debug("subscriber joined",
		zap.String("subscriber_id", sub.ID),
		zap.String("auction_id", auctionID))
	return sub
}

// Unsubscribe removes the subscriber and closes its event stream.
// Idempotent; removing the last subscriber prunes the auction's room.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

// Send queues one event for a single subscriber, used for the one-time
// initial snapshot right after registration.
func (h *Hub) Send(sub *Subscriber, eventType string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room := h.rooms[sub.AuctionID]
	if room == nil || room[sub.ID] == nil {
		return
	}
	select {
	case sub.events <- Event{Type: eventType, AuctionID: sub.AuctionID, Data: data}:
	default:
	}
}

// Publish delivers the event to every current subscriber of the auction in
// publish order. Subscribers whose buffer is full are evicted afterwards.
func (h *Hub) Publish(auctionID, eventType string, data any) {
	ev := Event{Type: eventType, AuctionID: auctionID, Data: data}

	var stalled []*Subscriber
	h.mu.RLock()
	for _, sub := range h.rooms[auctionID] {
		select {
		case sub.events <- ev:
		default:
			stalled = append(stalled, sub)
		}
	}
	h.mu.RUnlock()

	if len(stalled) == 0 {
		return
	}
	h.mu.Lock()
	for _, sub := range stalled {
		h.logger.Warn("subscriber evicted: send buffer full",
			zap.String("subscriber_id", sub.ID),
			zap.String("auction_id", auctionID))
		h.removeLocked(sub)
	}
	h.mu.Unlock()
}

// DropRoom unsubscribes everyone listening to an auction. Called when the
// auction is deleted.
func (h *Hub) DropRoom(auctionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.rooms[auctionID] {
		h.removeLocked(sub)
	}
}

// SubscriberCount returns the number of current subscribers for an auction.
func (h *Hub) SubscriberCount(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[auctionID])
}

// removeLocked deletes the subscriber and closes its channel exactly once.
// Caller holds h.mu.
func (h *Hub) removeLocked(sub *Subscriber) {
	room := h.rooms[sub.AuctionID]
	if room == nil {
		return
	}
	if _, ok := room[sub.ID]; !ok {
		return
	}
	delete(room, sub.ID)
	close(sub.events)
	if len(room) == 0 {
		delete(h.rooms, sub.AuctionID)
	}
	h.logger.Debug("subscriber left",
		zap.String("subscriber_id", sub.ID),
		zap.String("auction_id", sub.AuctionID))
}
