// Package livesource defines the port to the live gift-event source
// (the platform the broadcaster streams on) and ships a simulator for
// development. The real connector's payload parsing and reconnection
// logic live behind the Source interface; the engine only sees gifts
// with a positive numeric amount.
package livesource

import "context"

// GiftFunc receives one gift event: the donor's display name, the total
// coin value of the gift, the gift's label and an optional avatar URL.
// It may be invoked from arbitrary goroutines, arbitrarily often, and
// possibly after the owning auction has ended.
type GiftFunc func(donor string, amount float64, giftName, avatarURL string)

// Source attaches to a broadcaster's live stream and forwards gift events.
// Attach and Detach are best effort: an attach failure must not fail the
// auction lifecycle, it only means gifts will not arrive.
type Source interface {
	Attach(ctx context.Context, streamer, auctionID string, onGift GiftFunc) error
	Detach(auctionID string)
}

// Nop is a Source that never emits gifts. Used when no connector is configured.
type Nop struct{}

func (Nop) Attach(context.Context, string, string, GiftFunc) error { return nil }
func (Nop) Detach(string)                                          {}
