package models

import (
	"fmt"
	"time"
)

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

// Auctions are created in Draft. Pending is accepted as a start state for
// wire compatibility with deployments that create auctions ready-to-start;
// no command here produces it.
const (
	StatusDraft     AuctionStatus = "draft"     // created, still editable
	StatusPending   AuctionStatus = "pending"   // ready to start, no longer editable
	StatusActive    AuctionStatus = "active"    // running, countdown ticking
	StatusPaused    AuctionStatus = "paused"    // countdown frozen
	StatusCompleted AuctionStatus = "completed" // timer reached zero
	StatusStopped   AuctionStatus = "stopped"   // ended manually
)

// Terminal reports whether the status accepts no further commands.
func (s AuctionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusStopped
}

// InvalidTransitionError is returned when a command is illegal for the
// auction's current status. The auction is left unchanged.
type InvalidTransitionError struct {
	Current   AuctionStatus
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s auction in status %q", e.Attempted, e.Current)
}

// Auction is one timed live auction tied to a broadcaster's stream.
// All mutation goes through the methods below; callers are expected to hold
// the registry's per-auction lock.
type Auction struct {
	ID               string         `json:"id"`
	Streamer         string         `json:"streamer"`
	Title            string         `json:"title"`
	TimerMinutes     int            `json:"timer_minutes"`
	Status           AuctionStatus  `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
	RemainingSeconds *int           `json:"remaining_seconds,omitempty"`
}

// NewAuction creates an auction in draft status.
func NewAuction(id, streamer, title string, timerMinutes int) *Auction {
	return &Auction{
		ID:           id,
		Streamer:     streamer,
		Title:        title,
		TimerMinutes: timerMinutes,
		Status:       StatusDraft,
		CreatedAt:    time.Now(),
	}
}

// Update edits the fields that are still open while the auction is a draft.
// Nil pointers leave the field untouched.
func (a *Auction) Update(title, streamer *string, timerMinutes *int) error {
	if a.Status != StatusDraft {
		return &InvalidTransitionError{Current: a.Status, Attempted: "update"}
	}
	if title != nil {
		a.Title = *title
	}
	if streamer != nil {
		a.Streamer = *streamer
	}
	if timerMinutes != nil {
		a.TimerMinutes = *timerMinutes
	}
	return nil
}

// Start activates the auction and arms the countdown.
func (a *Auction) Start() error {
	if a.Status != StatusDraft && a.Status != StatusPending {
		return &InvalidTransitionError{Current: a.Status, Attempted: "start"}
	}
	now := time.Now()
	remaining := a.TimerMinutes * 60
	a.Status = StatusActive
	a.StartedAt = &now
	a.RemainingSeconds = &remaining
	return nil
}

// Pause freezes the countdown of an active auction.
func (a *Auction) Pause() error {
	if a.Status != StatusActive {
		return &InvalidTransitionError{Current: a.Status, Attempted: "pause"}
	}
	a.Status = StatusPaused
	return nil
}

// Resume continues a paused auction.
func (a *Auction) Resume() error {
	if a.Status != StatusPaused {
		return &InvalidTransitionError{Current: a.Status, Attempted: "resume"}
	}
	a.Status = StatusActive
	return nil
}

// Stop ends the auction manually. EndedAt is set once; stopped is terminal
// and the countdown is discarded rather than pinned.
func (a *Auction) Stop() error {
	if a.Status != StatusActive && a.Status != StatusPaused {
		return &InvalidTransitionError{Current: a.Status, Attempted: "stop"}
	}
	now := time.Now()
	a.Status = StatusStopped
	a.EndedAt = &now
	a.RemainingSeconds = nil
	return nil
}

// AdjustTime shifts the remaining time by delta seconds, clamped at zero.
// The one-second scheduler tick is AdjustTime(-1). An active auction whose
// remaining time reaches zero completes; a paused one stays paused even at
// zero and never auto-completes.
func (a *Auction) AdjustTime(delta int) error {
	if a.Status != StatusActive && a.Status != StatusPaused {
		return &InvalidTransitionError{Current: a.Status, Attempted: "adjust time of"}
	}
	remaining := 0
	if a.RemainingSeconds != nil {
		remaining = *a.RemainingSeconds
	}
	remaining += delta
	if remaining < 0 {
		remaining = 0
	}
	a.RemainingSeconds = &remaining
	if remaining == 0 && a.Status == StatusActive {
		a.complete()
	}
	return nil
}

// complete marks the auction finished by timer and pins the countdown at zero.
func (a *Auction) complete() {
	now := time.Now()
	zero := 0
	a.Status = StatusCompleted
	a.EndedAt = &now
	a.RemainingSeconds = &zero
}

// Clone returns a copy safe to hand out once the registry lock is released.
func (a *Auction) Clone() Auction {
	c := *a
	if a.StartedAt != nil {
		t := *a.StartedAt
		c.StartedAt = &t
	}
	if a.EndedAt != nil {
		t := *a.EndedAt
		c.EndedAt = &t
	}
	if a.RemainingSeconds != nil {
		r := *a.RemainingSeconds
		c.RemainingSeconds = &r
	}
	return c
}
