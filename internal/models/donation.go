package models

import "time"

// Donation is a single recorded gift from a viewer. Immutable once recorded.
type Donation struct {
	Username       string    `json:"username"`
	Amount         float64   `json:"amount"`
	GiftName       string    `json:"gift_name,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// DonorStats is the cumulative total for one donor within one auction.
// The profile picture tracks the most recent non-empty value seen.
type DonorStats struct {
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	TotalAmount    float64   `json:"total_amount"`
	DonationCount  int       `json:"donation_count"`
	LastDonation   time.Time `json:"last_donation"`
}
