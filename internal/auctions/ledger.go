package auctions

import (
	"sort"
	"time"

	"github.com/streamcraft/auction-backend/internal/models"
)

// DefaultTopDonors is the ranking size used when the caller does not ask
// for a specific limit.
const DefaultTopDonors = 5

// RankedDonor is a donor aggregate with its position in the ranking.
type RankedDonor struct {
	Rank int `json:"rank"`
	models.DonorStats
}

// LedgerSnapshot is the donation payload pushed to overlay subscribers.
type LedgerSnapshot struct {
	AuctionID      string        `json:"auction_id"`
	TopDonors      []RankedDonor `json:"top_donors"`
	TotalDonations float64       `json:"total_donations"`
	TotalDonors    int           `json:"total_donors"`
}

// Ledger aggregates donations for one auction: full history plus per-donor
// totals. It is status-agnostic; the engine gates recording on auction status,
// and the registry serializes access, so the ledger itself holds no lock.
type Ledger struct {
	auctionID string
	donors    map[string]*models.DonorStats
	history   []models.Donation
}

// NewLedger creates an empty ledger for an auction.
func NewLedger(auctionID string) *Ledger {
	return &Ledger{
		auctionID: auctionID,
		donors:    make(map[string]*models.DonorStats),
	}
}

// Record appends a donation and folds it into the donor's aggregate.
// Amount must be positive and the donor name non-empty.
func (l *Ledger) Record(username string, amount float64, giftName, profilePicture string) (models.Donation, error) {
	if username == "" || amount <= 0 {
		return models.Donation{}, ErrInvalidContribution
	}
	d := models.Donation{
		Username:       username,
		Amount:         amount,
		GiftName:       giftName,
		ProfilePicture: profilePicture,
		Timestamp:      time.Now(),
	}
	stats, ok := l.donors[username]
	if !ok {
		stats = &models.DonorStats{Username: username}
		l.donors[username] = stats
	}
	stats.TotalAmount += amount
	stats.DonationCount++
	stats.LastDonation = d.Timestamp
	if profilePicture != "" {
		stats.ProfilePicture = profilePicture
	}
	l.history = append(l.history, d)
	return d, nil
}

// TopDonors returns up to limit donors ordered by total amount descending.
// Ties go to the donor whose latest donation is older, then by name so the
// order is deterministic. The ranking is recomputed on every call.
func (l *Ledger) TopDonors(limit int) []models.DonorStats {
	if limit <= 0 {
		limit = DefaultTopDonors
	}
	out := make([]models.DonorStats, 0, len(l.donors))
	for _, stats := range l.donors {
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		if !out[i].LastDonation.Equal(out[j].LastDonation) {
			return out[i].LastDonation.Before(out[j].LastDonation)
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TotalAmount returns the sum over all donor aggregates.
func (l *Ledger) TotalAmount() float64 {
	var total float64
	for _, stats := range l.donors {
		total += stats.TotalAmount
	}
	return total
}

// DonorCount returns the number of distinct donors.
func (l *Ledger) DonorCount() int {
	return len(l.donors)
}

// DonationCount returns the length of the recorded history.
func (l *Ledger) DonationCount() int {
	return len(l.history)
}

// Snapshot builds the broadcast payload with the current top ranking.
func (l *Ledger) Snapshot(limit int) LedgerSnapshot {
	top := l.TopDonors(limit)
	ranked := make([]RankedDonor, len(top))
	for i, stats := range top {
		ranked[i] = RankedDonor{Rank: i + 1, DonorStats: stats}
	}
	return LedgerSnapshot{
		AuctionID:      l.auctionID,
		TopDonors:      ranked,
		TotalDonations: l.TotalAmount(),
		TotalDonors:    l.DonorCount(),
	}
}
