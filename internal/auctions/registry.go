package auctions

import (
	"sync"

	"github.com/streamcraft/auction-backend/internal/models"
)

// auctionState is what a registry mutation operates on: the auction entity
// and its ledger. The ledger is nil until the auction starts.
type auctionState struct {
	Auction *models.Auction
	Ledger  *Ledger
}

type entry struct {
	mu      sync.Mutex
	state   auctionState
	deleted bool
}

// Registry owns every live auction and its ledger. All mutation for a given
// auction id passes through With, which holds that auction's lock for the
// duration of the closure, so a scheduler tick, an API command and an
// incoming gift for the same auction can never interleave. Different ids
// lock independently; there is no global mutation lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Add registers a new auction. Fails if the id is already taken.
func (r *Registry) Add(a *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[a.ID]; ok {
		return ErrAlreadyExists
	}
	r.entries[a.ID] = &entry{state: auctionState{Auction: a}}
	return nil
}

// With runs fn under the auction's lock and returns its error. Returns
// ErrNotFound for unknown ids, and for ids deleted while waiting on the
// lock, so a delete racing an in-flight mutation lands strictly before or
// strictly after it.
func (r *Registry) With(id string, fn func(st *auctionState) error) error {
	r.mu.RLock()
	e := r.entries[id]
	r.mu.RUnlock()
	if e == nil {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrNotFound
	}
	return fn(&e.state)
}

// Delete removes the auction and its ledger. Safe to call concurrently with
// a mutation for the same id: the entry lock serializes the two.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if e == nil {
		return false
	}
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	return true
}

// Get returns a copy of the auction.
func (r *Registry) Get(id string) (models.Auction, error) {
	var out models.Auction
	err := r.With(id, func(st *auctionState) error {
		out = st.Auction.Clone()
		return nil
	})
	return out, err
}

// IDs returns the ids currently registered. The set may change before the
// caller acts on it; With tolerates that.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// List returns copies of every auction.
func (r *Registry) List() []models.Auction {
	ids := r.IDs()
	out := make([]models.Auction, 0, len(ids))
	for _, id := range ids {
		if a, err := r.Get(id); err == nil {
			out = append(out, a)
		}
	}
	return out
}
