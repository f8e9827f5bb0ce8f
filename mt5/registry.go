package mt5

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIDConflict means an id was about to be re-associated with a different
// counterpart. This is a protocol invariant violation and is surfaced to the
// caller; the existing mappings are left untouched.
var ErrIDConflict = errors.New("identifier conflict")

// Registry is the bidirectional map between client-assigned and
// venue-assigned order ids. Entries are inserted at most once per session
// and never removed.
type Registry struct {
	mu       sync.RWMutex
	byClient map[string]string
	byVenue  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byClient: make(map[string]string),
		byVenue:  make(map[string]string),
	}
}

// Register inserts both directions of the pair. Re-registering the identical
// pair is a no-op; a conflicting pair fails with ErrIDConflict without
// mutating existing state.
func (r *Registry) Register(clientID, venueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.byClient[clientID]; ok && v != venueID {
		return fmt.Errorf("client %q already mapped to venue %q, refusing %q: %w",
			clientID, v, venueID, ErrIDConflict)
	}
	if c, ok := r.byVenue[venueID]; ok && c != clientID {
		return fmt.Errorf("venue %q already mapped to client %q, refusing %q: %w",
			venueID, c, clientID, ErrIDConflict)
	}

	r.byClient[clientID] = venueID
	r.byVenue[venueID] = clientID
	return nil
}

// VenueFor resolves a client id to its venue id.
func (r *Registry) VenueFor(clientID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byClient[clientID]
	return v, ok
}

// ClientFor resolves a venue id to its client id.
func (r *Registry) ClientFor(venueID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byVenue[venueID]
	return c, ok
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byClient)
}
