package mt5

import (
	"sync"
	"time"

	"github.com/rustyeddy/mt5bridge/market"
)

// Ledger owns the canonical in-memory record per order. All mutation goes
// through Apply so one logical order-state change happens at a time; callers
// always receive copies, never the stored record.
type Ledger struct {
	mu     sync.Mutex
	orders map[string]*market.Order
}

func NewLedger() *Ledger {
	return &Ledger{orders: make(map[string]*market.Order)}
}

// Put inserts the record if no order exists for its client id yet. The first
// write wins: an order is created exactly once per client id.
func (l *Ledger) Put(o market.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.orders[o.ClientID]; ok {
		return
	}
	cp := o
	l.orders[o.ClientID] = &cp
}

// Get returns a copy of the record for the client id.
func (l *Ledger) Get(clientID string) (market.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.orders[clientID]
	if !ok {
		return market.Order{}, false
	}
	return *o, true
}

// Apply runs mutate on the record under the ledger lock and returns the
// normalized result. Returns false when the client id is unknown.
func (l *Ledger) Apply(clientID string, mutate func(*market.Order)) (market.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.orders[clientID]
	if !ok {
		return market.Order{}, false
	}
	mutate(o)
	normalize(o)
	return *o, true
}

// Len returns the number of known orders.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

// transition moves the order to next unless a terminal status already
// absorbed it. Status never leaves a terminal state, and an order that has
// traded cannot fall back to a pre-fill status: a stale notification must
// not undo a partial fill.
func transition(o *market.Order, next market.OrderStatus) {
	if o.Status.Terminal() {
		return
	}
	if o.Traded > 0 && (next == market.Submitting || next == market.NotTraded) {
		o.Status = market.PartFilled
		return
	}
	o.Status = next
}

// addTraded accumulates fill volume. Traded is monotonic non-decreasing and
// capped at the requested volume.
func addTraded(o *market.Order, v float64) {
	if v <= 0 {
		return
	}
	o.Traded += v
	if o.Traded > o.Volume {
		o.Traded = o.Volume
	}
}

// setTraded raises traded to at least v, capped at the requested volume.
// Used when the venue reports a cumulative figure rather than a delta.
func setTraded(o *market.Order, v float64) {
	if v > o.Volume {
		v = o.Volume
	}
	if v > o.Traded {
		o.Traded = v
	}
}

// stamp updates the creation timestamp when the venue supplies one.
func stamp(o *market.Order, t time.Time) {
	if !t.IsZero() {
		o.Created = t
	}
}

// normalize reconciles traded volume and status after any mutation: a fully
// traded order is Filled no matter what the raw status code claimed.
func normalize(o *market.Order) {
	if o.Volume > 0 && o.Traded >= o.Volume {
		o.Traded = o.Volume
		o.Status = market.Filled
	}
}
