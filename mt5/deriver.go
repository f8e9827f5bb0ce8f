package mt5

import (
	"sync"
	"time"

	"github.com/rustyeddy/mt5bridge/market"
)

// TradeDeriver turns fill notifications into trade records, guaranteeing at
// most one trade per distinct venue fill id for the lifetime of the session.
// Both the history-add path and the request-acknowledgement path derive
// through the same instance, so a fill reported on both can only be emitted
// once.
type TradeDeriver struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewTradeDeriver() *TradeDeriver {
	return &TradeDeriver{seen: make(map[string]struct{})}
}

// Derive returns the trade for the fill id and true on first observation,
// false when the id is empty, zero, or already seen.
func (d *TradeDeriver) Derive(fillID string, o market.Order, price, volume float64, at time.Time) (market.Trade, bool) {
	if fillID == "" || fillID == "0" {
		return market.Trade{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.seen[fillID]; dup {
		return market.Trade{}, false
	}
	d.seen[fillID] = struct{}{}

	return market.Trade{
		FillID:  fillID,
		OrderID: o.ClientID,
		Symbol:  o.Symbol,
		Side:    o.Side,
		Price:   price,
		Volume:  volume,
		Time:    at,
	}, true
}

// Seen reports whether the fill id has already produced a trade.
func (d *TradeDeriver) Seen(fillID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[fillID]
	return ok
}
