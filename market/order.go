package market

import "time"

// Order is the canonical record for one order. ClientID is assigned locally
// at submission time and never changes; VenueID arrives asynchronously once
// the venue accepts the order.
type Order struct {
	ClientID string
	VenueID  string
	Symbol   string
	Side     Side
	Kind     OrderKind
	Price    float64
	Volume   float64
	Traded   float64
	Status   OrderStatus
	Created  time.Time
}

// Remaining is the volume still resting on the venue.
func (o Order) Remaining() float64 {
	r := o.Volume - o.Traded
	if r < 0 {
		return 0
	}
	return r
}

// OrderRequest is what callers submit; the adapter assigns the client id.
type OrderRequest struct {
	Symbol string
	Side   Side
	Kind   OrderKind
	Price  float64
	Volume float64
}

// Trade is a single fill. FillID is the venue's deal identifier and is
// unique per execution; OrderID refers to the owning order's client id.
type Trade struct {
	FillID  string
	OrderID string
	Symbol  string
	Side    Side
	Price   float64
	Volume  float64
	Time    time.Time
}
