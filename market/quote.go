package market

import "time"

// Quote is a top-of-book snapshot for one symbol. Last, High and Low may be
// derived from bid/ask when the venue reports no trade (market closed).
type Quote struct {
	Symbol     string
	Bid        float64
	Ask        float64
	Last       float64
	High       float64
	Low        float64
	LastVolume float64
	Time       time.Time
}

func (q Quote) Mid() float64 {
	if q.Bid == 0 && q.Ask == 0 {
		return 0
	}
	return (q.Bid + q.Ask) / 2
}

func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}
