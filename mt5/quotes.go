package mt5

import (
	"time"

	"github.com/rustyeddy/mt5bridge/market"
)

// normalizeQuote converts one wire quote. When the venue reports a real last
// trade the session prices pass through unchanged; otherwise (market closed,
// or no trade yet today) last/high/low are derived from bid/ask midpoints.
// The fallback is presentation-layer only and must match the venue display.
func normalizeQuote(q quoteInfo, at time.Time) market.Quote {
	out := market.Quote{
		Symbol:     localSymbol(q.Symbol),
		Bid:        q.Bid,
		Ask:        q.Ask,
		LastVolume: q.LastVolume,
		Time:       at,
	}

	if q.Last != 0 {
		out.Last = q.Last
		out.High = q.LastHigh
		out.Low = q.LastLow
		return out
	}

	out.Last = (q.Bid + q.Ask) / 2
	out.High = (q.BidHigh + q.AskHigh) / 2
	out.Low = (q.BidLow + q.AskLow) / 2
	return out
}
