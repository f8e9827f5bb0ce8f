package market

import "time"

// Contract is static reference data for one tradable symbol, fetched once at
// session start.
type Contract struct {
	Symbol    string
	TickSize  float64
	LotSize   float64
	MinVolume float64
}

// Bar is one OHLC candle returned by a history query.
type Bar struct {
	Symbol   string
	Interval Interval
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// HistoryRequest bounds a bar query. Start and End are interpreted in UTC on
// the wire regardless of their location.
type HistoryRequest struct {
	Symbol   string
	Interval Interval
	Start    time.Time
	End      time.Time
}
