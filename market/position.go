package market

// Position is the net exposure for one symbol: positive volume is long,
// negative is short, zero means the position has been closed.
type Position struct {
	Symbol string
	Volume float64
	Price  float64
	PnL    float64
}

// Open reports whether there is any exposure left.
func (p Position) Open() bool {
	return p.Volume != 0
}

// Account is a balance snapshot pushed by the venue.
type Account struct {
	ID      string
	Balance float64
	Margin  float64
}
