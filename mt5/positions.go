package mt5

import (
	"sort"
	"sync"

	"github.com/rustyeddy/mt5bridge/market"
)

// PositionDiffer converts full-state position pushes into a stream of
// position records. The venue only ever sends the complete set of open
// positions, so closures have to be synthesized: a symbol that was open in
// the previous snapshot and is missing from the current one yields a single
// zero-volume record, after which the symbol drops out of tracking until it
// reappears.
type PositionDiffer struct {
	mu   sync.Mutex
	open map[string]struct{}
}

func NewPositionDiffer() *PositionDiffer {
	return &PositionDiffer{open: make(map[string]struct{})}
}

// Apply ingests one snapshot and returns the records to emit: every position
// in the snapshot, then one synthesized close per disappeared symbol in
// lexical order. Feeding the same snapshot twice produces identical output
// with no spurious closures.
func (p *PositionDiffer) Apply(snapshot []market.Position) []market.Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := make(map[string]struct{}, len(snapshot))
	out := make([]market.Position, 0, len(snapshot))
	for _, pos := range snapshot {
		if pos.Open() {
			next[pos.Symbol] = struct{}{}
		}
		out = append(out, pos)
	}

	var closed []string
	for symbol := range p.open {
		if _, still := next[symbol]; !still {
			closed = append(closed, symbol)
		}
	}
	sort.Strings(closed)
	for _, symbol := range closed {
		out = append(out, market.Position{Symbol: symbol})
	}

	p.open = next
	return out
}

// OpenSymbols returns the currently tracked symbols, sorted.
func (p *PositionDiffer) OpenSymbols() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	symbols := make([]string, 0, len(p.open))
	for s := range p.open {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
