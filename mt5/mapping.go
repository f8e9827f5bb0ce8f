package mt5

import "github.com/rustyeddy/mt5bridge/market"

// Pure translation tables between venue codes and the domain model. All of
// them are populated at init and never mutated afterwards.

type orderTypeKey struct {
	side market.Side
	kind market.OrderKind
}

var statusFromWire = map[int]market.OrderStatus{
	orderStateStarted:  market.Submitting,
	orderStatePlaced:   market.NotTraded,
	orderStateCanceled: market.Cancelled,
	orderStatePartial:  market.PartFilled,
	orderStateFilled:   market.Filled,
	orderStateRejected: market.Rejected,
}

var orderTypeFromWire = map[int]orderTypeKey{
	typeBuy:       {market.Long, market.MarketOrder},
	typeSell:      {market.Short, market.MarketOrder},
	typeBuyLimit:  {market.Long, market.LimitOrder},
	typeSellLimit: {market.Short, market.LimitOrder},
	typeBuyStop:   {market.Long, market.StopOrder},
	typeSellStop:  {market.Short, market.StopOrder},
}

var orderTypeToWire = func() map[orderTypeKey]int {
	m := make(map[orderTypeKey]int, len(orderTypeFromWire))
	for code, key := range orderTypeFromWire {
		m[key] = code
	}
	return m
}()

var periodFromInterval = map[market.Interval]int{
	market.Minute: periodM1,
	market.Hour:   periodH1,
	market.Daily:  periodD1,
}

// statusFor maps a venue order state. Unknown codes map to Submitting so an
// unrecognized state is held pending clarification rather than dropped.
func statusFor(code int) (market.OrderStatus, bool) {
	s, ok := statusFromWire[code]
	if !ok {
		return market.Submitting, false
	}
	return s, true
}

func orderTypeFor(code int) (market.Side, market.OrderKind, bool) {
	key, ok := orderTypeFromWire[code]
	return key.side, key.kind, ok
}

func wireOrderType(side market.Side, kind market.OrderKind) (int, bool) {
	code, ok := orderTypeToWire[orderTypeKey{side, kind}]
	return code, ok
}

func wirePeriod(iv market.Interval) (int, bool) {
	p, ok := periodFromInterval[iv]
	return p, ok
}
