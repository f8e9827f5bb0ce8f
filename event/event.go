// Package event carries canonical domain events from the adapter core to
// downstream consumers: loggers, journals, websocket clients.
package event

import (
	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/market"
)

// Sink receives one call per emitted event. Delivery order equals emission
// order from the core; implementations must not block for long.
type Sink interface {
	OnQuote(market.Quote)
	OnOrder(market.Order)
	OnTrade(market.Trade)
	OnPosition(market.Position)
	OnAccount(market.Account)
	OnContract(market.Contract)
}

// Nop is an embeddable base so sinks only implement the callbacks they care
// about.
type Nop struct{}

func (Nop) OnQuote(market.Quote)       {}
func (Nop) OnOrder(market.Order)       {}
func (Nop) OnTrade(market.Trade)       {}
func (Nop) OnPosition(market.Position) {}
func (Nop) OnAccount(market.Account)   {}
func (Nop) OnContract(market.Contract) {}

// Fanout dispatches every event to each sink in order.
type Fanout []Sink

func (f Fanout) OnQuote(q market.Quote) {
	for _, s := range f {
		s.OnQuote(q)
	}
}

func (f Fanout) OnOrder(o market.Order) {
	for _, s := range f {
		s.OnOrder(o)
	}
}

func (f Fanout) OnTrade(t market.Trade) {
	for _, s := range f {
		s.OnTrade(t)
	}
}

func (f Fanout) OnPosition(p market.Position) {
	for _, s := range f {
		s.OnPosition(p)
	}
}

func (f Fanout) OnAccount(a market.Account) {
	for _, s := range f {
		s.OnAccount(a)
	}
}

func (f Fanout) OnContract(c market.Contract) {
	for _, s := range f {
		s.OnContract(c)
	}
}

// Logger logs every event through zap. Quotes log at debug, everything else
// at info.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log}
}

func (l *Logger) OnQuote(q market.Quote) {
	l.log.Debug("quote",
		zap.String("symbol", q.Symbol),
		zap.Float64("bid", q.Bid),
		zap.Float64("ask", q.Ask),
		zap.Float64("last", q.Last))
}

func (l *Logger) OnOrder(o market.Order) {
	l.log.Info("order",
		zap.String("client_id", o.ClientID),
		zap.String("venue_id", o.VenueID),
		zap.String("symbol", o.Symbol),
		zap.Stringer("side", o.Side),
		zap.Stringer("kind", o.Kind),
		zap.Float64("price", o.Price),
		zap.Float64("volume", o.Volume),
		zap.Float64("traded", o.Traded),
		zap.Stringer("status", o.Status))
}

func (l *Logger) OnTrade(t market.Trade) {
	l.log.Info("trade",
		zap.String("fill_id", t.FillID),
		zap.String("order_id", t.OrderID),
		zap.String("symbol", t.Symbol),
		zap.Stringer("side", t.Side),
		zap.Float64("price", t.Price),
		zap.Float64("volume", t.Volume))
}

func (l *Logger) OnPosition(p market.Position) {
	l.log.Info("position",
		zap.String("symbol", p.Symbol),
		zap.Float64("volume", p.Volume),
		zap.Float64("price", p.Price),
		zap.Float64("pnl", p.PnL))
}

func (l *Logger) OnAccount(a market.Account) {
	l.log.Info("account",
		zap.String("id", a.ID),
		zap.Float64("balance", a.Balance),
		zap.Float64("margin", a.Margin))
}

func (l *Logger) OnContract(c market.Contract) {
	l.log.Info("contract",
		zap.String("symbol", c.Symbol),
		zap.Float64("tick_size", c.TickSize),
		zap.Float64("lot_size", c.LotSize),
		zap.Float64("min_volume", c.MinVolume))
}
