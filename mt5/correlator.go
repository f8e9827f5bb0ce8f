package mt5

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/event"
	"github.com/rustyeddy/mt5bridge/market"
)

// Correlator resolves the race between the synchronous placement reply and
// the push-side acknowledgement of the same request. Placement is observed
// twice: once on the command channel (immediate accept/reject with the
// echoed client id) and possibly again on the push channel, which may report
// the resulting fill before any order notification for it arrives.
type Correlator struct {
	log     *zap.Logger
	reg     *Registry
	ledger  *Ledger
	deriver *TradeDeriver
	sink    event.Sink
	loc     *time.Location
	now     func() time.Time
}

func NewCorrelator(reg *Registry, ledger *Ledger, deriver *TradeDeriver, sink event.Sink, loc *time.Location, log *zap.Logger) *Correlator {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = DefaultLocation
	}
	return &Correlator{
		log:     log,
		reg:     reg,
		ledger:  ledger,
		deriver: deriver,
		sink:    sink,
		loc:     loc,
		now:     time.Now,
	}
}

// HandleAck processes a request acknowledgement that carries no venue order
// id. The order must already exist locally (it is created synchronously at
// submission time); an ack for an unknown client id is dropped.
func (c *Correlator) HandleAck(t transactionInfo) {
	clientID := t.RequestComment
	if clientID == "" {
		return
	}
	if _, known := c.ledger.Get(clientID); !known {
		c.log.Warn("ack for unknown order", zap.String("client_id", clientID))
		return
	}

	switch {
	case t.ResultOrder != 0:
		c.ackFill(clientID, t)
	case t.ResultRetcode == retcodeMarketClosed:
		c.ackRejected(clientID)
	}
}

// ackFill treats the acknowledgement as authoritative only when its result
// order id agrees with the venue id already registered for the client id.
// Otherwise the fill is left to the ordinary history-add path, which shares
// the same fill-id dedup, so the trade can never be reported twice.
func (c *Correlator) ackFill(clientID string, t transactionInfo) {
	venueID := strconv.FormatInt(t.ResultOrder, 10)
	known, ok := c.reg.VenueFor(clientID)
	if !ok || known != venueID {
		c.log.Debug("ack result order not yet registered, deferring to fill path",
			zap.String("client_id", clientID),
			zap.String("result_order", venueID))
		return
	}

	order, _ := c.ledger.Apply(clientID, func(o *market.Order) {
		o.VenueID = venueID
		// result_volume is cumulative, not a delta.
		setTraded(o, t.ResultVolume)
		if o.Traded < o.Volume {
			transition(o, market.PartFilled)
		}
	})
	c.sink.OnOrder(order)

	fillID := strconv.FormatInt(t.ResultDeal, 10)
	if trade, first := c.deriver.Derive(fillID, order, t.ResultPrice, t.ResultVolume, c.now().In(c.loc)); first {
		c.sink.OnTrade(trade)
	}
}

// ackRejected forces the order terminal when the venue answered with the
// market-closed rejection code and never assigned an order id.
func (c *Correlator) ackRejected(clientID string) {
	order, _ := c.ledger.Apply(clientID, func(o *market.Order) {
		transition(o, market.Rejected)
	})
	c.log.Info("order rejected",
		zap.String("client_id", clientID),
		zap.String("reason", "market closed"))
	c.sink.OnOrder(order)
}
