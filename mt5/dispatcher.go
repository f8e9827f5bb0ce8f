package mt5

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/event"
	"github.com/rustyeddy/mt5bridge/market"
)

// Dispatcher classifies each order notification by transaction kind and
// routes it into the ledger and the trade deriver. Unresolvable
// notifications are dropped with a diagnostic; a malformed message never
// stops the session.
type Dispatcher struct {
	log     *zap.Logger
	reg     *Registry
	ledger  *Ledger
	deriver *TradeDeriver
	corr    *Correlator
	sink    event.Sink
	loc     *time.Location
	now     func() time.Time
}

func NewDispatcher(reg *Registry, ledger *Ledger, deriver *TradeDeriver, corr *Correlator, sink event.Sink, loc *time.Location, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = DefaultLocation
	}
	return &Dispatcher{
		log:     log,
		reg:     reg,
		ledger:  ledger,
		deriver: deriver,
		corr:    corr,
		sink:    sink,
		loc:     loc,
		now:     time.Now,
	}
}

// HandleTransaction processes one notification. The only error it returns is
// an identifier conflict, which is an invariant violation the caller must
// surface; every recoverable condition is logged and swallowed here.
func (d *Dispatcher) HandleTransaction(t transactionInfo) error {
	// No venue order id: this is the echo of a just-submitted command and
	// belongs to the synchronous call correlator.
	if t.Order == 0 {
		if t.TransType == transRequest {
			d.corr.HandleAck(t)
		}
		return nil
	}

	switch t.TransType {
	case transOrderAdd:
		return d.onOrderAdd(t)
	case transOrderUpdate, transOrderDelete:
		d.onOrderUpdate(t)
	case transHistoryAdd:
		d.onHistoryAdd(t)
	case transRequest:
		// Request echo that carries an order id: already covered by the
		// accompanying add/update notifications.
	default:
		d.log.Debug("unhandled transaction kind",
			zap.Int("trans_type", t.TransType),
			zap.Int64("order", t.Order))
	}
	return nil
}

// onOrderAdd registers the client<->venue id pair. The comment field carries
// the client id; when the venue omits it the client id is defined to equal
// the venue id.
func (d *Dispatcher) onOrderAdd(t transactionInfo) error {
	venueID := strconv.FormatInt(t.Order, 10)
	clientID := t.OrderComment
	if clientID == "" {
		clientID = venueID
	}

	if err := d.reg.Register(clientID, venueID); err != nil {
		d.log.Error("order add rejected by registry",
			zap.String("client_id", clientID),
			zap.String("venue_id", venueID),
			zap.Error(err))
		return err
	}

	if _, ok := d.ledger.Apply(clientID, func(o *market.Order) {
		o.VenueID = venueID
		stamp(o, stampLocal(t.TimeSetup, d.loc))
	}); !ok {
		// Order placed outside this session; it will be synthesized on the
		// first update notification.
		d.log.Debug("order add for unknown local order",
			zap.String("client_id", clientID),
			zap.String("venue_id", venueID))
	}
	return nil
}

// onOrderUpdate applies a state transition, synthesizing the record when the
// order originated outside this session.
func (d *Dispatcher) onOrderUpdate(t transactionInfo) {
	venueID := strconv.FormatInt(t.Order, 10)
	clientID, ok := d.reg.ClientFor(venueID)
	if !ok {
		// Registry entry missing: fall back to self-mapping so the order is
		// still trackable by its venue id.
		clientID = venueID
		if err := d.reg.Register(clientID, venueID); err != nil {
			d.drop("order update", venueID, err)
			return
		}
	}

	if _, known := d.ledger.Get(clientID); !known {
		synth, ok := d.synthesize(clientID, venueID, t)
		if !ok {
			return
		}
		d.ledger.Put(synth)
	}

	order, _ := d.ledger.Apply(clientID, func(o *market.Order) {
		o.VenueID = venueID
		stamp(o, stampLocal(t.TimeSetup, d.loc))
		if status, known := statusFor(t.TransState); known {
			transition(o, status)
		}
		// Unknown venue status codes leave the order in its current state
		// pending clarification.
	})
	d.sink.OnOrder(order)
}

// onHistoryAdd is a fill confirmation: update cumulative traded volume and
// derive exactly one trade for the deal id.
func (d *Dispatcher) onHistoryAdd(t transactionInfo) {
	venueID := strconv.FormatInt(t.Order, 10)
	clientID, ok := d.reg.ClientFor(venueID)
	if !ok {
		d.drop("fill", venueID, nil)
		return
	}

	order, known := d.ledger.Get(clientID)
	if !known {
		d.drop("fill", venueID, nil)
		return
	}

	fillID := strconv.FormatInt(t.Deal, 10)
	trade, first := d.deriver.Derive(fillID, order, t.TransPrice, t.TransVolume, d.now().In(d.loc))
	if !first {
		return
	}

	order, _ = d.ledger.Apply(clientID, func(o *market.Order) {
		stamp(o, stampLocal(t.TimeSetup, d.loc))
		addTraded(o, t.TransVolume)
		if o.Traded > 0 && o.Traded < o.Volume {
			transition(o, market.PartFilled)
		}
	})

	d.sink.OnOrder(order)
	d.sink.OnTrade(trade)
}

// synthesize builds an order record from notification fields alone. Returns
// false when the fields are insufficient, which is a recoverable drop.
func (d *Dispatcher) synthesize(clientID, venueID string, t transactionInfo) (market.Order, bool) {
	side, kind, ok := orderTypeFor(t.OrderType)
	if !ok || t.Symbol == "" {
		d.drop("order update", venueID, nil)
		return market.Order{}, false
	}
	return market.Order{
		ClientID: clientID,
		VenueID:  venueID,
		Symbol:   localSymbol(t.Symbol),
		Side:     side,
		Kind:     kind,
		Price:    t.OrderPrice,
		Volume:   t.VolumeInitial,
		Status:   market.Submitting,
	}, true
}

func (d *Dispatcher) drop(what, venueID string, err error) {
	d.log.Warn("dropping unresolvable notification",
		zap.String("kind", what),
		zap.String("venue_id", venueID),
		zap.Error(err))
}
