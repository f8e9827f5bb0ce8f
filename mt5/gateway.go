package mt5

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/event"
	"github.com/rustyeddy/mt5bridge/market"
	"github.com/rustyeddy/mt5bridge/pkg/id"
)

// Gateway is the session: it owns the ledger, the identifier registry and
// the push loop, and exposes the synchronous operations. One Gateway per
// venue connection.
type Gateway struct {
	log  *zap.Logger
	sink event.Sink
	loc  *time.Location
	now  func() time.Time

	client  *Client
	reg     *Registry
	ledger  *Ledger
	deriver *TradeDeriver
	differ  *PositionDiffer
	corr    *Correlator
	disp    *Dispatcher
}

func New(tr Transport, sink event.Sink, loc *time.Location, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = DefaultLocation
	}

	g := &Gateway{
		log:     log,
		sink:    sink,
		loc:     loc,
		now:     time.Now,
		reg:     NewRegistry(),
		ledger:  NewLedger(),
		deriver: NewTradeDeriver(),
		differ:  NewPositionDiffer(),
	}
	g.corr = NewCorrelator(g.reg, g.ledger, g.deriver, sink, loc, log)
	g.disp = NewDispatcher(g.reg, g.ledger, g.deriver, g.corr, sink, loc, log)
	g.client = NewClient(tr, g.handlePush, log)
	return g
}

// Connect starts the push loop and loads the static session state: the
// contract table and any orders still resting on the venue.
func (g *Gateway) Connect() error {
	g.client.Start()

	if err := g.QueryContracts(); err != nil {
		return fmt.Errorf("query contracts: %w", err)
	}
	if err := g.QueryOrders(); err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	return nil
}

// Close stops the push loop, waits for it to exit, then closes the
// transport.
func (g *Gateway) Close() error {
	g.client.Stop()
	g.client.Join()
	return g.client.tr.Close()
}

// Subscribe asks the venue to start streaming quotes for the symbol.
func (g *Gateway) Subscribe(symbol string) error {
	_, err := g.client.Request(subscribeRequest{
		Type:   fnSubscribe,
		Symbol: wireSymbol(symbol),
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", symbol, err)
	}
	return nil
}

// PlaceOrder submits a new order and returns the client id. Unsupported
// side/kind combinations are refused locally with a log line and an empty
// id; nothing is sent to the venue. The order record is created before the
// wire call so the push-side acknowledgement always finds it.
func (g *Gateway) PlaceOrder(req market.OrderRequest) (string, error) {
	cmd, ok := wireOrderType(req.Side, req.Kind)
	if !ok {
		g.log.Warn("order kind not supported",
			zap.Stringer("side", req.Side),
			zap.Stringer("kind", req.Kind))
		return "", nil
	}

	clientID := id.New()
	g.ledger.Put(market.Order{
		ClientID: clientID,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Kind:     req.Kind,
		Price:    req.Price,
		Volume:   req.Volume,
		Status:   market.Submitting,
		Created:  g.now().In(g.loc),
	})

	raw, err := g.client.Request(placeRequest{
		Type:    fnPlaceOrder,
		Symbol:  wireSymbol(req.Symbol),
		Cmd:     cmd,
		Price:   req.Price,
		Volume:  req.Volume,
		Comment: clientID,
	})

	var res commandResult
	if err != nil {
		g.log.Warn("place order failed", zap.String("client_id", clientID), zap.Error(err))
		res.Comment = err.Error()
	} else if data, ok := decodeReply(raw); ok {
		if derr := json.Unmarshal(data, &res); derr != nil {
			g.log.Warn("malformed place reply", zap.String("client_id", clientID), zap.Error(derr))
		}
	}

	order, _ := g.ledger.Apply(clientID, func(o *market.Order) {
		if !res.Result {
			transition(o, market.Rejected)
		}
	})
	if !res.Result {
		g.log.Info("order rejected",
			zap.String("client_id", clientID),
			zap.String("reason", res.Comment))
	}
	g.sink.OnOrder(order)

	return clientID, nil
}

// CancelOrder cancels by client id. Without a registered venue id the
// operation fails locally with a logged refusal and no command is sent.
func (g *Gateway) CancelOrder(clientID string) error {
	venueID, ok := g.reg.VenueFor(clientID)
	if !ok {
		g.log.Warn("cancel refused, no venue id for order",
			zap.String("client_id", clientID))
		return nil
	}

	ticket, err := strconv.ParseInt(venueID, 10, 64)
	if err != nil {
		return fmt.Errorf("cancel %s: bad venue id %q: %w", clientID, venueID, err)
	}

	raw, err := g.client.Request(cancelRequest{Type: fnCancelOrder, Ticket: ticket})
	if err != nil {
		return fmt.Errorf("cancel %s: %w", clientID, err)
	}

	var res commandResult
	if data, ok := decodeReply(raw); ok {
		_ = json.Unmarshal(data, &res)
	}
	if res.Result {
		g.log.Info("cancel accepted", zap.String("client_id", clientID))
	} else {
		g.log.Warn("cancel failed", zap.String("client_id", clientID))
	}
	return nil
}

// QueryContracts loads the static contract table and emits one ContractSpec
// per symbol. Tick size is derived exactly from the decimal digit count.
func (g *Gateway) QueryContracts() error {
	raw, err := g.client.Request(queryRequest{Type: fnQueryContracts})
	if err != nil {
		return err
	}

	data, ok := decodeReply(raw)
	if !ok {
		g.log.Warn("empty contract reply")
		return nil
	}
	g.log.Info("venue connected")

	var contracts []contractInfo
	if err := json.Unmarshal(data, &contracts); err != nil {
		return fmt.Errorf("decode contracts: %w", err)
	}

	for _, c := range contracts {
		tick := decimal.New(1, int32(-c.Digits))
		g.sink.OnContract(market.Contract{
			Symbol:    localSymbol(c.Symbol),
			TickSize:  tick.InexactFloat64(),
			LotSize:   c.LotSize,
			MinVolume: c.MinLot,
		})
	}
	g.log.Info("contracts received", zap.Int("count", len(contracts)))
	return nil
}

// QueryOrders loads orders still resting on the venue, registers their id
// pairs and seeds the ledger.
func (g *Gateway) QueryOrders() error {
	raw, err := g.client.Request(queryRequest{Type: fnQueryOrders})
	if err != nil {
		return err
	}

	data, ok := decodeReply(raw)
	if !ok {
		return nil
	}

	var open []openOrderInfo
	if err := json.Unmarshal(data, &open); err != nil {
		return fmt.Errorf("decode open orders: %w", err)
	}

	for _, d := range open {
		side, kind, ok := orderTypeFor(d.OrderType)
		if !ok {
			g.log.Warn("open order with unknown type code",
				zap.Int64("order", d.Order),
				zap.Int("order_type", d.OrderType))
			continue
		}

		venueID := strconv.FormatInt(d.Order, 10)
		clientID := d.OrderComment
		if clientID == "" {
			clientID = venueID
		}
		if err := g.reg.Register(clientID, venueID); err != nil {
			g.log.Error("open order rejected by registry", zap.Error(err))
			continue
		}

		status, _ := statusFor(d.OrderState)
		order := market.Order{
			ClientID: clientID,
			VenueID:  venueID,
			Symbol:   localSymbol(d.Symbol),
			Side:     side,
			Kind:     kind,
			Price:    d.OrderPrice,
			Volume:   d.VolumeInitial,
			Traded:   d.VolumeInitial - d.VolumeCurrent,
			Status:   status,
			Created:  stampLocal(d.TimeSetup, g.loc),
		}
		g.ledger.Put(order)
		g.sink.OnOrder(order)
	}
	g.log.Info("open orders received", zap.Int("count", len(open)))
	return nil
}

// QueryHistory fetches bars. Bounds go out as naive UTC; reply timestamps
// come back as naive UTC and are converted into the venue location.
func (g *Gateway) QueryHistory(req market.HistoryRequest) ([]market.Bar, error) {
	period, ok := wirePeriod(req.Interval)
	if !ok {
		return nil, fmt.Errorf("history %s: unsupported interval %v", req.Symbol, req.Interval)
	}

	raw, err := g.client.Request(historyRequest{
		Type:      fnQueryHistory,
		Symbol:    wireSymbol(req.Symbol),
		Interval:  period,
		StartTime: formatWireTime(req.Start),
		EndTime:   formatWireTime(req.End),
	})
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", req.Symbol, err)
	}

	var env replyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("history %s: decode reply: %w", req.Symbol, err)
	}

	var code int
	if len(env.Result) > 0 {
		_ = json.Unmarshal(env.Result, &code)
	}
	if code == -1 {
		g.log.Warn("history query failed", zap.String("symbol", req.Symbol))
		return nil, nil
	}

	var rows []barInfo
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		return nil, fmt.Errorf("history %s: decode bars: %w", req.Symbol, err)
	}

	bars := make([]market.Bar, 0, len(rows))
	for _, r := range rows {
		at, err := parseBarTime(r.Time, g.loc)
		if err != nil {
			g.log.Warn("skipping bar with bad timestamp",
				zap.String("symbol", req.Symbol),
				zap.String("time", r.Time))
			continue
		}
		bars = append(bars, market.Bar{
			Symbol:   req.Symbol,
			Interval: req.Interval,
			Time:     at,
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			Volume:   r.RealVolume,
		})
	}

	if len(bars) > 0 {
		g.log.Info("history received",
			zap.String("symbol", req.Symbol),
			zap.Stringer("interval", req.Interval),
			zap.Time("first", bars[0].Time),
			zap.Time("last", bars[len(bars)-1].Time))
	}
	return bars, nil
}

// Order returns a copy of the current record for the client id.
func (g *Gateway) Order(clientID string) (market.Order, bool) {
	return g.ledger.Get(clientID)
}

// handlePush routes one raw push frame. Any malformed frame is logged and
// dropped; it never stops processing of subsequent frames.
func (g *Gateway) handlePush(raw json.RawMessage) {
	var pkt pushPacket
	if err := json.Unmarshal(raw, &pkt); err != nil {
		g.log.Warn("malformed push frame", zap.Error(err))
		return
	}

	switch pushKinds[pkt.Type] {
	case PushAccount:
		g.onAccount(pkt.Data)
	case PushQuote:
		g.onQuotes(pkt.Data)
	case PushOrder:
		g.onTransactions(pkt.Data)
	case PushPosition:
		g.onPositions(pkt.Data)
	case PushUnknown:
		g.log.Debug("unknown push kind", zap.String("type", pkt.Type))
	}
}

func (g *Gateway) onAccount(data json.RawMessage) {
	var a accountInfo
	if err := json.Unmarshal(data, &a); err != nil {
		g.log.Warn("malformed account push", zap.Error(err))
		return
	}
	g.sink.OnAccount(market.Account{ID: a.Name, Balance: a.Balance, Margin: a.Margin})
}

func (g *Gateway) onQuotes(data json.RawMessage) {
	if len(data) == 0 {
		return
	}
	var quotes []quoteInfo
	if err := json.Unmarshal(data, &quotes); err != nil {
		g.log.Warn("malformed quote push", zap.Error(err))
		return
	}
	at := g.now().In(g.loc)
	for _, q := range quotes {
		g.sink.OnQuote(normalizeQuote(q, at))
	}
}

func (g *Gateway) onTransactions(data json.RawMessage) {
	batch, err := decodeTransactions(data)
	if err != nil {
		g.log.Warn("malformed order push", zap.Error(err))
		return
	}
	for _, t := range batch {
		if err := g.disp.HandleTransaction(t); err != nil {
			// Identifier conflicts are surfaced loudly but one bad
			// notification must not stall the stream.
			g.log.Error("transaction invariant violation", zap.Error(err))
		}
	}
}

func (g *Gateway) onPositions(data json.RawMessage) {
	var rows []positionInfo
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			g.log.Warn("malformed position push", zap.Error(err))
			return
		}
	}

	snapshot := make([]market.Position, 0, len(rows))
	for _, r := range rows {
		volume := r.Volume
		if r.Type == positionTypeSell {
			volume = -volume
		}
		snapshot = append(snapshot, market.Position{
			Symbol: localSymbol(r.Symbol),
			Volume: volume,
			Price:  r.Price,
			PnL:    r.Profit,
		})
	}

	for _, p := range g.differ.Apply(snapshot) {
		g.sink.OnPosition(p)
	}
}

// decodeReply unwraps the common {result, data} envelope. Empty or malformed
// replies count as "no data", never as fatal.
func decodeReply(raw json.RawMessage) (json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var env replyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, false
	}
	return env.Data, true
}
