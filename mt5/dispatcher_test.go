package mt5

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mt5bridge/market"
)

type dispatcherFixture struct {
	reg     *Registry
	ledger  *Ledger
	deriver *TradeDeriver
	disp    *Dispatcher
	rec     *recorder
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		reg:     NewRegistry(),
		ledger:  NewLedger(),
		deriver: NewTradeDeriver(),
		rec:     &recorder{},
	}
	corr := NewCorrelator(f.reg, f.ledger, f.deriver, f.rec, time.UTC, nil)
	f.disp = NewDispatcher(f.reg, f.ledger, f.deriver, corr, f.rec, time.UTC, nil)
	return f
}

func TestOrderAddRegistersPairAndStampsTime(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:        900,
		TransType:    transOrderAdd,
		OrderComment: "A1",
		TimeSetup:    1700000000,
	}))

	v, ok := f.reg.VenueFor("A1")
	require.True(t, ok)
	assert.Equal(t, "900", v)

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, "900", o.VenueID)
	assert.False(t, o.Created.IsZero())
}

func TestOrderAddCommentFallsBackToVenueID(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:     901,
		TransType: transOrderAdd,
	}))

	c, ok := f.reg.ClientFor("901")
	require.True(t, ok)
	assert.Equal(t, "901", c)
}

func TestOrderAddConflictSurfaced(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	require.NoError(t, f.reg.Register("A1", "900"))

	err := f.disp.HandleTransaction(transactionInfo{
		Order:        901,
		TransType:    transOrderAdd,
		OrderComment: "A1",
	})
	assert.ErrorIs(t, err, ErrIDConflict)

	// Mappings untouched.
	v, _ := f.reg.VenueFor("A1")
	assert.Equal(t, "900", v)
}

func TestOrderUpdateAppliesStatus(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:      900,
		TransType:  transOrderUpdate,
		TransState: orderStatePlaced,
	}))

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, market.NotTraded, o.Status)
	require.Len(t, f.rec.orders, 1)
}

func TestOrderDeleteCancels(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:      900,
		TransType:  transOrderDelete,
		TransState: orderStateCanceled,
	}))

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, market.Cancelled, o.Status)
}

func TestOrderUpdateUnknownStatusHeld(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:      900,
		TransType:  transOrderUpdate,
		TransState: 77,
	}))

	// Unknown venue status code: record stays as-is pending clarification.
	o, _ := f.ledger.Get("A1")
	assert.Equal(t, market.Submitting, o.Status)
}

func TestOrderUpdateSynthesizesForeignOrder(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()

	// No registry entry, no local record: order was placed outside this
	// session. The notification carries enough fields to synthesize one.
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:         902,
		TransType:     transOrderUpdate,
		TransState:    orderStatePlaced,
		Symbol:        "EURUSD",
		OrderType:     typeSellLimit,
		OrderPrice:    1.2,
		VolumeInitial: 500,
	}))

	o, ok := f.ledger.Get("902")
	require.True(t, ok)
	assert.Equal(t, market.Short, o.Side)
	assert.Equal(t, market.LimitOrder, o.Kind)
	assert.Equal(t, float64(500), o.Volume)
	assert.Equal(t, market.NotTraded, o.Status)

	c, ok := f.reg.ClientFor("902")
	require.True(t, ok)
	assert.Equal(t, "902", c)
}

func TestOrderUpdateInsufficientFieldsDropped(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:     903,
		TransType: transOrderUpdate,
		OrderType: 99, // unknown type code, no symbol
	}))

	_, ok := f.ledger.Get("903")
	assert.False(t, ok)
	assert.Empty(t, f.rec.orders)
}

func TestHistoryAddEmitsExactlyOneTrade(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	fill := transactionInfo{
		Order:       900,
		TransType:   transHistoryAdd,
		Deal:        55,
		TransPrice:  1.1,
		TransVolume: 400,
	}
	require.NoError(t, f.disp.HandleTransaction(fill))
	require.NoError(t, f.disp.HandleTransaction(fill)) // duplicate delivery

	require.Len(t, f.rec.trades, 1)
	assert.Equal(t, "55", f.rec.trades[0].FillID)
	assert.Equal(t, float64(400), f.rec.trades[0].Volume)

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, float64(400), o.Traded)
	assert.Equal(t, market.PartFilled, o.Status)
}

func TestStaleUpdateAfterFillKeepsPartFilled(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:       900,
		TransType:   transHistoryAdd,
		Deal:        55,
		TransPrice:  1.1,
		TransVolume: 400,
	}))

	o, _ := f.ledger.Get("A1")
	require.Equal(t, market.PartFilled, o.Status)

	// A late OrderUpdated still carrying the pre-fill placed state must not
	// drag the record back behind the fill.
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:      900,
		TransType:  transOrderUpdate,
		TransState: orderStatePlaced,
	}))

	o, _ = f.ledger.Get("A1")
	assert.Equal(t, market.PartFilled, o.Status)
	assert.Equal(t, float64(400), o.Traded)
}

func TestHistoryAddSecondFillFills(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order: 900, TransType: transHistoryAdd, Deal: 55, TransVolume: 400,
	}))
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order: 900, TransType: transHistoryAdd, Deal: 56, TransVolume: 600,
	}))

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, float64(1000), o.Traded)
	assert.Equal(t, market.Filled, o.Status)
	assert.Len(t, f.rec.trades, 2)
}

func TestHistoryAddUnresolvableDropped(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order: 999, TransType: transHistoryAdd, Deal: 1, TransVolume: 10,
	}))

	assert.Empty(t, f.rec.trades)
	assert.Empty(t, f.rec.orders)
}
