package mt5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mt5bridge/market"
)

func TestAckAuthoritativeFill(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	// Push-side acknowledgement: no order id, but the result order agrees
	// with the registered venue id, so the fill is authoritative.
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		TransType:      transRequest,
		RequestComment: "A1",
		ResultOrder:    900,
		ResultDeal:     81,
		ResultPrice:    1.1,
		ResultVolume:   1000,
	}))

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, float64(1000), o.Traded)
	assert.Equal(t, market.Filled, o.Status)

	require.Len(t, f.rec.trades, 1)
	assert.Equal(t, "81", f.rec.trades[0].FillID)
}

func TestAckPartialFill(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		TransType:      transRequest,
		RequestComment: "A1",
		ResultOrder:    900,
		ResultDeal:     81,
		ResultVolume:   400,
	}))

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, float64(400), o.Traded)
	assert.Equal(t, market.PartFilled, o.Status)
}

func TestAckThenHistoryAddReportsFillOnce(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())
	require.NoError(t, f.reg.Register("A1", "900"))

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		TransType:      transRequest,
		RequestComment: "A1",
		ResultOrder:    900,
		ResultDeal:     81,
		ResultVolume:   1000,
	}))

	// The venue separately reports the same deal on the ordinary fill path.
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		Order:       900,
		TransType:   transHistoryAdd,
		Deal:        81,
		TransVolume: 1000,
	}))

	assert.Len(t, f.rec.trades, 1, "one deal id, one trade, both paths")

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, float64(1000), o.Traded)
}

func TestAckResultOrderNotRegisteredDeferred(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())

	// The result order id is not registered yet: leave the fill to the
	// history-add path instead of trusting the echo.
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		TransType:      transRequest,
		RequestComment: "A1",
		ResultOrder:    900,
		ResultDeal:     81,
		ResultVolume:   1000,
	}))

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, float64(0), o.Traded)
	assert.Empty(t, f.rec.trades)
}

func TestAckMarketClosedRejects(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	f.ledger.Put(testOrder())

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		TransType:      transRequest,
		RequestComment: "A1",
		ResultRetcode:  retcodeMarketClosed,
	}))

	o, _ := f.ledger.Get("A1")
	assert.Equal(t, market.Rejected, o.Status)
	require.Len(t, f.rec.orders, 1)
}

func TestAckUnknownClientDropped(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()

	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		TransType:      transRequest,
		RequestComment: "ghost",
		ResultOrder:    900,
		ResultVolume:   100,
	}))

	assert.Empty(t, f.rec.orders)
	assert.Empty(t, f.rec.trades)
}

func TestAckEmptyCommentIgnored(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture()
	require.NoError(t, f.disp.HandleTransaction(transactionInfo{
		TransType: transRequest,
	}))
	assert.Empty(t, f.rec.orders)
}
