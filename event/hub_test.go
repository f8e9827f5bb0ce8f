package event

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mt5bridge/market"
)

func TestHubPublishEnvelope(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	h.OnTrade(market.Trade{FillID: "55", Symbol: "EURUSD", Volume: 400})

	select {
	case msg := <-h.broadcast:
		var env struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &env))
		assert.Equal(t, "trade", env.Type)

		var trade market.Trade
		require.NoError(t, json.Unmarshal(env.Data, &trade))
		assert.Equal(t, "55", trade.FillID)
	default:
		t.Fatal("no frame broadcast")
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	// No Run loop drains the channel; publishing past the buffer must not
	// block the caller.
	for i := 0; i < 1000; i++ {
		h.OnQuote(market.Quote{Symbol: "EURUSD"})
	}
}
