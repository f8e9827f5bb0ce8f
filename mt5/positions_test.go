package mt5

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/mt5bridge/market"
)

func TestPositionDifferClosureSynthesizedOnce(t *testing.T) {
	t.Parallel()

	d := NewPositionDiffer()

	// Round 1: one open position.
	out := d.Apply([]market.Position{{Symbol: "EURUSD", Volume: 1.0, Price: 1.1}})
	assert.Len(t, out, 1)
	assert.Equal(t, []string{"EURUSD"}, d.OpenSymbols())

	// Round 2: empty snapshot synthesizes exactly one zero-volume close.
	out = d.Apply(nil)
	assert.Len(t, out, 1)
	assert.Equal(t, "EURUSD", out[0].Symbol)
	assert.Equal(t, float64(0), out[0].Volume)

	// Round 3: still empty, no further event.
	out = d.Apply(nil)
	assert.Empty(t, out)
	assert.Empty(t, d.OpenSymbols())
}

func TestPositionDifferIdempotentSnapshot(t *testing.T) {
	t.Parallel()

	d := NewPositionDiffer()
	snapshot := []market.Position{
		{Symbol: "EURUSD", Volume: 1.0, Price: 1.1, PnL: 5},
		{Symbol: "USDJPY", Volume: -2.0, Price: 150.2, PnL: -3},
	}

	first := d.Apply(snapshot)
	second := d.Apply(snapshot)

	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
}

func TestPositionDifferPartialClose(t *testing.T) {
	t.Parallel()

	d := NewPositionDiffer()
	d.Apply([]market.Position{
		{Symbol: "EURUSD", Volume: 1.0},
		{Symbol: "USDJPY", Volume: -2.0},
	})

	out := d.Apply([]market.Position{{Symbol: "EURUSD", Volume: 0.5}})
	assert.Len(t, out, 2)
	assert.Equal(t, "EURUSD", out[0].Symbol)
	assert.Equal(t, 0.5, out[0].Volume)
	assert.Equal(t, "USDJPY", out[1].Symbol)
	assert.Equal(t, float64(0), out[1].Volume)

	assert.Equal(t, []string{"EURUSD"}, d.OpenSymbols())
}

func TestPositionDifferReopenAfterClose(t *testing.T) {
	t.Parallel()

	d := NewPositionDiffer()
	d.Apply([]market.Position{{Symbol: "EURUSD", Volume: 1.0}})
	d.Apply(nil) // closed

	out := d.Apply([]market.Position{{Symbol: "EURUSD", Volume: 2.0}})
	assert.Len(t, out, 1)
	assert.Equal(t, 2.0, out[0].Volume)
	assert.Equal(t, []string{"EURUSD"}, d.OpenSymbols())
}

func TestPositionDifferZeroVolumeInSnapshotNotTracked(t *testing.T) {
	t.Parallel()

	d := NewPositionDiffer()
	out := d.Apply([]market.Position{{Symbol: "EURUSD", Volume: 0}})
	assert.Len(t, out, 1)
	assert.Empty(t, d.OpenSymbols())

	// A later empty snapshot must not synthesize a second close.
	out = d.Apply(nil)
	assert.Empty(t, out)
}
