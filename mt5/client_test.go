package mt5

import (
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientStartStopJoin(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport()
	c := NewClient(ft, func(json.RawMessage) {}, nil)

	c.Start()
	c.Start() // idempotent
	assert.True(t, c.Running())

	c.Stop()
	c.Join()
	assert.False(t, c.Running())
}

func TestClientJoinWithoutStart(t *testing.T) {
	t.Parallel()

	c := NewClient(newFakeTransport(), func(json.RawMessage) {}, nil)
	c.Join() // must not block
}

func TestClientDeliversPushes(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport()

	var mu sync.Mutex
	var got []string
	c := NewClient(ft, func(raw json.RawMessage) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, string(raw))
	}, nil)

	c.Start()
	defer func() {
		c.Stop()
		c.Join()
	}()

	ft.pushes <- json.RawMessage(`{"type":"account"}`)
	ft.pushes <- json.RawMessage(`{"type":"price"}`)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientRequestInactiveTransport(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport()
	ft.Close()
	c := NewClient(ft, func(json.RawMessage) {}, nil)

	_, err := c.Request(queryRequest{Type: fnQueryContracts})
	assert.ErrorIs(t, err, ErrInactive)
}

func TestClientRequestRoundTrip(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport()
	ft.replies[fnQueryContracts] = json.RawMessage(`{"data":[]}`)
	c := NewClient(ft, func(json.RawMessage) {}, nil)

	raw, err := c.Request(queryRequest{Type: fnQueryContracts})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(raw))
}
