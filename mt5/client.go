package mt5

import (
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ErrInactive is returned for synchronous calls while the transport is down.
// The core never reconnects; that belongs to the transport.
var ErrInactive = errors.New("transport inactive")

// Transport is the channel pair to the venue. Request performs exactly one
// send with exactly one matching reply; Poll returns the next push frame or
// nil after the bounded wait. Implementations own the sockets.
type Transport interface {
	Request(req any) (json.RawMessage, error)
	Poll(timeout time.Duration) (json.RawMessage, error)
	Active() bool
	Close() error
}

const pollTimeout = time.Second

// Client drains the push channel on a dedicated goroutine and serializes
// synchronous calls so only one request is ever in flight on the command
// channel.
type Client struct {
	log     *zap.Logger
	tr      Transport
	handler func(json.RawMessage)

	reqMu sync.Mutex

	mu     sync.Mutex
	active bool
	done   chan struct{}
}

func NewClient(tr Transport, handler func(json.RawMessage), log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{log: log, tr: tr, handler: handler}
}

// Start launches the receive loop. Calling Start on a running client is a
// no-op.
func (c *Client) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return
	}
	c.active = true
	c.done = make(chan struct{})
	go c.run(c.done)
}

// Stop asks the receive loop to exit after its current timeout tick.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// Join blocks until the receive loop has exited. Safe to call when the
// client never started.
func (c *Client) Join() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether the receive loop is live.
func (c *Client) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Client) run(done chan struct{}) {
	defer close(done)

	for c.Running() {
		raw, err := c.tr.Poll(pollTimeout)
		if err != nil {
			if c.Running() {
				c.log.Warn("push poll failed", zap.Error(err))
			}
			continue
		}
		if raw == nil {
			continue
		}
		c.handler(raw)
	}
}

// Request performs one synchronous round trip. Concurrent callers serialize;
// an inactive transport yields ErrInactive immediately, with no retry.
func (c *Client) Request(req any) (json.RawMessage, error) {
	if !c.tr.Active() {
		return nil, ErrInactive
	}

	c.reqMu.Lock()
	defer c.reqMu.Unlock()
	return c.tr.Request(req)
}
