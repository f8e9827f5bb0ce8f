// Package transport implements the venue channel pair over ZeroMQ: a REQ
// socket for synchronous commands and a SUB socket for the push stream. The
// adapter core never touches sockets; it sees only the mt5.Transport
// interface.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-zeromq/zmq4"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ErrClosed is returned once the connection has been shut down.
var ErrClosed = errors.New("transport closed")

const dialTries = 10

// Conn is a live ZeroMQ connection pair. Dial retries with exponential
// backoff; after that the connection never redials on its own.
type Conn struct {
	log *zap.Logger

	req   zmq4.Socket
	sub   zmq4.Socket
	reqMu sync.Mutex

	active atomic.Bool
	recv   chan json.RawMessage
}

// Dial connects both sockets and starts draining the push stream into an
// internal buffer that Poll consumes.
func Dial(ctx context.Context, reqAddr, subAddr string, log *zap.Logger) (*Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Conn{
		log:  log,
		req:  zmq4.NewReq(ctx),
		sub:  zmq4.NewSub(ctx),
		recv: make(chan json.RawMessage, 1024),
	}

	if err := dialRetry(ctx, c.req, reqAddr); err != nil {
		return nil, fmt.Errorf("dial req %s: %w", reqAddr, err)
	}
	if err := dialRetry(ctx, c.sub, subAddr); err != nil {
		c.req.Close()
		return nil, fmt.Errorf("dial sub %s: %w", subAddr, err)
	}
	if err := c.sub.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		c.req.Close()
		c.sub.Close()
		return nil, fmt.Errorf("subscribe all: %w", err)
	}

	c.active.Store(true)
	go c.recvLoop()

	log.Info("transport connected",
		zap.String("req", reqAddr),
		zap.String("sub", subAddr))
	return c, nil
}

func dialRetry(ctx context.Context, sock zmq4.Socket, addr string) error {
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) { return struct{}{}, sock.Dial(addr) },
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(dialTries),
	)
	return err
}

func (c *Conn) recvLoop() {
	for {
		msg, err := c.sub.Recv()
		if err != nil {
			if c.active.Load() {
				c.log.Warn("push receive failed", zap.Error(err))
			}
			return
		}

		frame := make([]byte, len(msg.Bytes()))
		copy(frame, msg.Bytes())

		select {
		case c.recv <- frame:
		default:
			c.log.Warn("push buffer full, dropping frame")
		}
	}
}

// Request sends one command and blocks for its single matching reply. The
// REQ socket is strictly lock-step, so concurrent callers serialize.
func (c *Conn) Request(req any) (json.RawMessage, error) {
	if !c.active.Load() {
		return nil, ErrClosed
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	if err := c.req.Send(zmq4.NewMsg(body)); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	reply, err := c.req.Recv()
	if err != nil {
		return nil, fmt.Errorf("receive reply: %w", err)
	}
	return json.RawMessage(reply.Bytes()), nil
}

// Poll returns the next push frame, or nil after the bounded wait.
func (c *Conn) Poll(timeout time.Duration) (json.RawMessage, error) {
	if !c.active.Load() {
		return nil, ErrClosed
	}

	select {
	case frame := <-c.recv:
		return frame, nil
	case <-time.After(timeout):
		return nil, nil
	}
}

// Active reports whether the connection is usable.
func (c *Conn) Active() bool {
	return c.active.Load()
}

// Close shuts both sockets down. Safe to call more than once.
func (c *Conn) Close() error {
	if !c.active.CompareAndSwap(true, false) {
		return nil
	}
	return errors.Join(c.sub.Close(), c.req.Close())
}
