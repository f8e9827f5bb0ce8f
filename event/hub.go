package event

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/market"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// envelope is the frame broadcast to websocket clients.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans domain events out to connected websocket clients. A client whose
// send buffer is full is dropped rather than allowed to stall the broadcast.
type Hub struct {
	log *zap.Logger

	clients    map[*hubClient]struct{}
	broadcast  chan []byte
	register   chan *hubClient
	unregister chan *hubClient
	stop       chan struct{}
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:        log,
		clients:    make(map[*hubClient]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		stop:       make(chan struct{}),
	}
}

// Run owns the client set; call it on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Info("ws client connected", zap.Int("total", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("ws client disconnected", zap.Int("total", len(h.clients)))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-h.stop:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	close(h.stop)
}

// ServeHTTP upgrades the connection and attaches the client to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	c := &hubClient{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (h *Hub) publish(kind string, data any) {
	msg, err := json.Marshal(envelope{Type: kind, Data: data})
	if err != nil {
		h.log.Warn("ws marshal failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		// Broadcast buffer full; drop rather than block the core.
	}
}

func (h *Hub) OnQuote(q market.Quote)       { h.publish("quote", q) }
func (h *Hub) OnOrder(o market.Order)       { h.publish("order", o) }
func (h *Hub) OnTrade(t market.Trade)       { h.publish("trade", t) }
func (h *Hub) OnPosition(p market.Position) { h.publish("position", p) }
func (h *Hub) OnAccount(a market.Account)   { h.publish("account", a) }
func (h *Hub) OnContract(c market.Contract) { h.publish("contract", c) }

type hubClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *hubClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards inbound frames; it exists to notice disconnects.
func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
