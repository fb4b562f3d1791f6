package httpsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/prosody"
)

// Frame is the envelope pushed to websocket clients: probe frames feed UI
// meters at the fast cadence, prosody frames carry full analyses.
type Frame struct {
	Type      string          `json:"type"` // "probe" or "prosody"
	Timestamp time.Time       `json:"timestamp"`
	Probe     *prosody.Probe  `json:"probe,omitempty"`
	Prosody   *prosody.Result `json:"prosody,omitempty"`
}

// Client is one connected websocket consumer.
type Client struct {
	hub  *MeterHub
	conn *websocket.Conn
	send chan []byte
}

// MeterHub fans realtime monitor output out to websocket clients.
type MeterHub struct {
	logger     *logrus.Entry
	clients    map[*Client]bool
	broadcast  chan *Frame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// UI origin checks are the host's concern
		return true
	},
}

// NewMeterHub creates the hub.
func NewMeterHub(logger *logrus.Logger) *MeterHub {
	return &MeterHub{
		logger:     logger.WithField("component", "meter_hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Frame, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run drives the hub until the context is canceled.
func (h *MeterHub) Run(ctx context.Context) {
	h.logger.Info("Starting websocket meter hub")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Shutting down websocket meter hub")
			// Unblocks pumps and late ServeWS calls stuck on the
			// register/unregister channels
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Debug("Meter client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.logger.Debug("Meter client disconnected")

		case frame := <-h.broadcast:
			data, err := json.Marshal(frame)
			if err != nil {
				h.logger.WithError(err).Error("Failed to marshal meter frame")
				continue
			}

			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer: drop it rather than stall the hub
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastProbe pushes one fast-tick probe to all clients.
func (h *MeterHub) BroadcastProbe(p prosody.Probe) {
	select {
	case h.broadcast <- &Frame{Type: "probe", Timestamp: p.Timestamp, Probe: &p}:
	default:
	}
}

// BroadcastProsody pushes one full-analysis result to all clients.
func (h *MeterHub) BroadcastProsody(r prosody.Result) {
	select {
	case h.broadcast <- &Frame{Type: "prosody", Timestamp: time.Now(), Prosody: &r}:
	default:
	}
}

// ServeWS upgrades an HTTP request to a meter stream.
func (h *MeterHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Websocket upgrade failed")
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 64)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client messages so pings/pongs work; inbound payloads are
// ignored.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
