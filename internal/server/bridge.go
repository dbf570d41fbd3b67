package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-go/domkit/pkg/hub"
	"github.com/vango-go/domkit/pkg/middleware"
)

const (
	bridgeSendBuffer   = 64
	bridgeWriteTimeout = 10 * time.Second
	bridgeReadLimit    = 64 << 10
)

// inbound is a client frame.
type inbound struct {
	Op    string          `json:"op"`
	Hub   string          `json:"hub,omitempty"`
	Topic string          `json:"topic,omitempty"`
	Label string          `json:"label,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outbound is a server frame: a hub delivery, an ack or an error.
type outbound struct {
	Op    string `json:"op"`
	Hub   string `json:"hub,omitempty"`
	Topic string `json:"topic,omitempty"`
	Label string `json:"label,omitempty"`
	Data  any    `json:"data,omitempty"`
	Of    string `json:"of,omitempty"`
	Error string `json:"error,omitempty"`
}

type bridgeConn struct {
	ns      string
	conn    *websocket.Conn
	defHub  string
	allowed map[string]bool
	metrics *middleware.Metrics
	logger  *slog.Logger
	handler hub.Handler

	mu     sync.Mutex
	send   chan []byte
	closed bool
	hubs   map[string]bool
}

func (s *Server) serveBridge(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.RecordWebSocketError("upgrade")
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &bridgeConn{
		ns:     "ws_" + uuid.NewString(),
		conn:   conn,
		defHub:  s.config.HubName,
		allowed: s.bridgeHubs(),
		metrics: s.metrics,
		send:    make(chan []byte, bridgeSendBuffer),
		hubs:    make(map[string]bool),
	}
	c.logger = s.logger.With("namespace", c.ns, "user", userID(r.Context()))
	c.handler = c.deliver

	c.metrics.RecordWSConnect()
	defer c.metrics.RecordWSDisconnect()

	c.logger.Debug("bridge connected")
	go c.writeLoop()
	c.readLoop()
	c.close()
	c.logger.Debug("bridge disconnected")
}

// bridgeHubs returns the hubs clients may address.
func (s *Server) bridgeHubs() map[string]bool {
	allowed := map[string]bool{s.config.HubName: true}
	for _, name := range s.config.BridgeHubs {
		if name != "" {
			allowed[name] = true
		}
	}
	return allowed
}

func (c *bridgeConn) readLoop() {
	c.conn.SetReadLimit(bridgeReadLimit)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.metrics.RecordWebSocketError("read")
				c.logger.Error("read error", "error", err)
			}
			return
		}
		c.metrics.RecordWSFrame("in")

		var f inbound
		if err := json.Unmarshal(msg, &f); err != nil {
			c.reply(outbound{Op: "error", Error: "invalid frame"})
			continue
		}
		c.handle(f)
	}
}

func (c *bridgeConn) handle(f inbound) {
	name := f.Hub
	if name == "" {
		name = c.defHub
	}
	if !c.allowed[name] {
		c.reply(outbound{Op: "error", Hub: name, Of: f.Op, Error: "hub not allowed"})
		return
	}
	h, err := hub.Get(name)
	if err != nil {
		c.reply(outbound{Op: "error", Of: f.Op, Error: err.Error()})
		return
	}

	switch f.Op {
	case "sub":
		if f.Topic == "" {
			c.reply(outbound{Op: "error", Of: f.Op, Error: "topic is required"})
			return
		}
		h.Subscribe(f.Topic, f.Label, c.handler,
			hub.WithNamespace(c.ns),
			hub.WithContext(name))
		c.mu.Lock()
		c.hubs[name] = true
		c.mu.Unlock()

	case "unsub":
		c.mu.Lock()
		bound := c.hubs[name]
		delete(c.hubs, name)
		c.mu.Unlock()
		if bound {
			h.Unsubscribe(c.ns)
		}

	case "pub":
		if f.Topic == "" {
			c.reply(outbound{Op: "error", Of: f.Op, Error: "topic is required"})
			return
		}
		var data any
		if len(f.Data) > 0 {
			data = f.Data
		}
		h.PublishLabels(f.Topic, f.Label, data)

	default:
		c.reply(outbound{Op: "error", Of: f.Op, Error: "unknown op"})
		return
	}
	c.reply(outbound{Op: "ack", Hub: name, Of: f.Op, Topic: f.Topic, Label: f.Label})
}

// deliver forwards a hub delivery to the client.
func (c *bridgeConn) deliver(data any, info hub.Info) {
	c.reply(outbound{
		Op:    "msg",
		Hub:   hubOf(info, c.defHub),
		Topic: info.Topic,
		Label: info.Label,
		Data:  data,
	})
}

func hubOf(info hub.Info, def string) string {
	if name, ok := info.Context.(string); ok && name != "" {
		return name
	}
	return def
}

// reply queues a frame, dropping it when the client is not keeping up.
func (c *bridgeConn) reply(f outbound) {
	buf, err := json.Marshal(f)
	if err != nil {
		c.logger.Error("encode frame", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- buf:
	default:
		c.metrics.RecordWebSocketError("send_overflow")
		c.logger.Warn("send queue full, discarding frame", "op", f.Op)
	}
}

func (c *bridgeConn) writeLoop() {
	defer c.conn.Close()
	for buf := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(bridgeWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, buf); err != nil {
			c.metrics.RecordWebSocketError("write")
			c.logger.Debug("write error", "error", err)
			return
		}
		c.metrics.RecordWSFrame("out")
	}
	c.conn.SetWriteDeadline(time.Now().Add(bridgeWriteTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// close unsubscribes every hub the connection joined and stops the writer.
func (c *bridgeConn) close() {
	c.mu.Lock()
	names := make([]string, 0, len(c.hubs))
	for name := range c.hubs {
		names = append(names, name)
	}
	c.hubs = nil
	c.mu.Unlock()

	for _, name := range names {
		hub.Must(name).Unsubscribe(c.ns)
	}

	c.mu.Lock()
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}
