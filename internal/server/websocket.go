package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer (imports travel as envelopes)
	maxMessageSize = maxBodySize

	// Outgoing messages buffered per client before it is dropped
	sendBuffer = 16
)

// Message types pushed to WebSocket clients.
const (
	MessagePreview = "preview"
	MessageError   = "error"
)

// Message is a server-to-client WebSocket message.
type Message struct {
	Type    string         `json:"type"`
	Preview *Preview       `json:"preview,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// client is one connected form page.
type client struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte
}

// hub tracks connected clients and fans previews out to them.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// remove unregisters c and closes its send channel, once.
func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) broadcastPreview(p Preview) {
	data, err := json.Marshal(Message{Type: MessagePreview, Preview: &p})
	if err != nil {
		logging.Error("Failed to marshal preview", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logging.Warn("Dropping slow WebSocket client",
				zap.String("remote_addr", c.remoteAddr),
			)
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		logging.Info("Closing active connection", zap.String("remote_addr", c.remoteAddr))
		delete(h.clients, c)
		close(c.send)
		_ = c.conn.Close()
	}
}

// handleWebSocket upgrades the request, sends the current preview and then
// applies every command envelope the client sends.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{conn: conn, remoteAddr: r.RemoteAddr, send: make(chan []byte, sendBuffer)}
	logging.LogConnection(c.remoteAddr, "websocket_upgraded")

	p := BuildPreview(s.store.Snapshot())
	if data, err := json.Marshal(Message{Type: MessagePreview, Preview: &p}); err == nil {
		c.send <- data
	}
	s.hub.add(c)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.writePump(c)
	}()
	go func() {
		defer s.wg.Done()
		s.readPump(c)
	}()
}

// readPump reads envelopes until the connection fails or closes.
func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.remove(c)
		_ = c.conn.Close()
		logging.LogConnection(c.remoteAddr, "websocket_closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Connection closed or error reading message",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		logging.LogWebSocketMessage(c.remoteAddr, "received", msgType, data)

		if msgType != websocket.TextMessage {
			logging.Warn("Ignoring non-text WebSocket message",
				zap.String("remote_addr", c.remoteAddr),
				zap.Int("message_type", msgType),
			)
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.replyError(c, kiosk.NewParseError("Invalid command envelope", err))
			continue
		}
		// Success is answered by the store broadcast
		if err := s.apply(env); err != nil {
			s.replyError(c, err)
		}
	}
}

func (s *Server) replyError(c *client, err error) {
	data, merr := json.Marshal(Message{Type: MessageError, Error: &ErrorResponse{
		Error: kiosk.GetShortErrorMessage(err),
		Hint:  kiosk.GetUserFriendlyHint(err),
	}})
	if merr != nil {
		return
	}

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send channel and keeps the connection alive.
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Error("Failed to send message",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
				return
			}
			logging.LogWebSocketMessage(c.remoteAddr, "sent", websocket.TextMessage, data)

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
