package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"journal-backend/internal/auth"
	"journal-backend/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// TokenVerifier resolves an access token to its claims.
type TokenVerifier interface {
	Verify(token, wantType string) (auth.Claims, error)
}

type client struct {
	userID string
	send   chan domain.TradeEvent
}

// Handler streams ledger events to each user's open connections. It is
// registered as a domain.TradeListener on the trade service.
type Handler struct {
	verifier TokenVerifier
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHandler(verifier TokenVerifier, checkOrigin func(r *http.Request) bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger:  logger,
		clients: make(map[string]map[*client]struct{}),
	}
}

// OnTradeEvent never blocks; a client whose buffer is full misses the event.
func (h *Handler) OnTradeEvent(_ context.Context, ev domain.TradeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[ev.UserID] {
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("websocket client lagging, event dropped",
				zap.String("user_id", ev.UserID),
				zap.String("type", ev.Type))
		}
	}
}

// Connections returns the number of open connections for the user.
func (h *Handler) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Handle upgrades GET /ws/trades?token=<access token>.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	claims, err := h.verifier.Verify(r.URL.Query().Get("token"), auth.TokenAccess)
	if err != nil {
		http.Error(w, `{"error":"invalid or missing token"}`, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{userID: claims.UserID, send: make(chan domain.TradeEvent, sendBuffer)}
	h.register(c)
	h.logger.Info("websocket client connected", zap.String("user_id", c.userID))

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, c, done)

	h.unregister(c)
	conn.Close()
	h.logger.Info("websocket client disconnected", zap.String("user_id", c.userID))
}

// readPump drains client frames so pongs and close frames are processed.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(newEventMessage(ev)); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Handler) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[c.userID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

type eventMessage struct {
	Type      string  `json:"type"`
	TradeID   string  `json:"trade_id"`
	Pair      string  `json:"pair"`
	Result    string  `json:"result"`
	PnL       float64 `json:"pnl"`
	CreatedAt string  `json:"created_at"`
}

func newEventMessage(ev domain.TradeEvent) eventMessage {
	m := eventMessage{Type: ev.Type}
	if t := ev.Trade; t != nil {
		m.TradeID = t.ID
		m.Pair = t.Pair
		m.Result = string(t.Result)
		m.PnL = t.PnL.InexactFloat64()
		m.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	return m
}
