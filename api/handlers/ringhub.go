package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jonasfh/picobell-api/api"
	"github.com/jonasfh/picobell-api/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RingHub tracks connected users and fans ring payloads out to them. It is
// a secondary delivery channel next to the push service, useful for clients
// that cannot register a push token.
type RingHub struct {
	mutex   sync.Mutex
	clients map[string][]*websocket.Conn
	secret  []byte
}

// NewRingHub creates a hub validating connection tokens with the given
// session secret.
func NewRingHub(secret []byte) *RingHub {
	return &RingHub{
		clients: make(map[string][]*websocket.Conn),
		secret:  secret,
	}
}

// HandleDoorbellWebSocket upgrades an authenticated user connection and
// keeps it registered until it closes. The session token arrives as a query
// parameter because browser websocket clients cannot set headers.
func (h *RingHub) HandleDoorbellWebSocket(w http.ResponseWriter, r *http.Request) {
	principal, err := api.ParseUserToken(r.URL.Query().Get("token"), h.secret)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid token"}`))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed",
			"error", err)
		return
	}

	userID := principal.UserID.Hex()
	h.mutex.Lock()
	h.clients[userID] = append(h.clients[userID], conn)
	h.mutex.Unlock()
	zap.S().Debugw("user connected to ring feed",
		"userId", userID)

	// drain until the peer goes away
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	conn.Close()
	h.remove(userID, conn)
	zap.S().Debugw("user disconnected from ring feed",
		"userId", userID)
}

// Broadcast writes the payload to every open connection of the given users.
// Dead connections are dropped; delivery is best effort.
func (h *RingHub) Broadcast(userIDs []string, payload models.RingPayload) {
	if h == nil {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, userID := range userIDs {
		conns := h.clients[userID]
		kept := conns[:0]
		for _, conn := range conns {
			if err := conn.WriteJSON(payload); err != nil {
				conn.Close()
				continue
			}
			kept = append(kept, conn)
		}
		if len(kept) == 0 {
			delete(h.clients, userID)
		} else {
			h.clients[userID] = kept
		}
	}
}

func (h *RingHub) remove(userID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns := h.clients[userID]
	kept := conns[:0]
	for _, c := range conns {
		if c != conn {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(h.clients, userID)
	} else {
		h.clients[userID] = kept
	}
}
