package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is the fronting layer's concern.
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// Hub fans committed outline events out to every websocket subscriber of
// the affected project. It implements outline.Broadcaster.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*client]bool // projectID -> subscribers
	log  *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{subs: map[string]map[*client]bool{}, log: log}
}

type client struct {
	sessionID string
	projectID string
	conn      *websocket.Conn
	send      chan any
}

// Serve upgrades the request and subscribes the connection to projectID
// until the peer goes away. The caller is assumed to already be authorized
// for the project.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, projectID string) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "project", projectID, "error", err)
		return
	}

	c := &client{
		sessionID: uuid.NewString(),
		projectID: projectID,
		conn:      ws,
		send:      make(chan any, sendBufferSize),
	}
	h.register(c)
	h.log.Info("collaborator connected", "project", projectID, "session", c.sessionID)

	c.send <- map[string]any{
		"action":    "subscribed",
		"sessionId": c.sessionID,
		"projectId": projectID,
	}

	go c.writeLoop(h)

	// Subscribers are consumers only; the read loop just detects the peer
	// closing the connection.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
	h.log.Info("collaborator disconnected", "project", projectID, "session", c.sessionID)
}

func (c *client) writeLoop(h *Hub) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.log.Warn("websocket write failed, dropping subscriber",
				"project", c.projectID, "session", c.sessionID, "error", err)
			h.unregister(c)
			return
		}
	}
}

// Broadcast delivers a committed event to every subscriber of the project.
// A subscriber with a full send buffer is dropped rather than allowed to
// stall the rest.
func (h *Hub) Broadcast(projectID string, ev outline.Event) {
	h.mu.Lock()
	var stalled []*client
	for c := range h.subs[projectID] {
		select {
		case c.send <- ev:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stalled {
		h.log.Warn("subscriber stalled, dropping",
			"project", projectID, "session", c.sessionID)
		h.unregister(c)
	}
}

// Subscribers reports the current subscriber count for a project.
func (h *Hub) Subscribers(projectID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[projectID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[c.projectID] == nil {
		h.subs[c.projectID] = map[*client]bool{}
	}
	h.subs[c.projectID][c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	set, ok := h.subs[c.projectID]
	if ok && set[c] {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, c.projectID)
		}
		close(c.send)
	}
	h.mu.Unlock()
}
