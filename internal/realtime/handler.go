package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pollroom/internal/events"
	"pollroom/internal/services"
	"pollroom/pkg/logger"
)

// Presence is the slice of the Redis presence store the handler needs.
type Presence interface {
	Join(ctx context.Context, pollID, connKey, userID string) error
	Leave(ctx context.Context, pollID, connKey string) error
	Heartbeat(ctx context.Context, pollID string) error
}

// Handler upgrades poll viewers to websocket connections and wires them
// into the hub, the tally and the presence channel.
type Handler struct {
	hub      *Hub
	tally    *Tally
	presence Presence
	log      *logger.Logger
}

func NewHandler(hub *Hub, tally *Tally, presence Presence, log *logger.Logger) *Handler {
	return &Handler{hub: hub, tally: tally, presence: presence, log: log}
}

// Connect handles GET /ws/polls/:id. Anonymous viewers are allowed; votes
// require a session but watching does not.
func (h *Handler) Connect(c *gin.Context) {
	pollID := c.Param("id")
	if pollID == "" {
		c.Status(http.StatusNotFound)
		return
	}

	userID := ""
	if id, ok := services.CurrentUser(c.Request.Context()); ok {
		userID = id.String()
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	h.hub.Subscribe(client, events.VoteChannel(pollID))
	h.hub.Subscribe(client, events.PresenceChannel(pollID))
	h.hub.Subscribe(client, events.PollChannel(pollID))
	go client.WriteLoop(ctx)

	// First frame carries authoritative counts so a viewer arriving from a
	// cached page still starts from the truth.
	if snapshot, err := h.tally.Snapshot(c.Request.Context(), pollID); err == nil {
		if payload, err := json.Marshal(snapshot); err == nil {
			client.SendMessage(payload)
		}
	}

	if h.presence != nil {
		if err := h.presence.Join(c.Request.Context(), pollID, client.ID, userID); err != nil && h.log != nil {
			h.log.Warnf("presence join failed for poll %s: %v", pollID, err)
		}
		defer func() {
			leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer leaveCancel()
			if err := h.presence.Leave(leaveCtx, pollID, client.ID); err != nil && h.log != nil {
				h.log.Warnf("presence leave failed for poll %s: %v", pollID, err)
			}
		}()
	}

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if h.presence != nil {
			_ = h.presence.Heartbeat(context.Background(), pollID)
		}
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}

	h.hub.Unregister(client)
}
