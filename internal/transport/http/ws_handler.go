package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizzle/internal/domain"
	"quizzle/internal/leaderboard"
)

// WSHandler streams leaderboard updates for a category to connected
// clients whenever a new score lands there.
type WSHandler struct {
	service  *leaderboard.Service
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *leaderboard.Service, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string                    `json:"type"`
	Payload []domain.LeaderboardEntry `json:"payload"`
}

// ServeWS upgrades the request and pushes the category's board: the
// current top entries first, then every update until the client leaves.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, "missing or invalid category", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	initial, err := h.service.GetLeaderboard(r.Context(), categoryID, "")
	if err != nil {
		h.log.Warn("ws initial board failed", zap.Error(err))
		return
	}
	if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: initial}); err != nil {
		return
	}

	updates, cancel := h.service.Subscribe(categoryID)
	defer cancel()

	done := make(chan struct{})

	// The read loop only detects the client going away; the feed is
	// one-directional.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case top, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: top}); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}
