// Package http exposes the leaderboard API: score submission, category
// boards, and a websocket feed of board updates.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"quizzle/internal/leaderboard"
)

type Handler struct {
	service *leaderboard.Service
	log     *zap.Logger
}

func NewHandler(service *leaderboard.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// Register wires the API routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/leaderboard", h.serveLeaderboard)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func (h *Handler) serveLeaderboard(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submitScore(w, r)
	case http.MethodGet:
		h.getLeaderboard(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// flexInt accepts both a JSON number and a numeric string; clients have
// historically sent the score either way.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type submitRequest struct {
	Username string  `json:"username"`
	Score    flexInt `json:"score"`
	Category flexInt `json:"category"`
}

func (h *Handler) submitScore(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.SubmitScore(r.Context(), req.Username, int(req.Score), int(req.Category))
	if err != nil {
		h.log.Error("submit score failed", zap.Error(err))
		http.Error(w, "could not save score", http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(r.URL.Query().Get("category"))
	if err != nil {
		categoryID = 0
	}
	username := r.URL.Query().Get("username")

	entries, err := h.service.GetLeaderboard(r.Context(), categoryID, username)
	if err != nil {
		h.log.Error("get leaderboard failed", zap.Error(err))
		http.Error(w, "could not fetch leaderboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, entries)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
