package api

import (
	"net/http"

	"github.com/dialectdeck/ledger/internal/api/respond"
	"github.com/dialectdeck/ledger/internal/api/validate"
	"github.com/dialectdeck/ledger/internal/services"
)

type LeaderboardHandler struct {
	svc *services.LeaderboardService
}

func NewLeaderboardHandler(svc *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

// Top handles GET /api/leaderboard?limit=N
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respond.WriteBadRequest(w, "limit must be an integer")
		return
	}
	out, err := h.svc.Top(r.Context(), limit)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Weekly handles GET /api/competition/weekly?weekStart=YYYY-MM-DD
func (h *LeaderboardHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	week, err := validate.Date("weekStart", r.URL.Query().Get("weekStart"))
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	out, err := h.svc.Weekly(r.Context(), week)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
