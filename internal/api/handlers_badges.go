package api

import (
	"net/http"

	"github.com/dialectdeck/ledger/internal/api/respond"
	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/services"
)

type BadgeHandler struct {
	svc *services.BadgeService
}

func NewBadgeHandler(svc *services.BadgeService) *BadgeHandler { return &BadgeHandler{svc: svc} }

func (h *BadgeHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListCatalog(r.Context())
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []*model.Badge{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *BadgeHandler) CreateBadge(w http.ResponseWriter, r *http.Request) {
	var in model.Badge
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = 0
	out, err := h.svc.CreateBadge(r.Context(), &in)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}
