package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dialectdeck/ledger/internal/api/respond"
	"github.com/dialectdeck/ledger/internal/api/validate"
	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/services"
)

type ProfileHandler struct {
	ledger *services.LedgerService
	badges *services.BadgeService
}

func NewProfileHandler(ledger *services.LedgerService, badges *services.BadgeService) *ProfileHandler {
	return &ProfileHandler{ledger: ledger, badges: badges}
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID      string `json:"userId"`
		DisplayName string `json:"displayName"`
		Email       string `json:"email"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := validate.CreateProfile(in.UserID, in.Email, in.DisplayName); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	out, err := h.ledger.CreateProfile(r.Context(), &model.Profile{UserID: in.UserID, DisplayName: in.DisplayName, Email: in.Email})
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.GetProfile(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ProfileHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount int `json:"amount"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := h.ledger.AddPoints(r.Context(), mux.Vars(r)["userId"], in.Amount)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ProfileHandler) RecordContribution(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Kind string `json:"kind"`
		Date string `json:"date"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	kind, err := model.ParseContributionKind(in.Kind)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	on, err := validate.Date("date", in.Date)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	out, err := h.ledger.RecordContribution(r.Context(), mux.Vars(r)["userId"], kind, on)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ProfileHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	out, err := h.badges.ListUserBadges(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []*model.UserBadge{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ProfileHandler) EvaluateBadges(w http.ResponseWriter, r *http.Request) {
	out, err := h.badges.Evaluate(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"newBadges": out})
}

func (h *ProfileHandler) Audit(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.Audit(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
