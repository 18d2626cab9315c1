package api

import (
	"net/http"
	"strconv"

	"github.com/dialectdeck/ledger/internal/api/respond"
	"github.com/dialectdeck/ledger/internal/api/validate"
	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/services"
)

// ReferenceHandler serves languages, dialects, seed words and daily labels.
type ReferenceHandler struct {
	reference     *services.ReferenceService
	contributions *services.ContributionService
}

func NewReferenceHandler(ref *services.ReferenceService, c *services.ContributionService) *ReferenceHandler {
	return &ReferenceHandler{reference: ref, contributions: c}
}

func (h *ReferenceHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	out, err := h.reference.ListLanguages(r.Context())
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []*model.Language{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ReferenceHandler) CreateLanguage(w http.ResponseWriter, r *http.Request) {
	var in model.Language
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = 0
	out, err := h.reference.CreateLanguage(r.Context(), &in)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListDialects accepts an optional ?languageId= filter.
func (h *ReferenceHandler) ListDialects(w http.ResponseWriter, r *http.Request) {
	var languageID *int64
	if v := r.URL.Query().Get("languageId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.WriteServiceError(w, r, model.NewValidationError("languageId", "must be an integer"))
			return
		}
		languageID = &id
	}
	out, err := h.reference.ListDialects(r.Context(), languageID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []*model.Dialect{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ReferenceHandler) CreateDialect(w http.ResponseWriter, r *http.Request) {
	var in model.Dialect
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = 0
	out, err := h.reference.CreateDialect(r.Context(), &in)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *ReferenceHandler) ListSeedWords(w http.ResponseWriter, r *http.Request) {
	out, err := h.reference.ListSeedWords(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []*model.SeedWord{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ReferenceHandler) DailyChallenge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, err := validate.Date("date", q.Get("date"))
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	out, err := h.reference.DailyChallenge(r.Context(), q.Get("category"), day)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []*model.SeedWord{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *ReferenceHandler) CreateSeedWord(w http.ResponseWriter, r *http.Request) {
	var in model.SeedWord
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = 0
	out, err := h.reference.CreateSeedWord(r.Context(), &in)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *ReferenceHandler) SubmitDailyLabel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID     string  `json:"userId"`
		SeedWordID int64   `json:"seedWordId"`
		DialectID  int64   `json:"dialectId"`
		LabelText  string  `json:"labelText"`
		AudioURL   *string `json:"audioUrl,omitempty"`
		HasAudio   bool    `json:"hasAudio"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := validate.DailyLabel(in.UserID, in.LabelText); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	out, err := h.contributions.DailyLabelSubmitted(r.Context(), &model.DailyLabel{
		UserID:     in.UserID,
		SeedWordID: in.SeedWordID,
		DialectID:  in.DialectID,
		LabelText:  in.LabelText,
		AudioURL:   in.AudioURL,
	}, in.HasAudio)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}
