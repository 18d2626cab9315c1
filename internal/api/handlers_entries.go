package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dialectdeck/ledger/internal/api/respond"
	"github.com/dialectdeck/ledger/internal/api/validate"
	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/services"
)

// EntryHandler serves entries, their variant links and votes on those links.
type EntryHandler struct {
	contributions *services.ContributionService
	variants      *services.VariantService
	votes         *services.VoteService
}

func NewEntryHandler(c *services.ContributionService, v *services.VariantService, votes *services.VoteService) *EntryHandler {
	return &EntryHandler{contributions: c, variants: v, votes: votes}
}

func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Word            string  `json:"word"`
		DialectID       int64   `json:"dialectId"`
		MeaningEN       string  `json:"meaningEn"`
		MeaningUR       string  `json:"meaningUr"`
		ExampleSentence *string `json:"exampleSentence,omitempty"`
		Script          *string `json:"script,omitempty"`
		AudioURL        *string `json:"audioUrl,omitempty"`
		CreatedBy       string  `json:"createdBy"`
		HasAudio        bool    `json:"hasAudio"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := validate.CreateEntry(in.CreatedBy, in.Word, in.MeaningEN, in.ExampleSentence); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	out, err := h.contributions.WordAdded(r.Context(), &model.Entry{
		Word:            in.Word,
		DialectID:       in.DialectID,
		MeaningEN:       in.MeaningEN,
		MeaningUR:       in.MeaningUR,
		ExampleSentence: in.ExampleSentence,
		Script:          in.Script,
		AudioURL:        in.AudioURL,
		CreatedBy:       in.CreatedBy,
	}, in.HasAudio)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	out, err := h.variants.GetEntry(r.Context(), mux.Vars(r)["entryId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *EntryHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	out, err := h.variants.ListVariantsFor(r.Context(), mux.Vars(r)["entryId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *EntryHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Entry1ID        string  `json:"entry1Id"`
		Entry2ID        string  `json:"entry2Id"`
		ConfidenceScore float64 `json:"confidenceScore"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := h.variants.CreateLink(r.Context(), in.Entry1ID, in.Entry2ID, in.ConfidenceScore)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *EntryHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	out, err := h.variants.GetLink(r.Context(), mux.Vars(r)["linkId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// CastVote always answers 200; the outcome field tells recorded, repeated
// and changed votes apart.
func (h *EntryHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID   string `json:"userId"`
		VoteType string `json:"voteType"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := validate.UserID(in.UserID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	out, err := h.contributions.VoteCast(r.Context(), in.UserID, mux.Vars(r)["linkId"], model.VoteType(in.VoteType))
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *EntryHandler) GetVote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	out, err := h.votes.GetVote(r.Context(), vars["userId"], vars["linkId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *EntryHandler) Recount(w http.ResponseWriter, r *http.Request) {
	out, err := h.votes.Recount(r.Context(), mux.Vars(r)["linkId"])
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
