package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// VariantService serves the symmetric variant relation between entries.
// Confidence is stored as supplied by the linking process.
type VariantService struct {
	store store.Store
}

func NewVariantService(s store.Store) *VariantService { return &VariantService{store: s} }

// ListVariantsFor orients every link touching entryID towards the other entry.
func (s *VariantService) ListVariantsFor(ctx context.Context, entryID string) ([]model.Variant, error) {
	if _, err := s.store.Entries().Get(ctx, entryID); err != nil {
		return nil, err
	}
	links, err := s.store.VariantLinks().ListForEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Variant, 0, len(links))
	for _, d := range links {
		other := d.Entry2
		if d.Link.Entry2ID == entryID {
			other = d.Entry1
		}
		out = append(out, model.Variant{
			LinkID:          d.Link.ID,
			Entry:           other,
			ConfidenceScore: d.Link.ConfidenceScore,
			VotesUp:         d.Link.VotesUp,
			VotesDown:       d.Link.VotesDown,
		})
	}
	return out, nil
}

func (s *VariantService) CreateLink(ctx context.Context, entry1ID, entry2ID string, confidence float64) (*model.VariantLink, error) {
	entry1ID, entry2ID = strings.TrimSpace(entry1ID), strings.TrimSpace(entry2ID)
	if entry1ID == "" || entry2ID == "" {
		return nil, model.NewValidationError("entries", "both entry ids are required")
	}
	if entry1ID == entry2ID {
		return nil, model.NewValidationError("entries", "an entry cannot be a variant of itself")
	}
	if confidence < 0 || confidence > 1 {
		return nil, model.NewValidationError("confidenceScore", fmt.Sprintf("must be within [0, 1], got %g", confidence))
	}
	return s.store.VariantLinks().Create(ctx, &model.VariantLink{
		Entry1ID:        entry1ID,
		Entry2ID:        entry2ID,
		ConfidenceScore: confidence,
	})
}

func (s *VariantService) GetLink(ctx context.Context, linkID string) (*model.VariantLink, error) {
	return s.store.VariantLinks().Get(ctx, linkID)
}

func (s *VariantService) GetEntry(ctx context.Context, entryID string) (*model.Entry, error) {
	return s.store.Entries().Get(ctx, entryID)
}
