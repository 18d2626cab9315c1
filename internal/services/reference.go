package services

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// DailyChallengeSize is how many seed words one daily challenge offers.
const DailyChallengeSize = 10

// ReferenceService seeds and reads languages, dialects and daily-challenge words.
type ReferenceService struct {
	store store.Store
	clock Clock
}

func NewReferenceService(s store.Store, clock Clock) *ReferenceService {
	return &ReferenceService{store: s, clock: clock}
}

func (s *ReferenceService) CreateLanguage(ctx context.Context, l *model.Language) (*model.Language, error) {
	if strings.TrimSpace(l.Name) == "" {
		return nil, model.NewValidationError("name", "required")
	}
	if l.SpeakersEstimate != nil && *l.SpeakersEstimate < 0 {
		return nil, model.NewValidationError("speakersEstimate", "must not be negative")
	}
	return s.store.Languages().Create(ctx, l)
}

func (s *ReferenceService) ListLanguages(ctx context.Context) ([]*model.Language, error) {
	return s.store.Languages().List(ctx)
}

func (s *ReferenceService) CreateDialect(ctx context.Context, d *model.Dialect) (*model.Dialect, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, model.NewValidationError("name", "required")
	}
	return s.store.Dialects().Create(ctx, d)
}

// ListDialects returns every dialect, or those of one language.
func (s *ReferenceService) ListDialects(ctx context.Context, languageID *int64) ([]*model.Dialect, error) {
	return s.store.Dialects().List(ctx, languageID)
}

func (s *ReferenceService) CreateSeedWord(ctx context.Context, w *model.SeedWord) (*model.SeedWord, error) {
	if strings.TrimSpace(w.Word) == "" {
		return nil, model.NewValidationError("word", "required")
	}
	if strings.TrimSpace(w.MeaningEN) == "" {
		return nil, model.NewValidationError("meaningEn", "required")
	}
	if strings.TrimSpace(w.Category) == "" {
		w.Category = "general"
	}
	return s.store.SeedWords().Create(ctx, w)
}

// ListSeedWords returns every seed word, or those of one category.
// "all" is accepted as an alias for no filter.
func (s *ReferenceService) ListSeedWords(ctx context.Context, category string) ([]*model.SeedWord, error) {
	if category == "all" {
		category = ""
	}
	return s.store.SeedWords().List(ctx, category)
}

// DailyChallenge picks up to DailyChallengeSize seed words for the given day.
// The shuffle is seeded from the day and category so every caller sees the
// same set until the date changes. A zero day means today.
func (s *ReferenceService) DailyChallenge(ctx context.Context, category string, day model.Date) ([]*model.SeedWord, error) {
	if category == "all" {
		category = ""
	}
	words, err := s.ListSeedWords(ctx, category)
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = s.clock.today()
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(day.String() + "|" + category))
	r := rand.New(rand.NewSource(int64(h.Sum64())))
	r.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	if len(words) > DailyChallengeSize {
		words = words[:DailyChallengeSize]
	}
	return words, nil
}
