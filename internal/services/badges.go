package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dialectdeck/ledger/internal/events"
	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// BadgeService evaluates the badge catalog against profile counters.
type BadgeService struct {
	store    store.Store
	notifier events.Notifier
	log      zerolog.Logger
	clock    Clock
}

func NewBadgeService(s store.Store, n events.Notifier, log zerolog.Logger, clock Clock) *BadgeService {
	if n == nil {
		n = events.Discard{}
	}
	return &BadgeService{store: s, notifier: n, log: log, clock: clock}
}

// Evaluate awards every eligible badge the user does not hold yet and
// returns the newly awarded set (unordered). Catalog failures yield an empty
// result; a missing profile is returned as NotFoundError.
//
// Awarding a reward can unlock a points badge, so passes repeat until one
// awards nothing.
func (s *BadgeService) Evaluate(ctx context.Context, userID string) ([]model.Badge, error) {
	profile, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.Badges().List(ctx)
	if err != nil {
		s.log.Error().Stack().Err(err).Str("user_id", userID).Msg("badge catalog unavailable")
		return []model.Badge{}, nil
	}
	if len(catalog) == 0 {
		return []model.Badge{}, nil
	}

	held := make(map[int64]bool)
	earned, err := s.store.Badges().ListEarned(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("earned badges unavailable, relying on award uniqueness")
	}
	for _, ub := range earned {
		held[ub.BadgeID] = true
	}

	awarded := []model.Badge{}
	on := s.clock.today()
	for pass := 0; pass <= len(catalog); pass++ {
		progressed := false
		for _, b := range catalog {
			if held[b.ID] || !b.RequirementType.Valid() || !b.Satisfied(profile) {
				continue
			}
			ok, err := s.store.Badges().Award(ctx, userID, b, on)
			if err != nil {
				s.log.Error().Stack().Err(err).Str("user_id", userID).Int64("badge_id", b.ID).Msg("badge award failed")
				continue
			}
			held[b.ID] = true
			if ok {
				awarded = append(awarded, *b)
				progressed = true
			}
		}
		if !progressed {
			break
		}
		profile, err = s.store.Profiles().Get(ctx, userID)
		if err != nil {
			s.log.Error().Stack().Err(err).Str("user_id", userID).Msg("profile reload failed")
			break
		}
	}

	if len(awarded) > 0 {
		s.notifier.Notify(ctx, events.Event{
			Kind:   events.KindBadgeAwarded,
			UserID: userID,
			Badges: awarded,
			At:     s.clock.now(),
		})
	}
	return awarded, nil
}

// evaluateAfter runs Evaluate for a contribution trigger. Failures are
// logged and never reach the caller.
func (s *BadgeService) evaluateAfter(ctx context.Context, userID string) []model.Badge {
	if s == nil {
		return nil
	}
	got, err := s.Evaluate(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("badge evaluation skipped")
		return nil
	}
	return got
}

// ValidateCatalog reports catalog rows whose requirement type does not map
// to a profile counter. Evaluate skips such rows.
func (s *BadgeService) ValidateCatalog(ctx context.Context) error {
	catalog, err := s.store.Badges().List(ctx)
	if err != nil {
		return err
	}
	var bad []string
	for _, b := range catalog {
		if !b.RequirementType.Valid() {
			bad = append(bad, fmt.Sprintf("%s (%s)", b.Name, b.RequirementType))
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return model.NewValidationError("requirementType",
			fmt.Sprintf("unknown requirement types: %s (allowed: %s)", strings.Join(bad, ", "), allowedRequirementTypes()))
	}
	return nil
}

func allowedRequirementTypes() string {
	types := model.RequirementTypes()
	names := make([]string, len(types))
	for i, rt := range types {
		names[i] = string(rt)
	}
	return strings.Join(names, ", ")
}

func (s *BadgeService) CreateBadge(ctx context.Context, b *model.Badge) (*model.Badge, error) {
	if strings.TrimSpace(b.Name) == "" {
		return nil, model.NewValidationError("name", "required")
	}
	if !b.RequirementType.Valid() {
		return nil, model.NewValidationError("requirementType",
			fmt.Sprintf("unknown requirement type %q (allowed: %s)", b.RequirementType, allowedRequirementTypes()))
	}
	if b.RequirementValue < 0 {
		return nil, model.NewValidationError("requirementValue", "must not be negative")
	}
	if b.PointsReward < 0 {
		return nil, model.NewValidationError("pointsReward", "must not be negative")
	}
	switch b.Category {
	case "":
		b.Category = model.CategoryContribution
	case model.CategoryContribution, model.CategoryEngagement, model.CategoryStreak:
	default:
		return nil, model.NewValidationError("category", fmt.Sprintf("unknown category %q", b.Category))
	}
	return s.store.Badges().Create(ctx, b)
}

func (s *BadgeService) ListCatalog(ctx context.Context) ([]*model.Badge, error) {
	return s.store.Badges().List(ctx)
}

func (s *BadgeService) ListUserBadges(ctx context.Context, userID string) ([]*model.UserBadge, error) {
	if _, err := s.store.Profiles().Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Badges().ListEarned(ctx, userID)
}
