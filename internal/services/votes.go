package services

import (
	"context"
	"strings"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// VoteService keeps one effective vote per (user, variant link).
type VoteService struct {
	store  store.Store
	badges *BadgeService
	clock  Clock
}

func NewVoteService(s store.Store, badges *BadgeService, clock Clock) *VoteService {
	return &VoteService{store: s, badges: badges, clock: clock}
}

// CastVote records, ignores or replaces the user's vote on linkID. Only the
// first vote earns a point and triggers badge evaluation.
func (s *VoteService) CastVote(ctx context.Context, userID, linkID string, voteType model.VoteType) (*model.VoteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.NewValidationError("userId", "required")
	}
	if strings.TrimSpace(linkID) == "" {
		return nil, model.NewValidationError("linkId", "required")
	}
	if _, err := model.ParseVoteType(string(voteType)); err != nil {
		return nil, err
	}
	res, err := s.store.Votes().Cast(ctx, &model.Vote{
		UserID:        userID,
		VariantLinkID: linkID,
		VoteType:      voteType,
	}, model.LedgerDelta{
		Reason:      model.ReasonVote,
		Points:      model.PointsVote,
		VotesCast:   1,
		OccurredOn:  s.clock.today(),
		TouchStreak: true,
	})
	if err != nil {
		return nil, err
	}
	if res.Outcome == model.VoteRecorded {
		res.NewBadges = s.badges.evaluateAfter(ctx, userID)
	}
	return res, nil
}

// Recount rebuilds the link aggregates from its vote rows.
func (s *VoteService) Recount(ctx context.Context, linkID string) (*model.VariantLink, error) {
	return s.store.VariantLinks().Recount(ctx, linkID)
}

func (s *VoteService) GetVote(ctx context.Context, userID, linkID string) (*model.Vote, error) {
	return s.store.Votes().Get(ctx, userID, linkID)
}
