package services

import (
	"context"
	"strings"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// ContributionResult is what a trigger hands back for notification.
type ContributionResult struct {
	Profile   *model.Profile    `json:"profile"`
	NewBadges []model.Badge     `json:"newBadges"`
	Entry     *model.Entry      `json:"entry,omitempty"`
	Label     *model.DailyLabel `json:"label,omitempty"`
}

// ContributionService translates user actions into ledger updates followed
// by badge evaluation.
type ContributionService struct {
	store  store.Store
	badges *BadgeService
	votes  *VoteService
	clock  Clock
}

func NewContributionService(s store.Store, badges *BadgeService, votes *VoteService, clock Clock) *ContributionService {
	return &ContributionService{store: s, badges: badges, votes: votes, clock: clock}
}

// WordAdded stores the entry and credits its creator 10 points, plus 5 and
// an audio upload when the word comes with audio.
func (s *ContributionService) WordAdded(ctx context.Context, e *model.Entry, hasAudio bool) (*ContributionResult, error) {
	if strings.TrimSpace(e.CreatedBy) == "" {
		return nil, model.NewValidationError("createdBy", "required")
	}
	if strings.TrimSpace(e.Word) == "" {
		return nil, model.NewValidationError("word", "required")
	}
	if strings.TrimSpace(e.MeaningEN) == "" {
		return nil, model.NewValidationError("meaningEn", "required")
	}
	if e.DialectID <= 0 {
		return nil, model.NewValidationError("dialectId", "required")
	}
	hasAudio = hasAudio || (e.AudioURL != nil && *e.AudioURL != "")

	dialect := e.DialectID
	credit := model.LedgerDelta{
		Reason:      model.ReasonWord,
		Points:      model.WordPoints(hasAudio),
		WordsAdded:  1,
		DialectID:   &dialect,
		OccurredOn:  s.clock.today(),
		TouchStreak: true,
	}
	if hasAudio {
		credit.AudioUploaded = 1
	}
	entry, profile, err := s.store.Entries().Create(ctx, e, credit)
	if err != nil {
		return nil, err
	}
	return &ContributionResult{
		Profile:   profile,
		NewBadges: s.badges.evaluateAfter(ctx, e.CreatedBy),
		Entry:     entry,
	}, nil
}

// VoteCast is the vote trigger; see VoteService.CastVote.
func (s *ContributionService) VoteCast(ctx context.Context, userID, linkID string, voteType model.VoteType) (*model.VoteResult, error) {
	return s.votes.CastVote(ctx, userID, linkID, voteType)
}

// DailyLabelSubmitted stores the label and credits 5 points, plus 3 and an
// audio upload with audio. A repeat label for the same word and dialect is a
// ConflictError.
func (s *ContributionService) DailyLabelSubmitted(ctx context.Context, l *model.DailyLabel, hasAudio bool) (*ContributionResult, error) {
	if strings.TrimSpace(l.UserID) == "" {
		return nil, model.NewValidationError("userId", "required")
	}
	if strings.TrimSpace(l.LabelText) == "" {
		return nil, model.NewValidationError("labelText", "required")
	}
	if l.SeedWordID <= 0 {
		return nil, model.NewValidationError("seedWordId", "required")
	}
	if l.DialectID <= 0 {
		return nil, model.NewValidationError("dialectId", "required")
	}
	hasAudio = hasAudio || (l.AudioURL != nil && *l.AudioURL != "")

	dialect := l.DialectID
	credit := model.LedgerDelta{
		Reason:      model.ReasonLabel,
		Points:      model.LabelPoints(hasAudio),
		LabelsAdded: 1,
		DialectID:   &dialect,
		OccurredOn:  s.clock.today(),
		TouchStreak: true,
	}
	if hasAudio {
		credit.AudioUploaded = 1
	}
	label, profile, err := s.store.DailyLabels().Create(ctx, l, credit)
	if err != nil {
		return nil, err
	}
	return &ContributionResult{
		Profile:   profile,
		NewBadges: s.badges.evaluateAfter(ctx, l.UserID),
		Label:     label,
	}, nil
}
