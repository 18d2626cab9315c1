package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// LedgerService owns profile counters and the daily streak.
type LedgerService struct {
	store store.Store
	clock Clock
}

func NewLedgerService(s store.Store, clock Clock) *LedgerService {
	return &LedgerService{store: s, clock: clock}
}

func (s *LedgerService) CreateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, model.NewValidationError("userId", "required")
	}
	return s.store.Profiles().Create(ctx, p)
}

func (s *LedgerService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.store.Profiles().Get(ctx, userID)
}

// AddPoints credits exactly amount points. amount must be positive.
func (s *LedgerService) AddPoints(ctx context.Context, userID string, amount int) (*model.Profile, error) {
	if amount <= 0 {
		return nil, model.NewValidationError("amount", fmt.Sprintf("must be a positive integer, got %d", amount))
	}
	return s.store.Profiles().Apply(ctx, userID, model.LedgerDelta{
		Reason:     model.ReasonManual,
		Points:     amount,
		OccurredOn: s.clock.today(),
	})
}

// RecordContribution increments the counter for kind by one and applies the
// streak rule for occurredOn (today when zero). It awards no points.
func (s *LedgerService) RecordContribution(ctx context.Context, userID string, kind model.ContributionKind, occurredOn model.Date) (*model.Profile, error) {
	if _, err := model.ParseContributionKind(string(kind)); err != nil {
		return nil, err
	}
	if occurredOn.IsZero() {
		occurredOn = s.clock.today()
	}
	d := model.LedgerDelta{
		Reason:      model.EventReason(kind),
		OccurredOn:  occurredOn,
		TouchStreak: true,
	}
	d.Add(kind)
	return s.store.Profiles().Apply(ctx, userID, d)
}

// Audit compares the stored points with the sum of the user's ledger events.
func (s *LedgerService) Audit(ctx context.Context, userID string) (*model.LedgerAudit, error) {
	p, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum, err := s.store.Events().SumPoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.LedgerAudit{
		UserID:      userID,
		Points:      p.Points,
		EventPoints: sum,
		Consistent:  p.Points == sum,
	}, nil
}
