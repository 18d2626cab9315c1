package services

import (
	"context"
	"sort"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
	weeklyTopContributors   = 10
)

// LeaderboardService ranks profiles and rolls up the weekly tribe competition.
type LeaderboardService struct {
	store store.Store
	clock Clock
}

func NewLeaderboardService(s store.Store, clock Clock) *LeaderboardService {
	return &LeaderboardService{store: s, clock: clock}
}

// Top ranks profiles by points. limit <= 0 selects the default; larger
// values are capped.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	profiles, err := s.store.Profiles().Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	earned, err := s.store.Badges().ListEarned(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string][]*model.UserBadge, len(ids))
	for _, ub := range earned {
		byUser[ub.UserID] = append(byUser[ub.UserID], ub)
	}
	out := make([]model.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		badges := byUser[p.UserID]
		if badges == nil {
			badges = []*model.UserBadge{}
		}
		out = append(out, model.LeaderboardEntry{Rank: i + 1, Profile: p, Badges: badges})
	}
	return out, nil
}

// Weekly aggregates the week containing weekStart (the current week when
// zero). Totals are recomputed from ledger events on every call.
func (s *LeaderboardService) Weekly(ctx context.Context, weekStart model.Date) (*model.WeeklyCompetition, error) {
	if weekStart.IsZero() {
		weekStart = s.clock.today()
	}
	weekStart = weekStart.WeekStart()

	rows, err := s.store.Events().WeeklyContributions(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	standings := make(map[int64]*model.DialectStanding)
	for _, r := range rows {
		st, ok := standings[r.DialectID]
		if !ok {
			st = &model.DialectStanding{DialectID: r.DialectID, DialectName: r.DialectName, Region: r.Region}
			standings[r.DialectID] = st
		}
		st.TotalWords += r.WordsAdded
		st.TotalAudio += r.AudioUploaded
		st.TotalLabels += r.LabelsAdded
		st.TotalPoints += r.PointsEarned
		st.ContributorCount++
	}
	dialects := make([]model.DialectStanding, 0, len(standings))
	for _, st := range standings {
		dialects = append(dialects, *st)
	}
	sort.Slice(dialects, func(i, j int) bool {
		if dialects[i].TotalPoints != dialects[j].TotalPoints {
			return dialects[i].TotalPoints > dialects[j].TotalPoints
		}
		return dialects[i].DialectName < dialects[j].DialectName
	})

	top := rows
	if len(top) > weeklyTopContributors {
		top = top[:weeklyTopContributors]
	}
	if top == nil {
		top = []*model.WeeklyContribution{}
	}
	return &model.WeeklyCompetition{WeekStart: weekStart, Dialects: dialects, TopContributors: top}, nil
}
