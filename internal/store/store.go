package store

import (
	"context"

	"github.com/dialectdeck/ledger/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
//
// Every operation that changes a profile counter applies the change as a
// single server-side update and appends a ledger event in the same
// transaction.
type Store interface {
	Profiles() Profiles
	Badges() Badges
	Languages() Languages
	Dialects() Dialects
	Entries() Entries
	VariantLinks() VariantLinks
	Votes() Votes
	SeedWords() SeedWords
	DailyLabels() DailyLabels
	Events() Events
}

type Profiles interface {
	// Create returns a ConflictError if the user already has a profile.
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
	// Apply adds d to the profile counters and returns the updated profile.
	Apply(ctx context.Context, userID string, d model.LedgerDelta) (*model.Profile, error)
	// Top orders by points desc, then user id.
	Top(ctx context.Context, limit int) ([]*model.Profile, error)
}

type Badges interface {
	Create(ctx context.Context, b *model.Badge) (*model.Badge, error)
	// List returns the catalog ordered by requirement value.
	List(ctx context.Context) ([]*model.Badge, error)
	// Award inserts the (user, badge) row if absent and, only then, credits
	// the badge reward. awarded is false when the user already had it.
	Award(ctx context.Context, userID string, b *model.Badge, on model.Date) (awarded bool, err error)
	// ListEarned returns the badges earned by the given users, newest first.
	ListEarned(ctx context.Context, userIDs ...string) ([]*model.UserBadge, error)
}

type Languages interface {
	// Create returns a ConflictError if the name is taken.
	Create(ctx context.Context, l *model.Language) (*model.Language, error)
	Get(ctx context.Context, id int64) (*model.Language, error)
	List(ctx context.Context) ([]*model.Language, error)
}

type Dialects interface {
	// Create returns a NotFoundError if LanguageID names no language.
	Create(ctx context.Context, d *model.Dialect) (*model.Dialect, error)
	Get(ctx context.Context, id int64) (*model.Dialect, error)
	// List filters by language unless languageID is nil.
	List(ctx context.Context, languageID *int64) ([]*model.Dialect, error)
}

type Entries interface {
	// Create inserts the entry and applies credit to its creator atomically.
	Create(ctx context.Context, e *model.Entry, credit model.LedgerDelta) (*model.Entry, *model.Profile, error)
	Get(ctx context.Context, entryID string) (*model.Entry, error)
}

type VariantLinks interface {
	// Create returns a ConflictError if the pair is already linked in either order.
	Create(ctx context.Context, l *model.VariantLink) (*model.VariantLink, error)
	Get(ctx context.Context, linkID string) (*model.VariantLink, error)
	ListForEntry(ctx context.Context, entryID string) ([]*model.VariantLinkDetail, error)
	// Recount resets the aggregates from the vote rows.
	Recount(ctx context.Context, linkID string) (*model.VariantLink, error)
}

type Votes interface {
	// Cast upserts the (user, link) vote. firstVote is applied to the voter
	// only when no earlier vote existed.
	Cast(ctx context.Context, v *model.Vote, firstVote model.LedgerDelta) (*model.VoteResult, error)
	Get(ctx context.Context, userID, linkID string) (*model.Vote, error)
}

type SeedWords interface {
	Create(ctx context.Context, w *model.SeedWord) (*model.SeedWord, error)
	Get(ctx context.Context, id int64) (*model.SeedWord, error)
	// List filters by category unless it is empty.
	List(ctx context.Context, category string) ([]*model.SeedWord, error)
}

type DailyLabels interface {
	// Create returns a ConflictError if the user already labeled the seed
	// word in that dialect.
	Create(ctx context.Context, l *model.DailyLabel, credit model.LedgerDelta) (*model.DailyLabel, *model.Profile, error)
}

type Events interface {
	// WeeklyContributions sums the dialect-tagged events of one week per
	// (user, dialect), highest points first.
	WeeklyContributions(ctx context.Context, weekStart model.Date) ([]*model.WeeklyContribution, error)
	SumPoints(ctx context.Context, userID string) (int, error)
}
