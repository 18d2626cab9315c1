package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectdeck/ledger/internal/events"
	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
	"github.com/dialectdeck/ledger/internal/store/sqlite"
)

type fixture struct {
	store         store.Store
	day           model.Date
	bus           *events.Bus
	ledger        *LedgerService
	badges        *BadgeService
	votes         *VoteService
	contributions *ContributionService
	variants      *VariantService
	board         *LeaderboardService
	reference     *ReferenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{store: s, day: model.NewDate(2025, time.March, 3)}
	clock := Clock(func() time.Time { return f.day.Time().Add(9 * time.Hour) })
	f.bus = events.NewBus(16, zerolog.Nop())
	f.ledger = NewLedgerService(s, clock)
	f.badges = NewBadgeService(s, f.bus, zerolog.Nop(), clock)
	f.votes = NewVoteService(s, f.badges, clock)
	f.contributions = NewContributionService(s, f.badges, f.votes, clock)
	f.variants = NewVariantService(s)
	f.board = NewLeaderboardService(s, clock)
	f.reference = NewReferenceService(s, clock)
	return f
}

func (f *fixture) profile(t *testing.T, id string) *model.Profile {
	t.Helper()
	p, err := f.ledger.CreateProfile(context.Background(), &model.Profile{UserID: id, DisplayName: id})
	require.NoError(t, err)
	return p
}

func (f *fixture) dialect(t *testing.T, name string) *model.Dialect {
	t.Helper()
	d, err := f.reference.CreateDialect(context.Background(), &model.Dialect{Name: name})
	require.NoError(t, err)
	return d
}

func (f *fixture) word(t *testing.T, user string, dialect int64, word string, audio bool) *ContributionResult {
	t.Helper()
	e := &model.Entry{Word: word, DialectID: dialect, MeaningEN: word, CreatedBy: user}
	if audio {
		u := "https://cdn.example.test/" + word + ".webm"
		e.AudioURL = &u
	}
	res, err := f.contributions.WordAdded(context.Background(), e, false)
	require.NoError(t, err)
	return res
}

func (f *fixture) assertConsistent(t *testing.T, userID string) {
	t.Helper()
	a, err := f.ledger.Audit(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, a.Consistent, "points %d, events %d", a.Points, a.EventPoints)
}

func TestWordsAndFirstBadge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "amna")
	d := f.dialect(t, "Saraiki")
	_, err := f.badges.CreateBadge(ctx, &model.Badge{
		Name:             "First Words",
		RequirementType:  model.RequirementWordsAdded,
		RequirementValue: 2,
		PointsReward:     20,
	})
	require.NoError(t, err)

	first := f.word(t, "amna", d.ID, "paani", false)
	assert.Equal(t, 10, first.Profile.Points)
	assert.Equal(t, 1, first.Profile.WordsAdded)
	assert.Empty(t, first.NewBadges)

	second := f.word(t, "amna", d.ID, "roti", true)
	assert.Equal(t, 25, second.Profile.Points)
	assert.Equal(t, 2, second.Profile.WordsAdded)
	assert.Equal(t, 1, second.Profile.AudioUploaded)
	require.Len(t, second.NewBadges, 1)
	assert.Equal(t, "First Words", second.NewBadges[0].Name)

	p, err := f.ledger.GetProfile(ctx, "amna")
	require.NoError(t, err)
	assert.Equal(t, 45, p.Points)

	again, err := f.badges.Evaluate(ctx, "amna")
	require.NoError(t, err)
	assert.Empty(t, again)

	held, err := f.badges.ListUserBadges(ctx, "amna")
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "First Words", held[0].Badge.Name)

	select {
	case ev := <-f.bus.Subscribe():
		assert.Equal(t, events.KindBadgeAwarded, ev.Kind)
		assert.Equal(t, "amna", ev.UserID)
	default:
		t.Fatal("expected a badge event")
	}
	f.assertConsistent(t, "amna")
}

func TestEvaluate_ChainsPointsBadges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "bilal")
	d := f.dialect(t, "Pothwari")
	_, err := f.badges.CreateBadge(ctx, &model.Badge{Name: "Starter", RequirementType: model.RequirementWordsAdded, RequirementValue: 1, PointsReward: 40})
	require.NoError(t, err)
	_, err = f.badges.CreateBadge(ctx, &model.Badge{Name: "Fifty", RequirementType: model.RequirementPoints, RequirementValue: 50})
	require.NoError(t, err)

	res := f.word(t, "bilal", d.ID, "ghar", false)
	names := make([]string, 0, len(res.NewBadges))
	for _, b := range res.NewBadges {
		names = append(names, b.Name)
	}
	assert.ElementsMatch(t, []string{"Starter", "Fifty"}, names)
	f.assertConsistent(t, "bilal")
}

func TestEvaluate_EmptyCatalogAndMissingProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "chand")

	got, err := f.badges.Evaluate(ctx, "chand")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.badges.Evaluate(ctx, "nobody")
	assert.True(t, model.IsNotFoundError(err))
}

func TestEvaluate_ConcurrentAwardsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "dua")
	_, err := f.badges.CreateBadge(ctx, &model.Badge{Name: "Voter", RequirementType: model.RequirementVotesCast, RequirementValue: 0, PointsReward: 7})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]model.Badge, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := f.badges.Evaluate(ctx, "dua")
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	assert.Equal(t, 1, total)
	p, err := f.ledger.GetProfile(ctx, "dua")
	require.NoError(t, err)
	assert.Equal(t, 7, p.Points)
	f.assertConsistent(t, "dua")
}

func TestCreateBadge_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []model.Badge{
		{Name: "", RequirementType: model.RequirementPoints},
		{Name: "x", RequirementType: "likes"},
		{Name: "x", RequirementType: model.RequirementPoints, RequirementValue: -1},
		{Name: "x", RequirementType: model.RequirementPoints, PointsReward: -1},
		{Name: "x", RequirementType: model.RequirementPoints, Category: "misc"},
	}
	for _, b := range cases {
		b := b
		_, err := f.badges.CreateBadge(ctx, &b)
		assert.True(t, model.IsValidationError(err), "badge %+v", b)
	}
	require.NoError(t, f.badges.ValidateCatalog(ctx))

	_, err := f.badges.CreateBadge(ctx, &model.Badge{Name: "Liked", RequirementType: "likes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowed: words_added, audio_uploaded, votes_cast, streak_days, points, labels_added")

	// rows written around the service still surface at startup
	_, err = f.store.Badges().Create(ctx, &model.Badge{Name: "Legacy", RequirementType: "likes", Category: model.CategoryEngagement})
	require.NoError(t, err)
	err = f.badges.ValidateCatalog(ctx)
	require.True(t, model.IsValidationError(err))
	assert.Contains(t, err.Error(), "Legacy (likes)")
	assert.Contains(t, err.Error(), "allowed: words_added")
}

func newLinkedPair(t *testing.T, f *fixture) (*model.VariantLink, *model.Entry, *model.Entry) {
	t.Helper()
	f.profile(t, "author")
	d1 := f.dialect(t, "Hindko")
	d2 := f.dialect(t, "Majhi")
	e1 := f.word(t, "author", d1.ID, "kuri", false).Entry
	e2 := f.word(t, "author", d2.ID, "kudi", false).Entry
	l, err := f.variants.CreateLink(context.Background(), e1.ID, e2.ID, 0.8)
	require.NoError(t, err)
	return l, e1, e2
}

func TestCastVote_ChangeOfMind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link, _, _ := newLinkedPair(t, f)
	f.profile(t, "esha")

	res, err := f.votes.CastVote(ctx, "esha", link.ID, model.VoteCorrect)
	require.NoError(t, err)
	assert.Equal(t, model.VoteRecorded, res.Outcome)
	assert.Equal(t, 1, res.Link.VotesUp)
	assert.Equal(t, 1, res.Profile.Points)

	res, err = f.votes.CastVote(ctx, "esha", link.ID, model.VoteCorrect)
	require.NoError(t, err)
	assert.Equal(t, model.VoteAlreadyCast, res.Outcome)
	assert.Equal(t, 1, res.Link.VotesUp)

	res, err = f.votes.CastVote(ctx, "esha", link.ID, model.VoteIncorrect)
	require.NoError(t, err)
	assert.Equal(t, model.VoteChanged, res.Outcome)
	assert.Equal(t, 0, res.Link.VotesUp)
	assert.Equal(t, 1, res.Link.VotesDown)

	p, err := f.ledger.GetProfile(ctx, "esha")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Points)
	assert.Equal(t, 1, p.VotesCast)

	recounted, err := f.votes.Recount(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, recounted.VotesUp)
	assert.Equal(t, 1, recounted.VotesDown)

	v, err := f.votes.GetVote(ctx, "esha", link.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VoteIncorrect, v.VoteType)
	f.assertConsistent(t, "esha")
}

func TestCastVote_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link, _, _ := newLinkedPair(t, f)
	f.profile(t, "faraz")

	_, err := f.votes.CastVote(ctx, "faraz", link.ID, "maybe")
	assert.True(t, model.IsValidationError(err))
	_, err = f.votes.CastVote(ctx, "faraz", "missing-link", model.VoteCorrect)
	assert.True(t, model.IsNotFoundError(err))
	_, err = f.votes.CastVote(ctx, "", link.ID, model.VoteCorrect)
	assert.True(t, model.IsValidationError(err))
}

func TestListVariantsFor_OrientsToOtherEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link, e1, e2 := newLinkedPair(t, f)

	fromFirst, err := f.variants.ListVariantsFor(ctx, e1.ID)
	require.NoError(t, err)
	require.Len(t, fromFirst, 1)
	assert.Equal(t, link.ID, fromFirst[0].LinkID)
	assert.Equal(t, e2.ID, fromFirst[0].Entry.ID)
	assert.InDelta(t, 0.8, fromFirst[0].ConfidenceScore, 1e-9)

	fromSecond, err := f.variants.ListVariantsFor(ctx, e2.ID)
	require.NoError(t, err)
	require.Len(t, fromSecond, 1)
	assert.Equal(t, e1.ID, fromSecond[0].Entry.ID)

	_, err = f.variants.CreateLink(ctx, e2.ID, e1.ID, 0.5)
	assert.True(t, model.IsConflictError(err))
	_, err = f.variants.CreateLink(ctx, e1.ID, e1.ID, 0.5)
	assert.True(t, model.IsValidationError(err))
	_, err = f.variants.CreateLink(ctx, e1.ID, e2.ID, 1.5)
	assert.True(t, model.IsValidationError(err))

	_, err = f.variants.ListVariantsFor(ctx, "missing")
	assert.True(t, model.IsNotFoundError(err))
}

func TestStreak_ResetsAfterGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "ghazal")
	start := f.day

	steps := []struct {
		offset int
		want   int
	}{{0, 1}, {1, 2}, {1, 2}, {3, 1}}
	for _, st := range steps {
		f.day = start.AddDays(st.offset)
		p, err := f.ledger.RecordContribution(ctx, "ghazal", model.ContributionWord, model.Date{})
		require.NoError(t, err)
		assert.Equal(t, st.want, p.StreakDays, "day +%d", st.offset)
		assert.Equal(t, 0, p.Points)
	}
	_, err := f.ledger.RecordContribution(ctx, "ghazal", "poem", model.Date{})
	assert.True(t, model.IsValidationError(err))
}

func TestAddPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "hamza")

	p, err := f.ledger.AddPoints(ctx, "hamza", 15)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Points)
	assert.Equal(t, 0, p.StreakDays)

	for _, amount := range []int{0, -3} {
		_, err := f.ledger.AddPoints(ctx, "hamza", amount)
		assert.True(t, model.IsValidationError(err))
	}
	_, err = f.ledger.AddPoints(ctx, "nobody", 5)
	assert.True(t, model.IsNotFoundError(err))

	_, err = f.ledger.CreateProfile(ctx, &model.Profile{UserID: "hamza"})
	assert.True(t, model.IsConflictError(err))
	f.assertConsistent(t, "hamza")
}

func TestDailyLabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "iqra")
	d := f.dialect(t, "Shahpuri")
	w, err := f.reference.CreateSeedWord(ctx, &model.SeedWord{Word: "sun", MeaningEN: "sun"})
	require.NoError(t, err)
	assert.Equal(t, "general", w.Category)

	res, err := f.contributions.DailyLabelSubmitted(ctx, &model.DailyLabel{UserID: "iqra", SeedWordID: w.ID, DialectID: d.ID, LabelText: "sooraj"}, true)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Profile.Points)
	assert.Equal(t, 1, res.Profile.LabelsAdded)
	assert.Equal(t, 1, res.Profile.AudioUploaded)

	_, err = f.contributions.DailyLabelSubmitted(ctx, &model.DailyLabel{UserID: "iqra", SeedWordID: w.ID, DialectID: d.ID, LabelText: "suraj"}, false)
	assert.True(t, model.IsConflictError(err))
	f.assertConsistent(t, "iqra")
}

func TestLanguagesAndDialects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reference.CreateLanguage(ctx, &model.Language{Name: "  "})
	assert.True(t, model.IsValidationError(err))
	negative := int64(-1)
	_, err = f.reference.CreateLanguage(ctx, &model.Language{Name: "Sindhi", SpeakersEstimate: &negative})
	assert.True(t, model.IsValidationError(err))

	sindhi, err := f.reference.CreateLanguage(ctx, &model.Language{Name: "Sindhi"})
	require.NoError(t, err)
	pashto, err := f.reference.CreateLanguage(ctx, &model.Language{Name: "Pashto"})
	require.NoError(t, err)
	_, err = f.reference.CreateDialect(ctx, &model.Dialect{Name: "Lari", LanguageID: &sindhi.ID})
	require.NoError(t, err)
	_, err = f.reference.CreateDialect(ctx, &model.Dialect{Name: "Yusufzai", LanguageID: &pashto.ID})
	require.NoError(t, err)
	f.dialect(t, "Unassigned")

	langs, err := f.reference.ListLanguages(ctx)
	require.NoError(t, err)
	assert.Len(t, langs, 2)

	sd, err := f.reference.ListDialects(ctx, &sindhi.ID)
	require.NoError(t, err)
	require.Len(t, sd, 1)
	assert.Equal(t, "Lari", sd[0].Name)
	all, err := f.reference.ListDialects(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	missing := pashto.ID + 100
	_, err = f.reference.CreateDialect(ctx, &model.Dialect{Name: "Ghost", LanguageID: &missing})
	assert.True(t, model.IsNotFoundError(err))
}

func TestDailyChallenge_StablePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		category := "food"
		if i%3 == 0 {
			category = "nature"
		}
		_, err := f.reference.CreateSeedWord(ctx, &model.SeedWord{
			Word:      "w" + string(rune('a'+i)),
			MeaningEN: "m",
			Category:  category,
		})
		require.NoError(t, err)
	}

	all, err := f.reference.DailyChallenge(ctx, "all", model.Date{})
	require.NoError(t, err)
	assert.Len(t, all, DailyChallengeSize)
	again, err := f.reference.DailyChallenge(ctx, "", f.day)
	require.NoError(t, err)
	assert.Equal(t, ids(all), ids(again))

	nature, err := f.reference.DailyChallenge(ctx, "nature", model.Date{})
	require.NoError(t, err)
	assert.Len(t, nature, 5)
	for _, w := range nature {
		assert.Equal(t, "nature", w.Category)
	}
}

func ids(words []*model.SeedWord) []int64 {
	out := make([]int64, 0, len(words))
	for _, w := range words {
		out = append(out, w.ID)
	}
	return out
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d1 := f.dialect(t, "Jhangvi")
	d2 := f.dialect(t, "Dhani")
	f.profile(t, "jaan")
	f.profile(t, "kiran")
	f.profile(t, "laila")

	f.word(t, "jaan", d1.ID, "akh", true)
	f.word(t, "jaan", d1.ID, "nakk", false)
	f.word(t, "kiran", d2.ID, "kann", false)
	_, err := f.ledger.AddPoints(ctx, "laila", 3)
	require.NoError(t, err)

	top, err := f.board.Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "jaan", top[0].Profile.UserID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "laila", top[2].Profile.UserID)
	assert.NotNil(t, top[2].Badges)

	one, err := f.board.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	// next Sunday still belongs to the week of f.day
	week, err := f.board.Weekly(ctx, f.day.AddDays(6))
	require.NoError(t, err)
	assert.True(t, week.WeekStart.Equal(f.day))
	require.Len(t, week.Dialects, 2)
	assert.Equal(t, d1.ID, week.Dialects[0].DialectID)
	assert.Equal(t, 25, week.Dialects[0].TotalPoints)
	assert.Equal(t, 2, week.Dialects[0].TotalWords)
	assert.Equal(t, 1, week.Dialects[0].TotalAudio)
	assert.Equal(t, 1, week.Dialects[0].ContributorCount)
	require.Len(t, week.TopContributors, 2)
	assert.Equal(t, "jaan", week.TopContributors[0].UserID)

	next, err := f.board.Weekly(ctx, f.day.AddDays(7))
	require.NoError(t, err)
	assert.Empty(t, next.Dialects)
	assert.NotNil(t, next.TopContributors)
}
