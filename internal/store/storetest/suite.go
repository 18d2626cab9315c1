package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// Run exercises the compliance suite against a store.Store implementation.
// makeStore may return a shared database: every case uses fresh identifiers.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("Profiles", func(t *testing.T) { testProfiles(t, makeStore(t)) })
	t.Run("Streak", func(t *testing.T) { testStreak(t, makeStore(t)) })
	t.Run("ConcurrentApply", func(t *testing.T) { testConcurrentApply(t, makeStore(t)) })
	t.Run("Languages", func(t *testing.T) { testLanguages(t, makeStore(t)) })
	t.Run("Badges", func(t *testing.T) { testBadges(t, makeStore(t)) })
	t.Run("ConcurrentAward", func(t *testing.T) { testConcurrentAward(t, makeStore(t)) })
	t.Run("EntriesAndLinks", func(t *testing.T) { testEntriesAndLinks(t, makeStore(t)) })
	t.Run("Votes", func(t *testing.T) { testVotes(t, makeStore(t)) })
	t.Run("ConcurrentVotes", func(t *testing.T) { testConcurrentVotes(t, makeStore(t)) })
	t.Run("ConcurrentConflictingVotes", func(t *testing.T) { testConcurrentConflictingVotes(t, makeStore(t)) })
	t.Run("DailyLabels", func(t *testing.T) { testDailyLabels(t, makeStore(t)) })
	t.Run("WeeklyContributions", func(t *testing.T) { testWeekly(t, makeStore(t)) })
}

var day1 = model.NewDate(2025, time.March, 3) // a Monday

func newProfile(t *testing.T, s store.Store) *model.Profile {
	t.Helper()
	id := "u-" + uuid.New().String()
	p, err := s.Profiles().Create(context.Background(), &model.Profile{UserID: id, DisplayName: "Test " + id[:10], Email: id + "@example.test"})
	if err != nil {
		t.Fatalf("Create profile: %v", err)
	}
	return p
}

func newDialect(t *testing.T, s store.Store) *model.Dialect {
	t.Helper()
	region := "Punjab"
	d, err := s.Dialects().Create(context.Background(), &model.Dialect{Name: "dialect-" + uuid.New().String(), Region: &region})
	if err != nil {
		t.Fatalf("Create dialect: %v", err)
	}
	return d
}

func wordCredit(on model.Date, dialectID int64) model.LedgerDelta {
	return model.LedgerDelta{Reason: model.ReasonWord, Points: model.PointsWord, WordsAdded: 1, DialectID: &dialectID, OccurredOn: on, TouchStreak: true}
}

func newEntry(t *testing.T, s store.Store, user string, dialect int64, word string) *model.Entry {
	t.Helper()
	e, _, err := s.Entries().Create(context.Background(), &model.Entry{Word: word, DialectID: dialect, MeaningEN: word + " (en)", CreatedBy: user}, wordCredit(day1, dialect))
	if err != nil {
		t.Fatalf("Create entry %s: %v", word, err)
	}
	return e
}

func assertLedgerConsistent(t *testing.T, s store.Store, userID string) {
	t.Helper()
	ctx := context.Background()
	p, err := s.Profiles().Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	sum, err := s.Events().SumPoints(ctx, userID)
	if err != nil {
		t.Fatalf("SumPoints: %v", err)
	}
	if sum != p.Points {
		t.Fatalf("points %d != sum of events %d", p.Points, sum)
	}
}

func testProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	if p.Points != 0 || p.StreakDays != 0 || p.LastContributionDate != nil {
		t.Fatalf("new profile not zeroed: %+v", p)
	}
	if _, err := s.Profiles().Create(ctx, &model.Profile{UserID: p.UserID}); !model.IsConflictError(err) {
		t.Fatalf("duplicate profile: want conflict, got %v", err)
	}
	if _, err := s.Profiles().Get(ctx, "missing-"+uuid.New().String()); !model.IsNotFoundError(err) {
		t.Fatalf("missing profile: want not found, got %v", err)
	}
	if _, err := s.Profiles().Apply(ctx, "missing-"+uuid.New().String(), model.LedgerDelta{Reason: model.ReasonManual, Points: 1, OccurredOn: day1}); !model.IsNotFoundError(err) {
		t.Fatalf("apply to missing profile: want not found, got %v", err)
	}

	got, err := s.Profiles().Apply(ctx, p.UserID, model.LedgerDelta{Reason: model.ReasonWord, Points: 15, WordsAdded: 1, AudioUploaded: 1, OccurredOn: day1, TouchStreak: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Points != 15 || got.WordsAdded != 1 || got.AudioUploaded != 1 || got.StreakDays != 1 {
		t.Fatalf("after apply: %+v", got)
	}
	if got.LastContributionDate == nil || !got.LastContributionDate.Equal(day1) {
		t.Fatalf("last contribution date: %v", got.LastContributionDate)
	}

	// points only: streak and date untouched
	got, err = s.Profiles().Apply(ctx, p.UserID, model.LedgerDelta{Reason: model.ReasonManual, Points: 7, OccurredOn: day1.AddDays(5)})
	if err != nil {
		t.Fatalf("Apply points: %v", err)
	}
	if got.Points != 22 || got.StreakDays != 1 || !got.LastContributionDate.Equal(day1) {
		t.Fatalf("after points-only apply: %+v", got)
	}

	if _, err := s.Profiles().Apply(ctx, p.UserID, model.LedgerDelta{Reason: model.ReasonManual, Points: -1, OccurredOn: day1}); !model.IsValidationError(err) {
		t.Fatalf("negative delta: want validation error, got %v", err)
	}

	top, err := s.Profiles().Top(ctx, 1000)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].Points < top[i].Points {
			t.Fatalf("Top not ordered by points at %d", i)
		}
	}
	assertLedgerConsistent(t, s, p.UserID)
}

func testStreak(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	steps := []struct {
		on   model.Date
		want int
	}{
		{day1, 1},
		{day1, 1},
		{day1.AddDays(1), 2},
		{day1.AddDays(3), 1},
		{day1.AddDays(4), 2},
		{day1.AddDays(2), 1},
	}
	prev := p
	for i, st := range steps {
		got, err := s.Profiles().Apply(ctx, p.UserID, model.LedgerDelta{Reason: model.ReasonVote, Points: 1, VotesCast: 1, OccurredOn: st.on, TouchStreak: true})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got.StreakDays != st.want {
			t.Fatalf("step %d (%s): streak=%d want %d", i, st.on, got.StreakDays, st.want)
		}
		if next := model.NextStreak(prev.StreakDays, prev.LastContributionDate, st.on); got.StreakDays != next {
			t.Fatalf("step %d (%s): stored streak %d, NextStreak %d", i, st.on, got.StreakDays, next)
		}
		prev = got
		if !got.LastContributionDate.Equal(st.on) {
			t.Fatalf("step %d: last date %s want %s", i, got.LastContributionDate, st.on)
		}
	}
}

func testConcurrentApply(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Profiles().Apply(ctx, p.UserID, model.LedgerDelta{Reason: model.ReasonWord, Points: model.PointsWord, WordsAdded: 1, OccurredOn: day1, TouchStreak: true}); err != nil {
				t.Errorf("Apply: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Profiles().Get(ctx, p.UserID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	if got.WordsAdded != n || got.Points != n*model.PointsWord || got.StreakDays != 1 {
		t.Fatalf("after %d concurrent applies: %+v", n, got)
	}
	assertLedgerConsistent(t, s, p.UserID)
}

func testLanguages(t *testing.T, s store.Store) {
	ctx := context.Background()
	native, iso := "پنجابی", "pa"
	speakers := int64(80000000)
	name := "Punjabi-" + uuid.New().String()[:8]
	lang, err := s.Languages().Create(ctx, &model.Language{Name: name, NativeName: &native, ISOCode: &iso, SpeakersEstimate: &speakers})
	if err != nil {
		t.Fatalf("Create language: %v", err)
	}
	if lang.ID == 0 || lang.ISOCode == nil || *lang.ISOCode != "pa" || lang.SpeakersEstimate == nil || *lang.SpeakersEstimate != speakers {
		t.Fatalf("created language: %+v", lang)
	}
	if _, err := s.Languages().Create(ctx, &model.Language{Name: name}); !model.IsConflictError(err) {
		t.Fatalf("duplicate language: want conflict, got %v", err)
	}
	if _, err := s.Languages().Get(ctx, lang.ID+1_000_000); !model.IsNotFoundError(err) {
		t.Fatalf("missing language: want not found, got %v", err)
	}
	all, err := s.Languages().List(ctx)
	if err != nil || len(all) == 0 {
		t.Fatalf("List languages: %d err=%v", len(all), err)
	}

	in, err := s.Dialects().Create(ctx, &model.Dialect{Name: "majhi-" + uuid.New().String()[:8], LanguageID: &lang.ID})
	if err != nil {
		t.Fatalf("Create dialect with language: %v", err)
	}
	other := newDialect(t, s)
	missing := lang.ID + 1_000_000
	if _, err := s.Dialects().Create(ctx, &model.Dialect{Name: "orphan-" + uuid.New().String()[:8], LanguageID: &missing}); !model.IsNotFoundError(err) {
		t.Fatalf("dialect with unknown language: want not found, got %v", err)
	}

	filtered, err := s.Dialects().List(ctx, &lang.ID)
	if err != nil {
		t.Fatalf("List dialects by language: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != in.ID {
		t.Fatalf("dialects of language %d: %+v", lang.ID, filtered)
	}
	unfiltered, err := s.Dialects().List(ctx, nil)
	if err != nil {
		t.Fatalf("List dialects: %v", err)
	}
	seen := map[int64]bool{}
	for _, d := range unfiltered {
		seen[d.ID] = true
	}
	if !seen[in.ID] || !seen[other.ID] {
		t.Fatalf("unfiltered list misses dialects %d/%d", in.ID, other.ID)
	}
}

func testBadges(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	b, err := s.Badges().Create(ctx, &model.Badge{
		Name: "First Words " + uuid.New().String(), Category: model.CategoryContribution,
		RequirementType: model.RequirementWordsAdded, RequirementValue: 2, PointsReward: 20,
	})
	if err != nil {
		t.Fatalf("Create badge: %v", err)
	}
	if _, err := s.Badges().Create(ctx, &model.Badge{Name: b.Name, RequirementType: model.RequirementPoints}); !model.IsConflictError(err) {
		t.Fatalf("duplicate badge: want conflict, got %v", err)
	}
	list, err := s.Badges().List(ctx)
	if err != nil {
		t.Fatalf("List badges: %v", err)
	}
	found := false
	for _, x := range list {
		if x.ID == b.ID {
			found = x.RequirementType == model.RequirementWordsAdded && x.PointsReward == 20
		}
	}
	if !found {
		t.Fatalf("badge %d missing from catalog", b.ID)
	}

	awarded, err := s.Badges().Award(ctx, p.UserID, b, day1)
	if err != nil || !awarded {
		t.Fatalf("first award: awarded=%v err=%v", awarded, err)
	}
	awarded, err = s.Badges().Award(ctx, p.UserID, b, day1)
	if err != nil || awarded {
		t.Fatalf("second award: awarded=%v err=%v", awarded, err)
	}
	got, err := s.Profiles().Get(ctx, p.UserID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	if got.Points != 20 {
		t.Fatalf("reward applied %d points, want 20", got.Points)
	}
	earned, err := s.Badges().ListEarned(ctx, p.UserID)
	if err != nil || len(earned) != 1 || earned[0].BadgeID != b.ID || earned[0].Badge == nil {
		t.Fatalf("ListEarned: %+v err=%v", earned, err)
	}
	assertLedgerConsistent(t, s, p.UserID)
}

func testConcurrentAward(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	b, err := s.Badges().Create(ctx, &model.Badge{Name: "Racer " + uuid.New().String(), RequirementType: model.RequirementPoints, PointsReward: 5})
	if err != nil {
		t.Fatalf("Create badge: %v", err)
	}
	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Badges().Award(ctx, p.UserID, b, day1)
			if err != nil {
				t.Errorf("Award: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("badge awarded %d times, want 1", wins)
	}
	got, _ := s.Profiles().Get(ctx, p.UserID)
	if got.Points != 5 {
		t.Fatalf("points=%d want 5", got.Points)
	}
}

func testEntriesAndLinks(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	d1, d2 := newDialect(t, s), newDialect(t, s)

	if _, _, err := s.Entries().Create(ctx, &model.Entry{Word: "x", DialectID: d1.ID, CreatedBy: "missing-" + uuid.New().String()}, wordCredit(day1, d1.ID)); !model.IsNotFoundError(err) {
		t.Fatalf("entry by missing user: want not found, got %v", err)
	}
	if _, _, err := s.Entries().Create(ctx, &model.Entry{Word: "x", DialectID: -1, CreatedBy: p.UserID}, wordCredit(day1, -1)); !model.IsNotFoundError(err) {
		t.Fatalf("entry in missing dialect: want not found, got %v", err)
	}

	audio := "https://cdn.example/pani.mp3"
	e1, prof, err := s.Entries().Create(ctx, &model.Entry{Word: "pani", DialectID: d1.ID, MeaningEN: "water", AudioURL: &audio, CreatedBy: p.UserID}, wordCredit(day1, d1.ID))
	if err != nil {
		t.Fatalf("Create entry: %v", err)
	}
	if prof.WordsAdded != 1 || prof.Points != model.PointsWord {
		t.Fatalf("creator not credited: %+v", prof)
	}
	if got, err := s.Entries().Get(ctx, e1.ID); err != nil || got.AudioURL == nil || *got.AudioURL != audio {
		t.Fatalf("Get entry: %+v err=%v", got, err)
	}
	e2 := newEntry(t, s, p.UserID, d2.ID, "paani")

	if _, err := s.VariantLinks().Create(ctx, &model.VariantLink{Entry1ID: e1.ID, Entry2ID: "missing"}); !model.IsNotFoundError(err) {
		t.Fatalf("link to missing entry: want not found, got %v", err)
	}
	l, err := s.VariantLinks().Create(ctx, &model.VariantLink{Entry1ID: e1.ID, Entry2ID: e2.ID, ConfidenceScore: 0.8})
	if err != nil {
		t.Fatalf("Create link: %v", err)
	}
	if l.VotesUp != 0 || l.VotesDown != 0 || l.ConfidenceScore != 0.8 {
		t.Fatalf("new link: %+v", l)
	}
	if _, err := s.VariantLinks().Create(ctx, &model.VariantLink{Entry1ID: e2.ID, Entry2ID: e1.ID, ConfidenceScore: 0.5}); !model.IsConflictError(err) {
		t.Fatalf("reversed duplicate link: want conflict, got %v", err)
	}

	for _, id := range []string{e1.ID, e2.ID} {
		list, err := s.VariantLinks().ListForEntry(ctx, id)
		if err != nil || len(list) != 1 {
			t.Fatalf("ListForEntry(%s): n=%d err=%v", id, len(list), err)
		}
		got := list[0]
		if got.Link.ID != l.ID || got.Entry1.ID != e1.ID || got.Entry2.ID != e2.ID {
			t.Fatalf("ListForEntry(%s): %+v", id, got)
		}
		if got.Entry1.DialectName != d1.Name || got.Entry2.Word != "paani" {
			t.Fatalf("ListForEntry(%s) summaries: %+v", id, got)
		}
	}
	if _, err := s.VariantLinks().Get(ctx, "missing"); !model.IsNotFoundError(err) {
		t.Fatalf("missing link: want not found, got %v", err)
	}
}

func newLink(t *testing.T, s store.Store) (*model.VariantLink, *model.Profile) {
	t.Helper()
	owner := newProfile(t, s)
	d1, d2 := newDialect(t, s), newDialect(t, s)
	e1 := newEntry(t, s, owner.UserID, d1.ID, "roti")
	e2 := newEntry(t, s, owner.UserID, d2.ID, "rotti")
	l, err := s.VariantLinks().Create(context.Background(), &model.VariantLink{Entry1ID: e1.ID, Entry2ID: e2.ID, ConfidenceScore: 0.9})
	if err != nil {
		t.Fatalf("Create link: %v", err)
	}
	return l, owner
}

func voteCredit(on model.Date) model.LedgerDelta {
	return model.LedgerDelta{Reason: model.ReasonVote, Points: model.PointsVote, VotesCast: 1, OccurredOn: on, TouchStreak: true}
}

func testVotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	l, _ := newLink(t, s)
	voter := newProfile(t, s)

	cast := func(vt model.VoteType) *model.VoteResult {
		t.Helper()
		res, err := s.Votes().Cast(ctx, &model.Vote{UserID: voter.UserID, VariantLinkID: l.ID, VoteType: vt}, voteCredit(day1))
		if err != nil {
			t.Fatalf("Cast %s: %v", vt, err)
		}
		return res
	}

	res := cast(model.VoteCorrect)
	if res.Outcome != model.VoteRecorded || res.Link.VotesUp != 1 || res.Link.VotesDown != 0 {
		t.Fatalf("first vote: %+v link=%+v", res, res.Link)
	}
	if res.Profile == nil || res.Profile.Points != 1 || res.Profile.VotesCast != 1 {
		t.Fatalf("first vote profile: %+v", res.Profile)
	}

	res = cast(model.VoteCorrect)
	if res.Outcome != model.VoteAlreadyCast || res.Link.VotesUp != 1 || res.Profile != nil {
		t.Fatalf("repeat vote: %+v link=%+v", res, res.Link)
	}

	res = cast(model.VoteIncorrect)
	if res.Outcome != model.VoteChanged || res.Previous != model.VoteCorrect {
		t.Fatalf("changed vote: %+v", res)
	}
	if res.Link.VotesUp != 0 || res.Link.VotesDown != 1 {
		t.Fatalf("changed vote tallies: %+v", res.Link)
	}
	got, _ := s.Profiles().Get(ctx, voter.UserID)
	if got.Points != 1 || got.VotesCast != 1 {
		t.Fatalf("points after change: %+v", got)
	}
	if v, err := s.Votes().Get(ctx, voter.UserID, l.ID); err != nil || v.VoteType != model.VoteIncorrect {
		t.Fatalf("Get vote: %+v err=%v", v, err)
	}

	if _, err := s.Votes().Cast(ctx, &model.Vote{UserID: voter.UserID, VariantLinkID: "missing", VoteType: model.VoteCorrect}, voteCredit(day1)); !model.IsNotFoundError(err) {
		t.Fatalf("vote on missing link: want not found, got %v", err)
	}

	rec, err := s.VariantLinks().Recount(ctx, l.ID)
	if err != nil || rec.VotesUp != 0 || rec.VotesDown != 1 {
		t.Fatalf("Recount: %+v err=%v", rec, err)
	}
	assertLedgerConsistent(t, s, voter.UserID)
}

func testConcurrentVotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	l, _ := newLink(t, s)
	const n = 6
	voters := make([]*model.Profile, n)
	for i := range voters {
		voters[i] = newProfile(t, s)
	}
	var wg sync.WaitGroup
	for _, v := range voters {
		wg.Add(2)
		for j := 0; j < 2; j++ {
			go func(userID string) {
				defer wg.Done()
				if _, err := s.Votes().Cast(ctx, &model.Vote{UserID: userID, VariantLinkID: l.ID, VoteType: model.VoteCorrect}, voteCredit(day1)); err != nil {
					t.Errorf("Cast: %v", err)
				}
			}(v.UserID)
		}
	}
	wg.Wait()
	got, err := s.VariantLinks().Get(ctx, l.ID)
	if err != nil {
		t.Fatalf("Get link: %v", err)
	}
	if got.VotesUp != n {
		t.Fatalf("votes_up=%d want %d", got.VotesUp, n)
	}
	for _, v := range voters {
		p, _ := s.Profiles().Get(ctx, v.UserID)
		if p.Points != 1 {
			t.Fatalf("voter %s points=%d want 1", v.UserID, p.Points)
		}
	}
}

func testConcurrentConflictingVotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	types := []model.VoteType{model.VoteCorrect, model.VoteIncorrect, model.VoteCorrect}
	for round := 0; round < 5; round++ {
		l, _ := newLink(t, s)
		voter := newProfile(t, s)

		var wg sync.WaitGroup
		wg.Add(len(types))
		for _, vt := range types {
			go func(vt model.VoteType) {
				defer wg.Done()
				if _, err := s.Votes().Cast(ctx, &model.Vote{UserID: voter.UserID, VariantLinkID: l.ID, VoteType: vt}, voteCredit(day1)); err != nil {
					t.Errorf("Cast %s: %v", vt, err)
				}
			}(vt)
		}
		wg.Wait()

		got, err := s.VariantLinks().Get(ctx, l.ID)
		if err != nil {
			t.Fatalf("round %d: Get link: %v", round, err)
		}
		if got.VotesUp+got.VotesDown != 1 {
			t.Fatalf("round %d: tallies up=%d down=%d, want one vote", round, got.VotesUp, got.VotesDown)
		}
		v, err := s.Votes().Get(ctx, voter.UserID, l.ID)
		if err != nil {
			t.Fatalf("round %d: Get vote: %v", round, err)
		}
		if (v.VoteType == model.VoteCorrect) != (got.VotesUp == 1) {
			t.Fatalf("round %d: stored vote %s but up=%d down=%d", round, v.VoteType, got.VotesUp, got.VotesDown)
		}
		p, err := s.Profiles().Get(ctx, voter.UserID)
		if err != nil {
			t.Fatalf("round %d: Get profile: %v", round, err)
		}
		if p.VotesCast != 1 || p.Points != model.PointsVote {
			t.Fatalf("round %d: voter %+v, want one counted vote", round, p)
		}
		assertLedgerConsistent(t, s, voter.UserID)
	}
}

func testDailyLabels(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	d := newDialect(t, s)
	category := "nature-" + uuid.New().String()[:8]
	w, err := s.SeedWords().Create(ctx, &model.SeedWord{Word: "water-" + uuid.New().String(), MeaningEN: "water", Category: category})
	if err != nil {
		t.Fatalf("Create seed word: %v", err)
	}
	if got, err := s.SeedWords().Get(ctx, w.ID); err != nil || got.Word != w.Word {
		t.Fatalf("Get seed word: %+v err=%v", got, err)
	}
	if list, err := s.SeedWords().List(ctx, ""); err != nil || len(list) == 0 {
		t.Fatalf("List seed words: n=%d err=%v", len(list), err)
	}
	if list, err := s.SeedWords().List(ctx, category); err != nil || len(list) != 1 || list[0].ID != w.ID {
		t.Fatalf("List seed words by category: n=%d err=%v", len(list), err)
	}

	credit := model.LedgerDelta{Reason: model.ReasonLabel, Points: model.LabelPoints(false), LabelsAdded: 1, DialectID: &d.ID, OccurredOn: day1, TouchStreak: true}
	lbl, prof, err := s.DailyLabels().Create(ctx, &model.DailyLabel{UserID: p.UserID, SeedWordID: w.ID, DialectID: d.ID, LabelText: "pani"}, credit)
	if err != nil {
		t.Fatalf("Create label: %v", err)
	}
	if lbl.ID == "" || prof.LabelsAdded != 1 || prof.Points != model.PointsLabel {
		t.Fatalf("label: %+v profile: %+v", lbl, prof)
	}
	if _, _, err := s.DailyLabels().Create(ctx, &model.DailyLabel{UserID: p.UserID, SeedWordID: w.ID, DialectID: d.ID, LabelText: "again"}, credit); !model.IsConflictError(err) {
		t.Fatalf("duplicate label: want conflict, got %v", err)
	}
	if _, _, err := s.DailyLabels().Create(ctx, &model.DailyLabel{UserID: p.UserID, SeedWordID: -1, DialectID: d.ID, LabelText: "x"}, credit); !model.IsNotFoundError(err) {
		t.Fatalf("label for missing seed word: want not found, got %v", err)
	}
	assertLedgerConsistent(t, s, p.UserID)
}

func testWeekly(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newProfile(t, s)
	d := newDialect(t, s)
	newEntry(t, s, p.UserID, d.ID, "one")
	newEntry(t, s, p.UserID, d.ID, "two")
	// next week, must not count
	if _, err := s.Profiles().Apply(ctx, p.UserID, wordCredit(day1.AddDays(7), d.ID)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// no dialect, must not count
	if _, err := s.Profiles().Apply(ctx, p.UserID, model.LedgerDelta{Reason: model.ReasonBadge, Points: 50, OccurredOn: day1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	rows, err := s.Events().WeeklyContributions(ctx, day1.AddDays(2).WeekStart())
	if err != nil {
		t.Fatalf("WeeklyContributions: %v", err)
	}
	var mine *model.WeeklyContribution
	for _, r := range rows {
		if r.UserID == p.UserID {
			if mine != nil {
				t.Fatalf("duplicate row for user in single dialect")
			}
			mine = r
		}
	}
	if mine == nil {
		t.Fatalf("user missing from weekly rollup")
	}
	if mine.WordsAdded != 2 || mine.PointsEarned != 2*model.PointsWord || mine.DialectID != d.ID || mine.DialectName != d.Name {
		t.Fatalf("weekly row: %+v", mine)
	}
	if mine.Region == nil || *mine.Region != "Punjab" {
		t.Fatalf("weekly region: %v", mine.Region)
	}
}
