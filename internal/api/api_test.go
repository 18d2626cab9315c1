package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectdeck/ledger/internal/auth"
	"github.com/dialectdeck/ledger/internal/events"
	"github.com/dialectdeck/ledger/internal/health"
	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/services"
	"github.com/dialectdeck/ledger/internal/store/sqlite"
)

type fakeHealth struct {
	healthy bool
}

func (f fakeHealth) IsHealthy() bool { return f.healthy }
func (f fakeHealth) Components() []health.ComponentStatus {
	return []health.ComponentStatus{{Name: "store", Healthy: f.healthy}}
}

func newTestServer(t *testing.T, chat http.Handler) *httptest.Server {
	t.Helper()
	return newGuardedServer(t, chat, nil)
}

func newGuardedServer(t *testing.T, chat http.Handler, authz auth.Authorizer) *httptest.Server {
	t.Helper()
	s, db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := services.Clock(func() time.Time { return time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC) })
	badges := services.NewBadgeService(s, events.Discard{}, zerolog.Nop(), clock)
	votes := services.NewVoteService(s, badges, clock)
	srv := httptest.NewServer(NewRouter(Dependencies{
		Ledger:        services.NewLedgerService(s, clock),
		Badges:        badges,
		Votes:         votes,
		Contributions: services.NewContributionService(s, badges, votes, clock),
		Variants:      services.NewVariantService(s),
		Leaderboard:   services.NewLeaderboardService(s, clock),
		Reference:     services.NewReferenceService(s, clock),
		Health:        fakeHealth{healthy: true},
		Chat:          chat,
		Authorizer:    authz,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	var body struct {
		Status     string                   `json:"status"`
		Components []health.ComponentStatus `json:"components"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/health", nil, &body))
	assert.Equal(t, "healthy", body.Status)
	require.Len(t, body.Components, 1)
	assert.Equal(t, "store", body.Components[0].Name)
}

func TestHealthHandler_NilReporter(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(nil).CheckHealth(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"unhealthy"`)
}

func TestProfileFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	var p model.Profile
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/profiles",
		map[string]string{"userId": "amna", "displayName": "Amna", "email": "amna@example.com"}, &p))
	assert.Equal(t, "amna", p.UserID)

	var errBody map[string]interface{}
	assert.Equal(t, http.StatusConflict, doJSON(t, srv, http.MethodPost, "/api/profiles",
		map[string]string{"userId": "amna"}, &errBody))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodPost, "/api/profiles",
		map[string]string{"userId": "not valid"}, &errBody))
	assert.Equal(t, "userId", errBody["field"])

	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/profiles/amna/points",
		map[string]int{"amount": 12}, &p))
	assert.Equal(t, 12, p.Points)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodPost, "/api/profiles/amna/points",
		map[string]int{"amount": 0}, nil))

	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/profiles/amna/contributions",
		map[string]string{"kind": "audio", "date": "2025-03-04"}, &p))
	assert.Equal(t, 1, p.AudioUploaded)
	assert.Equal(t, 1, p.StreakDays)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodPost, "/api/profiles/amna/contributions",
		map[string]string{"kind": "poem"}, nil))

	var audit model.LedgerAudit
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/profiles/amna/audit", nil, &audit))
	assert.True(t, audit.Consistent)
	assert.Equal(t, 12, audit.EventPoints)

	assert.Equal(t, http.StatusNotFound, doJSON(t, srv, http.MethodGet, "/api/profiles/nobody", nil, nil))
}

func TestBadRequestBody(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := srv.Client().Post(srv.URL+"/api/profiles", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWordVoteAndBadgeFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/profiles", map[string]string{"userId": "bilal"}, nil))
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/profiles", map[string]string{"userId": "chand"}, nil))

	var d1, d2 model.Dialect
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/dialects", map[string]string{"name": "Saraiki"}, &d1))
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/dialects", map[string]string{"name": "Majhi"}, &d2))

	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/badges", map[string]interface{}{
		"name": "First Words", "requirementType": "words_added", "requirementValue": 2, "pointsReward": 20,
	}, nil))
	var catalog []model.Badge
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/badges", nil, &catalog))
	require.Len(t, catalog, 1)

	var first, second services.ContributionResult
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/entries", map[string]interface{}{
		"word": "paani", "dialectId": d1.ID, "meaningEn": "water", "createdBy": "bilal",
	}, &first))
	assert.Equal(t, 10, first.Profile.Points)
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/entries", map[string]interface{}{
		"word": "pani", "dialectId": d2.ID, "meaningEn": "water", "createdBy": "bilal", "hasAudio": true,
	}, &second))
	assert.Equal(t, 25, second.Profile.Points)
	require.Len(t, second.NewBadges, 1)

	var p model.Profile
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/profiles/bilal", nil, &p))
	assert.Equal(t, 45, p.Points)

	var earned []model.UserBadge
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/profiles/bilal/badges", nil, &earned))
	require.Len(t, earned, 1)
	var evaluated struct {
		NewBadges []model.Badge `json:"newBadges"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/profiles/bilal/badges/evaluate", nil, &evaluated))
	assert.Empty(t, evaluated.NewBadges)

	var link model.VariantLink
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/variant-links", map[string]interface{}{
		"entry1Id": first.Entry.ID, "entry2Id": second.Entry.ID, "confidenceScore": 0.9,
	}, &link))
	assert.Equal(t, http.StatusConflict, doJSON(t, srv, http.MethodPost, "/api/variant-links", map[string]interface{}{
		"entry1Id": second.Entry.ID, "entry2Id": first.Entry.ID, "confidenceScore": 0.9,
	}, nil))

	var variants []model.Variant
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/entries/"+second.Entry.ID+"/variants", nil, &variants))
	require.Len(t, variants, 1)
	assert.Equal(t, first.Entry.ID, variants[0].Entry.ID)

	var vote model.VoteResult
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/variant-links/"+link.ID+"/votes",
		map[string]string{"userId": "chand", "voteType": "correct"}, &vote))
	assert.Equal(t, model.VoteRecorded, vote.Outcome)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/variant-links/"+link.ID+"/votes",
		map[string]string{"userId": "chand", "voteType": "correct"}, &vote))
	assert.Equal(t, model.VoteAlreadyCast, vote.Outcome)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/variant-links/"+link.ID+"/votes",
		map[string]string{"userId": "chand", "voteType": "incorrect"}, &vote))
	assert.Equal(t, model.VoteChanged, vote.Outcome)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodPost, "/api/variant-links/"+link.ID+"/votes",
		map[string]string{"userId": "chand", "voteType": "maybe"}, nil))

	var stored model.Vote
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/variant-links/"+link.ID+"/votes/chand", nil, &stored))
	assert.Equal(t, model.VoteIncorrect, stored.VoteType)

	var recounted model.VariantLink
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/variant-links/"+link.ID+"/recount", nil, &recounted))
	assert.Equal(t, 0, recounted.VotesUp)
	assert.Equal(t, 1, recounted.VotesDown)

	var board []model.LeaderboardEntry
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/leaderboard?limit=1", nil, &board))
	require.Len(t, board, 1)
	assert.Equal(t, "bilal", board[0].Profile.UserID)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodGet, "/api/leaderboard?limit=ten", nil, nil))

	var week model.WeeklyCompetition
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/competition/weekly?weekStart=2025-03-05", nil, &week))
	assert.Equal(t, "2025-03-03", week.WeekStart.String())
	assert.Len(t, week.Dialects, 2)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodGet, "/api/competition/weekly?weekStart=March", nil, nil))
}

func TestSeedWordsAndLabels(t *testing.T) {
	srv := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/profiles", map[string]string{"userId": "dua"}, nil))
	var d model.Dialect
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/dialects", map[string]string{"name": "Hindko"}, &d))
	var w model.SeedWord
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/seed-words",
		map[string]string{"word": "moon", "meaningEn": "moon", "category": "nature"}, &w))

	var list []model.SeedWord
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/seed-words?category=nature", nil, &list))
	require.Len(t, list, 1)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/seed-words/daily?category=all&date=2025-03-05", nil, &list))
	require.Len(t, list, 1)

	label := map[string]interface{}{"userId": "dua", "seedWordId": w.ID, "dialectId": d.ID, "labelText": "chann"}
	var res services.ContributionResult
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/daily-labels", label, &res))
	assert.Equal(t, 5, res.Profile.Points)
	assert.Equal(t, http.StatusConflict, doJSON(t, srv, http.MethodPost, "/api/daily-labels", label, nil))
}

func TestLanguagesRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	var punjabi model.Language
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/languages",
		map[string]interface{}{"name": "Punjabi", "isoCode": "pa", "speakersEstimate": 80000000}, &punjabi))
	require.NotNil(t, punjabi.ISOCode)
	assert.Equal(t, "pa", *punjabi.ISOCode)
	assert.Equal(t, http.StatusConflict, doJSON(t, srv, http.MethodPost, "/api/languages", map[string]string{"name": "Punjabi"}, nil))

	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/dialects",
		map[string]interface{}{"name": "Majhi", "languageId": punjabi.ID}, nil))
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/dialects", map[string]string{"name": "Brahui"}, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, srv, http.MethodPost, "/api/dialects",
		map[string]interface{}{"name": "Ghost", "languageId": punjabi.ID + 50}, nil))

	var langs []model.Language
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/languages", nil, &langs))
	assert.Len(t, langs, 1)

	var dialects []model.Dialect
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/dialects?languageId=%d", punjabi.ID), nil, &dialects))
	require.Len(t, dialects, 1)
	assert.Equal(t, "Majhi", dialects[0].Name)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/dialects", nil, &dialects))
	assert.Len(t, dialects, 2)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, srv, http.MethodGet, "/api/dialects?languageId=punjabi", nil, nil))
}

func TestChatRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, srv, http.MethodPost, "/api/chat", map[string]interface{}{}, nil))

	called := false
	withChat := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	assert.Equal(t, http.StatusOK, doJSON(t, withChat, http.MethodPost, "/api/chat", map[string]interface{}{}, nil))
	assert.True(t, called)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	srv := newGuardedServer(t, nil, auth.New("s3cret"))
	badge := map[string]interface{}{"name": "Guarded", "requirementType": "points", "requirementValue": 10}

	require.Equal(t, http.StatusUnauthorized, doJSON(t, srv, http.MethodPost, "/api/badges", badge, nil))
	require.Equal(t, http.StatusUnauthorized, doJSON(t, srv, http.MethodPost, "/api/dialects", map[string]string{"name": "Pothwari"}, nil))
	require.Equal(t, http.StatusUnauthorized, doJSON(t, srv, http.MethodPost, "/api/languages", map[string]string{"name": "Saraiki"}, nil))

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(badge))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/badges", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Reads and user actions stay open.
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/badges", nil, nil))
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/profiles", map[string]string{"userId": "guest"}, nil))
}
