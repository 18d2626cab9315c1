package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dialectdeck/ledger/internal/api/recovery"
	"github.com/dialectdeck/ledger/internal/api/respond"
	"github.com/dialectdeck/ledger/internal/auth"
	"github.com/dialectdeck/ledger/internal/services"
)

// Dependencies are the services the HTTP surface dispatches to.
type Dependencies struct {
	Ledger        *services.LedgerService
	Badges        *services.BadgeService
	Votes         *services.VoteService
	Contributions *services.ContributionService
	Variants      *services.VariantService
	Leaderboard   *services.LeaderboardService
	Reference     *services.ReferenceService
	Health        HealthReporter
	// Authorizer guards catalog and reference writes. nil leaves them open.
	Authorizer auth.Authorizer
	// Chat serves POST /api/chat. nil answers 503.
	Chat http.Handler
}

// NewRouter creates a new HTTP router with all API routes.
func NewRouter(d Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	authz := d.Authorizer
	if authz == nil {
		authz = auth.OpenAuthorizer{}
	}

	healthHandler := NewHealthHandler(d.Health)
	profileHandler := NewProfileHandler(d.Ledger, d.Badges)
	badgeHandler := NewBadgeHandler(d.Badges)
	entryHandler := NewEntryHandler(d.Contributions, d.Variants, d.Votes)
	referenceHandler := NewReferenceHandler(d.Reference, d.Contributions)
	leaderboardHandler := NewLeaderboardHandler(d.Leaderboard)

	// Health endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Profile ledger
	router.HandleFunc("/api/profiles", profileHandler.CreateProfile).Methods("POST")
	router.HandleFunc("/api/profiles/{userId}", profileHandler.GetProfile).Methods("GET")
	router.HandleFunc("/api/profiles/{userId}/points", profileHandler.AddPoints).Methods("POST")
	router.HandleFunc("/api/profiles/{userId}/contributions", profileHandler.RecordContribution).Methods("POST")
	router.HandleFunc("/api/profiles/{userId}/badges", profileHandler.ListBadges).Methods("GET")
	router.HandleFunc("/api/profiles/{userId}/badges/evaluate", profileHandler.EvaluateBadges).Methods("POST")
	router.HandleFunc("/api/profiles/{userId}/audit", profileHandler.Audit).Methods("GET")

	// Badge catalog
	router.HandleFunc("/api/badges", badgeHandler.ListCatalog).Methods("GET")
	router.HandleFunc("/api/badges", auth.Require(authz, auth.OpManageCatalog, badgeHandler.CreateBadge)).Methods("POST")

	// Reference data
	router.HandleFunc("/api/languages", referenceHandler.ListLanguages).Methods("GET")
	router.HandleFunc("/api/languages", auth.Require(authz, auth.OpManageReference, referenceHandler.CreateLanguage)).Methods("POST")
	router.HandleFunc("/api/dialects", referenceHandler.ListDialects).Methods("GET")
	router.HandleFunc("/api/dialects", auth.Require(authz, auth.OpManageReference, referenceHandler.CreateDialect)).Methods("POST")
	router.HandleFunc("/api/seed-words", referenceHandler.ListSeedWords).Methods("GET")
	router.HandleFunc("/api/seed-words", auth.Require(authz, auth.OpManageReference, referenceHandler.CreateSeedWord)).Methods("POST")
	router.HandleFunc("/api/seed-words/daily", referenceHandler.DailyChallenge).Methods("GET")
	router.HandleFunc("/api/daily-labels", referenceHandler.SubmitDailyLabel).Methods("POST")

	// Entries, variant links and votes
	router.HandleFunc("/api/entries", entryHandler.CreateEntry).Methods("POST")
	router.HandleFunc("/api/entries/{entryId}", entryHandler.GetEntry).Methods("GET")
	router.HandleFunc("/api/entries/{entryId}/variants", entryHandler.ListVariants).Methods("GET")
	router.HandleFunc("/api/variant-links", auth.Require(authz, auth.OpManageVariants, entryHandler.CreateLink)).Methods("POST")
	router.HandleFunc("/api/variant-links/{linkId}", entryHandler.GetLink).Methods("GET")
	router.HandleFunc("/api/variant-links/{linkId}/votes", entryHandler.CastVote).Methods("POST")
	router.HandleFunc("/api/variant-links/{linkId}/votes/{userId}", entryHandler.GetVote).Methods("GET")
	router.HandleFunc("/api/variant-links/{linkId}/recount", auth.Require(authz, auth.OpManageVariants, entryHandler.Recount)).Methods("POST")

	// Leaderboards
	router.HandleFunc("/api/leaderboard", leaderboardHandler.Top).Methods("GET")
	router.HandleFunc("/api/competition/weekly", leaderboardHandler.Weekly).Methods("GET")

	// Chat relay
	chat := d.Chat
	if chat == nil {
		chat = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respond.WriteError(w, http.StatusServiceUnavailable, "chat is not configured")
		})
	}
	router.Handle("/api/chat", chat).Methods("POST")

	return router
}
