package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dialectdeck/ledger/internal/api"
	"github.com/dialectdeck/ledger/internal/auth"
	"github.com/dialectdeck/ledger/internal/config"
	"github.com/dialectdeck/ledger/internal/events"
	"github.com/dialectdeck/ledger/internal/factory"
	"github.com/dialectdeck/ledger/internal/health"
	"github.com/dialectdeck/ledger/internal/logger"
	"github.com/dialectdeck/ledger/internal/relay"
	"github.com/dialectdeck/ledger/internal/services"
	"github.com/dialectdeck/ledger/internal/store"
)

// Run starts the ledger service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("ledger-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	return RunWithConfig(cfg, log)
}

// RunWithConfig is Run with an already resolved configuration.
func RunWithConfig(cfg *config.Config, log zerolog.Logger) error {
	zerolog.SetGlobalLevel(logger.LevelFor(string(cfg.Environment)))
	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("redis_enabled", cfg.RedisAddr != "").
		Bool("chat_enabled", cfg.ChatEnabled()).
		Msg("Ledger service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, db, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = db.Close() }()

	bus := events.NewBus(cfg.EventBuffer, log)
	sinks := []events.Sink{events.LogSink{Log: log}}
	var publisher *events.RedisPublisher
	if cfg.RedisAddr != "" {
		publisher, err = events.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			log.Error().Stack().Err(err).Msg("Redis publisher unavailable")
			return err
		}
		defer func() { _ = publisher.Close() }()
		sinks = append(sinks, publisher)
	}

	deps := buildServices(st, bus, log)
	if err := deps.Badges.ValidateCatalog(ctx); err != nil {
		// Evaluate skips such rows; surface them once at startup.
		log.Warn().Err(err).Msg("badge catalog has rows that can never be awarded")
	}
	deps.Authorizer = auth.New(cfg.AdminAPIKey)
	if cfg.AdminAPIKey == "" {
		log.Warn().Msg("LEDGER_ADMIN_API_KEY not set; catalog and reference writes are open")
	}
	if cfg.ChatEnabled() {
		deps.Chat = relay.New(relay.Options{
			URL:          cfg.ChatGatewayURL,
			APIKey:       cfg.ChatGatewayKey,
			Model:        cfg.ChatModel,
			SystemPrompt: cfg.ChatSystemPrompt,
		}, log)
	}

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, publisher)
	deps.Health = svcHealth

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, api.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bus.Forward(gctx, sinks...) })
	g.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Stack().Err(err).Msg("HTTP server failed")
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Int64("events_dropped", bus.Dropped()).Msg("Server exited")
	return nil
}

// buildServices wires the ledger services onto one store and notifier.
func buildServices(st store.Store, notifier events.Notifier, log zerolog.Logger) api.Dependencies {
	var clock services.Clock
	badges := services.NewBadgeService(st, notifier, log, clock)
	votes := services.NewVoteService(st, badges, clock)
	return api.Dependencies{
		Ledger:        services.NewLedgerService(st, clock),
		Badges:        badges,
		Votes:         votes,
		Contributions: services.NewContributionService(st, badges, votes, clock),
		Variants:      services.NewVariantService(st),
		Leaderboard:   services.NewLeaderboardService(st, clock),
		Reference:     services.NewReferenceService(st, clock),
	}
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, publisher *events.RedisPublisher) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := cfg.HealthProbeTimeout()
	interval := cfg.HealthInterval()

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)
	checkers = append(checkers, storeChecker)

	if publisher != nil {
		redisChecker := health.NewPingChecker("redis", publisher, log, probeTimeout)
		go redisChecker.Start(ctx, interval)
		checkers = append(checkers, redisChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

// WriteTimeout stays unset: /api/chat holds the response open while it streams.
func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
