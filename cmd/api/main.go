package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/analysis"
	httptransport "github.com/spec-kit/credit-ledger/internal/api/http"
	"github.com/spec-kit/credit-ledger/internal/api/http/handlers"
	"github.com/spec-kit/credit-ledger/internal/config"
	"github.com/spec-kit/credit-ledger/internal/gate"
	"github.com/spec-kit/credit-ledger/internal/identity"
	"github.com/spec-kit/credit-ledger/internal/ledger"
	"github.com/spec-kit/credit-ledger/internal/observability"
	"github.com/spec-kit/credit-ledger/internal/persistence"
	"github.com/spec-kit/credit-ledger/internal/repository"
	"github.com/spec-kit/credit-ledger/internal/session"
	"github.com/spec-kit/credit-ledger/internal/state"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	var (
		profileRepo repository.ProfileRepository
		pg          *persistence.Postgres
		rds         *persistence.Redis
	)
	switch cfg.Store.Driver {
	case "postgres":
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		profileRepo = repository.NewPostgresProfileRepository(pg.PoolHandle())
	case "redis":
		rds = persistence.NewRedis(cfg.Redis, logger)
		defer rds.Close()
		profileRepo = repository.NewRedisProfileRepository(rds.Client)
	default:
		profileRepo = repository.NewMemoryProfileRepository()
	}

	tokens := identity.NewTokenManager(cfg.Identity.JWTSecret, cfg.Identity.SessionTTLMinutes)
	provider := identity.NewLocalProvider(tokens, identity.LocalProviderConfig{
		BcryptCost:          cfg.Identity.BcryptCost,
		RequireConfirmation: cfg.Identity.RequireConfirmations,
	})

	profiles := state.NewProfileState()
	unobserve := observability.ObserveProfile(profiles, metrics, logger)
	defer unobserve()

	ledgerService := ledger.NewService(ledger.Dependencies{
		ProfileRepo: profileRepo,
		Provider:    provider,
		Logger:      logger,
	}, cfg.Ledger.StartingBalance)

	observer := session.NewObserver(provider, ledgerService, profiles, logger)
	observer.Start(ctx)
	defer observer.Close()

	backend := analysis.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout())
	gates := gate.NewGates(ledgerService, profiles, metrics, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, pg, rds),
		Auth:     handlers.NewAuthHandler(provider, observer),
		Profile:  handlers.NewProfileHandler(profiles),
		Analysis: handlers.NewAnalysisHandler(gates, backend),
		Session:  identity.NewSessionMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
