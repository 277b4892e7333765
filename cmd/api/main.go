package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"adstudio/internal/adapter/repo"
	"adstudio/internal/generation"
	"adstudio/internal/http/handlers"
	httpapi "adstudio/internal/http/httpapi"
	"adstudio/internal/infra"
	"adstudio/internal/infra/credentials"
	"adstudio/internal/infra/geoip"
	"adstudio/internal/middleware"
	"adstudio/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	ctx := context.Background()

	// Postgres is optional: it holds stored provider keys and the event log.
	var (
		store  tokenSource
		events *repo.EventRepo
	)
	if cfg.HasDatabase() {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger.With().Str("component", "sql").Logger())
		runner.SlowQuery = cfg.SlowQuery
		if err := repo.EnsureSchema(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		store = credentials.NewStore(runner)
		events = repo.NewEventRepo(runner, logger, 0)
	} else {
		logger.Info().Msg("DATABASE_URL not set; stored keys and event log disabled")
	}

	keys := resolveKeys(ctx, cfg, store, logger)
	m, err := buildModels(cfg, keys, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure providers")
	}
	svc, err := generation.NewService(generation.Options{Text: m.Text, Image: m.Image, Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation service")
	}
	logger.Info().
		Str("text_model", svc.TextModelName()).
		Str("image_model", svc.ImageModelName()).
		Msg("generation configured")

	regCfg := wizard.RegistryConfig{TTL: cfg.SessionTTL, Generator: svc, Logger: &logger}
	if events != nil {
		regCfg.Recorder = events
	}
	sessions := wizard.NewRegistry(regCfg)

	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = geoip.Lookup(geoip.NewCached(resolver, time.Hour))
	}

	app := handlers.NewApp(cfg, logger, sessions)
	app.Models["text"] = svc.TextModelName()
	app.Models["image"] = svc.ImageModelName()
	if events != nil {
		app.Events = events
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	sessions.Close()
	if events != nil {
		if err := events.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Int64("dropped", events.Dropped()).Msg("event log not flushed")
		}
	}
	logger.Info().Msg("server stopped")
}
