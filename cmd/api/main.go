package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"supporterboard/internal/adapter/repo"
	"supporterboard/internal/domain"
	"supporterboard/internal/http/handlers"
	httpapi "supporterboard/internal/http/httpapi"
	"supporterboard/internal/infra"
	"supporterboard/internal/infra/geoip"
	"supporterboard/internal/realtime"
	"supporterboard/internal/settings"
	"supporterboard/internal/storage"
	"supporterboard/internal/view"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		boot := infra.NewLogger("development")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logger)
	defer hub.Close()

	var (
		supporters domain.SupporterRepository
		pinger     handlers.Pinger
	)
	switch cfg.StoreDriver {
	case infra.StoreDriverPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		pinger = pool

		runner := infra.NewSQLRunner(pool, logger)
		if cfg.AutoMigrate {
			if err := infra.EnsureSchema(ctx, runner, cfg.NotifyChannel); err != nil {
				logger.Fatal().Err(err).Msg("failed to prepare schema")
			}
		}
		supporters = repo.NewSupporterRepository(runner)

		listener := realtime.NewListener(cfg.DatabaseURL, cfg.NotifyChannel, hub, logger)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("change listener stopped")
			}
		}()
	case infra.StoreDriverMemory:
		logger.Warn().Msg("using in-memory supporter store; data is lost on restart")
		supporters = repo.NewSupporterRepositoryMemory(hub)
	}

	backend, closeBackend, err := openSettingsBackend(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open settings storage")
	}
	defer closeBackend()
	store := settings.NewStore(backend, logger)
	store.Load(ctx)

	admin := view.NewAdminController(supporters, hub, logger)
	if err := admin.Mount(ctx); err != nil {
		logger.Warn().Err(err).Msg("admin view started without data")
	}
	defer admin.Unmount()

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geo.Close()

	app, err := handlers.NewApp(cfg, logger, supporters, hub, store, admin)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build handlers")
	}
	app.DB = pinger

	router, err := httpapi.NewRouter(app, cfg, geo.Lookup())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build router")
	}
	server := infra.NewHTTPServer(cfg, router)
	server.OnShutdown(app.CloseStreams)

	go func() {
		logStartup(logger, cfg)
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func openSettingsBackend(cfg *infra.Config) (settings.Backend, func(), error) {
	switch cfg.SettingsDriver {
	case infra.SettingsDriverSQLite:
		db, err := storage.NewSQLiteStore(filepath.Join(cfg.SettingsPath, "settings.db"))
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		fs, err := storage.NewFileStore(cfg.SettingsPath)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func logStartup(logger zerolog.Logger, cfg *infra.Config) {
	logger.Info().
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Str("settings", cfg.SettingsDriver).
		Bool("auth", cfg.AuthEnabled()).
		Msg("API listening")
}
