package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"studio/internal/adapter/repo"
	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/imaging"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/providers/image"
	"studio/internal/service"
	"studio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open file store")
	}

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale detection degraded")
	}

	registry := image.NewRegistry()
	registry.Register("gemini", image.NewGemini(image.GeminiOptions{
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  logger,
	}), "gemini", "imagen")
	registry.Register("openai", image.NewOpenAI(image.OpenAIOptions{
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Logger:  logger,
	}), "dall-e", "gpt-image")

	graphics := repo.NewGraphicRepository(dbpool)
	presets := repo.NewPresetRepository(dbpool)
	users := repo.NewUserRepository(dbpool)
	teams := repo.NewTeamRepository(dbpool)

	resolver := imaging.NewResolver(nil, logger)
	studio := service.NewStudio(graphics, presets, users, registry, resolver, logger)

	app := &handlers.App{
		Studio:   studio,
		Presets:  presets,
		Users:    users,
		Teams:    teams,
		Store:    store,
		Registry: registry,
		Logger:   logger,
	}

	router := httpapi.NewRouter(cfg, app, countries, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	logger.Info().Msg("server stopped")
}
