package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonesrussell/assistant/internal/api"
	"github.com/jonesrussell/assistant/internal/cache"
	"github.com/jonesrussell/assistant/internal/chat"
	"github.com/jonesrussell/assistant/internal/config"
	"github.com/jonesrussell/assistant/internal/exa"
	"github.com/jonesrussell/assistant/internal/guest"
	"github.com/jonesrussell/assistant/internal/logger"
	"github.com/jonesrussell/assistant/internal/search"
	"github.com/jonesrussell/assistant/internal/telemetry"
	"github.com/jonesrussell/assistant/internal/video"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting assistant service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("debug", cfg.Service.Debug),
	)

	return runServer(cfg, log)
}

// loadConfig loads configuration from config file and environment.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	return config.Load(configPath)
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, err
	}
	return log.With(logger.String("service", "assistant")), nil
}

// newStore selects the cache backend from configuration. Construction is lazy:
// the connection is established on first use and shared for the process
// lifetime.
func newStore(cfg *config.Config, log logger.Logger) cache.Store {
	return cache.NewLazy(func() (cache.Store, error) {
		if cfg.Cache.UseLocalRedis {
			log.Info("Using local redis cache", logger.String("url", cfg.Cache.LocalRedisURL))
			return cache.NewRedisStore(cfg.Cache.LocalRedisURL)
		}
		log.Info("Using REST cache backend", logger.String("url", cfg.Cache.UpstashRESTURL))
		return cache.NewRESTStore(cfg.Cache.UpstashRESTURL, cfg.Cache.UpstashRESTToken)
	})
}

// newGuestCounter selects the guest counter backend, mirroring the cache
// backend choice. With local redis the counter reuses the store's connection
// instead of opening a second one.
func newGuestCounter(cfg *config.Config, store cache.Store, log logger.Logger) (guest.Counter, error) {
	if cfg.Cache.UseLocalRedis {
		client, ok := cache.Client(store)
		if !ok {
			return nil, errors.New("cache store has no redis connection to share")
		}
		return guest.NewRedisCounter(client), nil
	}

	counter, err := guest.NewRESTCounter(cfg.Cache.UpstashRESTURL, cfg.Cache.UpstashRESTToken)
	if err != nil {
		log.Warn("Guest counter backend not configured, guests fail open", logger.Error(err))
		return nil, err
	}
	return counter, nil
}

// runServer wires the services and runs the HTTP server with graceful shutdown.
func runServer(cfg *config.Config, log logger.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := telemetry.NewMetrics()
	store := newStore(cfg, log)

	sweeper := cache.NewSweeper(store, log, cfg.Cache.SweepInterval)
	go sweeper.Run(ctx)

	counter, err := newGuestCounter(cfg, store, log)
	if err != nil {
		log.Error("Failed to create guest counter", logger.Error(err))
		return 1
	}
	limiter := guest.NewLimiter(counter, cfg.Guest.MaxMessages, cfg.Guest.Window, log)

	exaClient := exa.NewClient(cfg.Exa, log, metrics)
	searchService := search.NewService(exaClient, store, cfg, log, metrics)

	enricher := video.NewEnricher(cfg.Video.EndpointURL, cfg.Video.CallTimeout, log, metrics)
	videoService := video.NewService(exaClient, enricher, &cfg.Video, log)

	relay := chat.NewRelay(cfg.Chat.UpstreamURL, log)

	handler := api.NewHandler(searchService, videoService, limiter, relay, store, cfg, log, metrics)
	server := api.NewServer(cfg, log, handler, metrics)

	if runErr := server.Run(ctx); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return 1
	}

	log.Info("Assistant service exited cleanly")
	return 0
}
