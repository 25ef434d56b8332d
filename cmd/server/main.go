package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/cache"
	"github.com/kikegomezgit/match-predictor-backend/internal/client"
	"github.com/kikegomezgit/match-predictor-backend/internal/config"
	"github.com/kikegomezgit/match-predictor-backend/internal/metrics"
	"github.com/kikegomezgit/match-predictor-backend/internal/predict"
	"github.com/kikegomezgit/match-predictor-backend/internal/repository"
	"github.com/kikegomezgit/match-predictor-backend/internal/scheduler"
	"github.com/kikegomezgit/match-predictor-backend/internal/server"
	"github.com/kikegomezgit/match-predictor-backend/internal/stats"
	syncsvc "github.com/kikegomezgit/match-predictor-backend/internal/sync"
	"github.com/kikegomezgit/match-predictor-backend/internal/synclock"
	"github.com/kikegomezgit/match-predictor-backend/internal/venue"
	"github.com/kikegomezgit/match-predictor-backend/internal/weather"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting Match Predictor Backend")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Redis carries the sync lock; without it two runs could overlap, so a
	// connection failure is fatal here
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()
	log.Info().Msg("Redis connected")

	// Initialize the provider clients behind the shared rate budget
	limiter := client.NewRateCounter(cfg.SyncQuota, cfg.SyncCooldown)
	sportsClient := client.NewClient(cfg.SportsDBBaseURL, cfg.SportsDBAPIKey, cfg.SportsDBTimeout, limiter)
	weatherClient := weather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout)

	resolver := venue.NewResolver(db.Venues, sportsClient, cfg.VenueRetryNoCoords)
	tracker := synclock.NewTracker(redisCache)

	syncService := syncsvc.NewService(sportsClient, db.Matches, weatherClient, resolver, tracker, cfg.DefaultYearsToSync)
	statsService := stats.NewService(db.Matches, redisCache, cfg.StatsCacheTTL)

	var predictionProvider server.PredictionProvider
	if cfg.OpenAIAPIKey != "" {
		predictClient, err := predict.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize prediction client")
		}
		predictionProvider = predict.NewService(db.Matches, db.Predictions, predictClient)
		log.Info().Str("model", cfg.OpenAIModel).Msg("Prediction service enabled")
	} else {
		log.Info().Msg("No OpenAI key configured, prediction endpoint disabled")
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start the nightly sync scheduler
	sched := scheduler.NewScheduler(syncService, cfg.NightlySyncCron, cfg.DefaultYearsToSync)
	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	srv := server.NewServer(cfg.ServerPort, syncService, db.Matches, statsService, predictionProvider, db)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down...")
	if cfg.EnableScheduler {
		sched.Stop()
	}
	srv.Stop()

	log.Info().Msg("Shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}
