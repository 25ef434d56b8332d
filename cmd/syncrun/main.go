// Command syncrun runs one synchronous sync pass and exits. It takes the
// same distributed lock as the server, so it cannot overlap a running
// nightly or manual sync.
package main

import (
	"context"
	"errors"
	"flag"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/kikegomezgit/match-predictor-backend/internal/cache"
	"github.com/kikegomezgit/match-predictor-backend/internal/client"
	"github.com/kikegomezgit/match-predictor-backend/internal/config"
	"github.com/kikegomezgit/match-predictor-backend/internal/repository"
	syncsvc "github.com/kikegomezgit/match-predictor-backend/internal/sync"
	"github.com/kikegomezgit/match-predictor-backend/internal/synclock"
	"github.com/kikegomezgit/match-predictor-backend/internal/venue"
	"github.com/kikegomezgit/match-predictor-backend/internal/weather"
)

func main() {
	years := flag.Int("years", 0, "years of history to sync (0 = configured default)")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

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

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

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

	limiter := client.NewRateCounter(cfg.SyncQuota, cfg.SyncCooldown)
	sportsClient := client.NewClient(cfg.SportsDBBaseURL, cfg.SportsDBAPIKey, cfg.SportsDBTimeout, limiter)
	weatherClient := weather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout)
	resolver := venue.NewResolver(db.Venues, sportsClient, cfg.VenueRetryNoCoords)
	tracker := synclock.NewTracker(redisCache)

	service := syncsvc.NewService(sportsClient, db.Matches, weatherClient, resolver, tracker, cfg.DefaultYearsToSync)

	log.Info().Int("years", *years).Msg("Starting sync run")
	err = service.Run(ctx, *years)
	if errors.Is(err, syncsvc.ErrAlreadyRunning) {
		log.Fatal().Msg("Another sync is already running")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Sync run failed")
	}

	status, err := service.Status(ctx)
	if err == nil && status != nil && status.Result != nil {
		log.Info().
			Int("total", status.Result.Total).
			Int("synced", status.Result.Synced).
			Int("updated", status.Result.Updated).
			Int("failed", status.Result.Failed).
			Int("seasons_skipped", status.Result.SeasonsSkipped).
			Msg("Sync run complete")
	}
}
