package main

import (
	"context"
	"fmt"

	"sjsage522/boxofficeworker/config"
	"sjsage522/boxofficeworker/helpers"
	"sjsage522/boxofficeworker/internal/boxoffice"
	"sjsage522/boxofficeworker/logger"
	"sjsage522/boxofficeworker/services/cache"
	"sjsage522/boxofficeworker/services/publisher"
	"sjsage522/boxofficeworker/services/store"
	"sjsage522/boxofficeworker/services/worker"
)

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Store     store.Store
	Journal   *helpers.Logger
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// Syncer wires the locator and store into a syncer
func (s *Services) Syncer(cfg *config.Config) *worker.Syncer {
	fetcher := boxoffice.NewHTTPFetcher(cfg.RequestTimeout, s.Cache, cfg.BlockTime)
	locator := boxoffice.NewLocator(cfg.SourceBaseURL, fetcher, s.Cache, cfg.URLCacheTTL)
	return worker.NewSyncer(locator, s.Store, s.Journal, cfg.PacingDelay)
}

// initializeServices initializes all required services. The store is
// required; the cache and the report stream degrade to disabled.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{
		Journal: helpers.NewLogger(cfg.ErrorLogFile),
	}

	// Initialize store
	sqliteStore, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	services.Store = sqliteStore
	logger.ForStore().Info().Str("path", cfg.DatabasePath).Msg("Opened store")

	services.Cache = connectCache(cfg)

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLength,
	)
	if err := redisPublisher.Ping(); err != nil {
		logger.ForPublisher().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, reports will not be published")
		redisPublisher.Close()
	} else {
		services.Publisher = redisPublisher
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}

// connectCache returns the memcache service, or nil when it is unreachable
func connectCache(cfg *config.Config) cache.CacheService {
	if cfg.MemcacheAddr == "" {
		return nil
	}
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if err := cacheService.Ping(); err != nil {
		logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unavailable, caching disabled")
		return nil
	}
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	return cacheService
}
