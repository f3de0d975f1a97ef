package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Store configuration
	DatabasePath string

	// Redis configuration (batch reports)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Scraped source
	SourceBaseURL  string
	RequestTimeout time.Duration
	BlockTime      time.Duration
	URLCacheTTL    time.Duration

	// Sync loop
	SyncInterval time.Duration
	PacingDelay  time.Duration
	ErrorLogFile string

	// Title feed (TMDB)
	TMDBBaseURL     string
	TMDBAccessToken string
	TMDBAPIKey      string
	TMDBLanguage    string
	ReleaseFrom     string
	ReleaseTo       string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "100"))
	syncInterval, _ := strconv.Atoi(getEnv("SYNC_INTERVAL_SECONDS", "86400"))
	pacingDelay, _ := strconv.Atoi(getEnv("PACING_DELAY_MS", "500"))
	requestTimeout, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "10"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_SECONDS", "500"))
	urlCacheTTL, _ := strconv.Atoi(getEnv("URL_CACHE_TTL_SECONDS", "604800"))

	return &Config{
		DatabasePath:         getEnv("DATABASE_PATH", "boxoffice.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "boxoffice:sync"),
		RedisStreamMaxLength: streamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		SourceBaseURL:        strings.TrimRight(getEnv("SOURCE_BASE_URL", "https://www.sacnilk.com"), "/"),
		RequestTimeout:       time.Duration(requestTimeout) * time.Second,
		BlockTime:            time.Duration(blockTime) * time.Second,
		URLCacheTTL:          time.Duration(urlCacheTTL) * time.Second,
		SyncInterval:         time.Duration(syncInterval) * time.Second,
		PacingDelay:          time.Duration(pacingDelay) * time.Millisecond,
		ErrorLogFile:         getEnv("ERROR_LOG_FILE", "sync_errors.log"),
		TMDBBaseURL:          strings.TrimRight(getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"), "/"),
		TMDBAccessToken:      getEnv("TMDB_READ_ACCESS_TOKEN", ""),
		TMDBAPIKey:           getEnv("TMDB_API_KEY", ""),
		TMDBLanguage:         getEnv("TMDB_ORIGINAL_LANGUAGE", "hi"),
		ReleaseFrom:          getEnv("RELEASE_FROM", "2025-10-01"),
		ReleaseTo:            getEnv("RELEASE_TO", "2025-12-30"),
		Environment:          getEnv("BOXOFFICE_ENVIRONMENT", "development"),
	}
}

// Validate checks the values that cannot be defaulted sensibly
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.SourceBaseURL); err != nil {
		return fmt.Errorf("invalid SOURCE_BASE_URL %q: %w", c.SourceBaseURL, err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.PacingDelay < 0 {
		return fmt.Errorf("PACING_DELAY_MS must not be negative")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL_SECONDS must be positive")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	for name, v := range map[string]string{"RELEASE_FROM": c.ReleaseFrom, "RELEASE_TO": c.ReleaseTo} {
		if _, err := time.Parse(time.DateOnly, v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}

// HasTMDBCredentials reports whether the title feed can authenticate
func (c *Config) HasTMDBCredentials() bool {
	return c.TMDBAccessToken != "" || c.TMDBAPIKey != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
