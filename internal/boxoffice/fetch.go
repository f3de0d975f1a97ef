package boxoffice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sjsage522/boxofficeworker/helpers"
	"sjsage522/boxofficeworker/logger"
	apperrors "sjsage522/boxofficeworker/pkg/errors"
	"sjsage522/boxofficeworker/services/cache"
)

// Fetcher retrieves the raw HTML behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches pages over HTTP and backs off for BlockTime once the
// source answers with a rate limit status.
type HTTPFetcher struct {
	Client    *helpers.Client
	CacheSvc  cache.CacheService
	CacheKey  string
	BlockTime time.Duration
}

// NewHTTPFetcher creates a fetcher sharing one client timeout for every request
func NewHTTPFetcher(timeout time.Duration, cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    helpers.NewClient(timeout),
		CacheSvc:  cacheSvc,
		CacheKey:  cache.Key("boxoffice", "rate_limited"),
		BlockTime: blockTime,
	}
}

// Fetch returns the UTF-8 body of url
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.CacheSvc != nil && f.CacheKey != "" {
		if _, err := f.CacheSvc.Get(f.CacheKey); err == nil {
			return nil, apperrors.NewRateLimit(url, f.BlockTime)
		}
	}

	body, err := f.Client.FetchWithRandomHeaders(ctx, url)
	if err == nil {
		return body, nil
	}

	var statusErr *helpers.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.IsRateLimited() {
		if f.CacheSvc != nil && f.CacheKey != "" && f.BlockTime > 0 {
			value := []byte(fmt.Sprintf("%d", int(f.BlockTime/time.Second)))
			if cerr := f.CacheSvc.Set(f.CacheKey, value, f.BlockTime); cerr != nil {
				logger.ForCache().Warn().Err(apperrors.NewCache(url, "store rate limit block", cerr)).Str("key", f.CacheKey).Msg("Failed to store rate limit block")
			}
		}
		return nil, apperrors.New(apperrors.ErrorTypeRateLimit, url, "source rate limited", err)
	}
	return nil, apperrors.NewNetwork(url, "fetch failed", err)
}
