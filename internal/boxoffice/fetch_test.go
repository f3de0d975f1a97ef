package boxoffice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "sjsage522/boxofficeworker/pkg/errors"
)

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/Jawan_2023" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(moviePageHTML))
	}))
	defer server.Close()

	f := NewHTTPFetcher(5*time.Second, NewMockCacheService(), time.Minute)

	body, err := f.Fetch(context.Background(), server.URL+"/movie/Jawan_2023")
	assert.NoError(t, err)
	assert.Contains(t, string(body), "boxofficecollection")

	_, err = f.Fetch(context.Background(), server.URL+"/movie/Missing_2023")
	assert.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
}

func TestHTTPFetcherRateLimitBlocks(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cacheSvc := NewMockCacheService()
	f := NewHTTPFetcher(5*time.Second, cacheSvc, time.Minute)

	_, err := f.Fetch(context.Background(), server.URL+"/movie/Jawan_2023")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
	assert.Contains(t, cacheSvc.cache, f.CacheKey)

	// Blocked: the server is not contacted again
	_, err = f.Fetch(context.Background(), server.URL+"/movie/Jawan_2022")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPFetcherWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewHTTPFetcher(5*time.Second, nil, time.Minute)
	_, err := f.Fetch(context.Background(), server.URL)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
}
