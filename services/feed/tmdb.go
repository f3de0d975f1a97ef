package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"sjsage522/boxofficeworker/internal/boxoffice"
	"sjsage522/boxofficeworker/logger"
	apperrors "sjsage522/boxofficeworker/pkg/errors"
)

// TMDBOptions configures the discover query for latest releases
type TMDBOptions struct {
	BaseURL          string
	AccessToken      string
	APIKey           string
	OriginalLanguage string
	ReleaseFrom      string
	ReleaseTo        string
	Pages            int
	Timeout          time.Duration
}

// TMDBFeed lists recent releases from TMDB's discover endpoint
type TMDBFeed struct {
	client *resty.Client
	opts   TMDBOptions
}

type discoverResponse struct {
	Page       int                      `json:"page"`
	TotalPages int                      `json:"total_pages"`
	Results    []boxoffice.TrackedTitle `json:"results"`
}

// NewTMDBFeed creates a TMDB feed. Either AccessToken or APIKey must be set.
func NewTMDBFeed(opts TMDBOptions) *TMDBFeed {
	if opts.Pages <= 0 {
		opts.Pages = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.AccessToken != "" {
		client.SetAuthToken(opts.AccessToken)
	} else if opts.APIKey != "" {
		client.SetQueryParam("api_key", opts.APIKey)
	}

	return &TMDBFeed{client: client, opts: opts}
}

// Titles fetches up to opts.Pages pages of popular releases in the date window
func (f *TMDBFeed) Titles(ctx context.Context) ([]boxoffice.TrackedTitle, error) {
	log := logger.ForFeed()

	var titles []boxoffice.TrackedTitle
	for page := 1; page <= f.opts.Pages; page++ {
		var body discoverResponse
		res, err := f.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"primary_release_date.gte": f.opts.ReleaseFrom,
				"primary_release_date.lte": f.opts.ReleaseTo,
				"with_original_language":   f.opts.OriginalLanguage,
				"sort_by":                  "popularity.desc",
				"include_adult":            "false",
				"include_video":            "false",
				"page":                     strconv.Itoa(page),
			}).
			SetResult(&body).
			Get("/discover/movie")
		if err != nil {
			return nil, apperrors.NewFeed("discover request failed", err)
		}
		if res.IsError() {
			return nil, apperrors.NewFeed("discover request failed", fmt.Errorf("TMDB API error: %s", res.Status()))
		}

		titles = append(titles, body.Results...)
		if body.TotalPages <= page {
			break
		}
	}

	log.Info().
		Int("count", len(titles)).
		Str("from", f.opts.ReleaseFrom).
		Str("to", f.opts.ReleaseTo).
		Msg("Fetched titles from TMDB")
	return titles, nil
}
