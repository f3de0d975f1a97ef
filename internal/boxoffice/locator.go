package boxoffice

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/boxofficeworker/logger"
	apperrors "sjsage522/boxofficeworker/pkg/errors"
	"sjsage522/boxofficeworker/services/cache"
)

const defaultMaxSearchResults = 3

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	punctRegex      = regexp.MustCompile(`_*[-:]+_*`)
	nonSlugRegex    = regexp.MustCompile(`[^A-Za-z0-9_]`)
	underscoreRegex = regexp.MustCompile(`_+`)

	slugPunctStripper = strings.NewReplacer("-", "", ":", "")
)

// Locator finds the detail page of a title on the source
type Locator struct {
	BaseURL          string
	Fetcher          Fetcher
	CacheSvc         cache.CacheService
	CacheTTL         time.Duration
	MaxSearchResults int

	log *logger.Logger
	now func() time.Time
}

// NewLocator creates a locator. cacheSvc may be nil.
func NewLocator(baseURL string, fetcher Fetcher, cacheSvc cache.CacheService, cacheTTL time.Duration) *Locator {
	return &Locator{
		BaseURL:          strings.TrimRight(baseURL, "/"),
		Fetcher:          fetcher,
		CacheSvc:         cacheSvc,
		CacheTTL:         cacheTTL,
		MaxSearchResults: defaultMaxSearchResults,
		log:              logger.ForLocator(),
		now:              time.Now,
	}
}

// TitleVariants returns the URL slugs tried for a title, deduplicated and in order.
// The first keeps one underscore per whitespace run, so "Jawan - Part 2" gives
// "Jawan__Part_2"; the second collapses underscore runs.
func TitleVariants(title string) []string {
	underscored := nonSlugRegex.ReplaceAllString(
		punctRegex.ReplaceAllStringFunc(whitespaceRegex.ReplaceAllString(strings.TrimSpace(title), "_"), slugPunct),
		"",
	)
	collapsed := strings.Trim(underscoreRegex.ReplaceAllString(underscored, "_"), "_")

	var out []string
	for _, v := range []string{underscored, collapsed} {
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// slugPunct drops a dash or colon that sits next to a whitespace underscore and
// turns a bare one ("Tiger-3") into an underscore.
func slugPunct(match string) string {
	if strings.Contains(match, "_") {
		return slugPunctStripper.Replace(match)
	}
	return "_"
}

// YearVariants tolerates the listing year differing from the release year
func YearVariants(year int) []int {
	return []int{year, year - 1, year + 1}
}

// Candidates builds the direct detail URLs in title-major, year-minor order
func (l *Locator) Candidates(title string, year int) []CandidateURL {
	var out []CandidateURL
	for _, tv := range TitleVariants(title) {
		for _, yv := range YearVariants(year) {
			y := strconv.Itoa(yv)
			out = append(out, CandidateURL{
				URL:          l.BaseURL + "/movie/" + tv + "_" + y,
				TitleVariant: tv,
				YearVariant:  y,
			})
		}
	}
	return out
}

// LocateMoviePage returns the first candidate page that validates for title.
// A nil page with a nil error means the source has no page for it. Candidate
// failures are logged and skipped; only cancellation stops the search early.
func (l *Locator) LocateMoviePage(ctx context.Context, title string, year int) (*FetchedPage, error) {
	var rateLimited error
	try := func(c CandidateURL, stage string) *FetchedPage {
		page, err := l.tryCandidate(ctx, title, c, stage)
		if err != nil && apperrors.IsType(err, apperrors.ErrorTypeRateLimit) {
			rateLimited = err
		}
		return page
	}

	cacheKey := cache.Key("boxoffice", "page", title, strconv.Itoa(year))
	if cached := l.cachedURL(cacheKey); cached != "" {
		if page := try(CandidateURL{URL: cached}, "cached"); page != nil {
			return page, nil
		}
	}

	for _, c := range l.Candidates(title, year) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page := try(c, "direct"); page != nil {
			l.remember(cacheKey, page.URL)
			return page, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, c := range l.searchCandidates(ctx, title, year) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page := try(c, "search"); page != nil {
			l.remember(cacheKey, page.URL)
			return page, nil
		}
	}

	if rateLimited != nil {
		return nil, rateLimited
	}
	l.log.Info().Str("title", title).Int("year", year).Msg("No movie page found")
	return nil, nil
}

// tryCandidate fetches, parses and validates one candidate
func (l *Locator) tryCandidate(ctx context.Context, title string, c CandidateURL, stage string) (*FetchedPage, error) {
	event := attemptLog{log: l.log, title: title, c: c, stage: stage}

	body, err := l.Fetcher.Fetch(ctx, c.URL)
	if err != nil {
		event.failed("fetch", err)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		perr := apperrors.NewParsing(title, "HTML parsing failed", err)
		event.failed("parse", perr)
		return nil, perr
	}

	ok, rule := ValidateMoviePage(doc, title)
	if !ok {
		event.rejected(rule)
		return nil, apperrors.NewValidation(title, "rejected by "+rule)
	}

	event.accepted(rule)
	return &FetchedPage{
		URL:       c.URL,
		HTML:      body,
		Document:  doc,
		FetchedAt: l.now(),
	}, nil
}

// searchCandidates asks the site search for "<title> <year>" and returns the
// first MaxSearchResults distinct movie detail links.
func (l *Locator) searchCandidates(ctx context.Context, title string, year int) []CandidateURL {
	query := title + " " + strconv.Itoa(year)
	searchURL := l.BaseURL + "/search?q=" + url.QueryEscape(query)

	body, err := l.Fetcher.Fetch(ctx, searchURL)
	if err != nil {
		l.log.Warn().Err(err).Str("title", title).Str("url", searchURL).Msg("Search request failed")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		l.log.Warn().Err(err).Str("title", title).Str("url", searchURL).Msg("Search page parsing failed")
		return nil
	}

	base, err := url.Parse(l.BaseURL + "/")
	if err != nil {
		return nil
	}

	limit := l.MaxSearchResults
	if limit <= 0 {
		limit = defaultMaxSearchResults
	}

	var out []CandidateURL
	var seen []string
	links := doc.Find("a[href]")
	for i := 0; i < links.Length() && len(out) < limit; i++ {
		href, _ := links.Eq(i).Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		if !strings.Contains(resolved.Path, "/movie/") || slices.Contains(seen, resolved.String()) {
			continue
		}
		seen = append(seen, resolved.String())
		out = append(out, CandidateURL{URL: resolved.String()})
	}

	l.log.Debug().Str("title", title).Int("results", len(out)).Msg("Search fallback candidates")
	return out
}

func (l *Locator) cachedURL(key string) string {
	if l.CacheSvc == nil {
		return ""
	}
	value, err := l.CacheSvc.Get(key)
	if err != nil {
		return ""
	}
	return string(value)
}

func (l *Locator) remember(key, pageURL string) {
	if l.CacheSvc == nil || l.CacheTTL <= 0 {
		return
	}
	if err := l.CacheSvc.Set(key, []byte(pageURL), l.CacheTTL); err != nil {
		logger.ForCache().Warn().Err(apperrors.NewCache(pageURL, "remember located page", err)).Str("key", key).Msg("Failed to cache located page")
	}
}

// attemptLog emits one structured event per candidate attempt
type attemptLog struct {
	log   *logger.Logger
	title string
	c     CandidateURL
	stage string
}

func (e attemptLog) failed(step string, err error) {
	e.log.Debug().
		Str("title", e.title).
		Str("url", e.c.URL).
		Str("title_variant", e.c.TitleVariant).
		Str("year_variant", e.c.YearVariant).
		Str("stage", e.stage).
		Str("step", step).
		Err(err).
		Msg("Candidate failed")
}

func (e attemptLog) rejected(rule string) {
	e.log.Debug().
		Str("title", e.title).
		Str("url", e.c.URL).
		Str("stage", e.stage).
		Str("rule", rule).
		Msg("Candidate rejected")
}

func (e attemptLog) accepted(rule string) {
	e.log.Info().
		Str("title", e.title).
		Str("url", e.c.URL).
		Str("stage", e.stage).
		Str("rule", rule).
		Msg("Movie page located")
}
