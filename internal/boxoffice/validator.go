package boxoffice

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"

	"sjsage522/boxofficeworker/logger"
)

const (
	collectionBlockSelector = ".boxofficecollection"
	movieInfoSelector       = ".movieinfo"

	// movieTitleMarker is part of every per-movie <title> on the source
	movieTitleMarker = "Box Office Collection"
)

// genericTitles are listing pages the source serves instead of a 404
var genericTitles = []string{
	"Sacnilk",
	"Sacnilk - Entertainment News, Box Office Collection, OTT Release",
}

type verdict int

const (
	undecided verdict = iota
	accept
	reject
)

// pageCheck is one heuristic of the validation chain
type pageCheck struct {
	Name  string
	Check func(doc *goquery.Document, queriedTitle string) verdict
}

// pageChecks run in order; the first decisive verdict wins. Reordering or
// adding a heuristic only touches this slice.
var pageChecks = []pageCheck{
	{Name: "collection_block", Check: hasCollectionBlock},
	{Name: "movie_info_block", Check: hasMovieInfoBlock},
	{Name: "generic_title", Check: isGenericTitle},
	{Name: "movie_title_pattern", Check: matchesMovieTitle},
	{Name: "primary_heading", Check: hasMovieHeading},
}

// IsValidMoviePage reports whether doc is the detail page of queriedTitle
func IsValidMoviePage(doc *goquery.Document, queriedTitle string) bool {
	ok, _ := ValidateMoviePage(doc, queriedTitle)
	return ok
}

// ValidateMoviePage is IsValidMoviePage plus the name of the rule that decided
func ValidateMoviePage(doc *goquery.Document, queriedTitle string) (bool, string) {
	if doc == nil {
		return false, "nil_document"
	}
	for i := 0; i < len(pageChecks); i++ {
		switch pageChecks[i].Check(doc, queriedTitle) {
		case accept:
			return true, pageChecks[i].Name
		case reject:
			return false, pageChecks[i].Name
		}
	}
	return false, "no_rule_matched"
}

func hasCollectionBlock(doc *goquery.Document, _ string) verdict {
	if doc.Find(collectionBlockSelector).Length() > 0 {
		return accept
	}
	return undecided
}

func hasMovieInfoBlock(doc *goquery.Document, _ string) verdict {
	if doc.Find(movieInfoSelector).Length() > 0 {
		return accept
	}
	return undecided
}

func pageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func isGenericTitle(doc *goquery.Document, _ string) verdict {
	title := pageTitle(doc)
	for _, generic := range genericTitles {
		if title == generic {
			return reject
		}
	}
	if strings.Contains(strings.ToLower(title), "search results") {
		return reject
	}
	return undecided
}

func matchesMovieTitle(doc *goquery.Document, queriedTitle string) verdict {
	title := pageTitle(doc)
	idx := strings.Index(title, movieTitleMarker)
	if idx < 0 {
		return undecided
	}

	// Spelling variants are common, so a name mismatch is only reported.
	segment := strings.TrimSpace(title[:idx])
	if !namesOverlap(queriedTitle, segment) {
		logger.ForLocator().Debug().
			Str("queried", queriedTitle).
			Str("page_movie", segment).
			Float64("similarity", matchr.JaroWinkler(strings.ToLower(queriedTitle), strings.ToLower(segment), false)).
			Msg("Page title names a different movie; accepting on pattern")
	}
	return accept
}

// namesOverlap compares the first three characters of either name against the other
func namesOverlap(queried, segment string) bool {
	q := strings.ToLower(strings.TrimSpace(queried))
	s := strings.ToLower(segment)
	return strings.HasPrefix(s, prefixRunes(q, 3)) || strings.HasPrefix(q, prefixRunes(s, 3))
}

func prefixRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func hasMovieHeading(doc *goquery.Document, _ string) verdict {
	h1 := strings.ToLower(strings.TrimSpace(doc.Find("h1").First().Text()))
	if h1 == "" || strings.Contains(h1, "trending") || strings.Contains(h1, "news") {
		return undecided
	}
	return accept
}
