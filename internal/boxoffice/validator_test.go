package boxoffice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMoviePage(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		queried  string
		wantOK   bool
		wantRule string
	}{
		{
			name:     "collection block",
			html:     `<html><head><title>Sacnilk</title></head><body><div class="boxofficecollection"></div></body></html>`,
			queried:  "Jawan",
			wantOK:   true,
			wantRule: "collection_block",
		},
		{
			name:     "movie info block",
			html:     `<html><head><title>Sacnilk</title></head><body><div class="movieinfo">Jawan</div></body></html>`,
			queried:  "Jawan",
			wantOK:   true,
			wantRule: "movie_info_block",
		},
		{
			name:     "homepage title",
			html:     `<html><head><title>Sacnilk - Entertainment News, Box Office Collection, OTT Release</title></head><body><h1>Jawan</h1></body></html>`,
			queried:  "Jawan",
			wantOK:   false,
			wantRule: "generic_title",
		},
		{
			name:     "search results title",
			html:     `<html><head><title>Search Results for Jawan 2023</title></head><body><h1>Jawan</h1></body></html>`,
			queried:  "Jawan",
			wantOK:   false,
			wantRule: "generic_title",
		},
		{
			name:     "movie title pattern",
			html:     `<html><head><title>Jawan Box Office Collection | Day Wise | Worldwide</title></head><body></body></html>`,
			queried:  "Jawan",
			wantOK:   true,
			wantRule: "movie_title_pattern",
		},
		{
			name:     "movie title pattern with different name",
			html:     `<html><head><title>Pathaan Box Office Collection</title></head><body></body></html>`,
			queried:  "Jawan",
			wantOK:   true,
			wantRule: "movie_title_pattern",
		},
		{
			name:     "heading fallback",
			html:     `<html><head><title>Jawan 2023</title></head><body><h1>Jawan</h1></body></html>`,
			queried:  "Jawan",
			wantOK:   true,
			wantRule: "primary_heading",
		},
		{
			name:     "trending heading",
			html:     `<html><head><title>Jawan 2023</title></head><body><h1>Trending Movies</h1></body></html>`,
			queried:  "Jawan",
			wantOK:   false,
			wantRule: "no_rule_matched",
		},
		{
			name:     "news heading",
			html:     `<html><head><title>Latest</title></head><body><h1>Box Office News</h1></body></html>`,
			queried:  "Jawan",
			wantOK:   false,
			wantRule: "no_rule_matched",
		},
		{
			name:     "empty page",
			html:     `<html><body></body></html>`,
			queried:  "Jawan",
			wantOK:   false,
			wantRule: "no_rule_matched",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, rule := ValidateMoviePage(mustDocument(t, tt.html), tt.queried)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRule, rule)
			assert.Equal(t, tt.wantOK, IsValidMoviePage(mustDocument(t, tt.html), tt.queried))
		})
	}
}

func TestIsValidMoviePageGenericTitleWins(t *testing.T) {
	// The homepage title rejects even with a movie-looking heading and table.
	doc := mustDocument(t, `<html><head><title>Sacnilk</title></head><body>
		<h1>Jawan</h1>
		<table><tr><th>Day 1</th></tr><tr><td>₹75 Cr</td></tr></table>
	</body></html>`)
	assert.False(t, IsValidMoviePage(doc, "Jawan"))
	assert.False(t, IsValidMoviePage(nil, "Jawan"))
}

func TestNamesOverlap(t *testing.T) {
	assert.True(t, namesOverlap("Jawan", "Jawan"))
	assert.True(t, namesOverlap("Kisi Ka Bhai Kisi Ki Jaan", "Kisi Ka Bhai Kisi Ki Jan"))
	assert.True(t, namesOverlap("Ja", "Jawan"))
	assert.False(t, namesOverlap("Jawan", "Pathaan"))
}
