package boxoffice

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/boxofficeworker/logger"
	apperrors "sjsage522/boxofficeworker/pkg/errors"
)

var dayHeaderRegex = regexp.MustCompile(`(?i)Day\s+(\d+)`)

// collectionBlock picks the Hindi day-wise block when one is labelled as such
// and holds a table, otherwise the first collection block on the page.
func collectionBlock(doc *goquery.Document) *goquery.Selection {
	blocks := doc.Find(collectionBlockSelector)
	for i := 0; i < blocks.Length(); i++ {
		block := blocks.Eq(i)
		heading := strings.ToLower(block.Find("h2").Text())
		if strings.Contains(heading, "hindi") && strings.Contains(heading, "day wise") &&
			block.Find("table").Length() > 0 {
			return block
		}
	}
	return blocks.First()
}

// ExtractDailyRows reads the horizontal day-wise table: row 0 holds "Day N"
// headers, row 1 the amounts at the same column index. Cells that are not a
// day header or whose amount does not normalize are skipped.
func ExtractDailyRows(doc *goquery.Document) []DailyRow {
	if doc == nil {
		return nil
	}

	block := collectionBlock(doc)
	if block.Length() == 0 {
		return nil
	}

	rows := block.Find("table").First().Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	headerCells := rows.Eq(0).Find("th")
	if headerCells.Length() == 0 {
		headerCells = rows.Eq(0).Find("td")
	}
	valueCells := rows.Eq(1).Find("td")

	var out []DailyRow
	for i := 0; i < headerCells.Length(); i++ {
		match := dayHeaderRegex.FindStringSubmatch(strings.TrimSpace(headerCells.Eq(i).Text()))
		if match == nil {
			continue
		}
		day, err := strconv.Atoi(match[1])
		if err != nil || day < 1 {
			continue
		}
		if i >= valueCells.Length() {
			continue
		}

		text := strings.TrimSpace(valueCells.Eq(i).Text())
		amount, ok := NormalizeAmount(text)
		if !ok {
			logger.ForExtractor().Debug().
				Err(apperrors.NewNormalization(match[0], "unparsable amount "+strconv.Quote(text))).
				Msg("Skipping day cell")
			continue
		}
		out = append(out, DailyRow{Day: day, Amount: amount})
	}

	// Stable keeps duplicate days in document order so the later cell wins on upsert.
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Day < out[b].Day
	})
	return out
}
