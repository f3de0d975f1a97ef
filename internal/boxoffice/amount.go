package boxoffice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	croreMultiplier = 10_000_000
	lakhMultiplier  = 100_000
)

// numberRegex matches the first number in a cell, allowing digit-group commas
var numberRegex = regexp.MustCompile(`\d[\d,]*(?:\.\d*)?|\.\d+`)

// NormalizeAmount converts free text such as "₹75 Cr" or "12.5 Lakh" into base
// currency units. The magnitude is the first number in the text, so stray dots
// ("Approx. 2.5 Cr", "2.5 Cr (est.)") do not spoil it. ok is false when the
// text has no digits or does not yield a positive amount.
func NormalizeAmount(text string) (int64, bool) {
	magnitude := strings.ReplaceAll(numberRegex.FindString(text), ",", "")
	if magnitude == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(magnitude, 64)
	if err != nil {
		return 0, false
	}

	// The unit comes from the original text, not the stripped magnitude.
	multiplier := 1.0
	switch {
	case strings.Contains(text, "Cr"):
		multiplier = croreMultiplier
	case strings.Contains(text, "Lakh"):
		multiplier = lakhMultiplier
	}

	amount := math.Floor(value * multiplier)
	if amount <= 0 || amount > math.MaxInt64 {
		return 0, false
	}
	return int64(amount), true
}
