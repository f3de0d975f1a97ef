package helpers

import (
	"fmt"
	"strconv"
)

const (
	// Crore is 10,000,000 base currency units
	Crore = 10_000_000
	// Lakh is 100,000 base currency units
	Lakh = 100_000
)

// FormatINR renders an amount with the Crore/Lakh notation used by the source, e.g. "₹150.00 Cr"
func FormatINR(amount int64) string {
	switch {
	case amount == 0:
		return "N/A"
	case amount >= Crore:
		return fmt.Sprintf("₹%.2f Cr", float64(amount)/Crore)
	case amount >= Lakh:
		return fmt.Sprintf("₹%.2f Lakh", float64(amount)/Lakh)
	default:
		return "₹" + groupIndian(amount)
	}
}

// groupIndian groups digits as 12,34,567 (last three, then pairs)
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	out := ""
	for len(head) > 2 {
		out = "," + head[len(head)-2:] + out
		head = head[:len(head)-2]
	}
	out = head + out + "," + tail
	if neg {
		return "-" + out
	}
	return out
}
