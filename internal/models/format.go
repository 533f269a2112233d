package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCompact renders a USD amount with a magnitude suffix:
// trillions and billions keep two decimals, millions one; anything
// below a million is a comma-grouped whole-dollar figure.
func FormatCompact(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	default:
		return "$" + groupThousands(strconv.FormatFloat(math.Round(v), 'f', 0, 64))
	}
}

// FormatPrice renders an asset price. Prices of a dollar and up get two
// decimals with thousands grouping; sub-dollar assets get six decimals
// so sub-cent prices don't collapse to "$0.00".
func FormatPrice(v float64) string {
	if v >= 1 {
		s := strconv.FormatFloat(v, 'f', 2, 64)
		whole, frac, _ := strings.Cut(s, ".")
		return "$" + groupThousands(whole) + "." + frac
	}
	return fmt.Sprintf("$%.6f", v)
}

// ImpactFromScore buckets a 0-100 confidence score into an impact
// level. Lower bounds are inclusive.
func ImpactFromScore(score float64) string {
	switch {
	case score >= 70:
		return ImpactHigh
	case score >= 40:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// groupThousands inserts commas into a plain digit string.
func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
