package validation

import (
	"strconv"
	"strings"
	"time"
)

// Expiry dates within this many calendar months of today raise a
// non-blocking warning.
const approachingWindowMonths = 4

const (
	msgExpiryFormat      = "Expiry date must be in MM/YY format."
	msgExpiryYearPast    = "Expiry year cannot be less than the current year."
	msgExpiryMonthPast   = "Expiry month cannot be less than the current month in the current year."
	msgExpiryApproaching = "Expiry date is approaching soon."
)

// ExpiryResult reports whether an expiry date blocks submission. Approaching
// is advisory only and never blocks.
type ExpiryResult struct {
	Valid       bool
	Approaching bool
	Message     string
}

// ValidateExpiry checks an MM/YY expiry against today. Two-digit years are
// interpreted as 2000+YY; the 2100 boundary is not supported.
func ValidateExpiry(value string, today time.Time) ExpiryResult {
	month, year, ok := splitExpiry(value)
	if !ok {
		return ExpiryResult{Valid: false, Message: msgExpiryFormat}
	}

	currentYear := today.Year() % 100
	currentMonth := int(today.Month())

	if year < currentYear {
		return ExpiryResult{Valid: false, Message: msgExpiryYearPast}
	}
	if year == currentYear && month < currentMonth {
		return ExpiryResult{Valid: false, Message: msgExpiryMonthPast}
	}

	monthsAhead := (2000+year-today.Year())*12 + month - currentMonth
	if monthsAhead <= approachingWindowMonths {
		return ExpiryResult{Valid: true, Approaching: true, Message: msgExpiryApproaching}
	}

	return ExpiryResult{Valid: true}
}

func splitExpiry(value string) (month, year int, ok bool) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil || year < 0 {
		return 0, 0, false
	}
	return month, year, true
}
