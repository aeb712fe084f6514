package records

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// parseDecimal accepts plain numbers as well as currency-formatted cells like "$1,250.50"
func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// decimalOr returns the parsed value, or def when the cell is empty, malformed or negative
func decimalOr(s string, def decimal.Decimal) decimal.Decimal {
	d, ok := parseDecimal(s)
	if !ok || d.IsNegative() {
		return def
	}
	return d
}

// signedDecimalOr is decimalOr that keeps negative values, leaving range
// checks to entity validation
func signedDecimalOr(s string, def decimal.Decimal) decimal.Decimal {
	if d, ok := parseDecimal(s); ok {
		return d
	}
	return def
}

// intOr truncates numeric cells such as "12.0" toward zero. Empty, malformed
// and negative cells yield def.
func intOr(s string, def int64) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return def
	}
	return int64(f)
}

// yesOr interprets Y/N style cells, returning def for an empty cell
func yesOr(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// parseDate returns the zero time for empty or unrecognized dates
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseTimestamp accepts RFC 3339 timestamps and plain dates
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t := parseDate(s); !t.IsZero() {
		return t, true
	}
	return time.Time{}, false
}
