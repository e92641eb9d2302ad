// Package coerce converts loosely typed backend values into finite Go values.
// Every function is total: bad input yields the zero value, never a panic.
package coerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// numericNoise is stripped before parsing: thousands separators, currency
// symbols and the various spaces used as group separators.
var numericNoise = strings.NewReplacer(
	",", "",
	"_", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"$", "",
	"€", "",
	"£", "",
)

func cleanNumeric(s string) string {
	return numericNoise.Replace(strings.TrimSpace(s))
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseFloat(s string) float64 {
	s = cleanNumeric(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// Number coerces v into a finite float64, returning 0 for anything it cannot read.
func Number(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		return parseFloat(string(n))
	case string:
		return parseFloat(n)
	case decimal.Decimal:
		return finite(n.InexactFloat64())
	case *decimal.Decimal:
		if n == nil {
			return 0
		}
		return finite(n.InexactFloat64())
	default:
		return 0
	}
}

// Amount coerces v into a decimal, keeping full precision for string input.
func Amount(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case string:
		return parseDecimal(n)
	case json.Number:
		return parseDecimal(string(n))
	default:
		return decimal.NewFromFloat(Number(v))
	}
}

func parseDecimal(s string) decimal.Decimal {
	s = cleanNumeric(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int coerces v into an int64, truncating any fractional part.
func Int(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return i
		}
	case string:
		if i, err := strconv.ParseInt(cleanNumeric(n), 10, 64); err == nil {
			return i
		}
	}
	f := Number(v)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

// String renders scalar values as text; objects and nil become "".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case decimal.Decimal:
		return s.String()
	default:
		return ""
	}
}

// Bool reads booleans sent as bools, strings or numbers.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y":
			return true
		}
		return false
	case nil:
		return false
	default:
		return Number(v) != 0
	}
}

// Leverage reads "1:100", "100" or 100 as 100.
func Leverage(v any) int {
	if s, ok := v.(string); ok {
		if i := strings.LastIndex(s, ":"); i >= 0 {
			s = s[i+1:]
		}
		return int(Int(s))
	}
	return int(Int(v))
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses ISO-8601 strings and unix timestamps (seconds or
// milliseconds). The second result is false when v holds no usable time.
func Time(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return unixTime(Number(s))
		}
		return time.Time{}, false
	default:
		return unixTime(Number(v))
	}
}

func unixTime(f float64) (time.Time, bool) {
	if f <= 0 {
		return time.Time{}, false
	}
	// values past 1e12 are milliseconds (year 33658 in seconds)
	if f >= 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Unix(int64(f), 0).UTC(), true
}

// TimePtr is Time returning nil when no usable time is present.
func TimePtr(v any) *time.Time {
	t, ok := Time(v)
	if !ok {
		return nil
	}
	return &t
}

// TimeOr returns the parsed time or fallback when v holds no usable time.
func TimeOr(v any, fallback time.Time) time.Time {
	if t, ok := Time(v); ok {
		return t
	}
	return fallback
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
