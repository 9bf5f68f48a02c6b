package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"fintone/internal/core"
)

// Date pattern tables, shared with the query classifier. Precedence:
// relative keyword, numeric date, month-name date, then "now".
var (
	relativeDatePattern = regexp.MustCompile(`(?i)\b(today|yesterday|tomorrow)\b`)
	numericDatePattern  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	monthDayPattern     = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{2,4}))?\b`)
	dayMonthPattern     = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december)(?:\s+(\d{2,4}))?\b`)
)

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// ExpandYear applies the two-digit-year rule: years below 50 land in the
// 2000s, the rest in the 1900s.
func ExpandYear(year int) int {
	if year >= 100 {
		return year
	}
	if year < 50 {
		return year + 2000
	}
	return year + 1900
}

// validDate reports whether year/month/day name a real calendar date.
// time.Date normalizes overflow (Feb 30 becomes Mar 2), so build and
// compare.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// ResolveRelativeDate maps today/yesterday/tomorrow keywords onto a concrete
// date. The second return reports whether a keyword was present.
func ResolveRelativeDate(text string, now time.Time) (core.Date, bool) {
	m := relativeDatePattern.FindStringSubmatch(text)
	if m == nil {
		return core.Date{}, false
	}
	base := core.DateOf(now)
	switch strings.ToLower(m[1]) {
	case "yesterday":
		return base.AddDays(-1), true
	case "tomorrow":
		return base.AddDays(1), true
	default:
		return base, true
	}
}

// ResolveNumericDate interprets an A/B/Y token, trying month/day/year first
// and falling back to day/month/year when the first reading is not a real
// date.
func ResolveNumericDate(text string) (core.Date, bool) {
	m := numericDatePattern.FindStringSubmatch(text)
	if m == nil {
		return core.Date{}, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	year := ExpandYear(atoi(m[3]))
	if validDate(year, a, b) {
		return core.NewDate(year, a, b), true
	}
	if validDate(year, b, a) {
		return core.NewDate(year, b, a), true
	}
	return core.Date{}, false
}

// ResolveNamedDate interprets month-name dates in either order ("March 15th
// 2024", "15 March 2024"). A missing year defaults to now's year.
func ResolveNamedDate(text string, now time.Time) (core.Date, bool) {
	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		month := monthNumbers[strings.ToLower(m[1])]
		day := atoi(m[2])
		year := yearOrDefault(m[3], now)
		if validDate(year, month, day) {
			return core.NewDate(year, month, day), true
		}
	}
	if m := dayMonthPattern.FindStringSubmatch(text); m != nil {
		day := atoi(m[1])
		month := monthNumbers[strings.ToLower(m[2])]
		year := yearOrDefault(m[3], now)
		if validDate(year, month, day) {
			return core.NewDate(year, month, day), true
		}
	}
	return core.Date{}, false
}

// resolveDate applies the full precedence chain and defaults to now's date.
func resolveDate(text string, now time.Time) core.Date {
	if d, ok := ResolveRelativeDate(text, now); ok {
		return d
	}
	if d, ok := ResolveNumericDate(text); ok {
		return d
	}
	if d, ok := ResolveNamedDate(text, now); ok {
		return d
	}
	return core.DateOf(now)
}

// stripDatePatterns removes every recognized date mention from the text,
// used when building the residual detail string.
func stripDatePatterns(text string) string {
	text = relativeDatePattern.ReplaceAllString(text, "")
	text = numericDatePattern.ReplaceAllString(text, "")
	text = monthDayPattern.ReplaceAllString(text, "")
	text = dayMonthPattern.ReplaceAllString(text, "")
	return text
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func yearOrDefault(match string, now time.Time) int {
	if match == "" {
		return now.Year()
	}
	return ExpandYear(atoi(match))
}
