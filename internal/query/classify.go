// Package query turns natural-language questions about the ledger into
// classified intents and deterministic reports.
package query

import (
	"regexp"
	"strings"
	"time"

	"fintone/internal/core"
	"fintone/internal/extract"
)

var (
	monthPattern    = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	yearPattern     = regexp.MustCompile(`\b(20\d{2})\b`)
	relativePattern = regexp.MustCompile(`(?i)\b(today|yesterday|tomorrow)\b`)
	profitPattern   = regexp.MustCompile(`(?i)\b(profit|profits|gained|earned|income|revenue|made|earn)\b`)
	lossPattern     = regexp.MustCompile(`(?i)\b(loss|losses|lost|spent|expense|expenses|spend)\b`)
	amountPattern   = regexp.MustCompile(`(?i)\b(how much|what|total|amount|sum|did|have)\b`)
	reportPattern   = regexp.MustCompile(`(?i)\b(report|summary|overview|total)\b`)
	monthlyPattern  = regexp.MustCompile(`(?i)\bmonthly\b`)
	todayPattern    = regexp.MustCompile(`(?i)\btoday\b`)

	monthNumbers = map[string]int{
		"january": 1, "february": 2, "march": 3, "april": 4,
		"may": 5, "june": 6, "july": 7, "august": 8,
		"september": 9, "october": 10, "november": 11, "december": 12,
	}
)

// Classify runs the fixed-order rule cascade over the question and returns
// the recognized intent. Later rules may refine the kind chosen by earlier
// ones, but a relative date such as "today" always pins the date.
func Classify(question string, now time.Time) core.Intent {
	q := strings.ToLower(question)
	intent := core.Intent{Kind: core.IntentUnknown}

	// Rule 1: relative dates win over every other date signal.
	relative := relativePattern.MatchString(q)
	if relative {
		if d, ok := extract.ResolveRelativeDate(q, now); ok {
			intent.Date = d
		}
		intent.Type = questionType(q)
		intent.Kind = core.IntentDateQuery
	}

	// Rule 2: bare month mention. A profit or loss keyword narrows it to a
	// type query, otherwise it is a monthly report.
	monthMatch := monthPattern.FindString(q)
	if monthMatch != "" && !relative {
		intent.Month = monthNumbers[strings.ToLower(monthMatch)]
		if ym := yearPattern.FindStringSubmatch(q); ym != nil {
			intent.Year = atoi(ym[1])
		} else {
			intent.Year = now.Year()
		}
		if t := questionType(q); t.Valid() {
			intent.Type = t
			intent.Kind = core.IntentTypeQuery
		} else {
			intent.Kind = core.IntentMonthlyReport
		}
	}

	// Rule 3: an explicit date (numeric, or day plus month name) overrides
	// the month rule. A missing year defaults to the current one.
	if !relative {
		if d, ok := explicitDate(q, now); ok {
			intent.Date = d
			intent.Type = questionType(q)
			intent.Kind = core.IntentDateQuery
		}
	}

	// Rule 4: amount questions with no date signal. "today" pins the date,
	// anything else becomes an untyped summary.
	if intent.Kind == core.IntentUnknown && amountPattern.MatchString(q) {
		if todayPattern.MatchString(q) {
			intent.Date = core.DateOf(now)
			intent.Kind = core.IntentDateQuery
		} else {
			intent.Kind = core.IntentSummary
		}
	}

	// Rule 5: report requests. "monthly" plus a report keyword is a
	// whole-ledger monthly report regardless of type keywords.
	if reportPattern.MatchString(q) {
		if intent.Kind == core.IntentUnknown || intent.Kind == core.IntentSummary {
			if monthlyPattern.MatchString(q) {
				return core.Intent{Kind: core.IntentMonthlyReport}
			}
		}
		if intent.Kind == core.IntentUnknown {
			if t := questionType(q); t.Valid() {
				intent.Type = t
			}
			intent.Kind = core.IntentSummary
		}
	}

	return intent
}

// questionType reads the profit or loss keyword out of the question, with
// profit checked first. Returns the empty type when neither appears.
func questionType(q string) core.TransactionType {
	if profitPattern.MatchString(q) {
		return core.Profit
	}
	if lossPattern.MatchString(q) {
		return core.Loss
	}
	return ""
}

// explicitDate recognizes numeric dates and "<day> <month name> [year]"
// forms, deferring to the shared resolvers so both engines agree on
// ambiguous numerics.
func explicitDate(q string, now time.Time) (core.Date, bool) {
	if d, ok := extract.ResolveNumericDate(q); ok {
		return d, true
	}
	return extract.ResolveNamedDate(q, now)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
