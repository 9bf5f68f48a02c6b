// Package extract turns free-form statements about money into structured
// ledger records. Every resolver is total: whatever the input, a record
// comes back, with documented defaults for anything unrecognized.
package extract

import (
	"regexp"

	"fintone/internal/core"
)

// typeRule maps a keyword set to a transaction type. Rules are evaluated in
// declaration order and the first set with any match wins, so the profit
// vocabulary always takes precedence over the loss vocabulary.
type typeRule struct {
	name    string
	pattern *regexp.Regexp
	result  core.TransactionType
}

var typeRules = []typeRule{
	{
		name:    "profit keywords",
		pattern: regexp.MustCompile(`(?i)\b(profit|gained|earned|received|income|revenue|made|won|in|plus|positive)\b`),
		result:  core.Profit,
	},
	{
		name:    "loss keywords",
		pattern: regexp.MustCompile(`(?i)\b(loss|lost|spent|expense|paid|cost|negative|minus|out|down)\b`),
		result:  core.Loss,
	},
}

// Statements with no directional keyword are booked as losses. Conservative
// on purpose: an uncategorized cash movement is assumed to be money out.
const defaultType = core.Loss

// classifyType runs the ordered rule table over the statement.
func classifyType(text string) core.TransactionType {
	for _, rule := range typeRules {
		if rule.pattern.MatchString(text) {
			return rule.result
		}
	}
	return defaultType
}

var (
	// amountPattern matches the first currency token: an optional $ prefix,
	// thousands separators, an optional 2-decimal fraction, or a bare
	// number followed by a unit word.
	amountPattern = regexp.MustCompile(`(?i)\$?(\d+(?:,\d{3})*(?:\.\d{2})?)\b|\b(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:dollars?|USD|rs|rupees?)`)

	// percentPattern recognizes the two percentage-of-base constructs:
	// "profit ... is|of|at N%" and "N% profit".
	percentPattern = regexp.MustCompile(`(?i)(?:profit|loss).*?(?:is|of|at)\s*(\d+(?:\.\d+)?)\s*%|(\d+(?:\.\d+)?)\s*%\s*(?:profit|loss)`)

	// pctOnlyPattern strips leftover percentage mentions from details.
	pctOnlyPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*%`)

	// investmentPatterns resolve the base amount for percentage constructs,
	// tried in priority order.
	investmentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)invested\s+(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)investment\s+(?:of|is)\s+(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)base\s+(?:of|is)\s+(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)capital\s+(?:of|is)\s+(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	}

	// stopwords removed from the residual detail text.
	stopwordPattern = regexp.MustCompile(`(?i)\b(profit|loss|gained|earned|received|spent|paid|lost|today|yesterday|tomorrow|and|is|nothing)\b`)
)
