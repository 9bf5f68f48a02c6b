package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintone/internal/core"
	"fintone/internal/log"
)

// Engine converts one transcribed statement into a ledger record. Extract
// is deterministic for a fixed now and never fails: unresolved fields fall
// back to loss, zero, now's date and a generic detail line.
type Engine struct {
	logger *log.Logger
}

func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Engine{logger: logger.WithComponent(log.ComponentExtract)}
}

// Extract parses the statement into a record dated relative to now.
func (e *Engine) Extract(text string, now time.Time) core.Record {
	lowered := strings.ToLower(strings.TrimSpace(text))

	txType := classifyType(lowered)
	res := resolveAmount(text)
	date := resolveDate(lowered, now)
	details := buildDetails(text, txType, res)

	e.logger.Debug("statement extracted",
		log.FieldType, string(txType),
		log.FieldAmount, res.amount.String(),
		log.FieldDate, date.ISO())

	return core.Record{
		Type:    txType,
		Amount:  res.amount,
		Date:    date,
		Details: details,
	}
}

// amountResolution carries what the amount resolver found, so the detail
// builder can render the canonical percentage sentence.
type amountResolution struct {
	amount       decimal.Decimal
	percent      string // "10" in "profit is 10%"
	base         string // comma-stripped base amount text
	fromPct      bool   // amount was computed as base * percent / 100
	explicitBase bool   // base came from an invested/investment/base/capital phrase
}

// resolveAmount runs spoken-number normalization and then the two-phase
// amount resolution: percentage-of-base first, bare currency amount second.
func resolveAmount(text string) amountResolution {
	normalized := normalizeNumberWords(strings.ToLower(text))

	if m := percentPattern.FindStringSubmatch(normalized); m != nil {
		pct := m[1]
		if pct == "" {
			pct = m[2]
		}
		if base, explicit, ok := resolveBaseAmount(normalized); ok {
			pctDec, err := decimal.NewFromString(pct)
			baseDec, err2 := decimal.NewFromString(base)
			if err == nil && err2 == nil {
				return amountResolution{
					amount:       baseDec.Mul(pctDec).Div(decimal.NewFromInt(100)).Round(2),
					percent:      pct,
					base:         base,
					fromPct:      true,
					explicitBase: explicit,
				}
			}
		}
		// No base to apply the percentage to; fall through to the bare
		// amount scan, which will pick up the first number in the text.
	}

	if raw, ok := firstAmount(normalized); ok {
		if d, err := decimal.NewFromString(raw); err == nil {
			return amountResolution{amount: d}
		}
	}
	return amountResolution{amount: decimal.Zero}
}

// resolveBaseAmount finds the base for a percentage construct: an explicit
// invested/investment/base/capital phrase wins, else the first bare amount
// anywhere in the normalized text.
func resolveBaseAmount(normalized string) (base string, explicit, ok bool) {
	for _, p := range investmentPatterns {
		if m := p.FindStringSubmatch(normalized); m != nil {
			return strings.ReplaceAll(m[1], ",", ""), true, true
		}
	}
	base, ok = firstAmount(normalized)
	return base, false, ok
}

// firstAmount returns the first currency token, commas removed.
func firstAmount(normalized string) (string, bool) {
	m := amountPattern.FindStringSubmatch(normalized)
	if m == nil {
		return "", false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	return strings.ReplaceAll(raw, ",", ""), true
}

// buildDetails produces the free-text detail column. Percentage-of-base
// statements get a canonical sentence; everything else keeps the statement
// minus amounts, percentages, dates and stopwords.
func buildDetails(text string, txType core.TransactionType, res amountResolution) string {
	if res.fromPct && res.explicitBase {
		return fmt.Sprintf("Investment of %s with %s%% %s", res.base, res.percent, txType)
	}

	details := amountPattern.ReplaceAllString(text, "")
	details = pctOnlyPattern.ReplaceAllString(details, "")
	details = stripDatePatterns(details)
	details = stopwordPattern.ReplaceAllString(details, "")
	details = strings.Join(strings.Fields(details), " ")

	if len(details) < 3 {
		return txType.Capitalized() + " transaction"
	}
	return details
}
