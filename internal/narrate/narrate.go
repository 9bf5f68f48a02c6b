// Package narrate rephrases ledger records as prose. The template narrator
// is deterministic and always available; the LLM narrator calls an
// OpenAI-compatible chat endpoint and is strictly grounded on the records
// it is handed.
package narrate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fintone/internal/core"
)

// Summarizer turns a record set and the question that produced it into a
// human-readable summary.
type Summarizer interface {
	Summarize(ctx context.Context, records []core.Record, question string) (string, error)
}

const recentLimit = 10

// Template is the no-dependency narrator. Identical input always yields
// identical output.
type Template struct{}

func NewTemplate() Template { return Template{} }

func (Template) Summarize(_ context.Context, records []core.Record, question string) (string, error) {
	if len(records) == 0 {
		return "No records found.", nil
	}

	profits, losses, summary := core.SummarizeByType(records)

	var b strings.Builder
	b.WriteString("Financial Summary\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Total Profit: %s (%d transactions)\n", core.FormatUSD(summary.TotalProfit), len(profits))
	fmt.Fprintf(&b, "Total Loss: %s (%d transactions)\n", core.FormatUSD(summary.TotalLoss), len(losses))
	fmt.Fprintf(&b, "Net: %s\n\n", core.FormatUSD(summary.Net))

	if strings.Contains(strings.ToLower(question), "month") {
		b.WriteString("Monthly Breakdown:\n")
		b.WriteString(strings.Repeat("-", 50) + "\n")
		writeMonthlyBreakdown(&b, records)
	}

	b.WriteString("\nRecent Transactions:\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, r := range recent(records) {
		fmt.Fprintf(&b, "%s: %s %s - %s\n", r.Date.ISO(), r.Type.Capitalized(), core.FormatUSD(r.Amount), r.Details)
	}
	return b.String(), nil
}

func writeMonthlyBreakdown(b *strings.Builder, records []core.Record) {
	type totals struct{ profit, loss decimal.Decimal }
	byMonth := map[string]totals{}
	for _, r := range records {
		key := r.Date.ISO()[:7]
		t := byMonth[key]
		if r.Type == core.Profit {
			t.profit = t.profit.Add(r.Amount)
		} else {
			t.loss = t.loss.Add(r.Amount)
		}
		byMonth[key] = t
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		t := byMonth[m]
		fmt.Fprintf(b, "%s: Profit %s, Loss %s\n", m, core.FormatUSD(t.profit), core.FormatUSD(t.loss))
	}
}

// recent returns up to recentLimit records, newest first, without mutating
// the input. Ties keep insertion order.
func recent(records []core.Record) []core.Record {
	out := make([]core.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.ISO() > out[j].Date.ISO()
	})
	if len(out) > recentLimit {
		out = out[:recentLimit]
	}
	return out
}
