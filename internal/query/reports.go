package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintone/internal/core"
	"fintone/internal/ledger"
	"fintone/internal/log"
)

const ruleLine = "=================================================="
const dashLine = "--------------------------------------------------"

// helpText is returned verbatim for questions the cascade cannot place.
const helpText = "I couldn't understand your query. Please try asking about:\n" +
	"- Today's transactions (e.g., 'How much did I today?' or 'What did I spend today?')\n" +
	"- Specific dates (e.g., 'Show me all profit details for March')\n" +
	"- Amounts on dates (e.g., 'How much loss did I have on 12 August?')\n" +
	"- Monthly reports (e.g., 'Generate a monthly profit/loss report')"

var monthNames = [13]string{"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

// Result pairs the human-readable answer with its structured report.
// Report is nil for unknown intents and empty result sets.
type Result struct {
	Intent core.Intent `json:"intent"`
	Text   string      `json:"text"`
	Report any         `json:"report"`
}

// Engine answers questions against a ledger reader. Identical ledger state
// and question always produce byte-identical text.
type Engine struct {
	store  ledger.Reader
	logger *log.Logger
}

func NewEngine(store ledger.Reader, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Engine{store: store, logger: logger.WithComponent(log.ComponentQuery)}
}

// Answer classifies the question and dispatches to the matching builder.
func (e *Engine) Answer(ctx context.Context, question string, now time.Time) (Result, error) {
	intent := Classify(question, now)
	e.logger.InfoContext(ctx, "classified question", log.FieldIntent, string(intent.Kind))
	return e.Dispatch(ctx, intent)
}

// Dispatch runs the builder for the intent's kind.
func (e *Engine) Dispatch(ctx context.Context, intent core.Intent) (Result, error) {
	switch intent.Kind {
	case core.IntentMonthlyReport:
		return e.monthlyReport(ctx, intent)
	case core.IntentDateQuery:
		return e.dateReport(ctx, intent)
	case core.IntentTypeQuery:
		return e.typeReport(ctx, intent)
	case core.IntentSummary:
		return e.summary(ctx, intent)
	default:
		return Result{Intent: intent, Text: helpText}, nil
	}
}

func (e *Engine) monthlyReport(ctx context.Context, intent core.Intent) (Result, error) {
	var records []core.Record
	var err error
	var title, period string
	if intent.HasMonth() && intent.Year != 0 {
		records, err = e.store.ReadByMonth(ctx, intent.Year, intent.Month)
		period = fmt.Sprintf("%s %d", monthNames[intent.Month], intent.Year)
		title = "Monthly Report for " + period
	} else {
		records, err = e.store.ReadAll(ctx)
		period = "All time"
		title = "Overall Monthly Report"
	}
	if err != nil {
		return Result{}, fmt.Errorf("read records: %w", err)
	}
	if len(records) == 0 {
		return Result{Intent: intent, Text: "No records found for the specified period."}, nil
	}

	profits, losses, summary := core.SummarizeByType(records)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", title, ruleLine)
	fmt.Fprintf(&b, "Total Profit: %s (%d transactions)\n", core.FormatUSD(summary.TotalProfit), len(profits))
	fmt.Fprintf(&b, "Total Loss: %s (%d transactions)\n", core.FormatUSD(summary.TotalLoss), len(losses))
	fmt.Fprintf(&b, "Net: %s\n\n", core.FormatUSD(summary.Net))
	if len(profits) > 0 {
		fmt.Fprintf(&b, "Profit Details:\n%s\n", dashLine)
		for _, p := range profits {
			fmt.Fprintf(&b, "  %s on %s - %s\n", core.FormatUSD(p.Amount), p.Date.ISO(), p.Details)
		}
		b.WriteString("\n")
	}
	if len(losses) > 0 {
		fmt.Fprintf(&b, "Loss Details:\n%s\n", dashLine)
		for _, l := range losses {
			fmt.Fprintf(&b, "  %s on %s - %s\n", core.FormatUSD(l.Amount), l.Date.ISO(), l.Details)
		}
	}

	return Result{
		Intent: intent,
		Text:   b.String(),
		Report: core.MonthlyReport{Period: period, Summary: summary, Profits: profits, Losses: losses},
	}, nil
}

func (e *Engine) dateReport(ctx context.Context, intent core.Intent) (Result, error) {
	records, err := e.store.ReadByDate(ctx, intent.Date)
	if err != nil {
		return Result{}, fmt.Errorf("read records: %w", err)
	}
	var typeFilter *core.TransactionType
	if intent.HasType() {
		t := intent.Type
		typeFilter = &t
		filtered := records[:0:0]
		for _, r := range records {
			if r.Type == t {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if len(records) == 0 {
		typeStr := ""
		if typeFilter != nil {
			typeStr = " " + string(*typeFilter)
		}
		return Result{
			Intent: intent,
			Text:   fmt.Sprintf("No%s records found for %s.", typeStr, intent.Date.ISO()),
		}, nil
	}

	profits, losses, summary := core.SummarizeByType(records)
	dateSummary := core.DateSummary{
		TotalProfit: summary.TotalProfit,
		TotalLoss:   summary.TotalLoss,
		Count:       len(records),
	}

	var b strings.Builder
	if typeFilter != nil {
		total := summary.TotalProfit
		if *typeFilter == core.Loss {
			total = summary.TotalLoss
		}
		dateSummary.Total = &total
		fmt.Fprintf(&b, "%s Records for %s\n%s\n\n", typeFilter.Capitalized(), intent.Date.ISO(), ruleLine)
		fmt.Fprintf(&b, "Total %s: %s\n\n", typeFilter.Capitalized(), core.FormatUSD(total))
		fmt.Fprintf(&b, "Details:\n%s\n", dashLine)
		for _, r := range records {
			fmt.Fprintf(&b, "  %s - %s\n", core.FormatUSD(r.Amount), r.Details)
		}
	} else {
		net := summary.Net
		dateSummary.Net = &net
		fmt.Fprintf(&b, "All Records for %s\n%s\n\n", intent.Date.ISO(), ruleLine)
		fmt.Fprintf(&b, "Total Profit: %s (%d transactions)\n", core.FormatUSD(summary.TotalProfit), len(profits))
		fmt.Fprintf(&b, "Total Loss: %s (%d transactions)\n", core.FormatUSD(summary.TotalLoss), len(losses))
		fmt.Fprintf(&b, "Net: %s\n\n", core.FormatUSD(net))
		fmt.Fprintf(&b, "All Transactions:\n%s\n", dashLine)
		for _, r := range records {
			fmt.Fprintf(&b, "  %s: %s - %s\n", r.Type.Capitalized(), core.FormatUSD(r.Amount), r.Details)
		}
	}

	return Result{
		Intent: intent,
		Text:   b.String(),
		Report: core.DateReport{
			Date:       intent.Date.ISO(),
			TypeFilter: typeFilter,
			Summary:    dateSummary,
			Records:    records,
		},
	}, nil
}

func (e *Engine) typeReport(ctx context.Context, intent core.Intent) (Result, error) {
	var records []core.Record
	var err error
	period := "All time"
	title := fmt.Sprintf("All %s Details", intent.Type.Capitalized())
	if intent.HasMonth() && intent.Year != 0 {
		monthly, merr := e.store.ReadByMonth(ctx, intent.Year, intent.Month)
		if merr != nil {
			return Result{}, fmt.Errorf("read records: %w", merr)
		}
		for _, r := range monthly {
			if r.Type == intent.Type {
				records = append(records, r)
			}
		}
		period = fmt.Sprintf("%s %d", monthNames[intent.Month], intent.Year)
		title = fmt.Sprintf("All %s Details for %s", intent.Type.Capitalized(), period)
	} else {
		records, err = e.store.ReadByType(ctx, intent.Type)
		if err != nil {
			return Result{}, fmt.Errorf("read records: %w", err)
		}
	}
	if len(records) == 0 {
		return Result{
			Intent: intent,
			Text:   fmt.Sprintf("No %s records found for the specified period.", intent.Type),
		}, nil
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", title, ruleLine)
	fmt.Fprintf(&b, "Total %s: %s (%d transactions)\n\n", intent.Type.Capitalized(), core.FormatUSD(total), len(records))
	fmt.Fprintf(&b, "Details:\n%s\n", dashLine)
	for _, r := range records {
		fmt.Fprintf(&b, "  %s on %s - %s\n", core.FormatUSD(r.Amount), r.Date.ISO(), r.Details)
	}

	return Result{
		Intent: intent,
		Text:   b.String(),
		Report: core.TypeReport{
			Type:    intent.Type,
			Period:  period,
			Summary: core.TypeSummary{Total: total, Count: len(records)},
			Records: records,
		},
	}, nil
}

func (e *Engine) summary(ctx context.Context, intent core.Intent) (Result, error) {
	var records []core.Record
	var err error
	var typeFilter *core.TransactionType
	if intent.HasType() {
		t := intent.Type
		typeFilter = &t
		records, err = e.store.ReadByType(ctx, t)
	} else {
		records, err = e.store.ReadAll(ctx)
	}
	if err != nil {
		return Result{}, fmt.Errorf("read records: %w", err)
	}
	if len(records) == 0 {
		return Result{Intent: intent, Text: "No records found."}, nil
	}

	profits, losses, summary := core.SummarizeByType(records)

	var b strings.Builder
	if typeFilter != nil {
		total := summary.TotalProfit
		count := len(profits)
		if *typeFilter == core.Loss {
			total = summary.TotalLoss
			count = len(losses)
		}
		fmt.Fprintf(&b, "Overall %s Summary\n%s\n\n", typeFilter.Capitalized(), ruleLine)
		fmt.Fprintf(&b, "Total %s: %s\n", typeFilter.Capitalized(), core.FormatUSD(total))
		fmt.Fprintf(&b, "Number of transactions: %d\n", count)
	} else {
		fmt.Fprintf(&b, "Overall Financial Summary\n%s\n\n", ruleLine)
		fmt.Fprintf(&b, "Total Profit: %s (%d transactions)\n", core.FormatUSD(summary.TotalProfit), len(profits))
		fmt.Fprintf(&b, "Total Loss: %s (%d transactions)\n", core.FormatUSD(summary.TotalLoss), len(losses))
		fmt.Fprintf(&b, "Net: %s\n", core.FormatUSD(summary.Net))
	}

	return Result{
		Intent: intent,
		Text:   b.String(),
		Report: core.SummaryReport{
			TypeFilter:   typeFilter,
			Summary:      summary,
			TotalRecords: len(records),
		},
	}, nil
}
