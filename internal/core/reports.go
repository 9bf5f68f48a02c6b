package core

import "github.com/shopspring/decimal"

// Structured report shapes returned by the query engine. Field layout
// mirrors what the API and CLI emit as JSON; nullable fields are pointers.
type (
	PeriodSummary struct {
		TotalProfit decimal.Decimal `json:"total_profit"`
		TotalLoss   decimal.Decimal `json:"total_loss"`
		Net         decimal.Decimal `json:"net"`
		ProfitCount int             `json:"profit_count"`
		LossCount   int             `json:"loss_count"`
	}

	// MonthlyReport covers one month, or all time when Period is "All time".
	MonthlyReport struct {
		Period  string        `json:"period"`
		Summary PeriodSummary `json:"summary"`
		Profits []Record      `json:"profits"`
		Losses  []Record      `json:"losses"`
	}

	DateSummary struct {
		Total       *decimal.Decimal `json:"total"` // set only with a type filter
		TotalProfit decimal.Decimal  `json:"total_profit"`
		TotalLoss   decimal.Decimal  `json:"total_loss"`
		Net         *decimal.Decimal `json:"net"` // nil with a type filter
		Count       int              `json:"count"`
	}

	DateReport struct {
		Date       string           `json:"date"`
		TypeFilter *TransactionType `json:"type_filter"`
		Summary    DateSummary      `json:"summary"`
		Records    []Record         `json:"records"`
	}

	TypeSummary struct {
		Total decimal.Decimal `json:"total"`
		Count int             `json:"count"`
	}

	TypeReport struct {
		Type    TransactionType `json:"type"`
		Period  string          `json:"period"`
		Summary TypeSummary     `json:"summary"`
		Records []Record        `json:"records"`
	}

	SummaryReport struct {
		TypeFilter   *TransactionType `json:"type_filter"`
		Summary      PeriodSummary    `json:"summary"`
		TotalRecords int              `json:"total_records"`
	}
)

// SummarizeByType computes the aggregate totals shared by several report
// builders: profit/loss partitions, their sums and the net.
func SummarizeByType(records []Record) (profits, losses []Record, summary PeriodSummary) {
	for _, r := range records {
		if r.Type == Profit {
			profits = append(profits, r)
			summary.TotalProfit = summary.TotalProfit.Add(r.Amount)
		} else {
			losses = append(losses, r)
			summary.TotalLoss = summary.TotalLoss.Add(r.Amount)
		}
	}
	summary.Net = summary.TotalProfit.Sub(summary.TotalLoss)
	summary.ProfitCount = len(profits)
	summary.LossCount = len(losses)
	return profits, losses, summary
}
