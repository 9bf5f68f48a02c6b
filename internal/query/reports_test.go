package query

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintone/internal/core"
	"fintone/internal/ledger/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	records := []core.Record{
		{Type: core.Profit, Amount: decimal.NewFromInt(1000), Date: core.NewDate(2024, 8, 12), Details: "client payment"},
		{Type: core.Loss, Amount: decimal.RequireFromString("250.50"), Date: core.NewDate(2024, 8, 12), Details: "office supplies"},
		{Type: core.Profit, Amount: decimal.NewFromInt(300), Date: core.NewDate(2024, 6, 10), Details: "consulting"},
		{Type: core.Loss, Amount: decimal.NewFromInt(40), Date: core.NewDate(2024, 6, 11), Details: "groceries"},
	}
	for _, r := range records {
		if _, err := store.Save(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestMonthlyReport(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	intent := core.Intent{Kind: core.IntentMonthlyReport, Month: 8, Year: 2024}

	res, err := engine.Dispatch(context.Background(), intent)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Monthly Report for August 2024",
		"Total Profit: $1,000.00 (1 transactions)",
		"Total Loss: $250.50 (1 transactions)",
		"Net: $749.50",
		"client payment",
		"office supplies",
	} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("report text missing %q:\n%s", want, res.Text)
		}
	}
	report, ok := res.Report.(core.MonthlyReport)
	if !ok {
		t.Fatalf("Report type = %T", res.Report)
	}
	if report.Period != "August 2024" {
		t.Errorf("Period = %q", report.Period)
	}
	if !report.Summary.Net.Equal(decimal.RequireFromString("749.50")) {
		t.Errorf("Net = %s", report.Summary.Net)
	}
}

func TestMonthlyReportAllTime(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	res, err := engine.Dispatch(context.Background(), core.Intent{Kind: core.IntentMonthlyReport})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Text, "Overall Monthly Report") {
		t.Errorf("missing all-time title:\n%s", res.Text)
	}
	report := res.Report.(core.MonthlyReport)
	if report.Period != "All time" {
		t.Errorf("Period = %q", report.Period)
	}
	if report.Summary.ProfitCount != 2 || report.Summary.LossCount != 2 {
		t.Errorf("counts = %d/%d", report.Summary.ProfitCount, report.Summary.LossCount)
	}
}

func TestDateReportTyped(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	intent := core.Intent{
		Kind: core.IntentDateQuery,
		Date: core.NewDate(2024, 8, 12),
		Type: core.Loss,
	}
	res, err := engine.Dispatch(context.Background(), intent)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Loss Records for 2024-08-12",
		"Total Loss: $250.50",
		"office supplies",
	} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("report text missing %q:\n%s", want, res.Text)
		}
	}
	if strings.Contains(res.Text, "client payment") {
		t.Error("type filter leaked profit record into text")
	}
	report := res.Report.(core.DateReport)
	if report.TypeFilter == nil || *report.TypeFilter != core.Loss {
		t.Errorf("TypeFilter = %v", report.TypeFilter)
	}
	if report.Summary.Total == nil || !report.Summary.Total.Equal(decimal.RequireFromString("250.50")) {
		t.Errorf("Total = %v", report.Summary.Total)
	}
	if report.Summary.Net != nil {
		t.Error("Net should be nil with a type filter")
	}
}

func TestDateReportUntyped(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	intent := core.Intent{Kind: core.IntentDateQuery, Date: core.NewDate(2024, 8, 12)}
	res, err := engine.Dispatch(context.Background(), intent)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"All Records for 2024-08-12",
		"Net: $749.50",
		"Profit: $1,000.00",
		"Loss: $250.50",
	} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("report text missing %q:\n%s", want, res.Text)
		}
	}
	report := res.Report.(core.DateReport)
	if report.Summary.Total != nil {
		t.Error("Total should be nil without a type filter")
	}
	if report.Summary.Net == nil || !report.Summary.Net.Equal(decimal.RequireFromString("749.50")) {
		t.Errorf("Net = %v", report.Summary.Net)
	}
	if report.Summary.Count != 2 {
		t.Errorf("Count = %d", report.Summary.Count)
	}
}

func TestDateReportEmpty(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	intent := core.Intent{
		Kind: core.IntentDateQuery,
		Date: core.NewDate(2030, 1, 1),
		Type: core.Loss,
	}
	res, err := engine.Dispatch(context.Background(), intent)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "No loss records found for 2030-01-01." {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Report != nil {
		t.Errorf("Report should be nil for empty result, got %T", res.Report)
	}
}

func TestTypeReport(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	intent := core.Intent{
		Kind:  core.IntentTypeQuery,
		Type:  core.Profit,
		Month: 8,
		Year:  2024,
	}
	res, err := engine.Dispatch(context.Background(), intent)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Text, "All Profit Details for August 2024") {
		t.Errorf("missing title:\n%s", res.Text)
	}
	report := res.Report.(core.TypeReport)
	if report.Summary.Count != 1 || !report.Summary.Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("summary = %+v", report.Summary)
	}
}

func TestTypeReportAllTime(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	intent := core.Intent{Kind: core.IntentTypeQuery, Type: core.Loss}
	res, err := engine.Dispatch(context.Background(), intent)
	if err != nil {
		t.Fatal(err)
	}
	report := res.Report.(core.TypeReport)
	if report.Period != "All time" {
		t.Errorf("Period = %q", report.Period)
	}
	if report.Summary.Count != 2 || !report.Summary.Total.Equal(decimal.RequireFromString("290.50")) {
		t.Errorf("summary = %+v", report.Summary)
	}
}

func TestSummaryReport(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	res, err := engine.Dispatch(context.Background(), core.Intent{Kind: core.IntentSummary})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Overall Financial Summary",
		"Total Profit: $1,300.00 (2 transactions)",
		"Total Loss: $290.50 (2 transactions)",
		"Net: $1,009.50",
	} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("report text missing %q:\n%s", want, res.Text)
		}
	}
	report := res.Report.(core.SummaryReport)
	if report.TotalRecords != 4 {
		t.Errorf("TotalRecords = %d", report.TotalRecords)
	}
}

func TestSummaryReportTyped(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	res, err := engine.Dispatch(context.Background(), core.Intent{Kind: core.IntentSummary, Type: core.Profit})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Text, "Overall Profit Summary") {
		t.Errorf("missing typed title:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "Total Profit: $1,300.00") {
		t.Errorf("missing total:\n%s", res.Text)
	}
}

func TestUnknownIntentHelpText(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	res, err := engine.Dispatch(context.Background(), core.Intent{Kind: core.IntentUnknown})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Text, "I couldn't understand your query") {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Report != nil {
		t.Error("Report should be nil for unknown intent")
	}
}

func TestAnswerDeterministic(t *testing.T) {
	engine := NewEngine(seededStore(t), nil)
	q := "How much loss did I have on 12 August?"
	first, err := engine.Answer(context.Background(), q, frozenNow)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, err := engine.Answer(context.Background(), q, frozenNow)
		if err != nil {
			t.Fatal(err)
		}
		if again.Text != first.Text {
			t.Fatalf("answer text not byte-identical:\n%s\nvs\n%s", again.Text, first.Text)
		}
	}
}
