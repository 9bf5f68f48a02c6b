package query

import (
	"testing"
	"time"

	"fintone/internal/core"
)

var frozenNow = time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     core.Intent
	}{
		{
			name:     "loss amount on named date without year",
			question: "How much loss did I have on 12 August?",
			want: core.Intent{
				Kind:  core.IntentDateQuery,
				Month: 8,
				Year:  2024,
				Date:  core.NewDate(2024, 8, 12),
				Type:  core.Loss,
			},
		},
		{
			name:     "monthly report request ignores type keywords",
			question: "Generate a monthly profit/loss report",
			want:     core.Intent{Kind: core.IntentMonthlyReport},
		},
		{
			name:     "today wins over explicit date",
			question: "What did I spend today, not on 12/05/2024?",
			want: core.Intent{
				Kind: core.IntentDateQuery,
				Date: core.DateOf(frozenNow),
				Type: core.Loss,
			},
		},
		{
			name:     "month with profit keyword is a type query",
			question: "Show me all profit details for March",
			want: core.Intent{
				Kind:  core.IntentTypeQuery,
				Month: 3,
				Year:  2024,
				Type:  core.Profit,
			},
		},
		{
			name:     "month with explicit year",
			question: "Report for March 2023 losses",
			want: core.Intent{
				Kind:  core.IntentTypeQuery,
				Month: 3,
				Year:  2023,
				Type:  core.Loss,
			},
		},
		{
			name:     "bare month is a monthly report",
			question: "Show me everything from August",
			want: core.Intent{
				Kind:  core.IntentMonthlyReport,
				Month: 8,
				Year:  2024,
			},
		},
		{
			name:     "numeric date untyped",
			question: "Show transactions on 13/02/2024",
			want: core.Intent{
				Kind: core.IntentDateQuery,
				Date: core.NewDate(2024, 2, 13),
			},
		},
		{
			name:     "amount question without date is a summary",
			question: "How much have I in total?",
			want:     core.Intent{Kind: core.IntentSummary},
		},
		{
			name:     "amount question with today",
			question: "How much did I today?",
			want: core.Intent{
				Kind: core.IntentDateQuery,
				Date: core.DateOf(frozenNow),
			},
		},
		{
			name:     "typed summary",
			question: "Give me a profit overview",
			want: core.Intent{
				Kind: core.IntentSummary,
				Type: core.Profit,
			},
		},
		{
			name:     "gibberish is unknown",
			question: "sing me a song",
			want:     core.Intent{Kind: core.IntentUnknown},
		},
		{
			name:     "empty question is unknown",
			question: "",
			want:     core.Intent{Kind: core.IntentUnknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.question, frozenNow)
			if got.Kind != tt.want.Kind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.want.Kind)
			}
			if got.Month != tt.want.Month || got.Year != tt.want.Year {
				t.Errorf("Month/Year = %d/%d, want %d/%d", got.Month, got.Year, tt.want.Month, tt.want.Year)
			}
			if !got.Date.Equal(tt.want.Date) {
				t.Errorf("Date = %v, want %v", got.Date, tt.want.Date)
			}
			if got.Type != tt.want.Type {
				t.Errorf("Type = %q, want %q", got.Type, tt.want.Type)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	q := "How much loss did I have on 12 August?"
	first := Classify(q, frozenNow)
	for i := 0; i < 5; i++ {
		if got := Classify(q, frozenNow); got != first {
			t.Fatalf("classification not deterministic: %v vs %v", got, first)
		}
	}
}
