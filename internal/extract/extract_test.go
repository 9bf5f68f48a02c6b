package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintone/internal/core"
)

// Frozen reference time for deterministic date resolution.
var now = time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC)

func TestClassifyType(t *testing.T) {
	cases := []struct {
		in   string
		want core.TransactionType
	}{
		{"i made 500 profit selling items", core.Profit},
		{"received payment from client", core.Profit},
		{"revenue from the shop", core.Profit},
		{"spent 50 on groceries", core.Loss},
		{"paid the electricity bill", core.Loss},
		{"expense for fuel", core.Loss},
		// Profit set is evaluated first, so it wins on mixed statements.
		{"lost a client but gained two new ones", core.Profit},
		// No keyword at all books as a loss.
		{"something happened", core.Loss},
		{"", core.Loss},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyType(tc.in), "text: %q", tc.in)
	}
}

func TestResolveAmount(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"dollar prefix", "I made $500 profit", "500"},
		{"comma separators", "received $1,234.56 today", "1234.56"},
		{"unit word", "earned 1250 dollars", "1250"},
		{"rupees", "spent 300 rupees on parts", "300"},
		{"spoken number", "made a profit of two lakh", "200000"},
		{"spoken tens", "spent twenty five dollars", "25"},
		{"percent of invested", "profit is 10% of invested 1000", "100"},
		{"percent of capital", "5% loss on capital of 2000", "100"},
		// Without an explicit invested/capital phrase the base scan takes
		// the first number in the text, which is the percentage itself.
		{"percent base falls on first number", "made 10% profit on the 500 deal", "1"},
		{"percent without any base", "profit is 10%", "1"},
		{"nothing", "sold the old bike", "0"},
		{"empty", "", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveAmount(tc.in).amount.String())
		})
	}
}

func TestResolveDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"today", "how did i do today", "2024-06-10"},
		{"yesterday", "spent 50 yesterday", "2024-06-09"},
		{"tomorrow", "rent due tomorrow", "2024-06-11"},
		{"month first", "on 03/15/2024 sold items", "2024-03-15"},
		{"day month fallback", "paid on 13/02/2024", "2024-02-13"},
		{"dashes", "12-08-24", "2024-12-08"},
		{"two digit year 1900s", "on 03/15/99", "1999-03-15"},
		{"month name with year", "profit on March 15th, 2024", "2024-03-15"},
		{"day before month name", "loss on 12 August 2023", "2023-08-12"},
		{"month name without year", "profit on March 15th selling items", "2024-03-15"},
		{"relative beats explicit", "today, not 13/02/2024", "2024-06-10"},
		{"no date defaults to now", "made 500 profit", "2024-06-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveDate(tc.in, now).ISO())
		})
	}
}

func TestExtract(t *testing.T) {
	e := NewEngine(nil)

	t.Run("full statement", func(t *testing.T) {
		r := e.Extract("I made $500 profit on March 15th selling old items", now)
		assert.Equal(t, core.Profit, r.Type)
		assert.Equal(t, "500", r.Amount.String())
		assert.Equal(t, "2024-03-15", r.Date.ISO())
		assert.NotEmpty(t, r.Details)
		require.NoError(t, r.Validate())
	})

	t.Run("percentage investment detail", func(t *testing.T) {
		r := e.Extract("My profit is 10% of invested 1,000", now)
		assert.Equal(t, "100", r.Amount.String())
		assert.Equal(t, "Investment of 1000 with 10% profit", r.Details)
	})

	t.Run("default detail when residue too short", func(t *testing.T) {
		r := e.Extract("spent 50", now)
		assert.Equal(t, core.Loss, r.Type)
		assert.Equal(t, "Loss transaction", r.Details)
	})

	t.Run("empty statement is total", func(t *testing.T) {
		r := e.Extract("", now)
		assert.Equal(t, core.Loss, r.Type)
		assert.True(t, r.Amount.IsZero())
		assert.Equal(t, "2024-06-10", r.Date.ISO())
		assert.Equal(t, "Loss transaction", r.Details)
	})

	t.Run("idempotent for frozen now", func(t *testing.T) {
		first := e.Extract("lost two hundred and fifty on 12 August", now)
		second := e.Extract("lost two hundred and fifty on 12 August", now)
		assert.Equal(t, first.Key(), second.Key())
	})
}
