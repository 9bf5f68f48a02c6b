package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Profit TransactionType = "profit"
	Loss   TransactionType = "loss"
)

type (
	TransactionType string

	// Date is a day-granular calendar date. The time component is always
	// midnight UTC so two dates compare equal field-for-field.
	Date struct {
		time.Time
	}

	// Record is one ledger row, produced by the extraction engine from a
	// single utterance and immutable once persisted.
	Record struct {
		Type    TransactionType `json:"type"`
		Amount  decimal.Decimal `json:"amount"`
		Date    Date            `json:"date"`
		Details string          `json:"details"`
	}
)

var (
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrZeroDate       = errors.New("date cannot be zero")
)

func (t TransactionType) Valid() bool {
	return t == Profit || t == Loss
}

// Capitalized returns the type with an upper-case first letter, for
// rendered detail text and report titles.
func (t TransactionType) Capitalized() string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewDate builds a date pinned to midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses the ISO form used in the ledger (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// ISO renders the date in the ledger's canonical 2006-01-02 form.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Day() int   { return d.Time.Day() }

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.AddDate(0, 0, n))
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ISO())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (r Record) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if r.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if r.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Key is the full-tuple identity used by the duplicate check on save.
func (r Record) Key() string {
	return strings.ToLower(string(r.Type)) + "|" + r.Amount.String() + "|" + r.Date.ISO() + "|" + r.Details
}
