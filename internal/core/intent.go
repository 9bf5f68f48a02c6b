package core

const (
	IntentMonthlyReport IntentKind = "monthly_report"
	IntentDateQuery     IntentKind = "date_query"
	IntentTypeQuery     IntentKind = "type_query"
	IntentSummary       IntentKind = "summary"
	IntentUnknown       IntentKind = "unknown"
)

type (
	IntentKind string

	// Intent is a classified question: its kind plus whichever parameters
	// the classifier recognized. Zero values mean "not set". Intents are
	// transient; they are rebuilt from the question text on every call and
	// never persisted.
	Intent struct {
		Kind  IntentKind      `json:"kind"`
		Month int             `json:"month,omitempty"` // 1-12
		Year  int             `json:"year,omitempty"`
		Date  Date            `json:"date,omitzero"`
		Type  TransactionType `json:"type,omitempty"`
	}
)

func (i Intent) HasMonth() bool { return i.Month >= 1 && i.Month <= 12 }
func (i Intent) HasDate() bool  { return !i.Date.IsZero() }
func (i Intent) HasType() bool  { return i.Type.Valid() }
