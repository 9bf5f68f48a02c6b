// Package sheets mirrors the ledger into a Google Sheets spreadsheet: one
// sheet whose rows are type,amount,date,details under a header row. It is
// the mirror target of the ingest worker rather than a primary store, so
// its duplicate check is the simple read-then-compare; with the single
// worker as the only writer that is race-free.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintone/internal/core"
	"fintone/internal/ledger"
	"fintone/internal/log"
)

var header = []any{"type", "amount", "date", "details"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ ledger.Store = (*Client)(nil)

// NewFromEnv creates a Sheets-backed ledger using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Auth comes from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS. GOOGLE_SHEET_NAME defaults to "Ledger".
func NewFromEnv(ctx context.Context, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentLedger),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Save appends the record as a new row after the current last one, writing
// the header first when the sheet is empty.
func (c *Client) Save(ctx context.Context, r core.Record) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	existing, err := c.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	key := r.Key()
	for _, ex := range existing {
		if ex.Key() == key {
			c.logger.WarnContext(ctx, "duplicate record skipped", log.FieldRecordKey, key)
			return false, nil
		}
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	if nextRow == 1 {
		headerRange := fmt.Sprintf("%s!A1:D1", c.sheetName)
		vr := &gsheet.ValueRange{Values: [][]any{header}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return false, fmt.Errorf("write header row: %w", err)
		}
		nextRow = 2
	}

	dataRange := fmt.Sprintf("%s!A%d:D%d", c.sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		string(r.Type), r.Amount.String(), r.Date.ISO(), r.Details,
	}}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}
	return true, nil
}

// ReadAll reads every data row below the header, skipping rows that no
// longer parse.
func (c *Client) ReadAll(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:D", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []core.Record
	for _, row := range resp.Values {
		if len(row) < 3 {
			continue
		}
		r, err := fromRow(row)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping unparseable sheet row", log.FieldError, err.Error())
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) ReadByType(ctx context.Context, t core.TransactionType) ([]core.Record, error) {
	return c.filtered(ctx, func(r core.Record) bool {
		return strings.EqualFold(string(r.Type), string(t))
	})
}

func (c *Client) ReadByDate(ctx context.Context, d core.Date) ([]core.Record, error) {
	return c.filtered(ctx, func(r core.Record) bool { return r.Date.Equal(d) })
}

func (c *Client) ReadByMonth(ctx context.Context, year, month int) ([]core.Record, error) {
	return c.filtered(ctx, func(r core.Record) bool {
		return r.Date.Year() == year && r.Date.Month() == month
	})
}

func (c *Client) filtered(ctx context.Context, keep func(core.Record) bool) ([]core.Record, error) {
	all, err := c.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Record
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func fromRow(row []any) (core.Record, error) {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(row[i]))
	}
	amount, err := core.ParseAmount(cell(1))
	if err != nil {
		return core.Record{}, fmt.Errorf("amount %q: %w", cell(1), err)
	}
	date, err := core.ParseDate(cell(2))
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		Type:    core.TransactionType(strings.ToLower(cell(0))),
		Amount:  amount,
		Date:    date,
		Details: cell(3),
	}, nil
}
