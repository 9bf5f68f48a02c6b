// Package csvstore persists the ledger as a CSV file with the columns
// type,amount,date,details. The header row is mandatory and repaired on
// open if a previous writer dropped it.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintone/internal/core"
	"fintone/internal/ledger"
	"fintone/internal/log"
)

var header = []string{"type", "amount", "date", "details"}

// Store serializes every operation behind one mutex, so the duplicate
// check and the append are a single atomic step even with concurrent
// submitters.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

var _ ledger.Store = (*Store)(nil)

func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Store{path: path, logger: logger.WithComponent(log.ComponentLedger)}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureHeader creates the file with its header, or reinserts the header
// above existing rows when it is missing. Callers hold the mutex.
func (s *Store) ensureHeader() error {
	rows, err := s.readRows()
	if os.IsNotExist(err) || (err == nil && len(rows) == 0) {
		return s.writeRows(nil)
	}
	if err != nil {
		return err
	}
	first := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		first[i] = strings.ToLower(strings.TrimSpace(c))
	}
	if !equal(first, header) {
		s.logger.Warn("ledger header missing, repairing", log.FieldPath, s.path)
		return s.writeRows(rows)
	}
	return nil
}

// Save appends the record unless an identical tuple already exists.
func (s *Store) Save(_ context.Context, r core.Record) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readRecords()
	if err != nil {
		return false, err
	}
	key := r.Key()
	for _, ex := range existing {
		if ex.Key() == key {
			s.logger.Warn("duplicate record skipped", log.FieldRecordKey, key)
			return false, nil
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(toRow(r)); err != nil {
		return false, fmt.Errorf("append record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return false, fmt.Errorf("flush record: %w", err)
	}
	return true, nil
}

func (s *Store) ReadAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readRecords()
}

func (s *Store) ReadByType(ctx context.Context, t core.TransactionType) ([]core.Record, error) {
	return s.filtered(func(r core.Record) bool {
		return strings.EqualFold(string(r.Type), string(t))
	})
}

func (s *Store) ReadByDate(ctx context.Context, d core.Date) ([]core.Record, error) {
	return s.filtered(func(r core.Record) bool { return r.Date.Equal(d) })
}

func (s *Store) ReadByMonth(ctx context.Context, year, month int) ([]core.Record, error) {
	return s.filtered(func(r core.Record) bool {
		return r.Date.Year() == year && r.Date.Month() == month
	})
}

func (s *Store) filtered(keep func(core.Record) bool) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readRecords()
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

// readRecords parses data rows, skipping ones that no longer parse rather
// than failing the whole read. Callers hold the mutex.
func (s *Store) readRecords() ([]core.Record, error) {
	rows, err := s.readRows()
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []core.Record
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		r, err := fromRow(row)
		if err != nil {
			s.logger.Warn("skipping unparseable ledger row", log.FieldError, err.Error())
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger csv: %w", err)
	}
	return rows, nil
}

// writeRows rewrites the file as header plus the given rows.
func (s *Store) writeRows(rows [][]string) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create ledger csv: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func toRow(r core.Record) []string {
	return []string{string(r.Type), r.Amount.String(), r.Date.ISO(), r.Details}
}

func fromRow(row []string) (core.Record, error) {
	amount, err := core.ParseAmount(row[1])
	if err != nil {
		return core.Record{}, fmt.Errorf("amount %q: %w", row[1], err)
	}
	date, err := core.ParseDate(row[2])
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		Type:    core.TransactionType(strings.ToLower(strings.TrimSpace(row[0]))),
		Amount:  amount,
		Date:    date,
		Details: row[3],
	}, nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
