// Package sqlite is the database-backed ledger. A UNIQUE constraint over
// the full record tuple makes the duplicate check atomic at the database,
// closing the read-then-write race a file-based store has to lock around.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fintone/internal/core"
	"fintone/internal/ledger"
	"fintone/internal/log"

	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

var _ ledger.Store = (*Store)(nil)

func Open(dbPath string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger.WithComponent(log.ComponentLedger)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts the record; ON CONFLICT DO NOTHING turns a duplicate tuple
// into a no-op, reported through the boolean.
func (s *Store) Save(ctx context.Context, r core.Record) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (type, amount, date, details)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(type, amount, date, details) DO NOTHING`,
		string(r.Type), r.Amount.String(), r.Date.ISO(), r.Details)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		s.logger.WarnContext(ctx, "duplicate record skipped", log.FieldRecordKey, r.Key())
		return false, nil
	}
	return true, nil
}

func (s *Store) ReadAll(ctx context.Context) ([]core.Record, error) {
	return s.query(ctx,
		`SELECT type, amount, date, details FROM records ORDER BY id`)
}

func (s *Store) ReadByType(ctx context.Context, t core.TransactionType) ([]core.Record, error) {
	return s.query(ctx,
		`SELECT type, amount, date, details FROM records WHERE type = ? ORDER BY id`,
		strings.ToLower(string(t)))
}

func (s *Store) ReadByDate(ctx context.Context, d core.Date) ([]core.Record, error) {
	return s.query(ctx,
		`SELECT type, amount, date, details FROM records WHERE date = ? ORDER BY id`,
		d.ISO())
}

func (s *Store) ReadByMonth(ctx context.Context, year, month int) ([]core.Record, error) {
	return s.query(ctx,
		`SELECT type, amount, date, details FROM records WHERE substr(date, 1, 7) = ? ORDER BY id`,
		fmt.Sprintf("%04d-%02d", year, month))
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			typ, amount, date, details string
		)
		if err := rows.Scan(&typ, &amount, &date, &details); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		amt, err := core.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		day, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		out = append(out, core.Record{
			Type:    core.TransactionType(typ),
			Amount:  amt,
			Date:    day,
			Details: details,
		})
	}
	return out, rows.Err()
}
