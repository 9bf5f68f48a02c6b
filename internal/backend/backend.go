// Package backend selects and constructs the ledger store named by
// configuration.
package backend

import (
	"context"
	"fmt"

	"fintone/internal/config"
	"fintone/internal/ledger"
	"fintone/internal/ledger/csvstore"
	"fintone/internal/ledger/memory"
	"fintone/internal/ledger/sheets"
	"fintone/internal/ledger/sqlite"
	"fintone/internal/log"
)

// Type names a ledger backend implementation.
type Type string

const (
	MemoryBackend Type = "memory"
	CSVBackend    Type = "csv"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, CSVBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Types returns every valid backend type.
func Types() []Type {
	return []Type{MemoryBackend, CSVBackend, SQLiteBackend, SheetsBackend}
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result holds a constructed store and its optional cleanup.
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates ledger stores from configuration.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds the store named by cfg.LedgerBackend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	t := Type(cfg.LedgerBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.LedgerBackend)
	}

	switch t {
	case MemoryBackend:
		f.logger.Info("initialized memory backend")
		return &Result{Store: memory.New()}, nil

	case CSVBackend:
		store, err := csvstore.Open(cfg.CSVPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize csv backend: %w", err)
		}
		f.logger.Info("initialized csv backend", log.FieldPath, cfg.CSVPath)
		return &Result{Store: store}, nil

	case SQLiteBackend:
		store, err := sqlite.Open(cfg.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		f.logger.Info("initialized sqlite backend", log.FieldPath, cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case SheetsBackend:
		cli, err := sheets.NewFromEnv(ctx, f.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		f.logger.Info("initialized sheets backend")
		return &Result{Store: cli}, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", t)
}
