// Package ledger defines the port the engines use to persist and read
// records. Concrete backends live in the subpackages (csv, sqlite, memory,
// sheets) and are chosen by the backend factory.
package ledger

import (
	"context"

	"fintone/internal/core"
)

type (
	// Saver appends one record. The boolean is false when the record was a
	// duplicate of an existing row (full-tuple identity) or could not be
	// stored; callers treat it as a status, not an exception.
	Saver interface {
		Save(ctx context.Context, r core.Record) (bool, error)
	}

	// Reader retrieves records in insertion order.
	Reader interface {
		ReadAll(ctx context.Context) ([]core.Record, error)
		ReadByType(ctx context.Context, t core.TransactionType) ([]core.Record, error)
		ReadByDate(ctx context.Context, d core.Date) ([]core.Record, error)
		ReadByMonth(ctx context.Context, year, month int) ([]core.Record, error)
	}

	// Store is the full ledger contract.
	Store interface {
		Saver
		Reader
	}
)
