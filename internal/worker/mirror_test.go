package worker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"fintone/internal/amqp"
	"fintone/internal/core"
	"fintone/internal/ledger/memory"
)

func rec(t core.TransactionType, amount int64, date string, details string) core.Record {
	d, _ := core.ParseDate(date)
	return core.Record{Type: t, Amount: decimal.NewFromInt(amount), Date: d, Details: details}
}

func TestHandleRecordSaved(t *testing.T) {
	mirrorStore := memory.New()
	m := NewMirror(memory.New(), mirrorStore, nil, 0, nil)
	ctx := context.Background()

	msg := amqp.NewRecordSavedMessage(rec(core.Profit, 100, "2024-06-10", "salary"), "test")
	if err := m.HandleRecordSaved(ctx, msg); err != nil {
		t.Fatal(err)
	}
	all, _ := mirrorStore.ReadAll(ctx)
	if len(all) != 1 || all[0].Details != "salary" {
		t.Fatalf("mirror = %v", all)
	}

	// Redelivery is a no-op.
	if err := m.HandleRecordSaved(ctx, msg); err != nil {
		t.Fatal(err)
	}
	all, _ = mirrorStore.ReadAll(ctx)
	if len(all) != 1 {
		t.Errorf("redelivered message duplicated record, len = %d", len(all))
	}
}

func TestBackfill(t *testing.T) {
	primary := memory.New()
	mirrorStore := memory.New()
	ctx := context.Background()

	records := []core.Record{
		rec(core.Profit, 100, "2024-06-10", "salary"),
		rec(core.Loss, 40, "2024-06-11", "groceries"),
		rec(core.Profit, 200, "2024-07-01", "bonus"),
	}
	for _, r := range records {
		if _, err := primary.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	// One record already mirrored.
	if _, err := mirrorStore.Save(ctx, records[0]); err != nil {
		t.Fatal(err)
	}

	m := NewMirror(primary, mirrorStore, nil, 0, nil)
	if err := m.Backfill(ctx); err != nil {
		t.Fatal(err)
	}

	all, _ := mirrorStore.ReadAll(ctx)
	if len(all) != 3 {
		t.Fatalf("mirror holds %d records, want 3", len(all))
	}
}
