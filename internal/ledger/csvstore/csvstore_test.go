package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintone/internal/core"
)

func rec(t core.TransactionType, amount string, date string, details string) core.Record {
	amt, _ := decimal.NewFromString(amount)
	d, _ := core.ParseDate(date)
	return core.Record{Type: t, Amount: amt, Date: d, Details: details}
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store, path
}

func TestSaveReadRoundTrip(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	want := []core.Record{
		rec(core.Profit, "1234.56", "2024-06-10", "client payment"),
		rec(core.Loss, "40.5", "2024-06-11", "groceries"),
	}
	for _, r := range want {
		saved, err := store.Save(ctx, r)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if !saved {
			t.Fatal("Save returned false for new record")
		}
	}

	got, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadAll len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Key() != want[i].Key() {
			t.Errorf("record %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSaveDuplicateSkipped(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	r := rec(core.Loss, "40", "2024-06-10", "groceries")

	if saved, _ := store.Save(ctx, r); !saved {
		t.Fatal("first save should succeed")
	}
	saved, err := store.Save(ctx, r)
	if err != nil {
		t.Fatalf("duplicate Save: %v", err)
	}
	if saved {
		t.Error("duplicate save should return false")
	}
	all, _ := store.ReadAll(ctx)
	if len(all) != 1 {
		t.Errorf("file holds %d records, want 1", len(all))
	}
}

func TestHeaderWrittenOnCreate(t *testing.T) {
	_, path := openStore(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if strings.TrimSpace(first) != "type,amount,date,details" {
		t.Errorf("header line = %q", first)
	}
}

func TestHeaderRepair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	raw := "profit,100,2024-06-10,salary\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	all, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(all) != 1 || all[0].Details != "salary" {
		t.Fatalf("records after repair = %v", all)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "type,amount,date,details") {
		t.Errorf("header not prepended: %q", string(data))
	}
}

func TestUnparseableRowsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	raw := "type,amount,date,details\n" +
		"profit,100,2024-06-10,salary\n" +
		"profit,notanumber,2024-06-10,bad row\n" +
		"loss,40,2024-06-11,groceries\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	all, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("ReadAll len = %d, want 2 (bad row skipped)", len(all))
	}
}

func TestReadFilters(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	for _, r := range []core.Record{
		rec(core.Profit, "100", "2024-06-10", "salary"),
		rec(core.Loss, "40", "2024-06-10", "groceries"),
		rec(core.Profit, "200", "2024-07-01", "bonus"),
	} {
		if _, err := store.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	profits, err := store.ReadByType(ctx, core.Profit)
	if err != nil {
		t.Fatal(err)
	}
	if len(profits) != 2 {
		t.Errorf("ReadByType len = %d, want 2", len(profits))
	}

	day, _ := core.ParseDate("2024-06-10")
	onDay, _ := store.ReadByDate(ctx, day)
	if len(onDay) != 2 {
		t.Errorf("ReadByDate len = %d, want 2", len(onDay))
	}

	july, _ := store.ReadByMonth(ctx, 2024, 7)
	if len(july) != 1 || !july[0].Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("ReadByMonth(2024,7) = %v", july)
	}
}
