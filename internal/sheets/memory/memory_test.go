package memory

import (
	"context"
	"testing"

	"paisa/internal/core"
)

func TestMirrorAppendIsIdempotent(t *testing.T) {
	m := New()
	ctx := context.Background()
	tx := core.Transaction{ID: 1, Description: "Salary", Amount: core.Money{Cents: 100}, Category: core.CategoryIncome}

	for i := 0; i < 2; i++ {
		if err := m.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if rows := m.Rows(); len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	if err := m.AppendTransaction(ctx, core.Transaction{ID: 2}); err == nil {
		t.Fatalf("invalid transaction should be rejected")
	}
}

func TestMirrorDelete(t *testing.T) {
	m := New()
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		_ = m.AppendTransaction(ctx, core.Transaction{ID: id, Description: "x", Amount: core.Money{Cents: -1}, Category: "Food"})
	}

	if err := m.DeleteTransaction(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteTransaction(ctx, 99); err != nil {
		t.Fatalf("unknown id should be a no-op: %v", err)
	}
	rows := m.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].ID != 3 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestMirrorTransactionIDs(t *testing.T) {
	m := New()
	ctx := context.Background()
	for _, id := range []int64{3, 1} {
		tx := core.Transaction{ID: id, Description: "x", Amount: core.Money{Cents: 100}, Category: core.CategoryIncome}
		if err := m.AppendTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := m.TransactionIDs(ctx)
	if err != nil || len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Fatalf("ids = %v, err = %v", ids, err)
	}
}
