package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestMemoryStoreInsertListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	all, err := s.ListAll(ctx)
	if err != nil || all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil list, got %v err=%v", all, err)
	}

	id1, err := s.Insert(ctx, core.NewTransaction{
		Kind:     core.Expense,
		Category: "Food",
		Amount:   core.MustAmount("9.99"),
		Date:     core.NewDate(2025, 1, 1),
	})
	if err != nil || id1 != 1 {
		t.Fatalf("unexpected insert: id=%d err=%v", id1, err)
	}
	id2, _ := s.Insert(ctx, core.NewTransaction{
		Kind:     core.Income,
		Category: "Salary",
		Amount:   core.MustAmount("100"),
		Date:     core.NewDate(2025, 1, 2),
	})

	if err := s.Delete(ctx, id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, id1); err != nil {
		t.Fatalf("repeated delete should be a no-op: %v", err)
	}

	all, _ = s.ListAll(ctx)
	if len(all) != 1 || all[0].ID != id2 {
		t.Fatalf("unexpected list after delete: %v", all)
	}

	if _, err := s.Get(ctx, id1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	id3, _ := s.Insert(ctx, core.NewTransaction{
		Kind:     core.Expense,
		Category: "Food",
		Amount:   core.MustAmount("1"),
		Date:     core.NewDate(2025, 1, 3),
	})
	if id3 != 3 {
		t.Fatalf("ids must not be reused, got %d", id3)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Insert(context.Background(), core.NewTransaction{
		Kind:     core.Expense,
		Category: "",
		Amount:   core.MustAmount("10"),
		Date:     core.NewDate(2025, 1, 1),
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	all, _ := s.ListAll(context.Background())
	if len(all) != 0 {
		t.Fatalf("invalid insert must not add records")
	}
}

func TestMemoryStoreTrimsCategoryAndStamps(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Insert(ctx, core.NewTransaction{
		Kind:     core.Expense,
		Category: " Food\t",
		Amount:   core.MustAmount("2"),
		Date:     core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, _ := s.Get(ctx, id)
	if got.Category != "Food" {
		t.Fatalf("expected trimmed category, got %q", got.Category)
	}

	st, _ := s.Stamp(ctx)
	if st != (core.Stamp{Count: 1, MaxID: id}) {
		t.Fatalf("unexpected stamp %+v", st)
	}
	_ = s.Delete(ctx, id)
	if st, _ := s.Stamp(ctx); st != (core.Stamp{}) {
		t.Fatalf("expected empty stamp, got %+v", st)
	}
}
