package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"weekspend/internal/core"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New()
	ref, err := s.Append(context.Background(), core.Expense{
		Comment:  "t",
		Amount:   core.Money{Cents: 123},
		Category: core.Category{ID: "c", Name: "Food"},
		Date:     "2024-01-16",
	})
	if err != nil || ref == "" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	if _, err := s.Append(context.Background(), core.Expense{ID: "x", Date: "bad", Category: core.Category{Name: "A"}}); err == nil {
		t.Fatal("expected validation error")
	}

	from := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 21, 23, 59, 59, 0, time.UTC)
	items, err := s.ListExpenses(context.Background(), from, to)
	if err != nil || len(items) != 1 || items[0].ID != ref {
		t.Fatalf("unexpected list: %v err=%v", items, err)
	}

	items, _ = s.ListExpenses(context.Background(), from.AddDate(0, 1, 0), to.AddDate(0, 1, 0))
	if len(items) != 0 {
		t.Fatalf("expected nothing a month later, got %v", items)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty store
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("missing seed should not fail: %v", err)
	}
	items, _ := s.ListExpenses(context.Background(), time.Time{}, time.Now())
	if len(items) != 0 {
		t.Fatalf("expected empty store")
	}

	seed := `expenses:
  - id: e1
    date: "2024-01-15"
    amount: "12,50"
    category_id: c1
    category: Food
    comment: lunch
  - date: "2024-01-16T18:00:00"
    amount: "3"
    category: " Travel "
`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	items, _ = s.ListExpenses(context.Background(),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC))
	if len(items) != 2 {
		t.Fatalf("expected 2 seeded items, got %d", len(items))
	}
	if items[0].ID != "e1" || items[0].Amount.Cents != 1250 || items[0].Category.Name != "Food" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].ID == "" || items[1].Category.Name != "Travel" {
		t.Fatalf("unexpected second item %+v", items[1])
	}
}

func TestParseSeedRejectsBadAmount(t *testing.T) {
	_, err := ParseSeed([]byte("expenses:\n  - amount: \"-3\"\n    date: \"2024-01-01\"\n    category: A\n"))
	if err == nil {
		t.Fatal("expected amount error")
	}
}
