package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"weekspend/internal/config"
	"weekspend/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "seed"}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if bc.Type != SQLiteBackend || bc.SQLiteDBPath != "x.db" || bc.DataDirectory != "seed" {
		t.Fatalf("unexpected config %+v", bc)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatal("expected invalid backend error")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected nil config error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend}, true},
		{"sheets with id", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, false},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	seed := "expenses:\n  - id: s1\n    date: \"2024-01-15\"\n    amount: \"5\"\n    category: Food\n"
	if err := os.WriteFile(filepath.Join(dir, "expenses.yaml"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	items, err := res.Backend.ListExpenses(context.Background(),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC))
	if err != nil || len(items) != 1 || items[0].ID != "s1" {
		t.Fatalf("unexpected items %v err=%v", items, err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekspend.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if res.Ping == nil || res.Ping(context.Background()) != nil {
		t.Fatal("sqlite backend should be pingable")
	}
	if _, err := res.Backend.Append(context.Background(), core.Expense{ID: "a", Date: "2024-01-15", Category: core.Category{Name: "Food"}}); err != nil {
		t.Fatalf("Append: %v", err)
	}
}
