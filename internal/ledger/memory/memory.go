package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"weekspend/internal/core"
	"weekspend/internal/ledger"
)

// SeedFile is the file NewFromFiles reads inside its base directory.
const SeedFile = "expenses.yaml"

var (
	_ ledger.ExpenseLister = (*Store)(nil)
	_ ledger.ExpenseWriter = (*Store)(nil)
)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

type seedExpense struct {
	ID           string `yaml:"id"`
	Date         string `yaml:"date"`
	Amount       string `yaml:"amount"`
	CategoryID   string `yaml:"category_id"`
	CategoryName string `yaml:"category"`
	Comment      string `yaml:"comment"`
}

type seedDoc struct {
	Expenses []seedExpense `yaml:"expenses"`
}

func New(items ...core.Expense) *Store {
	return &Store{items: append([]core.Expense(nil), items...)}
}

// NewFromFiles seeds the store from base/expenses.yaml. A missing file yields
// an empty store; a malformed one is an error.
func NewFromFiles(base string) (*Store, error) {
	b, err := os.ReadFile(filepath.Join(base, SeedFile))
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	items, err := ParseSeed(b)
	if err != nil {
		return nil, err
	}
	return New(items...), nil
}

// ParseSeed decodes a YAML seed document. Entries without an id get one.
func ParseSeed(b []byte) ([]core.Expense, error) {
	var doc seedDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	out := make([]core.Expense, 0, len(doc.Expenses))
	for i, s := range doc.Expenses {
		cents, err := core.ParseDecimalToCents(s.Amount)
		if err != nil {
			return nil, fmt.Errorf("seed expense %d: amount %q: %w", i, s.Amount, err)
		}
		id := strings.TrimSpace(s.ID)
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, core.Expense{
			ID:       id,
			Comment:  s.Comment,
			Amount:   core.Money{Cents: cents},
			Category: core.Category{ID: s.CategoryID, Name: strings.TrimSpace(s.CategoryName)},
			Date:     strings.TrimSpace(s.Date),
		})
	}
	return out, nil
}

// Append stores the expense and returns its id, assigning one when empty.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return e.ID, nil
}

// ListExpenses returns stored expenses whose calendar date lies within one
// day of [from, to], in insertion order. Entries with unreadable dates are
// returned as-is; the aggregation drops them.
func (s *Store) ListExpenses(_ context.Context, from, to time.Time) ([]core.Expense, error) {
	lo := from.AddDate(0, 0, -1).Format(time.DateOnly)
	hi := to.AddDate(0, 0, 1).Format(time.DateOnly)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.items {
		day := core.CalendarDate(e.Date)
		if _, err := time.Parse(time.DateOnly, day); err == nil && (day < lo || day > hi) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
