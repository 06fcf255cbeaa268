package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"weekspend/internal/core"
	"weekspend/internal/ledger"
)

// Publisher announces recorded expenses, e.g. over AMQP.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, e core.Expense) error
}

// ExpenseService stores new expenses and announces them.
type ExpenseService struct {
	writer    ledger.ExpenseWriter
	publisher Publisher
	onCreated []func(core.Expense)
}

// NewExpenseService wires the service. publisher may be nil.
func NewExpenseService(writer ledger.ExpenseWriter, publisher Publisher) *ExpenseService {
	return &ExpenseService{writer: writer, publisher: publisher}
}

// OnCreated registers a callback run after every successful create.
func (s *ExpenseService) OnCreated(fn func(core.Expense)) {
	s.onCreated = append(s.onCreated, fn)
}

// CreateExpense validates and stores e, assigning an id when empty, then
// publishes it. Publish failures are logged and do not fail the call: the
// expense is already stored.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, string, error) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	e.Date = strings.TrimSpace(e.Date)
	e.Category.Name = strings.TrimSpace(e.Category.Name)
	if err := e.Validate(); err != nil {
		return core.Expense{}, "", err
	}
	if s.writer == nil {
		return core.Expense{}, "", fmt.Errorf("save expense: no writer configured")
	}

	ref, err := s.writer.Append(ctx, e)
	if err != nil {
		return core.Expense{}, "", fmt.Errorf("save expense: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseRecorded(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense recorded message", "id", e.ID, "error", err)
		}
	} else {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping expense recorded message", "id", e.ID)
	}

	for _, fn := range s.onCreated {
		fn(e)
	}
	return e, ref, nil
}
