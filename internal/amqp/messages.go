package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"weekspend/internal/core"
)

// ExpenseRecordedMessage announces a newly recorded expense. It carries the
// full record so consumers can store it without a lookup.
type ExpenseRecordedMessage struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	AmountCents  int64     `json:"amount_cents"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category"`
	Comment      string    `json:"comment,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:           e.ID,
		Date:         e.Date,
		AmountCents:  e.Amount.Cents,
		CategoryID:   e.Category.ID,
		CategoryName: e.Category.Name,
		Comment:      e.Comment,
		Timestamp:    time.Now(),
	}
}

// Expense converts the message back to a domain expense.
func (m *ExpenseRecordedMessage) Expense() core.Expense {
	return core.Expense{
		ID:       m.ID,
		Date:     m.Date,
		Amount:   core.Money{Cents: m.AmountCents},
		Category: core.Category{ID: m.CategoryID, Name: m.CategoryName},
		Comment:  m.Comment,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes a message. Messages without an id
// are rejected since they cannot be stored idempotently.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.ID) == "" {
		return nil, errors.New("message has no expense id")
	}
	return &msg, nil
}
