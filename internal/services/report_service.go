package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"weekspend/internal/cache"
	"weekspend/internal/core"
	"weekspend/internal/ledger"
	"weekspend/internal/log"
	"weekspend/internal/weekly"
)

// ReportService loads the two-week window from a ledger and aggregates it.
// Loaded expense lists are cached per window and concurrent loads of the
// same window share one ledger call.
type ReportService struct {
	lister ledger.ExpenseLister
	agg    *weekly.Aggregator
	cache  cache.Cache[[]core.Expense]
	group  singleflight.Group
	logger *slog.Logger
	// gen is bumped by Invalidate; loads started under an older generation
	// do not populate the cache.
	gen atomic.Uint64
}

// NewReportService wires a report service. c may be nil to disable caching.
func NewReportService(lister ledger.ExpenseLister, agg *weekly.Aggregator, c cache.Cache[[]core.Expense], logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{lister: lister, agg: agg, cache: c, logger: logger}
}

// Locale returns the display locale reports are built with.
func (s *ReportService) Locale() weekly.Locale {
	return s.agg.Locale()
}

// Today is the current calendar date in the report's time zone, YYYY-MM-DD.
func (s *ReportService) Today() string {
	return s.agg.Now().In(s.agg.Location()).Format(time.DateOnly)
}

// Weekly builds the report for the aggregator's current instant.
func (s *ReportService) Weekly(ctx context.Context) (weekly.Report, error) {
	now := s.agg.Now()
	w := weekly.ResolveWindow(now, s.agg.Location())

	expenses, err := s.load(ctx, w)
	if err != nil {
		return weekly.Report{}, err
	}
	r := s.agg.BuildAt(now, expenses)
	fields := log.NewFields().
		WithComponent(log.ComponentReport).
		WithWeek(w.CurrentStart, w.CurrentEnd).
		ToSlice()
	fields = append(fields,
		log.FieldCount, len(expenses),
		"categories", len(r.Categories),
		"current_cents", r.CurrentTotal.Cents,
		"previous_cents", r.PreviousTotal.Cents)
	s.logger.DebugContext(ctx, "Weekly report built", fields...)
	return r, nil
}

// Invalidate drops cached expense lists, e.g. after a new expense is stored.
func (s *ReportService) Invalidate() {
	s.gen.Add(1)
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *ReportService) load(ctx context.Context, w weekly.Window) ([]core.Expense, error) {
	key := w.PreviousStart.Format(time.RFC3339) + "/" + w.CurrentEnd.Format(time.RFC3339)
	if s.cache != nil {
		if items, ok := s.cache.Get(key); ok {
			return items, nil
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		gen := s.gen.Load()
		items, err := s.lister.ListExpenses(ctx, w.PreviousStart, w.CurrentEnd)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && s.gen.Load() == gen {
			s.cache.Set(key, items)
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if shared {
		s.logger.DebugContext(ctx, "Shared in-flight expense load", "component", "report", "key", key)
	}
	return v.([]core.Expense), nil
}
