package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"weekspend/internal/core"
	"weekspend/internal/log"
	"weekspend/internal/present"
	"weekspend/internal/weekly"
)

type pageData struct {
	Title  string
	Locale string
	View   *present.Weekly
	Error  string
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "ledger": "ok"}
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["ledger"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	NewHTMXResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
		"security":  s.metrics.snapshot(),
		"clients":   s.rateLimiter.activeClients(),
	}).Write(w)
}

// handleIndex renders the dashboard with the current report inlined.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("page not found").Write(w)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}

	locale := s.reports.Locale()
	data := pageData{Title: "Weekly spending", Locale: locale.Tag}
	if view, err := s.buildView(r.Context(), ParseExpansion(r.URL.Query())); err != nil {
		data.Error = "Could not load expenses"
	} else {
		data.View = &view
	}
	s.render(w, r, "dashboard", data, http.StatusOK)
}

// handleWeeklyPartial renders the report body for HTMX swaps. Load failures
// render an error placeholder instead of failing the swap.
func (s *Server) handleWeeklyPartial(w http.ResponseWriter, r *http.Request) {
	view, err := s.buildView(r.Context(), ParseExpansion(r.URL.Query()))
	if err != nil {
		s.render(w, r, "weekly-error", pageData{Error: "Could not load expenses"}, http.StatusOK)
		return
	}
	s.render(w, r, "weekly", view, http.StatusOK)
}

// handleToggleCategory flips one category in the posted expansion state and
// re-renders the breakdown with the new state.
func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	name := p.Get("category")
	if name == "" {
		BadRequestError("category is required").Write(w)
		return
	}

	state := weekly.ExpansionFrom(p.Values("expanded")).Toggle(name)
	view, err := s.buildView(r.Context(), state)
	if err != nil {
		s.render(w, r, "weekly-error", pageData{Error: "Could not load expenses"}, http.StatusOK)
		return
	}

	var buf bytes.Buffer
	if err := s.execute(&buf, "categories", view); err != nil {
		s.logError(r.Context(), "Failed to render categories", err, log.OpRender)
		InternalServerError("template error").Write(w)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Category toggled",
		log.FieldCategory, name,
		log.FieldOperation, log.OpToggle,
		"expanded", state.Expanded(name))

	NewHTMXResponse().
		TriggerCategoryToggled(name, state.Expanded(name), state.Names()).
		BodyHTML(buf.String()).
		Write(w)
}

// handleWeeklyJSON serves the report as JSON; ?expanded= is echoed back.
func (s *Server) handleWeeklyJSON(w http.ResponseWriter, r *http.Request) {
	view, err := s.buildView(r.Context(), ParseExpansion(r.URL.Query()))
	if err != nil {
		JSONError(http.StatusInternalServerError, "could not load expenses").Write(w)
		return
	}
	NewHTMXResponse().JSON(view).Write(w)
}

type createdExpense struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

// handleCreateExpense stores one expense from a JSON or form body.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			JSONError(http.StatusRequestEntityTooLarge, err.Error()).Write(w)
			return
		}
		JSONError(http.StatusBadRequest, "invalid request body").Write(w)
		return
	}

	e, err := ExpenseFromBody(p, s.reports.Today())
	if err != nil {
		createFailure(p, http.StatusUnprocessableEntity, err.Error()).Write(w)
		return
	}

	saved, ref, err := s.expenses.CreateExpense(ctx, e)
	if err != nil {
		if core.IsValidationError(err) {
			createFailure(p, http.StatusUnprocessableEntity, err.Error()).Write(w)
			return
		}
		s.logError(ctx, "Failed to save expense", err, log.OpCreate)
		createFailure(p, http.StatusInternalServerError, "could not save expense").Write(w)
		return
	}
	s.reports.Invalidate()

	log.NewStructuredLogger(log.FromContext(ctx)).
		LogExpenseCreated(ctx, saved.ID, saved.Category.Name, saved.Amount.Cents, saved.Date, ref)

	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerExpenseCreated(core.CalendarDate(saved.Date)).
		TriggerWeeklyRefresh().
		TriggerSuccessNotification("Expense saved").
		JSON(createdExpense{
			ID:          saved.ID,
			Ref:         ref,
			Date:        saved.Date,
			AmountCents: saved.Amount.Cents,
			Amount:      s.reports.Locale().FormatAmount(saved.Amount),
			Category:    saved.Category.Name,
		}).
		Write(w)
}

// createFailure answers JSON clients with a JSON error and HTMX form posts
// with an HTML fragment plus an error notification.
func createFailure(p *RequestBodyParser, status int, msg string) *HTMXResponseBuilder {
	if p.IsJSON() {
		return JSONError(status, msg)
	}
	var b *HTMXResponseBuilder
	switch status {
	case http.StatusUnprocessableEntity:
		b = UnprocessableEntityError(msg)
	case http.StatusInternalServerError:
		b = InternalServerError(msg)
	default:
		b = ErrorResponse(status, msg)
	}
	return b.TriggerErrorNotification(msg)
}

func (s *Server) buildView(ctx context.Context, exp weekly.Expansion) (present.Weekly, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	report, err := s.reports.Weekly(ctx)
	if err != nil {
		s.logError(ctx, "Failed to build weekly report", err, log.OpBuild)
		return present.Weekly{}, err
	}
	return present.NewWeekly(report, s.reports.Locale(), exp), nil
}

func (s *Server) execute(buf *bytes.Buffer, name string, data any) error {
	if s.templates == nil {
		return errors.New("templates not loaded")
	}
	return s.templates.ExecuteTemplate(buf, name, data)
}

// render executes a template into a buffer first so a failing template
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, status int) {
	var buf bytes.Buffer
	if err := s.execute(&buf, name, data); err != nil {
		s.logError(r.Context(), "Failed to render template", err, log.OpRender)
		InternalServerError("template error").Write(w)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(buf.String()).Write(w)
}

func (s *Server) logError(ctx context.Context, msg string, err error, op string) {
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, msg, err, op, log.NewFields())
}
