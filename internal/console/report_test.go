package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"weekspend/internal/core"
	"weekspend/internal/present"
	"weekspend/internal/weekly"
)

func init() {
	color.NoColor = true
	pterm.DisableColor()
}

func view(exp weekly.Expansion, expenses ...core.Expense) present.Weekly {
	agg := weekly.NewAggregator(
		weekly.WithClock(func() time.Time { return time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC) }),
		weekly.WithLocation(time.UTC),
	)
	return present.NewWeekly(agg.Build(expenses), agg.Locale(), exp)
}

func sample() []core.Expense {
	return []core.Expense{
		{ID: "1", Date: "2024-01-15", Amount: core.Money{Cents: 12000}, Category: core.Category{Name: "Food"}, Comment: "Dinner out"},
		{ID: "2", Date: "2024-01-09", Amount: core.Money{Cents: 10000}, Category: core.Category{Name: "Food"}},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(&buf).Render(view(nil, sample()...)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"15/01/2024 - 21/01/2024", "+20.0%", "Mon 15 Jan", "Food", "100.0%", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Dinner out") {
		t.Error("collapsed category shows its transactions")
	}
}

func TestRenderExpanded(t *testing.T) {
	var buf bytes.Buffer
	v := view(weekly.ExpansionFrom([]string{"Food"}), sample()...)
	if err := NewRenderer(&buf).Render(v); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Dinner out", "(1 transactions)", "100.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderItalianShareAndMissingComment(t *testing.T) {
	agg := weekly.NewAggregator(
		weekly.WithClock(func() time.Time { return time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC) }),
		weekly.WithLocation(time.UTC),
		weekly.WithLocale(weekly.ItIT),
	)
	r := agg.Build([]core.Expense{
		{ID: "1", Date: "2024-01-15", Amount: core.Money{Cents: 1000}, Category: core.Category{Name: "Cibo"}},
		{ID: "2", Date: "2024-01-16", Amount: core.Money{Cents: 3000}, Category: core.Category{Name: "Viaggi"}, Comment: "Treno"},
	})
	var buf bytes.Buffer
	if err := NewRenderer(&buf).Render(present.NewWeekly(r, weekly.ItIT, weekly.ExpansionFrom([]string{"Cibo"}))); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"75,0%", "25,0%", "(1 transazioni)", "15/01/2024  -"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "75.0%") {
		t.Error("share printed with a dot separator under it-IT")
	}
}

func TestRenderNoExpenses(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(&buf).Render(view(nil)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, weekly.EnGB.NoExpenses) {
		t.Errorf("missing fallback message:\n%s", out)
	}
	if strings.Contains(out, "█") {
		t.Error("bars drawn without data")
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(&buf).JSON(view(nil, sample()...)); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var got present.Weekly
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CurrentTotal != 12000 || got.Change != "+20.0%" {
		t.Errorf("got %+v", got)
	}
}

func TestColorChange(t *testing.T) {
	for _, dir := range []string{"up", "down", "flat"} {
		if got := ColorChange("+1.0%", dir); got != "+1.0%" {
			t.Errorf("ColorChange(%s) = %q with colors disabled", dir, got)
		}
	}
}
