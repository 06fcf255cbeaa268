// Package console renders the weekly report for terminals.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"weekspend/internal/present"
)

// barWidth is the length in cells of the longest bar.
const barWidth = 30

// Predefined colors for consistent use.
var (
	BoldRed      = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Renderer writes reports to out.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// ColorChange colors a week-over-week string: increases red, decreases
// green, flat yellow.
func ColorChange(change, direction string) string {
	switch direction {
	case "up":
		return BoldRed(change)
	case "down":
		return BrightGreen(change)
	default:
		return BrightYellow(change)
	}
}

// Render prints the header, the day chart (or the no-expenses message) and
// the category breakdown.
func (r *Renderer) Render(v present.Weekly) error {
	header := fmt.Sprintf("%s %s - %s\n%s %s   %s %s   %s",
		BrightCyan("Week"), v.StartLabel, v.EndLabel,
		"This week:", v.CurrentTotalLabel,
		"Last week:", v.PreviousTotalLabel,
		ColorChange(v.Change, v.Direction))
	if _, err := fmt.Fprintln(r.out, header); err != nil {
		return err
	}

	if !v.HasData {
		box := pterm.DefaultBox.WithTitle("Weekly spending").Sprint(v.NoExpenses)
		_, err := fmt.Fprintln(r.out, "\n"+box)
		return err
	}

	chart, err := dayTable(v)
	if err != nil {
		return err
	}
	panel := pterm.DefaultBox.WithTitle("Weekly spending").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(chart)
	if _, err := fmt.Fprintln(r.out, "\n"+panel); err != nil {
		return err
	}

	cats, err := categoryTable(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, "\n"+cats)
	return err
}

// JSON writes the view as indented JSON.
func (r *Renderer) JSON(v present.Weekly) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dayTable(v present.Weekly) (string, error) {
	data := pterm.TableData{{"Day", "This week", "", "Last week", "", "Change"}}
	for _, d := range v.Days {
		data = append(data, []string{
			d.Weekday + " " + d.Label,
			d.Current,
			pterm.FgBlue.Sprint(bar(d.CurrentHeight)),
			d.Previous,
			pterm.FgMagenta.Sprint(bar(d.PreviousHeight)),
			d.Change,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func categoryTable(v present.Weekly) (string, error) {
	data := pterm.TableData{{"Category", "Amount", "Share"}}
	for _, c := range v.Categories {
		marker := "+"
		if c.Expanded {
			marker = "-"
		}
		data = append(data, []string{marker + " " + c.Name + " " + c.CountLabel, c.Amount, c.Share})
		if !c.Expanded {
			continue
		}
		for _, t := range c.Transactions {
			data = append(data, []string{"    " + t.Date + "  " + t.Note, t.Amount, ""})
		}
	}
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
}

// bar draws a horizontal bar for a 0..100 height.
func bar(height int) string {
	return strings.Repeat("█", height*barWidth/100)
}
