package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drumgrid/sequencer"
	"go-drumgrid/theme"
)

// NoCursor disables the cursor in RenderRow
const NoCursor = -1

// RenderRow draws one instrument row. cursor and highlight are step
// indexes, or negative for none.
func RenderRow(th *theme.Theme, steps sequencer.Steps, cursor, highlight int) string {
	sym := th.Symbols
	active := lipgloss.NewStyle().Foreground(th.Active())
	empty := lipgloss.NewStyle().Foreground(th.Muted())
	lit := lipgloss.NewStyle().Foreground(th.Success())
	cur := lipgloss.NewStyle().Foreground(th.Cursor())

	var out strings.Builder
	for s, on := range steps {
		if s > 0 && s%4 == 0 {
			out.WriteString(" ")
		}
		var char rune
		style := empty
		switch {
		case s == cursor && s == highlight:
			char, style = sym.CursorPlayhead, cur
		case s == cursor && on:
			char, style = sym.CursorActive, cur
		case s == cursor:
			char, style = sym.CursorEmpty, cur
		case s == highlight && on:
			char, style = sym.StepHit, lit
		case s == highlight:
			char, style = sym.StepPlayhead, lit
		case on:
			char, style = sym.StepActive, active
		default:
			char = sym.StepEmpty
		}
		out.WriteString(style.Render(string(char)))
	}
	return out.String()
}

// RenderStepNumbers draws the 0-f step footer, lighting the highlighted column
func RenderStepNumbers(th *theme.Theme, highlight int) string {
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	lit := lipgloss.NewStyle().Foreground(th.Success())

	var out strings.Builder
	for s := 0; s < sequencer.NumSteps; s++ {
		if s > 0 && s%4 == 0 {
			out.WriteString(" ")
		}
		digit := fmt.Sprintf("%x", s) // one column per step
		if s == highlight {
			out.WriteString(lit.Render(digit))
		} else {
			out.WriteString(dim.Render(digit))
		}
	}
	return out.String()
}
