// package ui renders the run summary with [lipgloss] styles
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"imagehound/internal/tasks"
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	label lipgloss.Style
}

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#626262")

func NewPalette(t, s, e, l string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		label: NewStyle(l),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

// RenderSummary formats the final counters of a harvest run.
func RenderSummary(s tasks.Summary) string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Harvest complete"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", styles.label.Render("Stopped:"), renderReason(s.Reason)))
	b.WriteString(fmt.Sprintf("%s %s\n", styles.label.Render("Processed:"), styles.ok.Render(fmt.Sprintf("%d", s.Processed))))
	b.WriteString(fmt.Sprintf("%s %d\n", styles.label.Render("Skipped:"), s.Skipped))
	b.WriteString(fmt.Sprintf("%s %d\n", styles.label.Render("Pages fetched:"), s.Pages))
	b.WriteString(fmt.Sprintf("%s %s\n", styles.label.Render("Elapsed:"), s.Elapsed.Round(0).String()))

	return b.String()
}

func renderReason(reason tasks.StopReason) string {
	if reason == tasks.StopFatal {
		return styles.err.Render(string(reason))
	}
	return string(reason)
}
