package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tasknotes-backend/internal/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	metaStyle    = lipgloss.NewStyle().Faint(true)
	selectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	contentStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// TextOptions tweaks RenderText. Selected is the index of the highlighted
// task, or -1.
type TextOptions struct {
	Selected int
	Location *time.Location
}

// RenderText renders the computed view for a terminal.
func RenderText(tasks []domain.Task, status Status, opts TextOptions) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Tasks (%d)", len(tasks))))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(metaStyle.Render("No tasks yet."))
		b.WriteString("\n")
	}

	for i, t := range tasks {
		cursor := "  "
		title := titleStyle.Render(StripTerminal(t.Title))
		if i == opts.Selected {
			cursor = selectStyle.Render("> ")
			title = selectStyle.Bold(true).Render(StripTerminal(t.Title))
		}
		b.WriteString(cursor + title + "  " + metaStyle.Render(StripTerminal(t.ID)) + "\n")
		b.WriteString(contentStyle.Render(metaStyle.Render("Created "+FormatDate(t.Date, opts.Location))) + "\n")
		b.WriteString(contentStyle.Render(StripTerminal(t.Content)) + "\n\n")
	}

	if line := RenderStatus(status); line != "" {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RenderStatus styles a status line. Messages may carry server text, so
// they are stripped like task fields.
func RenderStatus(s Status) string {
	s.Message = StripTerminal(s.Message)
	switch s.Kind {
	case StatusOK:
		return okStyle.Render(s.Text())
	case StatusError:
		return errorStyle.Render(s.Text())
	default:
		return s.Text()
	}
}
