// Package format renders tasks, statistics and status messages for the terminal.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pdxmph/tasks/internal/tasks"
)

// Formatter renders output styled for the writer it was created for.
// Styling is dropped automatically when the writer is not a terminal.
type Formatter struct {
	success  lipgloss.Style
	failure  lipgloss.Style
	done     lipgloss.Style
	muted    lipgloss.Style
	heading  lipgloss.Style
	priority map[tasks.Priority]lipgloss.Style
}

// New creates a formatter for output written to w
func New(w io.Writer) *Formatter {
	r := lipgloss.NewRenderer(w)
	return &Formatter{
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		done:    r.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		heading: r.NewStyle().Bold(true),
		priority: map[tasks.Priority]lipgloss.Style{
			tasks.PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("241")),
			tasks.PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("214")),
			tasks.PriorityHigh:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
	}
}

// PriorityMarks returns the exclamation marks used to show a priority
func PriorityMarks(p tasks.Priority) string {
	switch p {
	case tasks.PriorityLow:
		return "!"
	case tasks.PriorityHigh:
		return "!!!"
	default:
		return "!!"
	}
}

// Task renders one task as "(id) [x] text !!"
func (f *Formatter) Task(t tasks.Task, showID bool) string {
	status := "[ ]"
	text := t.Text
	if t.Completed {
		status = "[x]"
		text = f.done.Render(text)
	}

	id := ""
	if showID {
		id = f.muted.Render(fmt.Sprintf("(%d)", t.ID)) + " "
	}

	return fmt.Sprintf("%s%s %s %s", id, status, text, f.priority[t.Priority].Render(PriorityMarks(t.Priority)))
}

// TaskList renders tasks one per line
func (f *Formatter) TaskList(list []tasks.Task) string {
	if len(list) == 0 {
		return "No tasks available."
	}

	lines := make([]string, len(list))
	for i, t := range list {
		lines[i] = f.Task(t, true)
	}
	return strings.Join(lines, "\n")
}

// Stats renders the statistics block
func (f *Formatter) Stats(s tasks.Stats) string {
	var b strings.Builder
	b.WriteString(f.heading.Render("📊 Task Statistics:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "├── Total: %d\n", s.Total)
	fmt.Fprintf(&b, "├── Completed: %d\n", s.Completed)
	fmt.Fprintf(&b, "├── Pending: %d\n", s.Pending)
	fmt.Fprintf(&b, "└── Completion Rate: %d%%", s.CompletionRate())
	return b.String()
}

// Error renders an error message
func (f *Formatter) Error(message string) string {
	return f.failure.Render("❗ Error: " + message)
}

// Success renders a success message
func (f *Formatter) Success(message string) string {
	return f.success.Render("✅ Success: " + message)
}
