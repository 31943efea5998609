package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pdxmph/tasks/internal/format"
	"github.com/pdxmph/tasks/internal/tasks"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

// Model represents the interactive task list
type Model struct {
	store    *tasks.Store
	tasks    []tasks.Task
	filter   tasks.Filter
	selected int
	width    int
	height   int
	mode     mode
	input    textinput.Model
	status   string
	err      error
}

// Styles
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// New creates a model over store, initially showing all tasks
func New(store *tasks.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Task text..."
	ti.Width = 50
	ti.CharLimit = tasks.MaxTextLength
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	m := Model{
		store:  store,
		filter: tasks.FilterAll,
		input:  ti,
	}
	m.reload()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 10 {
			m.input.Width = min(m.width-10, 60)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.selected < len(m.tasks)-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "g", "home":
		m.selected = 0

	case "G", "end":
		m.selected = max(len(m.tasks)-1, 0)

	case " ", "x":
		task, ok := m.current()
		if !ok {
			return m, nil
		}
		if task.Completed {
			task, err := m.store.Uncomplete(task.ID)
			m.apply("Uncompleted", task, err)
		} else {
			task, err := m.store.Complete(task.ID)
			m.apply("Completed", task, err)
		}

	case "a":
		m.mode = modeAdd
		m.input.Reset()
		return m, tea.Batch(m.input.Focus(), textinput.Blink)

	case "e":
		task, ok := m.current()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.input.SetValue(task.Text)
		m.input.CursorEnd()
		return m, tea.Batch(m.input.Focus(), textinput.Blink)

	case "d":
		if _, ok := m.current(); ok {
			m.mode = modeConfirmDelete
		}

	case "f":
		m.filter = nextFilter(m.filter)
		m.reload()
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		return m, nil

	case "enter":
		value := m.input.Value()
		if m.mode == modeAdd {
			task, err := m.store.Add(value, tasks.PriorityMedium)
			if err == nil {
				m.status = fmt.Sprintf("Added task: %s (ID: %d)", task.Text, task.ID)
			}
			m.err = err
		} else if task, ok := m.current(); ok {
			task, err := m.store.Edit(task.ID, value)
			m.apply("Updated", task, err)
		}
		if m.err != nil {
			// Keep the input open so the text can be corrected
			return m, nil
		}
		m.mode = modeList
		m.input.Blur()
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if task, ok := m.current(); ok {
			task, err := m.store.Delete(task.ID)
			m.apply("Deleted", task, err)
		}
	}
	// Any other key cancels
	m.mode = modeList
	return m, nil
}

// apply records the outcome of a store operation and refreshes the list
func (m *Model) apply(verb string, task tasks.Task, err error) {
	if err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.err = nil
	m.status = fmt.Sprintf("%s task: %s", verb, task.Text)
	m.reload()
}

// reload refreshes the visible tasks from the store
func (m *Model) reload() {
	m.tasks = m.store.Tasks(m.filter)
	m.selected = m.ensureValidSelection()
}

// current returns the selected task
func (m Model) current() (tasks.Task, bool) {
	if len(m.tasks) == 0 || m.selected >= len(m.tasks) {
		return tasks.Task{}, false
	}
	return m.tasks[m.selected], true
}

// ensureValidSelection ensures the current selection is within bounds
func (m Model) ensureValidSelection() int {
	if len(m.tasks) == 0 {
		return 0
	}
	if m.selected >= len(m.tasks) {
		return len(m.tasks) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}

func nextFilter(f tasks.Filter) tasks.Filter {
	for i, candidate := range tasks.Filters {
		if candidate == f {
			return tasks.Filters[(i+1)%len(tasks.Filters)]
		}
	}
	return tasks.FilterAll
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.mode {
	case modeAdd:
		return m.renderInput("Add task:")
	case modeEdit:
		return m.renderInput("Edit task:")
	case modeConfirmDelete:
		return m.renderConfirmDelete()
	}

	listHeight := max(m.height-4, 1)
	content := borderStyle.
		Width(max(m.width-2, 10)).
		Height(listHeight).
		Render(m.renderList(listHeight))

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatus(), m.renderHelp())
}

// renderList renders the visible window of tasks around the selection
func (m Model) renderList(height int) string {
	title := fmt.Sprintf("Tasks (%s)", m.filter)
	if len(m.tasks) == 0 {
		return title + "\n\nNo tasks available."
	}

	visible := max(height-2, 1)
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(m.tasks))

	lines := []string{title, ""}
	for i := start; i < end; i++ {
		t := m.tasks[i]
		status := "[ ]"
		if t.Completed {
			status = "[x]"
		}
		line := fmt.Sprintf("%3d %s %s %s", t.ID, status, t.Text, format.PriorityMarks(t.Priority))
		switch {
		case i == m.selected:
			line = selectedStyle.Render(line)
		case t.Completed:
			line = doneStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	st := m.store.Stats()
	summary := fmt.Sprintf("%d total, %d completed, %d pending (%d%%)", st.Total, st.Completed, st.Pending, st.CompletionRate())
	if m.status != "" {
		return statusStyle.Render(m.status) + "  " + helpStyle.Render(summary)
	}
	return helpStyle.Render(summary)
}

func (m Model) renderHelp() string {
	return helpStyle.Render("j/k: move  space: toggle  a: add  e: edit  d: delete  f: filter  q: quit")
}

// renderInput renders the add/edit overlay
func (m Model) renderInput(title string) string {
	lines := []string{title, "", m.input.View(), ""}
	if m.err != nil {
		lines = append(lines, errorStyle.Render(m.err.Error()), "")
	}
	lines = append(lines, "Press Enter to save, Esc to cancel")
	return m.overlay(strings.Join(lines, "\n"))
}

func (m Model) renderConfirmDelete() string {
	task, ok := m.current()
	if !ok {
		return "No task selected"
	}
	return m.overlay(fmt.Sprintf("Delete task %d?\n\n  %s\n\nPress y to confirm, any other key to cancel", task.ID, task.Text))
}

// overlay centers a bordered box on the screen
func (m Model) overlay(content string) string {
	box := borderStyle.
		Padding(1).
		Background(lipgloss.Color("235")).
		Render(content)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}
