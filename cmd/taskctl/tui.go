package main

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasknotes-backend/internal/client"
	"tasknotes-backend/internal/view"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeTitle
	modeContent
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// opDoneMsg arrives when a board operation started by a command finishes.
// The board has already recorded the outcome in its status.
type opDoneMsg struct {
	err     error
	created bool
}

type boardModel struct {
	ctx   context.Context
	board *client.Board

	mode  inputMode
	input textinput.Model

	// Unsent title/content, kept across esc until submitted or cleared.
	draftTitle   string
	draftContent string

	selected int
	busy     bool
}

func newBoardModel(ctx context.Context, board *client.Board) boardModel {
	ti := textinput.New()
	ti.CharLimit = 500
	return boardModel{ctx: ctx, board: board, input: ti}
}

func runBoard(ctx context.Context, board *client.Board) error {
	_, err := tea.NewProgram(newBoardModel(ctx, board), tea.WithContext(ctx)).Run()
	return err
}

func (m boardModel) Init() tea.Cmd {
	return m.refresh()
}

func (m boardModel) refresh() tea.Cmd {
	board, ctx := m.board, m.ctx
	return func() tea.Msg { return opDoneMsg{err: board.Refresh(ctx)} }
}

func (m boardModel) create(title, content string) tea.Cmd {
	board, ctx := m.board, m.ctx
	return func() tea.Msg {
		_, err := board.Create(ctx, title, content)
		return opDoneMsg{err: err, created: true}
	}
}

func (m boardModel) remove(id string) tea.Cmd {
	board, ctx := m.board, m.ctx
	return func() tea.Msg { return opDoneMsg{err: board.Delete(ctx, id)} }
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		m.busy = false
		if msg.created && msg.err == nil {
			m.draftTitle, m.draftContent = "", ""
		}
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m boardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < m.board.Count()-1 {
			m.selected++
		}
	case "s":
		m.board.SetSort(m.board.Sort().Next())
	case "/":
		m.mode = modeSearch
		m.input.Placeholder = "search"
		m.input.SetValue(m.board.Search())
		cmd := m.input.Focus()
		return m, cmd
	case "a":
		m.mode = modeTitle
		m.input.Placeholder = "title"
		m.input.SetValue(m.draftTitle)
		cmd := m.input.Focus()
		return m, cmd
	case "c":
		m.draftTitle, m.draftContent = "", ""
		m.input.SetValue("")
		m.board.Cleared()
	case "r":
		if !m.busy {
			m.busy = true
			return m, m.refresh()
		}
	case "d":
		tasks := m.board.View()
		if !m.busy && m.selected >= 0 && m.selected < len(tasks) {
			m.busy = true
			return m, m.remove(tasks[m.selected].ID)
		}
	}
	return m, nil
}

func (m boardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		switch m.mode {
		case modeTitle:
			m.draftTitle = m.input.Value()
		case modeContent:
			m.draftContent = m.input.Value()
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		switch m.mode {
		case modeSearch:
			m.mode = modeBrowse
			m.input.Blur()
			m.selected = 0
			return m, nil
		case modeTitle:
			m.draftTitle = value
			m.mode = modeContent
			m.input.Placeholder = "content"
			m.input.SetValue(m.draftContent)
			return m, nil
		case modeContent:
			m.draftContent = value
			m.mode = modeBrowse
			m.input.Blur()
			m.busy = true
			return m, m.create(m.draftTitle, value)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeSearch {
		m.board.SetSearch(m.input.Value())
		m.selected = 0
	}
	return m, cmd
}

func (m *boardModel) clampSelection() {
	n := m.board.Count()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) View() string {
	var b strings.Builder

	header := "Sort: " + m.board.Sort().Label()
	if q := m.board.Search(); q != "" {
		header += "   Search: " + q
	}
	b.WriteString(helpStyle.Render(header) + "\n\n")

	b.WriteString(view.RenderText(m.board.View(), m.board.Status(), view.TextOptions{
		Selected: m.selected,
		Location: time.Local,
	}))

	if m.mode == modeBrowse && (m.draftTitle != "" || m.draftContent != "") {
		b.WriteString("\n" + helpStyle.Render("Draft: "+view.StripTerminal(m.draftTitle)+" (a to resume, c to clear)") + "\n")
	}

	switch m.mode {
	case modeSearch:
		b.WriteString("\n" + promptStyle.Render("Search: ") + m.input.View() + "\n")
	case modeTitle:
		b.WriteString("\n" + promptStyle.Render("Title: ") + m.input.View() + "\n")
	case modeContent:
		b.WriteString("\n" + promptStyle.Render("Content: ") + m.input.View() + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("a add • d delete • / search • s sort • c clear • r refresh • q quit") + "\n")
	return b.String()
}
