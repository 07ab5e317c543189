// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui renders the selection session in the terminal. The model
// holds a session.State and translates key events into session commands;
// all selection logic stays in the pure transition function, so this layer
// is only key dispatch and drawing.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/bibseek/internal/session"
	"github.com/pdiddy/bibseek/pkg/types"
)

// AppendFunc is the writer boundary: it appends entries to the configured
// target and returns the path written. Failures return the session to
// browsing with an advisory message, selection intact.
type AppendFunc func(entries []types.BibEntry) (string, error)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeFilter
	modeKey
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	markStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Model is the bubbletea model for one selection session.
type Model struct {
	state   session.State
	outcome session.Outcome

	mode   inputMode
	input  string
	status string
	isErr  bool

	appendFn AppendFunc
	height   int
	done     bool
}

// New returns a model browsing the given entries.
func New(entries []types.BibEntry, appendFn AppendFunc) Model {
	return Model{
		state:    session.New(entries),
		appendFn: appendFn,
		height:   24,
	}
}

// Outcome returns the terminal outcome once the program has finished.
func (m Model) Outcome() session.Outcome {
	return m.outcome
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		return m.apply(session.Command{Kind: session.CmdNext})
	case "k", "up":
		return m.apply(session.Command{Kind: session.CmdPrev})
	case " ", "m":
		return m.apply(session.Command{Kind: session.CmdToggleMark})
	case "/":
		m.mode = modeFilter
		m.input = ""
		return m, nil
	case "g":
		m.mode = modeKey
		m.input = ""
		return m, nil
	case "a":
		return m.apply(session.Command{Kind: session.CmdAcceptAll})
	case "enter":
		return m.apply(session.Command{Kind: session.CmdAcceptMarked})
	case "w":
		return m.apply(session.Command{Kind: session.CmdAppendMarked})
	case "u":
		return m.apply(session.Command{Kind: session.CmdAppendUnmarked})
	case "q", "esc", "ctrl+c":
		return m.apply(session.Command{Kind: session.CmdQuit})
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input = ""
		return m, nil
	case "enter":
		if m.input == "" {
			// Empty input is a cancel, same as esc.
			m.mode = modeBrowse
			return m, nil
		}
		cmd := session.Command{Kind: session.CmdFilter, Arg: m.input}
		if m.mode == modeKey {
			cmd = session.Command{Kind: session.CmdSelectKey, Arg: m.input}
		}
		m.mode = modeBrowse
		m.input = ""
		return m.apply(cmd)
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		}
		return m, nil
	}
}

// apply runs one session command and handles its outcome: terminal
// outcomes quit the program, append requests cross the writer boundary,
// messages land on the status line.
func (m Model) apply(cmd session.Command) (tea.Model, tea.Cmd) {
	next, out, err := session.Apply(m.state, cmd)
	if err != nil {
		// NoMatchesError on a fresh set is terminal for this retrieval.
		m.outcome = session.Outcome{Done: true, Aborted: true, Message: err.Error()}
		m.done = true
		return m, tea.Quit
	}
	m.state = next
	m.status = out.Message
	m.isErr = false

	if len(out.PendingAppend) > 0 {
		path, appendErr := m.appendFn(out.PendingAppend)
		if appendErr != nil {
			// Recoverable: back to browsing, selection preserved.
			m.status = appendErr.Error()
			m.isErr = true
			return m, nil
		}
		m.outcome = session.Outcome{
			Done:    true,
			Message: fmt.Sprintf("appended %d entries to %s", len(out.PendingAppend), path),
		}
		m.done = true
		return m, tea.Quit
	}

	if out.Done {
		m.outcome = out
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	marked := len(m.state.Marked)
	b.WriteString(titleStyle.Render(fmt.Sprintf("bibseek: %d entries, %d marked", len(m.state.Entries), marked)))
	if len(m.state.Filters) > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (filtered: %s)", strings.Join(m.state.Filters, " > "))))
	}
	b.WriteString("\n\n")

	window := m.height - 6
	if window < 1 {
		window = 1
	}
	start := 0
	if m.state.Cursor >= window {
		start = m.state.Cursor - window + 1
	}
	end := start + window
	if end > len(m.state.Entries) {
		end = len(m.state.Entries)
	}

	for i := start; i < end; i++ {
		e := m.state.Entries[i]
		cursor := "  "
		if i == m.state.Cursor {
			cursor = cursorStyle.Render("> ")
		}
		mark := " "
		if m.state.Marked[e.Key] {
			mark = markStyle.Render("*")
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, entryLabel(e))
		if i == m.state.Cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeFilter:
		b.WriteString("filter: " + m.input + "▌")
	case modeKey:
		b.WriteString("key: " + m.input + "▌")
	default:
		if m.status != "" {
			if m.isErr {
				b.WriteString(errStyle.Render(m.status))
			} else {
				b.WriteString(dimStyle.Render(m.status))
			}
		} else {
			b.WriteString(dimStyle.Render("j/k move  space mark  / filter  g key  enter accept  a all  w append  u append-unmarked  q quit"))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// entryLabel is the one-line rendering of an entry: key, type, and the
// first title-ish field found in the raw text.
func entryLabel(e types.BibEntry) string {
	label := e.Key
	if e.Type != "" {
		label += dimStyle.Render(fmt.Sprintf(" [%s]", e.Type))
	}
	if title := firstField(e.RawText, "title"); title != "" {
		label += "  " + title
	}
	if e.Source != "" {
		label += dimStyle.Render("  (" + e.Source + ")")
	}
	return label
}

// firstField pulls a field value out of a raw record for display only.
func firstField(raw, field string) string {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if !strings.HasPrefix(lower, field) {
			continue
		}
		rest := trimmed[len(field):]
		rest = strings.TrimLeft(rest, " \t=")
		rest = strings.Trim(rest, "{}\",")
		rest = strings.TrimSuffix(rest, "},")
		if rest != "" {
			return rest
		}
	}
	return ""
}

// Run drives the session to completion and returns its outcome.
func Run(entries []types.BibEntry, appendFn AppendFunc) (session.Outcome, error) {
	p := tea.NewProgram(New(entries, appendFn))
	final, err := p.Run()
	if err != nil {
		return session.Outcome{}, fmt.Errorf("running selection UI: %w", err)
	}
	return final.(Model).Outcome(), nil
}
