// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/bibseek/pkg/types"
)

func testEntries() []types.BibEntry {
	return []types.BibEntry{
		{Key: "Smith2020", Type: types.EntryArticle, RawText: "@article{Smith2020,\n  title = {Knot Theory},\n}"},
		{Key: "Jones2019", Type: types.EntryBook, RawText: "@book{Jones2019,\n  title = {Braids},\n}"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func TestMoveAndMark(t *testing.T) {
	m := New(testEntries(), nil)
	m, _ = press(t, m, "j", " ")
	if !m.state.Marked["Jones2019"] {
		t.Errorf("Marked = %v, want Jones2019", m.state.Marked)
	}
}

func TestAcceptAllQuits(t *testing.T) {
	m := New(testEntries(), nil)
	m, cmd := press(t, m, "a")
	if cmd == nil {
		t.Fatal("accept-all should quit the program")
	}
	out := m.Outcome()
	if !out.Done || len(out.Selected) != 2 {
		t.Errorf("Outcome = %+v", out)
	}
}

func TestQuitAborts(t *testing.T) {
	m := New(testEntries(), nil)
	m, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("quit should end the program")
	}
	if out := m.Outcome(); !out.Aborted {
		t.Errorf("Outcome = %+v, want abort", out)
	}
}

func TestFilterInputMode(t *testing.T) {
	m := New(testEntries(), nil)
	m, _ = press(t, m, "/", "B", "r", "a", "i", "d", "s", "enter")
	if len(m.state.Entries) != 1 || m.state.Entries[0].Key != "Jones2019" {
		t.Errorf("Entries = %+v, want only Jones2019", m.state.Entries)
	}
	if m.mode != modeBrowse {
		t.Error("should return to browse mode after the filter applies")
	}
}

func TestFilterEscCancels(t *testing.T) {
	m := New(testEntries(), nil)
	m, _ = press(t, m, "/", "x", "esc")
	if len(m.state.Entries) != 2 || m.mode != modeBrowse {
		t.Errorf("esc should cancel input without filtering: %+v", m.state.Entries)
	}
}

func TestEmptyFilterInputCancels(t *testing.T) {
	m := New(testEntries(), nil)
	m, cmd := press(t, m, "/", "enter")
	if cmd != nil {
		t.Fatal("empty filter input must not end the program")
	}
	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse after cancelling", m.mode)
	}
	if len(m.state.Entries) != 2 || len(m.state.Filters) != 0 {
		t.Errorf("state changed on cancelled filter: entries %d, filters %v",
			len(m.state.Entries), m.state.Filters)
	}
}

func TestKeySelection(t *testing.T) {
	m := New(testEntries(), nil)
	m, cmd := press(t, m, "g", "J", "o", "n", "e", "s", "enter")
	if cmd == nil {
		t.Fatal("unique key prefix should finish the session")
	}
	out := m.Outcome()
	if len(out.Selected) != 1 || out.Selected[0].Key != "Jones2019" {
		t.Errorf("Outcome = %+v", out)
	}
}

func TestAppendSuccessQuitsWithMessage(t *testing.T) {
	appended := 0
	m := New(testEntries(), func(entries []types.BibEntry) (string, error) {
		appended = len(entries)
		return "/tmp/refs.bib", nil
	})
	m, cmd := press(t, m, " ", "w")
	if cmd == nil {
		t.Fatal("successful append should quit")
	}
	if appended != 1 {
		t.Errorf("appended = %d, want 1 (the marked entry)", appended)
	}
	out := m.Outcome()
	if !out.Done || !strings.Contains(out.Message, "/tmp/refs.bib") {
		t.Errorf("Outcome = %+v", out)
	}
}

func TestAppendFailureReturnsToBrowsing(t *testing.T) {
	m := New(testEntries(), func([]types.BibEntry) (string, error) {
		return "", fmt.Errorf("target declined")
	})
	m, cmd := press(t, m, " ", "w")
	if cmd != nil {
		t.Fatal("failed append must not quit")
	}
	if !m.state.Marked["Smith2020"] {
		t.Error("selection lost after failed append")
	}
	if m.status == "" || !m.isErr {
		t.Error("failed append must leave an advisory message")
	}
}

func TestViewShowsMarksAndCursor(t *testing.T) {
	m := New(testEntries(), nil)
	m, _ = press(t, m, " ")
	view := m.View()
	if !strings.Contains(view, "Smith2020") || !strings.Contains(view, "Jones2019") {
		t.Errorf("view missing entries:\n%s", view)
	}
	if !strings.Contains(view, "1 marked") {
		t.Errorf("view missing mark count:\n%s", view)
	}
	if !strings.Contains(view, "Knot Theory") {
		t.Errorf("view missing title field:\n%s", view)
	}
}
