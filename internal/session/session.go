// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session implements the interactive selection state machine over
// an extracted entry set. The machine is a pure transition function from
// (State, Command) to a new State plus an Outcome; side effects (writing a
// bibliography file, re-issuing a query) belong to the caller driving it.
// One command is applied per user input event; no two commands run
// concurrently.
package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/bibseek/pkg/types"
)

// NoMatchesError reports that the very first filter applied to a fresh
// retrieval matched nothing. Later zero-match filters are a no-op with a
// message instead.
type NoMatchesError struct {
	Pattern string
}

func (e *NoMatchesError) Error() string {
	return fmt.Sprintf("no entries match %q", e.Pattern)
}

// CommandKind enumerates the session commands.
type CommandKind int

const (
	// CmdNext moves the cursor forward, wrapping at the end.
	CmdNext CommandKind = iota
	// CmdPrev moves the cursor backward, wrapping at the start.
	CmdPrev
	// CmdToggleMark toggles the mark on the entry at the cursor.
	CmdToggleMark
	// CmdFilter narrows the entry set to records matching Arg (a regexp).
	CmdFilter
	// CmdAcceptAll finishes with every remaining entry selected, marks ignored.
	CmdAcceptAll
	// CmdAcceptMarked finishes with the marked entries selected; with no
	// marks it selects exactly the entry at the cursor.
	CmdAcceptMarked
	// CmdAppendMarked requests a writer append of the marked entries (or
	// the cursor entry when none are marked).
	CmdAppendMarked
	// CmdAppendUnmarked requests a writer append of the unmarked complement.
	CmdAppendUnmarked
	// CmdQuit finishes with nothing selected.
	CmdQuit
	// CmdSelectKey finishes with the single entry whose key matches Arg
	// (exact, or unique prefix).
	CmdSelectKey
)

// Command is one user input event.
type Command struct {
	Kind CommandKind
	Arg  string
}

// State is the selection state owned by one session. Values are copied by
// Apply; maps and slices are never mutated in place, so a failed transition
// leaves the previous state intact.
type State struct {
	// Entries is the current, possibly narrowed, entry set in first-seen order.
	Entries []types.BibEntry

	// Marked is the set of marked citation keys, always a subset of the
	// keys present in Entries.
	Marked map[string]bool

	// Cursor indexes Entries.
	Cursor int

	// Filters is the ordered history of filters applied so far.
	Filters []string
}

// Outcome reports what a transition produced beyond the next state.
type Outcome struct {
	// Done is true when the session reached its terminal state.
	Done bool

	// Aborted is true when the session ended without a selection.
	Aborted bool

	// Selected holds the committed entries when Done and not Aborted.
	Selected []types.BibEntry

	// PendingAppend holds entries the caller should hand to the writer.
	// The session stays alive until the caller reports the write outcome.
	PendingAppend []types.BibEntry

	// Message is a user-visible status line (no-op filters, ambiguity).
	Message string
}

// New returns the initial browsing state over a fresh entry set: cursor at
// zero, nothing marked, no filters applied.
func New(entries []types.BibEntry) State {
	return State{
		Entries: entries,
		Marked:  make(map[string]bool),
	}
}

// Apply executes one command. The returned State is always valid: on a
// failed or no-op transition it equals the input state.
func Apply(s State, cmd Command) (State, Outcome, error) {
	switch cmd.Kind {
	case CmdNext:
		return moveCursor(s, 1), Outcome{}, nil
	case CmdPrev:
		return moveCursor(s, -1), Outcome{}, nil
	case CmdToggleMark:
		return toggleMark(s), Outcome{}, nil
	case CmdFilter:
		return applyFilter(s, cmd.Arg)
	case CmdAcceptAll:
		return s, Outcome{Done: true, Selected: s.Entries}, nil
	case CmdAcceptMarked:
		return s, Outcome{Done: true, Selected: selection(s)}, nil
	case CmdAppendMarked:
		return s, Outcome{PendingAppend: selection(s)}, nil
	case CmdAppendUnmarked:
		return s, Outcome{PendingAppend: unmarked(s)}, nil
	case CmdQuit:
		return s, Outcome{Done: true, Aborted: true}, nil
	case CmdSelectKey:
		return selectByKey(s, cmd.Arg)
	default:
		return s, Outcome{}, fmt.Errorf("unknown command %d", cmd.Kind)
	}
}

// moveCursor wraps at both ends: forward from the last entry lands on the
// first, backward from the first lands on the last.
func moveCursor(s State, delta int) State {
	n := len(s.Entries)
	if n == 0 {
		return s
	}
	s.Cursor = ((s.Cursor+delta)%n + n) % n
	return s
}

func toggleMark(s State) State {
	if len(s.Entries) == 0 {
		return s
	}
	key := s.Entries[s.Cursor].Key
	marked := cloneMarks(s.Marked)
	if marked[key] {
		delete(marked, key)
	} else {
		marked[key] = true
	}
	s.Marked = marked
	return s
}

// applyFilter narrows Entries to the sub-sequence whose raw text matches
// pattern. Narrowing is monotonic: a session cannot un-filter. Marks
// outside the narrowed set are pruned and the cursor resets to zero. A
// zero-match filter is a no-op with a message, except as the first filter
// on a fresh retrieval, where it is NoMatchesError.
func applyFilter(s State, pattern string) (State, Outcome, error) {
	// An empty pattern matches everything; narrowing nothing and recording
	// it in the filter history would only pollute the breadcrumb.
	if pattern == "" {
		return s, Outcome{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return s, Outcome{Message: fmt.Sprintf("bad filter: %v", err)}, nil
	}

	var narrowed []types.BibEntry
	for _, e := range s.Entries {
		if re.MatchString(e.RawText) {
			narrowed = append(narrowed, e)
		}
	}

	if len(narrowed) == 0 {
		if len(s.Filters) == 0 {
			return s, Outcome{}, &NoMatchesError{Pattern: pattern}
		}
		return s, Outcome{Message: fmt.Sprintf("no entries match %q, keeping %d", pattern, len(s.Entries))}, nil
	}

	marked := make(map[string]bool)
	for _, e := range narrowed {
		if s.Marked[e.Key] {
			marked[e.Key] = true
		}
	}

	s.Entries = narrowed
	s.Marked = marked
	s.Cursor = 0
	s.Filters = append(append([]string(nil), s.Filters...), pattern)
	return s, Outcome{Message: fmt.Sprintf("%d entries match %q", len(narrowed), pattern)}, nil
}

// selection returns the marked entries in set order, or exactly the cursor
// entry when nothing is marked. The implicit cursor mark is a convenience
// default for "act on the current entry" and is never persisted.
func selection(s State) []types.BibEntry {
	if len(s.Entries) == 0 {
		return nil
	}
	if len(s.Marked) == 0 {
		return []types.BibEntry{s.Entries[s.Cursor]}
	}
	var sel []types.BibEntry
	for _, e := range s.Entries {
		if s.Marked[e.Key] {
			sel = append(sel, e)
		}
	}
	return sel
}

// unmarked returns the complement of the marked set in set order.
func unmarked(s State) []types.BibEntry {
	var sel []types.BibEntry
	for _, e := range s.Entries {
		if !s.Marked[e.Key] {
			sel = append(sel, e)
		}
	}
	return sel
}

// selectByKey finishes with a single entry when arg names exactly one key,
// by exact match first, then unique prefix.
func selectByKey(s State, arg string) (State, Outcome, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return s, Outcome{Message: "no key given"}, nil
	}

	var matches []types.BibEntry
	for _, e := range s.Entries {
		if e.Key == arg {
			return s, Outcome{Done: true, Selected: []types.BibEntry{e}}, nil
		}
		if strings.HasPrefix(e.Key, arg) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 1:
		return s, Outcome{Done: true, Selected: matches[:1]}, nil
	case 0:
		return s, Outcome{Message: fmt.Sprintf("no entry with key %q", arg)}, nil
	default:
		return s, Outcome{Message: fmt.Sprintf("%d keys start with %q", len(matches), arg)}, nil
	}
}

func cloneMarks(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
