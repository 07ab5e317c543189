// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses raw backend responses into canonical BibEntry
// records. The scanner is tolerant and format-agnostic at the blob level:
// a malformed record is skipped and counted, never aborting the rest of
// the blob, and page chrome around records is ignored.
package extract

import (
	"strings"
	"unicode"

	"github.com/pdiddy/bibseek/pkg/types"
)

// NoEntriesFoundError reports that a merged extraction pass produced no
// entries at all. Callers surface this to the user as a terminal condition
// for the current query, not a crash.
type NoEntriesFoundError struct {
	Query string
}

func (e *NoEntriesFoundError) Error() string {
	if e.Query == "" {
		return "no bibliography entries found"
	}
	return "no bibliography entries found for " + e.Query
}

// Result holds the merged entry set and extraction statistics.
type Result struct {
	// Entries is the merged set, key-unique, in first-seen order.
	Entries []types.BibEntry

	// DuplicatesDropped counts later records whose key was already seen.
	// The first occurrence wins; duplicates are dropped, not merged.
	DuplicatesDropped int

	// ParseErrors counts malformed records skipped during scanning.
	ParseErrors int
}

// Merge scans every raw result in order and merges the extracted records
// into one key-unique entry set. It fails with NoEntriesFoundError only
// when the merged set is empty.
func Merge(query string, raws []types.RawResult) (Result, error) {
	var res Result
	seen := make(map[string]bool)

	for _, raw := range raws {
		entries, parseErrors := scanEntries(raw.Backend, raw.Body)
		res.ParseErrors += parseErrors
		for _, e := range entries {
			if seen[e.Key] {
				res.DuplicatesDropped++
				continue
			}
			seen[e.Key] = true
			res.Entries = append(res.Entries, e)
		}
	}

	if len(res.Entries) == 0 {
		return res, &NoEntriesFoundError{Query: query}
	}
	return res, nil
}

// Directives that introduce non-record blocks in a BibTeX stream.
var nonRecordDirectives = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// scanEntries extracts records from one blob. It returns the records in
// source order plus the count of malformed records skipped.
func scanEntries(backend, body string) ([]types.BibEntry, int) {
	var (
		entries     []types.BibEntry
		parseErrors int
	)

	pos := 0
	for {
		at := strings.IndexByte(body[pos:], '@')
		if at < 0 {
			break
		}
		start := pos + at

		entryType, key, end, ok := scanRecord(body, start)
		if !ok {
			// Malformed record: skip the '@' and keep scanning.
			parseErrors++
			pos = start + 1
			continue
		}
		pos = end

		if nonRecordDirectives[strings.ToLower(entryType)] {
			continue
		}
		if key == "" {
			parseErrors++
			continue
		}

		entries = append(entries, types.BibEntry{
			Key:     key,
			Type:    types.EntryType(strings.ToLower(entryType)),
			RawText: body[start:end],
			Source:  backend,
		})
	}

	return entries, parseErrors
}

// scanRecord parses one record starting at the '@' at body[start]. It
// returns the entry type token, the citation key, and the index one past
// the record's closing brace. ok is false when the record is malformed
// (no type token, no opening brace, or unbalanced braces).
func scanRecord(body string, start int) (entryType, key string, end int, ok bool) {
	i := start + 1

	// Type token: letters only (article, book, comment, ...).
	typeStart := i
	for i < len(body) && (unicode.IsLetter(rune(body[i])) || unicode.IsDigit(rune(body[i]))) {
		i++
	}
	entryType = body[typeStart:i]
	if entryType == "" {
		return "", "", 0, false
	}

	// Optional whitespace, then the opening brace.
	for i < len(body) && unicode.IsSpace(rune(body[i])) {
		i++
	}
	if i >= len(body) || body[i] != '{' {
		return "", "", 0, false
	}
	braceStart := i

	// Citation key: up to the first comma or the record's closing brace.
	keyStart := i + 1
	keyEnd := keyStart
	for keyEnd < len(body) && body[keyEnd] != ',' && body[keyEnd] != '}' && body[keyEnd] != '\n' {
		keyEnd++
	}
	key = strings.TrimSpace(body[keyStart:keyEnd])

	// Balanced-brace walk over the record body. BibTeX field values brace
	// nested groups, so the record ends where the depth returns to zero.
	depth := 0
	for i = braceStart; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return entryType, key, i + 1, true
			}
		}
	}

	// Ran off the blob without closing: malformed.
	return "", "", 0, false
}
