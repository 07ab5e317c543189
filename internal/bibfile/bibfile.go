// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibfile appends committed entries to a bibliography store and
// discovers a default target. The store format is plain sequential
// records, each a self-contained raw-text block, blocks separated by at
// least one blank line. Append-only, no index or header.
package bibfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/bibseek/pkg/types"
)

// WriteError reports that the destination could not be opened or written.
// The caller must not lose the in-memory selection on this failure; the
// session returns to browsing so the user can retry with another target.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing bibliography %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Append writes each entry's raw text to the file at path, each record
// followed by a blank line, and creates the file if needed. Appends are
// not deduplicating: committing the same set twice produces two copies.
// Returns the target path on success.
func Append(entries []types.BibEntry, path string) (string, error) {
	if path == "" {
		return "", &WriteError{Path: path, Err: fmt.Errorf("no target path")}
	}
	if len(entries) == 0 {
		return path, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	defer f.Close()

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.TrimRight(e.RawText, "\n"))
		b.WriteString("\n\n")
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

// Patterns for bibliography references inside a TeX document.
var (
	bibliographyRe   = regexp.MustCompile(`\\bibliography\{([^}]+)\}`)
	addbibresourceRe = regexp.MustCompile(`\\addbibresource\{([^}]+)\}`)
)

// Discover resolves the default bibliography target for a document:
// a \bibliography or \addbibresource reference inside it, resolved
// relative to the document; else the document itself when it is a .bib
// file; else the empty string.
func Discover(docPath string) string {
	if docPath == "" {
		return ""
	}
	if strings.EqualFold(filepath.Ext(docPath), ".bib") {
		return docPath
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		return ""
	}
	content := string(data)

	if m := addbibresourceRe.FindStringSubmatch(content); m != nil {
		return resolveBibRef(docPath, m[1])
	}
	if m := bibliographyRe.FindStringSubmatch(content); m != nil {
		// \bibliography takes a comma-separated list; the first named
		// store is the append target.
		name := strings.TrimSpace(strings.SplitN(m[1], ",", 2)[0])
		return resolveBibRef(docPath, name)
	}
	return ""
}

func resolveBibRef(docPath, ref string) string {
	if !strings.HasSuffix(ref, ".bib") {
		ref += ".bib"
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(docPath), ref)
}
