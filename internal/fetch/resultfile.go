// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibseek/pkg/types"
)

// ResultFile is the on-disk representation of one retrieval: the query,
// the backends asked, and the extracted entries. A saved retrieval can be
// reloaded later to reopen a selection session without re-querying.
type ResultFile struct {
	Query    string           `yaml:"query"`
	Backends []string         `yaml:"backends"`
	Entries  []types.BibEntry `yaml:"entries"`
	Summary  ResultSummary    `yaml:"summary"`
}

// ResultSummary stores retrieval statistics and a timestamp.
type ResultSummary struct {
	Total             int       `yaml:"total"`
	// Fetched counts the backends that actually returned a result,
	// as opposed to the backends that were asked.
	Fetched           int       `yaml:"fetched"`
	DuplicatesDropped int       `yaml:"duplicates_dropped"`
	ParseErrors       int       `yaml:"parse_errors"`
	Warnings          []string  `yaml:"warnings,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteResultFile saves a retrieval and its extracted entries to a YAML file.
func WriteResultFile(path string, rf ResultFile) error {
	if rf.Summary.Timestamp.IsZero() {
		rf.Summary.Timestamp = time.Now()
	}
	rf.Summary.Total = len(rf.Entries)

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved retrieval from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
