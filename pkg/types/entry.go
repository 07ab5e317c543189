// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bibseek pipeline.
package types

// EntryType is the best-effort record category taken from the @type token
// of a BibTeX record. Unrecognized types are preserved as-is.
type EntryType string

const (
	EntryArticle       EntryType = "article"
	EntryBook          EntryType = "book"
	EntryInProceedings EntryType = "inproceedings"
	EntryInCollection  EntryType = "incollection"
	EntryPhDThesis     EntryType = "phdthesis"
	EntryTechReport    EntryType = "techreport"
	EntryMisc          EntryType = "misc"
)

// BibEntry is a canonical bibliographic record extracted from one backend's
// raw response. Key is the citation key exactly as the source produced it
// and is unique within one extraction pass; the first occurrence across
// backends wins and later duplicates are dropped, not merged.
type BibEntry struct {
	// Key is the citation key (e.g. "Smith2020"). Never empty.
	Key string `json:"key" yaml:"key"`

	// Type is the best-effort record category (article, book, ...).
	Type EntryType `json:"type,omitempty" yaml:"type,omitempty"`

	// RawText is the complete record, untouched apart from backend-specific
	// normalization done before extraction.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Source identifies which backend produced this entry (e.g. "dblp").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// RawResult is one backend's raw response text for a single retrieval.
// Body may be empty or malformed; the extractor tolerates both.
type RawResult struct {
	// Backend is the identifier of the backend that produced this blob.
	Backend string `json:"backend" yaml:"backend"`

	// Body is the opaque response text, post-normalization.
	Body string `json:"body" yaml:"body"`
}
