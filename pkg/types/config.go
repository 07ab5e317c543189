package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout applied when a backend has no
	// timeout of its own. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibseek/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the retrieval stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps the number of records requested per backend (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// DefaultBackends lists the backend identifiers queried when the user
	// does not choose a set (default: dblp, arxiv, crossref).
	DefaultBackends []string `json:"default_backends" yaml:"default_backends"`

	// BackendTimeouts maps a backend identifier to its default timeout in
	// seconds. A backend absent from the map uses HTTPConfig.Timeout.
	BackendTimeouts map[string]int `json:"backend_timeouts" yaml:"backend_timeouts"`

	// ContactEmail is sent to endpoints with a polite pool (crossref).
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`

	// ZbmathAPIKey is an optional zbMATH API key.
	ZbmathAPIKey string `json:"zbmath_api_key,omitempty" yaml:"zbmath_api_key,omitempty"`
}

// WriterConfig holds settings for the bibliography writer.
type WriterConfig struct {
	// DefaultFile is the bibliography file used when discovery finds nothing.
	DefaultFile string `json:"default_file" yaml:"default_file"`
}

// HistoryConfig holds settings for the retrieval history store.
type HistoryConfig struct {
	// Path is the sqlite database file (default "~/.config/bibseek/history.db").
	Path string `json:"path" yaml:"path"`

	// Disabled turns off history recording entirely.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Writer  WriterConfig  `json:"writer" yaml:"writer"`
	History HistoryConfig `json:"history" yaml:"history"`
}
