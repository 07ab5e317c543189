// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry maps backend identifiers to their fetch adapters.
// The registry is populated once at startup and read-only afterwards,
// so concurrent reads during a retrieval are safe.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pdiddy/bibseek/pkg/types"
)

// FetchFunc builds the backend-specific request from query and executes it,
// returning the raw (normalized) response text. Implementations must honor
// ctx cancellation and discard partial data on deadline.
type FetchFunc func(ctx context.Context, query string, cfg types.FetchConfig) (string, error)

// Descriptor describes one registered backend.
type Descriptor struct {
	// ID is the backend identifier, unique within a registry.
	ID string

	// Endpoint is the backend's base URL, for display.
	Endpoint string

	// Fetch builds and executes the backend query.
	Fetch FetchFunc

	// Timeout bounds one fetch. Zero means no per-backend limit.
	Timeout time.Duration
}

// DuplicateBackendError reports a second registration under the same identifier.
type DuplicateBackendError struct {
	ID string
}

func (e *DuplicateBackendError) Error() string {
	return fmt.Sprintf("backend %q already registered", e.ID)
}

// UnknownBackendError reports a lookup of an unregistered identifier.
// The orchestrator treats this as a skippable failure, not a fatal one.
type UnknownBackendError struct {
	ID string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q", e.ID)
}

// Registry holds the backend descriptors for one process run.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{backends: make(map[string]Descriptor)}
}

// Register adds a backend descriptor. It fails with DuplicateBackendError
// if the identifier is already present.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("backend identifier is empty")
	}
	if d.Fetch == nil {
		return fmt.Errorf("backend %q has no fetch function", d.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[d.ID]; ok {
		return &DuplicateBackendError{ID: d.ID}
	}
	r.backends[d.ID] = d
	return nil
}

// Resolve returns the descriptor for id, or UnknownBackendError.
func (r *Registry) Resolve(id string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.backends[id]
	if !ok {
		return Descriptor{}, &UnknownBackendError{ID: id}
	}
	return d, nil
}

// IDs returns all registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.backends))
	for id := range r.backends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
