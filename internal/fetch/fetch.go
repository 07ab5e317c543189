// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch queries web bibliography indices and returns their raw,
// normalized responses. Each backend is an adapter registered in the
// backend registry; the orchestrator fans out one bounded task per
// requested backend and isolates per-backend failures.
package fetch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdiddy/bibseek/internal/registry"
	"github.com/pdiddy/bibseek/pkg/types"
)

// Warning records one backend's non-fatal failure during a retrieval.
type Warning struct {
	Backend string
	Err     error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Backend, w.Err)
}

// Output holds the raw results of the backends that succeeded, in the
// requested backend order, plus a warning per backend that did not.
type Output struct {
	Results  []types.RawResult
	Warnings []Warning
}

// Retrieve fans the query out to the requested backends, each under its own
// timeout, and collects whatever succeeds. Timeout precedence per backend:
// the override argument, else the descriptor's default, else cfg.Timeout;
// zero at every level means no limit. One backend's failure or hang never
// aborts or delays completed results from the others.
//
// Fetches run in parallel but results are re-ordered to the requested
// backend order before return, so downstream first-seen deduplication is
// deterministic across runs. An empty result list is not an error at this
// layer; the caller escalates it.
func Retrieve(ctx context.Context, query string, ids []string, reg *registry.Registry, override time.Duration, cfg types.FetchConfig, w io.Writer) (Output, error) {
	if query == "" {
		return Output{}, fmt.Errorf("query is empty")
	}
	if len(ids) == 0 {
		return Output{}, fmt.Errorf("no backends requested")
	}

	type slot struct {
		raw types.RawResult
		ok  bool
	}

	slots := make([]slot, len(ids))
	var (
		mu       sync.Mutex
		warnings []Warning
		wg       sync.WaitGroup
	)

	// mu also serializes writes to w: backends fail concurrently and the
	// caller's writer is not assumed safe for concurrent use.
	warn := func(backend string, err error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, Warning{Backend: backend, Err: err})
		fmt.Fprintf(w, "warning: backend %s failed: %v\n", backend, err)
	}

	for i, id := range ids {
		d, err := reg.Resolve(id)
		if err != nil {
			warn(id, err)
			continue
		}

		timeout := override
		if timeout <= 0 {
			timeout = d.Timeout
		}
		if timeout <= 0 {
			timeout = cfg.Timeout
		}

		wg.Add(1)
		go func(i int, d registry.Descriptor, timeout time.Duration) {
			defer wg.Done()

			fctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			body, err := d.Fetch(fctx, query, cfg)
			if err != nil {
				warn(d.ID, err)
				return
			}
			slots[i] = slot{raw: types.RawResult{Backend: d.ID, Body: body}, ok: true}
		}(i, d, timeout)
	}

	wg.Wait()

	out := Output{Warnings: warnings}
	for _, s := range slots {
		if s.ok {
			out.Results = append(out.Results, s.raw)
		}
	}
	return out, nil
}
