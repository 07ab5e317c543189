// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/bibseek/internal/registry"
	"github.com/pdiddy/bibseek/pkg/types"
)

// RegisterAll populates reg with every built-in backend adapter. Per-backend
// default timeouts come from cfg.BackendTimeouts (seconds); a backend absent
// from that map gets a zero timeout and falls back to cfg.Timeout at fetch
// time.
func RegisterAll(reg *registry.Registry, client *http.Client, cfg types.FetchConfig) error {
	descriptors := []registry.Descriptor{
		{ID: "dblp", Endpoint: dblpAPIBase, Fetch: dblpFetch(client)},
		{ID: "arxiv", Endpoint: arxivAPIBase, Fetch: arxivFetch(client)},
		{ID: "crossref", Endpoint: crossrefAPIBase, Fetch: crossrefFetch(client)},
		{ID: "zbmath", Endpoint: zbmathAPIBase, Fetch: zbmathFetch(client)},
		{ID: "mrlookup", Endpoint: mrlookupAPIBase, Fetch: mrlookupFetch(client)},
		{ID: "scholar", Endpoint: scholarAPIBase, Fetch: scholarFetch(client)},
	}

	for _, d := range descriptors {
		if secs, ok := cfg.BackendTimeouts[d.ID]; ok {
			d.Timeout = time.Duration(secs) * time.Second
		}
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("registering backend %s: %w", d.ID, err)
		}
	}
	return nil
}

// maxResults returns the per-backend record cap with the default applied.
func maxResults(cfg types.FetchConfig) int {
	if cfg.MaxResults > 0 {
		return cfg.MaxResults
	}
	return 20
}
