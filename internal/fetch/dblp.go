// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/bibseek/internal/httputil"
	"github.com/pdiddy/bibseek/internal/registry"
	"github.com/pdiddy/bibseek/pkg/types"
)

// dblpAPIBase is the dblp publication search endpoint. Declared as a var
// so tests can substitute an httptest server.
var dblpAPIBase = "https://dblp.org/search/publ/api"

// dblpFetch queries dblp, which serves BibTeX directly via format=bib.
// No normalization pass is needed.
func dblpFetch(client *http.Client) registry.FetchFunc {
	return func(ctx context.Context, query string, cfg types.FetchConfig) (string, error) {
		params := url.Values{
			"q":      {query},
			"format": {"bib"},
			"h":      {fmt.Sprintf("%d", maxResults(cfg))},
		}
		body, err := httputil.FetchBody(ctx, client, dblpAPIBase+"?"+params.Encode(), cfg.UserAgent)
		if err != nil {
			return "", fmt.Errorf("dblp request: %w", err)
		}
		return body, nil
	}
}
