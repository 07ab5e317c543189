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

// zbmathAPIBase is the zbMATH BibTeX output endpoint. Declared as a var
// so tests can substitute an httptest server.
var zbmathAPIBase = "https://zbmath.org/bibtexoutput/"

// zbmathFetch queries zbMATH, which serves BibTeX records directly.
func zbmathFetch(client *http.Client) registry.FetchFunc {
	return func(ctx context.Context, query string, cfg types.FetchConfig) (string, error) {
		params := url.Values{
			"q":     {query},
			"count": {fmt.Sprintf("%d", maxResults(cfg))},
		}
		if cfg.ZbmathAPIKey != "" {
			params.Set("apikey", cfg.ZbmathAPIKey)
		}

		body, err := httputil.FetchBody(ctx, client, zbmathAPIBase+"?"+params.Encode(), cfg.UserAgent)
		if err != nil {
			return "", fmt.Errorf("zbMATH request: %w", err)
		}
		return body, nil
	}
}
