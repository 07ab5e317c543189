// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/bibseek/internal/httputil"
	"github.com/pdiddy/bibseek/internal/registry"
	"github.com/pdiddy/bibseek/pkg/types"
)

// mrlookupAPIBase is the AMS MRef lookup endpoint. Declared as a var so
// tests can substitute an httptest server.
var mrlookupAPIBase = "https://mathscinet.ams.org/mrlookup"

// preBlockRe captures the <pre> blocks an mrlookup result page wraps its
// BibTeX records in.
var preBlockRe = regexp.MustCompile(`(?s)<pre>(.*?)</pre>`)

// resolverURLRe matches a BibTeX URL field holding a DOI resolver link,
// e.g. URL = {http://dx.doi.org/10.1007/bf01234567}.
var resolverURLRe = regexp.MustCompile(`(?i)URL\s*=\s*\{https?://(?:dx\.)?doi\.org/([^}]+)\}`)

// mrlookupFetch queries the AMS MRef lookup service. The result page wraps
// each BibTeX record in a <pre> block and cites DOIs through resolver URLs,
// so the body is unwrapped and rewritten before extraction.
func mrlookupFetch(client *http.Client) registry.FetchFunc {
	return func(ctx context.Context, query string, cfg types.FetchConfig) (string, error) {
		params := url.Values{
			"ti":     {query},
			"format": {"bibtex"},
		}

		body, err := httputil.FetchBody(ctx, client, mrlookupAPIBase+"?"+params.Encode(), cfg.UserAgent)
		if err != nil {
			return "", fmt.Errorf("mrlookup request: %w", err)
		}
		return RewriteResolverURLs(unwrapPreBlocks(body)), nil
	}
}

// unwrapPreBlocks joins the contents of all <pre> blocks with one blank
// line between them. A body with no <pre> blocks is returned as-is, since
// mrlookup serves bare BibTeX in some modes.
func unwrapPreBlocks(body string) string {
	matches := preBlockRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return body
	}
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		if block := strings.TrimSpace(m[1]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// RewriteResolverURLs replaces every URL field holding a DOI resolver link
// with the canonical DOI field: URL = {https://doi.org/X} becomes DOI = {X}.
func RewriteResolverURLs(body string) string {
	return resolverURLRe.ReplaceAllString(body, "DOI = {$1}")
}
