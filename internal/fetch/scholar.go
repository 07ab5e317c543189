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

// scholarAPIBase is the Google Scholar results endpoint. Declared as a var
// so tests can substitute an httptest server.
var scholarAPIBase = "https://scholar.google.com/scholar"

// scholarBibLinkRe matches the per-result BibTeX export links embedded in
// a Scholar results page.
var scholarBibLinkRe = regexp.MustCompile(`href="(/scholar\.bib\?[^"]+)"`)

// scholarFetch queries Google Scholar. The initial response is an HTML
// results page whose per-record BibTeX bodies live behind secondary export
// links; each link is re-fetched and the bodies are concatenated with a
// separating blank line, without which two records could merge at a
// line-based record boundary.
func scholarFetch(client *http.Client) registry.FetchFunc {
	return func(ctx context.Context, query string, cfg types.FetchConfig) (string, error) {
		params := url.Values{
			"q":   {query},
			"num": {fmt.Sprintf("%d", maxResults(cfg))},
		}

		page, err := httputil.FetchBody(ctx, client, scholarAPIBase+"?"+params.Encode(), cfg.UserAgent)
		if err != nil {
			return "", fmt.Errorf("scholar request: %w", err)
		}

		links := scholarBibLinks(page, maxResults(cfg))
		if len(links) == 0 {
			return "", nil
		}

		base, err := url.Parse(scholarAPIBase)
		if err != nil {
			return "", fmt.Errorf("parsing scholar base URL: %w", err)
		}

		var bodies []string
		for _, link := range links {
			ref, err := url.Parse(link)
			if err != nil {
				continue
			}
			body, err := httputil.FetchBody(ctx, client, base.ResolveReference(ref).String(), cfg.UserAgent)
			if err != nil {
				// One unfetchable record degrades the blob, not the backend.
				continue
			}
			if body = strings.TrimSpace(body); body != "" {
				bodies = append(bodies, body)
			}
		}
		return strings.Join(bodies, "\n\n"), nil
	}
}

// scholarBibLinks extracts up to max BibTeX export links from a results
// page, with HTML entity escaping undone.
func scholarBibLinks(page string, max int) []string {
	var links []string
	for _, m := range scholarBibLinkRe.FindAllStringSubmatch(page, -1) {
		links = append(links, strings.ReplaceAll(m[1], "&amp;", "&"))
		if len(links) >= max {
			break
		}
	}
	return links
}
