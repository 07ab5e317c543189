// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/bibseek/internal/httputil"
	"github.com/pdiddy/bibseek/internal/registry"
	"github.com/pdiddy/bibseek/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivFetch queries the arXiv Atom API and synthesizes one BibTeX record
// per feed entry, since arXiv has no bibliography-record output format.
func arxivFetch(client *http.Client) registry.FetchFunc {
	return func(ctx context.Context, query string, cfg types.FetchConfig) (string, error) {
		terms := strings.Fields(query)
		if len(terms) == 0 {
			return "", fmt.Errorf("empty arXiv query")
		}

		params := url.Values{
			"search_query": {"all:" + strings.Join(terms, "+")},
			"start":        {"0"},
			"max_results":  {fmt.Sprintf("%d", maxResults(cfg))},
			"sortBy":       {"relevance"},
			"sortOrder":    {"descending"},
		}

		body, err := httputil.FetchBody(ctx, client, arxivAPIBase+"?"+params.Encode(), cfg.UserAgent)
		if err != nil {
			return "", fmt.Errorf("arXiv request: %w", err)
		}

		var feed arxivFeed
		if err := xml.Unmarshal([]byte(body), &feed); err != nil {
			return "", fmt.Errorf("parsing arXiv response: %w", err)
		}

		var records []string
		for _, entry := range feed.Entries {
			id := extractArxivID(entry.ID)
			if id == "" {
				continue
			}
			records = append(records, arxivBibTeX(id, entry))
		}
		return strings.Join(records, "\n\n"), nil
	}
}

// arxivBibTeX renders one feed entry as a BibTeX @misc record keyed by the
// arXiv identifier.
func arxivBibTeX(id string, entry arxivEntry) string {
	var authors []string
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	year := ""
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		year = strconv.Itoa(t.Year())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@misc{%s,\n", id)
	if len(authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(authors, " and "))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", strings.TrimSpace(entry.Title))
	if year != "" {
		fmt.Fprintf(&b, "  year = {%s},\n", year)
	}
	fmt.Fprintf(&b, "  eprint = {%s},\n", id)
	fmt.Fprintf(&b, "  archiveprefix = {arXiv},\n")
	fmt.Fprintf(&b, "  url = {https://arxiv.org/abs/%s}\n", id)
	b.WriteString("}")
	return b.String()
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
