// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/bibseek/internal/httputil"
	"github.com/pdiddy/bibseek/internal/registry"
	"github.com/pdiddy/bibseek/pkg/types"
)

// crossrefAPIBase is the CrossRef works search endpoint. Declared as a var
// so tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// crossrefFetch queries the CrossRef works API and synthesizes one BibTeX
// record per item. The mailto parameter requests polite-pool rate limits.
func crossrefFetch(client *http.Client) registry.FetchFunc {
	return func(ctx context.Context, query string, cfg types.FetchConfig) (string, error) {
		params := url.Values{
			"query": {query},
			"rows":  {fmt.Sprintf("%d", maxResults(cfg))},
		}
		if cfg.ContactEmail != "" {
			params.Set("mailto", cfg.ContactEmail)
		}

		body, err := httputil.FetchBody(ctx, client, crossrefAPIBase+"?"+params.Encode(), cfg.UserAgent)
		if err != nil {
			return "", fmt.Errorf("CrossRef request: %w", err)
		}

		var cr crossrefResponse
		if err := json.Unmarshal([]byte(body), &cr); err != nil {
			return "", fmt.Errorf("parsing CrossRef response: %w", err)
		}

		var records []string
		for _, item := range cr.Message.Items {
			if rec := crossrefBibTeX(item); rec != "" {
				records = append(records, rec)
			}
		}
		return strings.Join(records, "\n\n"), nil
	}
}

// crossrefBibTeX renders one works item as a BibTeX record. The citation
// key is first-author-family plus year, falling back to a DOI slug.
func crossrefBibTeX(item crossrefItem) string {
	title := ""
	if len(item.Title) > 0 {
		title = strings.TrimSpace(item.Title[0])
	}
	if title == "" {
		return ""
	}

	year := 0
	if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		year = item.Issued.DateParts[0][0]
	}

	key := crossrefKey(item, year)
	if key == "" {
		return ""
	}

	var authors []string
	for _, a := range item.Author {
		switch {
		case a.Family != "" && a.Given != "":
			authors = append(authors, a.Family+", "+a.Given)
		case a.Family != "":
			authors = append(authors, a.Family)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", crossrefEntryType(item.Type), key)
	if len(authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(authors, " and "))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", title)
	if len(item.ContainerTitle) > 0 && item.ContainerTitle[0] != "" {
		fmt.Fprintf(&b, "  journal = {%s},\n", item.ContainerTitle[0])
	}
	if year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", year)
	}
	fmt.Fprintf(&b, "  doi = {%s}\n", item.DOI)
	b.WriteString("}")
	return b.String()
}

func crossrefKey(item crossrefItem, year int) string {
	if len(item.Author) > 0 && item.Author[0].Family != "" {
		key := strings.ReplaceAll(item.Author[0].Family, " ", "")
		if year > 0 {
			key = fmt.Sprintf("%s%d", key, year)
		}
		return key
	}
	if item.DOI != "" {
		return strings.NewReplacer("/", "-", ".", "-").Replace(item.DOI)
	}
	return ""
}

// crossrefEntryType maps CrossRef work types onto BibTeX entry types.
func crossrefEntryType(t string) string {
	switch t {
	case "journal-article":
		return "article"
	case "book", "monograph", "edited-book":
		return "book"
	case "proceedings-article":
		return "inproceedings"
	case "book-chapter":
		return "incollection"
	case "dissertation":
		return "phdthesis"
	case "report":
		return "techreport"
	default:
		return "misc"
	}
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefItem `json:"items"`
}

type crossrefItem struct {
	DOI            string          `json:"DOI"`
	Type           string          `json:"type"`
	Title          []string        `json:"title"`
	ContainerTitle []string        `json:"container-title"`
	Author         []crossrefName  `json:"author"`
	Issued         crossrefIssued  `json:"issued"`
}

type crossrefName struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefIssued struct {
	DateParts [][]int `json:"date-parts"`
}
