// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const crossrefJSON = `{
  "message": {
    "items": [
      {
        "DOI": "10.1145/1234567.1234568",
        "type": "journal-article",
        "title": ["Knots and Links"],
        "container-title": ["J. Topology"],
        "author": [{"given": "Ana", "family": "Smith"}, {"given": "Ed", "family": "Chen"}],
        "issued": {"date-parts": [[2020, 5, 1]]}
      },
      {
        "DOI": "10.1000/no-author",
        "type": "report",
        "title": ["Anonymous Report"],
        "issued": {"date-parts": [[2019]]}
      },
      {
        "DOI": "10.1000/untitled",
        "type": "journal-article",
        "title": []
      }
    ]
  }
}`

func TestCrossrefFetchSynthesizesBibTeX(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("rows"); got != "20" {
			t.Errorf("rows = %q, want 20", got)
		}
		if got := r.URL.Query().Get("mailto"); got != "dev@example.org" {
			t.Errorf("mailto = %q", got)
		}
		w.Write([]byte(crossrefJSON))
	}))
	defer ts.Close()

	oldBase := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = oldBase }()

	cfg := testCfg()
	cfg.ContactEmail = "dev@example.org"

	body, err := crossrefFetch(ts.Client())(context.Background(), "knots", cfg)
	if err != nil {
		t.Fatalf("crossref fetch error = %v", err)
	}

	for _, want := range []string{
		"@article{Smith2020,",
		"author = {Smith, Ana and Chen, Ed}",
		"journal = {J. Topology}",
		"doi = {10.1145/1234567.1234568}",
		"@techreport{10-1000-no-author,",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\nbody:\n%s", want, body)
		}
	}

	// The untitled item is dropped, not rendered as an empty record.
	if strings.Contains(body, "untitled") {
		t.Errorf("untitled item should be skipped:\n%s", body)
	}
}

func TestCrossrefEntryType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"journal-article", "article"},
		{"book", "book"},
		{"proceedings-article", "inproceedings"},
		{"book-chapter", "incollection"},
		{"dissertation", "phdthesis"},
		{"report", "techreport"},
		{"posted-content", "misc"},
	}
	for _, tt := range tests {
		if got := crossrefEntryType(tt.in); got != tt.want {
			t.Errorf("crossrefEntryType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
