// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScholarBibLinks(t *testing.T) {
	page := `<a href="/scholar.bib?q=info:AAA:scholar.google.com/&amp;output=citation">Import</a>
<a href="/other">x</a>
<a href="/scholar.bib?q=info:BBB:scholar.google.com/&amp;output=citation">Import</a>`

	links := scholarBibLinks(page, 10)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if strings.Contains(links[0], "&amp;") {
		t.Errorf("entity escape not undone: %q", links[0])
	}

	if got := scholarBibLinks(page, 1); len(got) != 1 {
		t.Errorf("cap not applied: %d links", len(got))
	}
	if got := scholarBibLinks("<html>no results</html>", 10); len(got) != 0 {
		t.Errorf("want no links, got %v", got)
	}
}

func TestScholarFetchFollowsSecondaryLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/scholar.bib", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "info:AAA":
			fmt.Fprint(w, "@article{Smith2020,\n  title = {First}\n}\n")
		case "info:BBB":
			fmt.Fprint(w, "@article{Jones2019,\n  title = {Second}\n}\n")
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<a href="/scholar.bib?q=info:AAA">Import</a> <a href="/scholar.bib?q=info:BBB">Import</a>`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	oldBase := scholarAPIBase
	scholarAPIBase = ts.URL + "/scholar"
	defer func() { scholarAPIBase = oldBase }()

	body, err := scholarFetch(ts.Client())(context.Background(), "smith topology", testCfg())
	if err != nil {
		t.Fatalf("scholar fetch error = %v", err)
	}

	// Both secondary bodies, concatenated with a separating blank line.
	if !strings.Contains(body, "@article{Smith2020,") || !strings.Contains(body, "@article{Jones2019,") {
		t.Fatalf("missing secondary record bodies:\n%s", body)
	}
	if !strings.Contains(body, "}\n\n@article{Jones2019,") {
		t.Errorf("secondary bodies not blank-line separated:\n%s", body)
	}
}

func TestScholarFetchNoLinks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>Your search did not match any articles.</html>")
	}))
	defer ts.Close()

	oldBase := scholarAPIBase
	scholarAPIBase = ts.URL
	defer func() { scholarAPIBase = oldBase }()

	body, err := scholarFetch(ts.Client())(context.Background(), "qqq", testCfg())
	if err != nil {
		t.Fatalf("scholar fetch error = %v", err)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}
