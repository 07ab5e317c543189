// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibseek/internal/bibfile"
	"github.com/pdiddy/bibseek/internal/extract"
	"github.com/pdiddy/bibseek/internal/fetch"
	"github.com/pdiddy/bibseek/internal/history"
	"github.com/pdiddy/bibseek/internal/registry"
	"github.com/pdiddy/bibseek/internal/tui"
	"github.com/pdiddy/bibseek/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [query...]",
	Short: "Query bibliography backends and select records interactively",
	Long: `Fetch sends the query to the configured backends in parallel, merges the
returned BibTeX records with first-seen deduplication, and opens an
interactive session over the result. In the session, mark records and
append them to the bibliography file, or accept them to print on stdout.

The target bibliography file is resolved in order: the --out flag, the file
referenced by the document named with --doc (\addbibresource or
\bibliography), then writer.default_file from the config.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringSlice("backends", nil, "backends to query (default from config)")
	fetchCmd.Flags().Duration("timeout", 0, "per-backend timeout override (0 uses backend defaults)")
	fetchCmd.Flags().Int("max-results", 0, "maximum records requested per backend (default from config)")
	fetchCmd.Flags().Bool("all", false, "commit every merged entry without opening a session (prints to stdout unless --out or --doc names a target)")
	fetchCmd.Flags().String("out", "", "bibliography file to append to")
	fetchCmd.Flags().String("doc", "", "document to discover the bibliography file from")
	fetchCmd.Flags().String("save", "", "save the merged entries to a result file and exit")
	fetchCmd.Flags().String("load", "", "reopen a saved result file instead of querying")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := cmd.Context()

	loadPath, _ := cmd.Flags().GetString("load")
	if maxFlag, _ := cmd.Flags().GetInt("max-results"); maxFlag > 0 {
		cfg.Fetch.MaxResults = maxFlag
	}

	var (
		query    string
		backends []string
		entries  []types.BibEntry
		warnings []string
		res      extract.Result
		fetched  int
	)

	if loadPath != "" {
		rf, err := fetch.ReadResultFile(loadPath)
		if err != nil {
			return err
		}
		query = rf.Query
		backends = rf.Backends
		entries = rf.Entries
		fetched = rf.Summary.Fetched
		res = extract.Result{
			Entries:           rf.Entries,
			DuplicatesDropped: rf.Summary.DuplicatesDropped,
			ParseErrors:       rf.Summary.ParseErrors,
		}
		if len(entries) == 0 {
			return &extract.NoEntriesFoundError{Query: query}
		}
	} else {
		query = strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			var err error
			if query, err = promptQuery(); err != nil {
				return err
			}
		}
		override, _ := cmd.Flags().GetDuration("timeout")

		reg := registry.New()
		client := &http.Client{}
		if err := fetch.RegisterAll(reg, client, cfg.Fetch); err != nil {
			return err
		}

		backends, _ = cmd.Flags().GetStringSlice("backends")
		switch {
		case len(backends) == 1 && backends[0] == "all":
			backends = reg.IDs()
		case len(backends) == 0:
			backends = cfg.Fetch.DefaultBackends
		}

		out, err := fetch.Retrieve(ctx, query, backends, reg, override, cfg.Fetch, os.Stderr)
		if err != nil {
			return err
		}
		for _, w := range out.Warnings {
			warnings = append(warnings, w.String())
		}

		res, err = extract.Merge(query, out.Results)
		if err != nil {
			return err
		}
		entries = res.Entries
		fetched = len(out.Results)
		fmt.Fprintf(os.Stderr, "%d entries from %d backend(s) (%d duplicates dropped, %d parse errors)\n",
			len(entries), fetched, res.DuplicatesDropped, res.ParseErrors)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		rf := fetch.ResultFile{
			Query:    query,
			Backends: backends,
			Entries:  entries,
			Summary: fetch.ResultSummary{
				Fetched:           fetched,
				DuplicatesDropped: res.DuplicatesDropped,
				ParseErrors:       res.ParseErrors,
				Warnings:          warnings,
			},
		}
		if err := fetch.WriteResultFile(savePath, rf); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %d entries to %s\n", len(entries), savePath)
		return nil
	}

	store, retrievalID := openHistory(ctx, cfg.History, query, backends, fetched, res)
	if store != nil {
		defer store.Close()
	}

	target, explicit := resolveTarget(cmd, cfg.Writer)

	appendFn := func(sel []types.BibEntry) (string, error) {
		path, err := bibfile.Append(sel, target)
		if err != nil {
			return "", err
		}
		recordCommit(ctx, store, retrievalID, sel, path)
		return path, nil
	}

	if all, _ := cmd.Flags().GetBool("all"); all {
		// Scripting mode: append only when the user named a target;
		// otherwise the records go to stdout.
		if !explicit {
			printEntries(entries)
			recordCommit(ctx, store, retrievalID, entries, "")
			return nil
		}
		path, err := bibfile.Append(entries, target)
		if err != nil {
			return err
		}
		recordCommit(ctx, store, retrievalID, entries, path)
		fmt.Fprintf(os.Stderr, "appended %d entries to %s\n", len(entries), path)
		return nil
	}

	out, err := tui.Run(entries, appendFn)
	if err != nil {
		return err
	}

	switch {
	case out.Aborted:
		if out.Message != "" {
			fmt.Fprintln(os.Stderr, out.Message)
		}
		fmt.Fprintln(os.Stderr, "no entries committed")
	case len(out.Selected) > 0:
		printEntries(out.Selected)
		recordCommit(ctx, store, retrievalID, out.Selected, "")
	case out.Message != "":
		fmt.Fprintln(os.Stderr, out.Message)
	}
	return nil
}

// printEntries writes each record's raw text to stdout, blank-line separated.
func printEntries(entries []types.BibEntry) {
	for _, e := range entries {
		fmt.Println(strings.TrimRight(e.RawText, "\n"))
		fmt.Println()
	}
}

// promptQuery reads the search query from stdin when none was given on the
// command line.
func promptQuery() (string, error) {
	fmt.Fprint(os.Stderr, "Search query: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading query: %w", err)
	}
	query := strings.TrimSpace(line)
	if query == "" {
		return "", fmt.Errorf("provide a search query")
	}
	return query, nil
}

// resolveTarget picks the bibliography file: flag, then document discovery,
// then the configured default. explicit reports whether the user named a
// target (directly or through a document); --all only appends when they did.
func resolveTarget(cmd *cobra.Command, wc types.WriterConfig) (target string, explicit bool) {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return out, true
	}
	if doc, _ := cmd.Flags().GetString("doc"); doc != "" {
		if found := bibfile.Discover(doc); found != "" {
			return found, true
		}
	}
	return wc.DefaultFile, false
}

// openHistory opens the history store and logs the retrieval. History
// failures are advisory; the session proceeds without recording.
func openHistory(ctx context.Context, hc types.HistoryConfig, query string, backends []string, fetched int, res extract.Result) (*history.Store, int64) {
	if hc.Disabled {
		return nil, 0
	}
	store, err := history.Open(hc.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return nil, 0
	}
	id, err := store.RecordRetrieval(ctx, query, backends, fetched, len(res.Entries), res.DuplicatesDropped, res.ParseErrors)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording retrieval: %v\n", err)
		store.Close()
		return nil, 0
	}
	return store, id
}

func recordCommit(ctx context.Context, store *history.Store, retrievalID int64, entries []types.BibEntry, target string) {
	if store == nil {
		return
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if err := store.RecordCommit(ctx, retrievalID, keys, target); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording commit: %v\n", err)
	}
}
