// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibseek/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past retrievals and committed entries",
	Long: `History lists logged retrievals newest first: the query, the backends
asked, entry counts, and the citation keys committed from each retrieval.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of retrievals to show")
	historyCmd.Flags().Bool("clear", false, "delete all history")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	if clear, _ := cmd.Flags().GetBool("clear"); clear {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("history cleared")
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	retrievals, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(retrievals) == 0 {
		fmt.Println("no retrievals recorded")
		return nil
	}

	for _, r := range retrievals {
		fmt.Printf("%s  %q  [%s]  %d fetched, %d entries (%d dup, %d parse errors)\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Query,
			strings.Join(r.Backends, ","), r.Fetched, r.Entries, r.Duplicates, r.ParseErrors)
		for _, c := range r.Commits {
			fmt.Printf("    -> %s: %s\n", c.Target, strings.Join(c.Keys, ", "))
		}
	}
	return nil
}
