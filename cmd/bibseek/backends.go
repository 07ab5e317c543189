// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibseek/internal/fetch"
	"github.com/pdiddy/bibseek/internal/registry"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the available bibliography backends",
	Long: `Backends prints every registered backend with its endpoint and default
timeout. Backends marked as default are queried when fetch is run without
a --backends flag.`,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	reg := registry.New()
	if err := fetch.RegisterAll(reg, &http.Client{}, cfg.Fetch); err != nil {
		return err
	}

	defaults := make(map[string]bool, len(cfg.Fetch.DefaultBackends))
	for _, id := range cfg.Fetch.DefaultBackends {
		defaults[id] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tENDPOINT\tTIMEOUT\tDEFAULT")
	for _, id := range reg.IDs() {
		d, err := reg.Resolve(id)
		if err != nil {
			return err
		}
		timeout := "-"
		if d.Timeout > 0 {
			timeout = d.Timeout.String()
		}
		def := ""
		if defaults[id] {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Endpoint, timeout, def)
	}
	return w.Flush()
}
