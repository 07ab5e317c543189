// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibseek CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibseek/internal/secrets"
	"github.com/pdiddy/bibseek/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the bibseek CLI.
var rootCmd = &cobra.Command{
	Use:   "bibseek",
	Short: "Retrieve bibliographic records and commit them to a bibliography",
	Long: `bibseek queries web bibliography indices (dblp, arXiv, Crossref, zbMATH,
AMS MRef, Google Scholar) for BibTeX records matching a search, merges and
deduplicates the results, and opens an interactive session to browse, filter,
mark, and append the chosen records to a bibliography file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibseek.yaml or ~/.config/bibseek/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibseek")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibseek"))
		}
	}

	viper.SetDefault("fetch.timeout", "30s")
	viper.SetDefault("fetch.user_agent", "bibseek/0.1")
	viper.SetDefault("fetch.max_results", 20)
	viper.SetDefault("fetch.default_backends", []string{"dblp", "arxiv", "crossref"})
	viper.SetDefault("writer.default_file", "bibliography.bib")
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("history.path", filepath.Join(home, ".config", "bibseek", "history.db"))
	} else {
		viper.SetDefault("history.path", "bibseek-history.db")
	}

	viper.SetEnvPrefix("BIBSEEK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the typed configuration from viper and secrets.
func loadConfig() types.AppConfig {
	cfg := types.AppConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: viper.GetString("fetch.user_agent"),
			},
			MaxResults:      viper.GetInt("fetch.max_results"),
			DefaultBackends: viper.GetStringSlice("fetch.default_backends"),
			BackendTimeouts: map[string]int{},
			ContactEmail:    secretDefault("contact-email", viper.GetString("fetch.contact_email")),
			ZbmathAPIKey:    secretDefault("zbmath-api-key", viper.GetString("fetch.zbmath_api_key")),
		},
		Writer: types.WriterConfig{
			DefaultFile: viper.GetString("writer.default_file"),
		},
		History: types.HistoryConfig{
			Path:     viper.GetString("history.path"),
			Disabled: viper.GetBool("history.disabled"),
		},
	}
	for id, v := range viper.GetStringMapString("fetch.backend_timeouts") {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Fetch.BackendTimeouts[id] = secs
		}
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
