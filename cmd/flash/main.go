// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the flash CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Set

// secretOr returns explicit when set, else the secret for key from
// .secrets/ or its FLASH_ environment variable.
func secretOr(explicit, key string) string {
	return loadedSecrets.Or(explicit, key, os.Getenv)
}

// rootCmd is the base command for the flash CLI.
var rootCmd = &cobra.Command{
	Use:   "flash",
	Short: "Personal automation: Kindle books, mail, weather data, photos",
	Long: `flash bundles small personal automation procedures behind one CLI.

The main procedure, kindle, converts EPUB books to MOBI, parks the originals
in a holding directory and moves every Kindle-readable file to a destination
under a clean title. The other subcommands send mail, download IMD weather
station data, restart Appknox dynamic scans and file camera uploads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return failure.New(failure.ConfigInvalid, "config", configFileUsed, configErr)
		}
		s, err := secrets.Load(".secrets/", os.Stderr)
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./flash.yaml or ~/.config/flash/flash.yaml)")
	rootCmd.PersistentFlags().String("ledger", "", "run ledger database (overrides ledger.path)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
