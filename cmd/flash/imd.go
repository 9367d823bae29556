// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/imd"
	"github.com/pdiddy/flash/internal/secrets"
	"github.com/pdiddy/flash/pkg/types"
)

var imdCmd = &cobra.Command{
	Use:   "imd",
	Short: "Download IMD automatic weather station data as CSV",
	Long: `Imd logs in to the IMD AWS portal and downloads one CSV per data type and
state into the data directory as <type>_<state>.csv. Dates use dd/mm/yyyy
and default to today through 31 days from now. States that fail are
reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: runIMD,
}

func init() {
	imdCmd.Flags().String("from", "", "first date, dd/mm/yyyy (default today)")
	imdCmd.Flags().String("to", "", "last date, dd/mm/yyyy (default today + 31 days)")
	imdCmd.Flags().StringSlice("types", nil, "data types to fetch (default AWS)")
	imdCmd.Flags().Int("first-state", 0, "first state code (default 1)")
	imdCmd.Flags().Int("last-state", 0, "last state code (default 28)")
	imdCmd.Flags().String("data-dir", "", "output directory (default data)")
	imdCmd.Flags().Duration("interval", 0, "minimum spacing between requests (default 1s)")

	rootCmd.AddCommand(imdCmd)
}

func imdConfig(cmd *cobra.Command) types.IMDConfig {
	cfg := appConfig.IMD
	if v, _ := cmd.Flags().GetStringSlice("types"); len(v) > 0 {
		cfg.DataTypes = v
	}
	if v, _ := cmd.Flags().GetInt("first-state"); v > 0 {
		cfg.FirstState = v
	}
	if v, _ := cmd.Flags().GetInt("last-state"); v > 0 {
		cfg.LastState = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if cmd.Flags().Changed("interval") {
		cfg.Interval, _ = cmd.Flags().GetDuration("interval")
	}
	cfg.Username = secretOr(cfg.Username, secrets.IMDUsername)
	cfg.Password = secretOr(cfg.Password, secrets.IMDPassword)
	return cfg
}

func runIMD(cmd *cobra.Command, args []string) error {
	cfg := imdConfig(cmd)

	from, to := imd.DefaultRange(time.Now())
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		from = v
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		to = v
	}

	client, err := imd.NewClient(cfg, nil, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	result, err := client.Download(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d state(s) failed download", result.Failed)
	}
	return nil
}
