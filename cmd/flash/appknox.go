// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/appknox"
	"github.com/pdiddy/flash/internal/secrets"
)

var appknoxCmd = &cobra.Command{
	Use:   "appknox <file-id>",
	Short: "Restart the Appknox dynamic scan for a file",
	Long: `Appknox logs in to the Appknox API, shuts down the dynamic scan for the
given file, waits a few seconds and starts it again. The API response of the
restart is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runAppknox,
}

func init() {
	appknoxCmd.Flags().Bool("debug", false, "use the local development server "+appknox.DebugBaseURL)

	rootCmd.AddCommand(appknoxCmd)
}

func runAppknox(cmd *cobra.Command, args []string) error {
	fileID, err := strconv.Atoi(args[0])
	if err != nil || fileID <= 0 {
		return fmt.Errorf("file id must be a positive integer, got %q", args[0])
	}

	cfg := appConfig.Appknox
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.BaseURL = appknox.DebugBaseURL
	}
	cfg.Username = secretOr(cfg.Username, secrets.AppknoxUsername)
	cfg.Password = secretOr(cfg.Password, secrets.AppknoxPassword)

	client, err := appknox.NewClient(cfg, nil, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	body, err := client.RestartScan(cmd.Context(), fileID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), body)
	return nil
}
