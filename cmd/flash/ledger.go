// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/fileutil"
	"github.com/pdiddy/flash/internal/ledger"
)

// ledgerPath returns the --ledger flag when given, else ledger.path with
// "~" expanded. Empty means the ledger is off.
func ledgerPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("ledger")
	if path == "" {
		path = appConfig.Ledger.Path
	}
	if path == "" {
		return "", nil
	}
	return fileutil.ExpandHome(path)
}

// openRunLedger opens the ledger and registers a run for command. A ledger
// that cannot be opened is reported on warn and the run goes ahead without
// it, so the returned store may be nil.
func openRunLedger(ctx context.Context, cmd *cobra.Command, command string, warn io.Writer) (*ledger.Store, string) {
	path, err := ledgerPath(cmd)
	if err != nil {
		fmt.Fprintf(warn, "warning: ledger: %v\n", err)
		return nil, ""
	}
	if path == "" {
		return nil, ""
	}

	store, err := ledger.Open(path)
	if err != nil {
		fmt.Fprintf(warn, "warning: ledger: %v\n", err)
		return nil, ""
	}
	runID := ledger.NewRunID(time.Now())
	if err := store.BeginRun(ctx, runID, command); err != nil {
		fmt.Fprintf(warn, "warning: ledger: %v\n", err)
		store.Close()
		return nil, ""
	}
	return store, runID
}
