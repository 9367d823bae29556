// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/internal/ledger"
	"github.com/pdiddy/flash/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export the run ledger",
	Long: `History lists the file operations recorded in the run ledger, most
recent first. Use --held to list EPUB originals still sitting in a holding
directory, or --export to write the events as YAML or JSON instead of a
table.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("action", "", "filter by action: converted, held, moved, skipped, failed, mailed")
	historyCmd.Flags().String("run", "", "filter by run ID")
	historyCmd.Flags().Int("limit", 0, "maximum events (0 = 50, negative = all)")
	historyCmd.Flags().Bool("held", false, "list held originals that still exist")
	historyCmd.Flags().String("export", "", "write events as yaml or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := ledgerPath(cmd)
	if err != nil {
		return err
	}
	if path == "" {
		return failure.New(failure.ConfigInvalid, "history", "",
			fmt.Errorf("no ledger configured: set ledger.path or pass --ledger"))
	}

	store, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	action, _ := cmd.Flags().GetString("action")
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	filter := ledger.Filter{Action: types.Action(action), RunID: runID, Limit: limit}

	format, _ := cmd.Flags().GetString("export")
	switch format {
	case "":
	case "yaml":
		return store.ExportYAML(ctx, out, filter)
	case "json":
		return store.ExportJSON(ctx, out, filter)
	default:
		return fmt.Errorf("unsupported export format %q: use yaml or json", format)
	}

	var events []types.Event
	if held, _ := cmd.Flags().GetBool("held"); held {
		events, err = store.Held(ctx)
	} else {
		events, err = store.List(ctx, filter)
	}
	if err != nil {
		return err
	}

	renderEvents(out, events)
	return nil
}

func renderEvents(w io.Writer, events []types.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events recorded.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Run", "Action", "Source", "Target", "Detail"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")

	for _, ev := range events {
		table.Append([]string{
			ev.Time.Local().Format(time.DateTime),
			ev.RunID,
			string(ev.Action),
			ev.Source,
			ev.Target,
			ev.Detail,
		})
	}
	table.SetFooter([]string{"", "", "", "", "Events", fmt.Sprintf("%d", len(events))})
	table.Render()
}
