// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/convert"
	"github.com/pdiddy/flash/internal/ebook"
	"github.com/pdiddy/flash/internal/fileutil"
	"github.com/pdiddy/flash/internal/mail"
	"github.com/pdiddy/flash/pkg/types"
)

var kindleCmd = &cobra.Command{
	Use:   "kindle <source> <destination>",
	Short: "Convert EPUBs to MOBI and move Kindle books to a destination",
	Long: `Kindle converts every EPUB under source to MOBI and moves the EPUB
originals to the holding directory. It then moves every AZW3, MOBI and PDF
under source to destination, renamed to the title found after the "]_"
marker in the file name ("[Author]_Title (2019).pdf" becomes "Title.pdf").

Files without a marker are skipped. A failed conversion stops the run; a
failed move is reported and the run continues.`,
	Args: cobra.ExactArgs(2),
	RunE: runKindle,
}

func init() {
	kindleFlags(kindleCmd)
	rootCmd.AddCommand(kindleCmd)
}

func kindleFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "conversion backend: calibre or container (default from config, calibre)")
	cmd.Flags().String("image", "", "container image providing ebook-convert")
	cmd.Flags().String("holding-dir", "", "directory receiving converted EPUB originals (default /tmp)")
	cmd.Flags().Duration("convert-timeout", 0, "limit for a single conversion (0 = none)")
	cmd.Flags().String("mail-to", "", "also mail each delivered book to this Kindle address")
}

// kindleConfig applies explicitly set flags over the configured values.
func kindleConfig(cmd *cobra.Command) (types.KindleConfig, error) {
	cfg := appConfig.Kindle
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Backend = types.ConvertBackend(v)
	}
	if v, _ := cmd.Flags().GetString("image"); v != "" {
		cfg.Image = v
	}
	if v, _ := cmd.Flags().GetString("holding-dir"); v != "" {
		cfg.HoldingDir = v
	}
	if cmd.Flags().Changed("convert-timeout") {
		cfg.ConvertTimeout, _ = cmd.Flags().GetDuration("convert-timeout")
	}
	if v, _ := cmd.Flags().GetString("mail-to"); v != "" {
		cfg.MailTo = v
	}

	holding, err := fileutil.ExpandHome(cfg.HoldingDir)
	if err != nil {
		return cfg, err
	}
	cfg.HoldingDir = holding
	return cfg, nil
}

func runKindle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := kindleConfig(cmd)
	if err != nil {
		return err
	}

	conv, err := convert.New(cfg, convert.WithLog(out))
	if err != nil {
		return err
	}

	p := &ebook.Pipeline{
		Converter:      conv,
		HoldingDir:     cfg.HoldingDir,
		ConvertTimeout: cfg.ConvertTimeout,
		Out:            out,
	}

	if cfg.MailTo != "" {
		sender, err := mail.NewSender(mailConfig())
		if err != nil {
			return err
		}
		p.Mailer = &mail.KindleMailer{Sender: sender, To: cfg.MailTo}
	}

	store, runID := openRunLedger(ctx, cmd, "kindle", os.Stderr)
	if store != nil {
		defer store.Close()
		p.Recorder = store
		p.RunID = runID
	}

	result, err := p.Run(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed delivery", result.Failed)
	}
	return nil
}
