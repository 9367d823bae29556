// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ebook implements the Kindle batch pipeline: convert EPUB books to
// MOBI, stage the originals in a holding directory, then deliver every
// Kindle-readable file to a destination under a title derived from its name.
package ebook

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pdiddy/flash/internal/convert"
	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/internal/fileutil"
	"github.com/pdiddy/flash/pkg/types"
)

const (
	extEPUB = ".epub"
	extMOBI = ".mobi"
	extAZW3 = ".azw3"
	extPDF  = ".pdf"
)

// deliverExts lists the formats moved to the destination, in processing order.
var deliverExts = []string{extAZW3, extMOBI, extPDF}

// Recorder receives one event per file operation.
type Recorder interface {
	Record(ctx context.Context, ev types.Event) error
}

// Mailer delivers a book file, typically to a Kindle e-mail address.
type Mailer interface {
	MailBook(ctx context.Context, path string) error
}

// Result holds the outcome of a pipeline run.
type Result struct {
	Converted int
	Held      int
	Moved     int
	Skipped   int
	Failed    int
	Mailed    int
}

// HasFailures reports whether any file failed to move or mail.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Pipeline carries the collaborators for a run. Converter is required;
// Recorder and Mailer are optional.
type Pipeline struct {
	Converter convert.Converter

	// HoldingDir receives EPUB originals after conversion.
	HoldingDir string

	// ConvertTimeout bounds each conversion when positive.
	ConvertTimeout time.Duration

	Recorder Recorder
	Mailer   Mailer
	RunID    string

	// Out receives per-file status lines. Defaults to io.Discard.
	Out io.Writer
}

// Run converts every EPUB under source, stages the originals in the holding
// directory, then moves every AZW3, MOBI and PDF under source into
// destination using DestinationName.
//
// A conversion or holding failure aborts the run; work already done stays in
// place. A delivery failure is reported and the run continues with the next
// file. Files without a title marker are skipped.
func (p *Pipeline) Run(ctx context.Context, source, destination string) (Result, error) {
	var result Result
	if p.Out == nil {
		p.Out = io.Discard
	}

	for _, dir := range []struct{ name, path string }{
		{"source", source},
		{"destination", destination},
		{"holding", p.HoldingDir},
	} {
		if !fileutil.IsDir(dir.path) {
			return result, failure.New(failure.ConfigInvalid, "kindle", dir.path,
				fmt.Errorf("%s directory does not exist", dir.name))
		}
	}

	if err := p.convertAll(ctx, source, &result); err != nil {
		return result, err
	}
	if err := p.deliverAll(ctx, source, destination, &result); err != nil {
		return result, err
	}

	fmt.Fprintf(p.Out, "\nBatch summary: %d converted, %d held, %d moved, %d skipped, %d failed, %d mailed\n",
		result.Converted, result.Held, result.Moved, result.Skipped, result.Failed, result.Mailed)
	return result, nil
}

func (p *Pipeline) convertAll(ctx context.Context, source string, result *Result) error {
	books, err := fileutil.Find(source, extEPUB)
	if err != nil {
		return fmt.Errorf("scanning %s for %s: %w", source, extEPUB, err)
	}

	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return err
		}

		output := convert.OutputPath(book.Path, extMOBI)
		if err := p.convert(ctx, book.Path, output); err != nil {
			p.record(ctx, types.ActionFailed, book.Path, output, err.Error())
			if failure.KindOf(err) == 0 {
				err = failure.New(failure.ConversionFailed, "convert", book.Path, err)
			}
			return err
		}
		result.Converted++
		fmt.Fprintf(p.Out, "converted: %s\n", filepath.Base(output))
		p.record(ctx, types.ActionConverted, book.Path, output, "")

		held, err := fileutil.MoveInto(book.Path, p.HoldingDir)
		if err != nil {
			p.record(ctx, types.ActionFailed, book.Path, p.HoldingDir, err.Error())
			return failure.New(failure.MoveFailed, "hold", book.Path, err)
		}
		result.Held++
		fmt.Fprintf(p.Out, "held:      %s -> %s\n", book.Path, held)
		p.record(ctx, types.ActionHeld, book.Path, held, "")
	}
	return nil
}

func (p *Pipeline) convert(ctx context.Context, input, output string) error {
	if p.ConvertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.ConvertTimeout)
		defer cancel()
	}
	return p.Converter.Convert(ctx, input, output)
}

func (p *Pipeline) deliverAll(ctx context.Context, source, destination string, result *Result) error {
	books, err := fileutil.FindAll(source, deliverExts...)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", source, err)
	}

	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return err
		}

		name, ok := DestinationName(filepath.Base(book.Path))
		if !ok {
			result.Skipped++
			fmt.Fprintf(p.Out, "skipped: %s (no title marker)\n", book.Path)
			p.record(ctx, types.ActionSkipped, book.Path, "", "no title marker")
			continue
		}

		target := filepath.Join(destination, name)
		fmt.Fprintf(p.Out, "sending: %s\n", book.Path)
		if err := fileutil.Move(book.Path, target); err != nil {
			result.Failed++
			ferr := failure.New(failure.MoveFailed, "deliver", book.Path, err)
			fmt.Fprintf(p.Out, "warning: %v\n", ferr)
			p.record(ctx, types.ActionFailed, book.Path, target, err.Error())
			continue
		}
		result.Moved++
		p.record(ctx, types.ActionMoved, book.Path, target, "")

		if p.Mailer == nil {
			continue
		}
		if err := p.Mailer.MailBook(ctx, target); err != nil {
			result.Failed++
			fmt.Fprintf(p.Out, "warning: mailing %s: %v\n", name, err)
			p.record(ctx, types.ActionFailed, target, "", "mail: "+err.Error())
			continue
		}
		result.Mailed++
		fmt.Fprintf(p.Out, "mailed:  %s\n", name)
		p.record(ctx, types.ActionMailed, target, "", "")
	}
	return nil
}

// record forwards an event to the Recorder. Ledger trouble never stops a run.
func (p *Pipeline) record(ctx context.Context, action types.Action, source, target, detail string) {
	if p.Recorder == nil {
		return
	}
	ev := types.Event{
		RunID:  p.RunID,
		Time:   time.Now().UTC(),
		Action: action,
		Source: source,
		Target: target,
		Detail: detail,
	}
	if err := p.Recorder.Record(ctx, ev); err != nil {
		fmt.Fprintf(p.Out, "warning: ledger: %v\n", err)
	}
}
