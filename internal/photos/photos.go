// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package photos moves camera uploads into the picture library.
package photos

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/internal/fileutil"
	"github.com/pdiddy/flash/pkg/types"
)

// Result holds the outcome of an organize run.
type Result struct {
	Moved  int
	Failed int
}

// HasFailures reports whether any entry stayed behind.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Organize moves every top-level entry of cfg.SourceDir into cfg.TargetDir.
// Entries whose name already exists in the target are reported and left in
// place. Progress goes to out.
func Organize(ctx context.Context, cfg types.PhotosConfig, out io.Writer) (Result, error) {
	var result Result
	if out == nil {
		out = io.Discard
	}

	src, err := fileutil.ExpandHome(cfg.SourceDir)
	if err != nil {
		return result, err
	}
	dst, err := fileutil.ExpandHome(cfg.TargetDir)
	if err != nil {
		return result, err
	}
	for _, dir := range []string{src, dst} {
		if !fileutil.IsDir(dir) {
			return result, failure.New(failure.ConfigInvalid, "photos", dir,
				fmt.Errorf("directory does not exist"))
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return result, fmt.Errorf("reading %s: %w", src, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		if err := fileutil.Move(from, to); err != nil {
			result.Failed++
			fmt.Fprintf(out, "warning: %v\n", failure.New(failure.MoveFailed, "photos", from, err))
			continue
		}
		result.Moved++
		fmt.Fprintf(out, "moved: %s\n", e.Name())
	}

	fmt.Fprintf(out, "\nPhotos summary: %d moved, %d failed\n", result.Moved, result.Failed)
	return result, nil
}
