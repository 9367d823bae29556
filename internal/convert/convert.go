// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns ebook files into the Kindle-native MOBI format by
// shelling out to calibre's ebook-convert, either on the host or inside a
// container image.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/pkg/types"
)

// ConvertTool is the calibre command-line converter.
const ConvertTool = "ebook-convert"

// Converter produces a converted file at output from the file at input.
type Converter interface {
	Convert(ctx context.Context, input, output string) error
}

// OutputPath returns the sibling path of input with its extension replaced
// by ext (given with its leading dot).
func OutputPath(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

// checkOutput verifies the converter left bytes at output. A zero exit status
// alone is not treated as success.
func checkOutput(input, output string) error {
	info, err := os.Stat(output)
	if err != nil {
		return failure.New(failure.ConversionFailed, "convert", input,
			fmt.Errorf("no output at %s: %w", output, err))
	}
	if info.Size() == 0 {
		return failure.New(failure.ConversionFailed, "convert", input,
			fmt.Errorf("empty output at %s", output))
	}
	return nil
}

// lastLines returns at most n trailing non-empty lines of s, for error context.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// New builds the converter selected by cfg.Backend.
func New(cfg types.KindleConfig, opts ...Option) (Converter, error) {
	switch cfg.Backend {
	case "", types.BackendCalibre:
		return NewCalibreConverter(opts...)
	case types.BackendContainer:
		return NewContainerConverter(cfg.Image, opts...)
	default:
		return nil, failure.New(failure.ConfigInvalid, "convert", "",
			fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, types.BackendCalibre, types.BackendContainer))
	}
}
