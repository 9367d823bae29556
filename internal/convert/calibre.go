// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pdiddy/flash/internal/failure"
)

// runner abstracts process execution for testing.
type runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, out io.Writer) error
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (execRunner) Run(ctx context.Context, name string, args []string, out io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// CalibreConverter runs ebook-convert installed on the host.
type CalibreConverter struct {
	bin string
	run runner
	log io.Writer
}

// NewCalibreConverter locates ebook-convert on PATH.
func NewCalibreConverter(opts ...Option) (*CalibreConverter, error) {
	o := buildOptions(opts)
	bin, err := o.runner.LookPath(ConvertTool)
	if err != nil {
		return nil, failure.New(failure.ConfigInvalid, "convert", "",
			fmt.Errorf("%s not found on PATH (install calibre or use the container backend): %w", ConvertTool, err))
	}
	return &CalibreConverter{bin: bin, run: o.runner, log: o.log}, nil
}

// Convert runs `ebook-convert input output`. The tool's own output is captured
// and only surfaced when the conversion fails.
func (c *CalibreConverter) Convert(ctx context.Context, input, output string) error {
	args := []string{input, output}
	fmt.Fprintln(c.log, strings.Join(append([]string{ConvertTool}, args...), " "))

	var out bytes.Buffer
	if err := c.run.Run(ctx, c.bin, args, &out); err != nil {
		return failure.New(failure.ConversionFailed, "convert", input,
			fmt.Errorf("%s: %w\n%s", ConvertTool, err, lastLines(out.String(), 5)))
	}
	return checkOutput(input, output)
}
