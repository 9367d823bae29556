// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/flash/internal/container"
	"github.com/pdiddy/flash/internal/failure"
)

const (
	mountIn  = "/books/in"
	mountOut = "/books/out"
)

// ContainerConverter runs ebook-convert inside a container image, mounting
// the input and output directories.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
	log     io.Writer
}

// NewContainerConverter detects a container runtime (unless one is injected
// with WithRuntime) and checks that image is present locally.
func NewContainerConverter(image string, opts ...Option) (*ContainerConverter, error) {
	o := buildOptions(opts)
	rt := o.runtime
	if rt == nil {
		var err error
		rt, err = container.DetectRuntime()
		if err != nil {
			return nil, failure.New(failure.ConfigInvalid, "convert", "", err)
		}
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, failure.New(failure.ConfigInvalid, "convert", "",
			fmt.Errorf("calibre image not available in %s: %w", rt.Name(), err))
	}
	return &ContainerConverter{runtime: rt, image: image, log: o.log}, nil
}

// Convert runs ebook-convert in a throwaway container.
func (c *ContainerConverter) Convert(ctx context.Context, input, output string) error {
	mounts := []container.Mount{
		{Host: filepath.Dir(input), Container: mountIn},
		{Host: filepath.Dir(output), Container: mountOut},
	}
	args := []string{
		ConvertTool,
		mountIn + "/" + filepath.Base(input),
		mountOut + "/" + filepath.Base(output),
	}
	fmt.Fprintf(c.log, "%s (%s %s)\n", strings.Join(args, " "), c.runtime.Name(), c.image)

	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, mounts, args, &out); err != nil {
		return failure.New(failure.ConversionFailed, "convert", input,
			fmt.Errorf("%w\n%s", err, lastLines(out.String(), 5)))
	}
	return checkOutput(input, output)
}
