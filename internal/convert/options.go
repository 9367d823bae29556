// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"io"

	"github.com/pdiddy/flash/internal/container"
)

type options struct {
	log     io.Writer
	runner  runner
	runtime container.Runtime
}

// Option configures a converter at construction time.
type Option func(*options)

// WithLog sets where converters echo the command they run. Defaults to io.Discard.
func WithLog(w io.Writer) Option {
	return func(o *options) { o.log = w }
}

// WithRuntime injects the container runtime used by the container backend
// instead of detecting one.
func WithRuntime(rt container.Runtime) Option {
	return func(o *options) { o.runtime = rt }
}

func withRunner(r runner) Option {
	return func(o *options) { o.runner = r }
}

func buildOptions(opts []Option) options {
	o := options{log: io.Discard, runner: execRunner{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
