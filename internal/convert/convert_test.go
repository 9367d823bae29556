// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/flash/internal/container"
	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/pkg/types"
)

// fakeRunner implements runner. When write is set it creates the output file
// (the last argument) with that content, imitating ebook-convert.
type fakeRunner struct {
	missing bool
	write   string
	err     error
	calls   [][]string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, out io.Writer) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	_, _ = io.WriteString(out, "Converting input to MOBI\n")
	if f.err != nil {
		return f.err
	}
	if f.write != "" {
		return os.WriteFile(args[len(args)-1], []byte(f.write), 0o644)
	}
	return nil
}

func setupEPUB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	require.NoError(t, os.WriteFile(path, []byte("epub"), 0o644))
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/a/b/book.mobi", OutputPath("/a/b/book.epub", ".mobi"))
	assert.Equal(t, "/a/b.c/book.v2.mobi", OutputPath("/a/b.c/book.v2.epub", ".mobi"))
}

func TestCalibreConverter(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		wantKind failure.Kind
	}{
		{
			name:   "success writes mobi",
			runner: &fakeRunner{write: "mobi bytes"},
		},
		{
			name:     "non-zero exit",
			runner:   &fakeRunner{err: errors.New("exit status 1")},
			wantKind: failure.ConversionFailed,
		},
		{
			name:     "zero exit without output",
			runner:   &fakeRunner{},
			wantKind: failure.ConversionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := setupEPUB(t)
			output := OutputPath(input, ".mobi")
			var log bytes.Buffer

			c, err := NewCalibreConverter(withRunner(tt.runner), WithLog(&log))
			require.NoError(t, err)

			err = c.Convert(context.Background(), input, output)
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.True(t, failure.Is(err, tt.wantKind), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.FileExists(t, output)
			assert.Equal(t, "ebook-convert "+input+" "+output+"\n", log.String())
			require.Len(t, tt.runner.calls, 1)
			assert.Equal(t, []string{"/usr/bin/ebook-convert", input, output}, tt.runner.calls[0])
		})
	}
}

func TestCalibreConverterMissingBinary(t *testing.T) {
	_, err := NewCalibreConverter(withRunner(&fakeRunner{missing: true}))
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ConfigInvalid))
	assert.Contains(t, err.Error(), "ebook-convert not found")
}

func TestCalibreConverterErrorCarriesToolOutput(t *testing.T) {
	input := setupEPUB(t)
	c, err := NewCalibreConverter(withRunner(&fakeRunner{err: errors.New("exit status 2")}))
	require.NoError(t, err)

	err = c.Convert(context.Background(), input, OutputPath(input, ".mobi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Converting input to MOBI")
}

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	imageErr error
	runErr   error
	mounts   []container.Mount
	args     []string
}

func (f *fakeRuntime) Name() string { return "docker" }
func (f *fakeRuntime) Available() bool { return true }
func (f *fakeRuntime) ImageExists(image string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, image string, mounts []container.Mount, args []string, out io.Writer) error {
	f.mounts, f.args = mounts, args
	if f.runErr != nil {
		return f.runErr
	}
	// Translate the container output path back to the host mount.
	for _, m := range mounts {
		if strings.HasPrefix(args[2], m.Container+"/") {
			host := filepath.Join(m.Host, strings.TrimPrefix(args[2], m.Container+"/"))
			return os.WriteFile(host, []byte("mobi"), 0o644)
		}
	}
	return errors.New("output path outside mounts")
}

func TestContainerConverter(t *testing.T) {
	input := setupEPUB(t)
	output := OutputPath(input, ".mobi")
	rt := &fakeRuntime{}

	c, err := NewContainerConverter("calibre:latest", WithRuntime(rt))
	require.NoError(t, err)
	require.NoError(t, c.Convert(context.Background(), input, output))

	assert.FileExists(t, output)
	assert.Equal(t, []string{"ebook-convert", "/books/in/book.epub", "/books/out/book.mobi"}, rt.args)
	require.Len(t, rt.mounts, 2)
	assert.Equal(t, filepath.Dir(input), rt.mounts[0].Host)
}

func TestContainerConverterFailures(t *testing.T) {
	_, err := NewContainerConverter("calibre:latest", WithRuntime(&fakeRuntime{imageErr: errors.New("no such image")}))
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ConfigInvalid))

	input := setupEPUB(t)
	c, err := NewContainerConverter("calibre:latest", WithRuntime(&fakeRuntime{runErr: errors.New("exit status 1")}))
	require.NoError(t, err)
	err = c.Convert(context.Background(), input, OutputPath(input, ".mobi"))
	assert.True(t, failure.Is(err, failure.ConversionFailed))
}

func TestNewSelectsBackend(t *testing.T) {
	c, err := New(types.KindleConfig{Backend: types.BackendCalibre}, withRunner(&fakeRunner{}))
	require.NoError(t, err)
	assert.IsType(t, &CalibreConverter{}, c)

	c, err = New(types.KindleConfig{Backend: types.BackendContainer, Image: "x"}, WithRuntime(&fakeRuntime{}))
	require.NoError(t, err)
	assert.IsType(t, &ContainerConverter{}, c)

	_, err = New(types.KindleConfig{Backend: "pandoc"})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ConfigInvalid))
}
