// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package photos

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/pkg/types"
)

func TestOrganize(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	for _, name := range []string{"IMG_1.jpg", "IMG_2.jpg", "clash.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(src, "Burst"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "clash.jpg"), []byte("existing"), 0o644))

	var out bytes.Buffer
	result, err := Organize(context.Background(), types.PhotosConfig{SourceDir: src, TargetDir: dst}, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Moved)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())

	assert.FileExists(t, filepath.Join(dst, "IMG_1.jpg"))
	assert.DirExists(t, filepath.Join(dst, "Burst"))
	assert.FileExists(t, filepath.Join(src, "clash.jpg"))
	data, err := os.ReadFile(filepath.Join(dst, "clash.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))

	assert.Contains(t, out.String(), "Photos summary: 3 moved, 1 failed")
}

func TestOrganizeExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Camera Uploads"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Pictures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "Camera Uploads", "a.png"), nil, 0o644))

	result, err := Organize(context.Background(),
		types.PhotosConfig{SourceDir: "~/Camera Uploads", TargetDir: "~/Pictures"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)
	assert.FileExists(t, filepath.Join(home, "Pictures", "a.png"))
}

func TestOrganizeMissingDirectory(t *testing.T) {
	_, err := Organize(context.Background(),
		types.PhotosConfig{SourceDir: filepath.Join(t.TempDir(), "nope"), TargetDir: t.TempDir()}, nil)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ConfigInvalid))
}
