// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fileutil provides the filesystem primitives shared by the batch
// procedures: recursive pattern scans and non-clobbering moves.
package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/flash/pkg/types"
)

// Find walks root recursively and returns every regular file whose extension
// equals ext (case-insensitive, with or without the leading dot). Symlinks
// that resolve to regular files count; symlinked directories are not
// followed. Unreadable subdirectories are skipped, an unreadable root is an
// error. Results are absolute paths sorted lexicographically so runs are
// deterministic.
func Find(root, ext string) ([]types.Candidate, error) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var found []types.Candidate
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != abs && d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return err
		}
		if !isRegular(path, d) {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ext {
			return nil
		}
		found = append(found, types.Candidate{Path: path, Ext: ext})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

// FindAll runs Find once per extension, in the order given, and concatenates
// the results. A file is never listed twice.
func FindAll(root string, exts ...string) ([]types.Candidate, error) {
	var all []types.Candidate
	seen := make(map[string]bool)
	for _, ext := range exts {
		found, err := Find(root, ext)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			if seen[c.Path] {
				continue
			}
			seen[c.Path] = true
			all = append(all, c)
		}
	}
	return all, nil
}

// isRegular reports whether d is a regular file or a symlink to one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
