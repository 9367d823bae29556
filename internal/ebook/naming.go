// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ebook

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// titleMarker separates the catalogue prefix from the title in downloaded
// book names such as "[Publisher 2019]_Title(Author).pdf".
const titleMarker = "]_"

// DestinationName derives the delivered file name from a source base name:
// the text after the first "]_" up to the next "]_" or "(" (or the extension
// when there is neither), trimmed and NFC-normalized, plus the original extension.
//
// It reports false when the name has no marker or the title is empty; such
// files are skipped, never moved under some other name.
func DestinationName(base string) (string, bool) {
	i := strings.Index(base, titleMarker)
	if i < 0 {
		return "", false
	}

	ext := filepath.Ext(base)
	rest := base[i+len(titleMarker):]
	if len(rest) < len(ext) {
		return "", false
	}
	rest = strings.TrimSuffix(rest, ext)
	if j := strings.Index(rest, titleMarker); j >= 0 {
		rest = rest[:j]
	}
	if j := strings.IndexByte(rest, '('); j >= 0 {
		rest = rest[:j]
	}

	title := norm.NFC.String(strings.TrimSpace(rest))
	if title == "" {
		return "", false
	}
	return title + ext, true
}
