// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Known keys: smtp-username, smtp-password, imd-username, imd-password,
// appknox-username, appknox-password.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Known secret keys.
const (
	SMTPUsername    = "smtp-username"
	SMTPPassword    = "smtp-password"
	IMDUsername     = "imd-username"
	IMDPassword     = "imd-password"
	AppknoxUsername = "appknox-username"
	AppknoxPassword = "appknox-password"
)

// EnvPrefix is prepended to the environment fallback of each key.
const EnvPrefix = "FLASH_"

// Set is a loaded collection of secrets.
type Set map[string]string

// Load reads all files in dir and returns a Set of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty Set.
// Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Set)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// EnvName returns the environment variable consulted for key,
// e.g. "smtp-password" -> "FLASH_SMTP_PASSWORD".
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Get returns the value for key from the set, falling back to the
// environment variable named by EnvName through getenv. It returns "" when
// neither has a value.
func (s Set) Get(key string, getenv func(string) string) string {
	if v, ok := s[key]; ok {
		return v
	}
	if getenv == nil {
		return ""
	}
	return strings.TrimSpace(getenv(EnvName(key)))
}

// Or returns explicit when non-empty, otherwise s.Get(key, getenv). Explicit
// values come from flags or the config file and take precedence.
func (s Set) Or(explicit, key string, getenv func(string) string) string {
	if explicit != "" {
		return explicit
	}
	return s.Get(key, getenv)
}
