// Package sessionfile reads and writes the JSON session files shared by the
// post and story runners. A session file holds {"cookies": <settings>} where
// settings is the blob returned by the client's GetSettings.
package sessionfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
)

const (
	dirPerm  = 0700
	filePerm = 0600
)

type file struct {
	Cookies json.RawMessage `json:"cookies"`
}

// Load returns the settings stored under "cookies" in path. Every failure
// is a validation error.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, result.Invalid("session file not found: %s", path)
		}
		return nil, result.InvalidWrap(err, "failed to read session file")
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, result.InvalidWrap(err, "session file is not valid JSON")
	}

	if len(f.Cookies) == 0 || string(f.Cookies) == "null" {
		return nil, result.Invalid("session file has no cookies")
	}

	var settings map[string]any
	if err := json.Unmarshal(f.Cookies, &settings); err != nil {
		return nil, result.InvalidWrap(err, "session cookies must be a JSON object")
	}

	return settings, nil
}

// Save writes settings to path as a session file, creating parent
// directories as needed.
func Save(path string, settings map[string]any) error {
	if settings == nil {
		return result.Invalid("no settings to save")
	}

	data, err := json.MarshalIndent(map[string]any{"cookies": settings}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return result.InvalidWrap(err, "failed to create session directory")
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), filePerm); err != nil {
		return result.InvalidWrap(err, "failed to write session file")
	}

	return nil
}
