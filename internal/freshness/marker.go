// Package freshness keeps the local "data as of" marker and decides whether
// a remote dataset is newer than what is on disk.
package freshness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrFilesystem wraps every marker read or write failure.
var ErrFilesystem = errors.New("filesystem error")

// Marker is a file holding the updated_at value of the last dataset that
// was fully written.
type Marker struct {
	Path string
}

// NewMarker creates a marker stored at path.
func NewMarker(path string) *Marker {
	return &Marker{Path: path}
}

// Read returns the stored timestamp. ok is false when the file does not exist.
func (m *Marker) Read() (string, bool, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%w: failed to read marker %s: %w", ErrFilesystem, m.Path, err)
	}

	return string(data), true, nil
}

// Write replaces the marker with timestamp. The value is written to a
// temporary file in the same directory and renamed over the old marker, so
// readers see either the old or the new value.
func (m *Marker) Write(timestamp string) error {
	dir := filepath.Dir(m.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create marker directory: %w", ErrFilesystem, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(m.Path)+".*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp marker: %w", ErrFilesystem, err)
	}

	tmpName := tmp.Name()
	committed := false

	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(timestamp); err != nil {
		tmp.Close()

		return fmt.Errorf("%w: failed to write marker: %w", ErrFilesystem, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()

		return fmt.Errorf("%w: failed to sync marker: %w", ErrFilesystem, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close marker: %w", ErrFilesystem, err)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: failed to set marker mode: %w", ErrFilesystem, err)
	}

	if err := os.Rename(tmpName, m.Path); err != nil {
		return fmt.Errorf("%w: failed to replace marker %s: %w", ErrFilesystem, m.Path, err)
	}

	committed = true

	return nil
}

// IsStale reports whether the remote dataset should be downloaded.
// Timestamps are compared as plain strings; Scryfall's zero-padded ISO-8601
// values sort the same way as the instants they name.
func IsStale(remote, local string, haveLocal bool) bool {
	if !haveLocal {
		return true
	}

	return remote > local
}
