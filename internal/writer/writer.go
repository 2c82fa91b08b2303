// Package writer serializes set groups to their per-set files.
package writer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"setsplitter/internal/freshness"
	"setsplitter/internal/logger"
	"setsplitter/internal/models"
	"setsplitter/internal/partition"
)

// Writer errors. ErrFilesystem is shared with the freshness marker.
var (
	ErrFilesystem     = freshness.ErrFilesystem
	ErrInvalidSetCode = errors.New("set code cannot be used as a file name")
	ErrEncode         = errors.New("failed to encode cards")
)

// SetFile describes one written set file.
type SetFile struct {
	Code  string
	Path  string
	Cards int
	Bytes int
}

// Summary lists every file committed by WriteAll, in table key order.
type Summary struct {
	Dir  string
	Sets []SetFile
}

// TotalCards returns the number of cards written.
func (s *Summary) TotalCards() int {
	total := 0
	for _, set := range s.Sets {
		total += set.Cards
	}

	return total
}

// TotalBytes returns the number of bytes written.
func (s *Summary) TotalBytes() int {
	total := 0
	for _, set := range s.Sets {
		total += set.Bytes
	}

	return total
}

// SetWriter writes one file per set into Dir.
type SetWriter struct {
	logger *logger.Logger
	Dir    string
	Suffix string
}

// NewSetWriter creates a writer for dir using the given file suffix.
func NewSetWriter(dir, suffix string, log *logger.Logger) *SetWriter {
	return &SetWriter{
		Dir:    dir,
		Suffix: suffix,
		logger: log,
	}
}

// FileName returns the file name for a set code, e.g. "NEO_.txt".
func (w *SetWriter) FileName(code string) string {
	return code + w.Suffix
}

// Encode renders cards as a JSON array with no whitespace between tokens.
// Each record keeps its original key order and number formatting.
func Encode(cards []models.Card) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('[')

	for i, card := range cards {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := json.Compact(&buf, card.Raw); err != nil {
			return nil, fmt.Errorf("%w: card %d of set %s: %w", ErrEncode, i, card.Set, err)
		}
	}

	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// WriteAll writes every group of table. Files are first written to a
// staging directory beside Dir and then renamed into Dir, replacing any
// existing file of the same name. On error the staging directory is removed.
func (w *SetWriter) WriteAll(table *partition.Table) (*Summary, error) {
	for _, code := range table.Keys {
		if err := validCode(code); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory %s: %w", ErrFilesystem, w.Dir, err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(filepath.Clean(w.Dir)), "."+filepath.Base(w.Dir)+"-staging-*")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create staging directory: %w", ErrFilesystem, err)
	}
	defer os.RemoveAll(staging)

	summary := &Summary{Dir: w.Dir}

	for _, code := range table.Keys {
		cards := table.Groups[code]

		data, err := Encode(cards)
		if err != nil {
			return nil, err
		}

		name := w.FileName(code)
		if err := os.WriteFile(filepath.Join(staging, name), data, 0644); err != nil {
			return nil, fmt.Errorf("%w: failed to stage %s: %w", ErrFilesystem, name, err)
		}

		summary.Sets = append(summary.Sets, SetFile{
			Code:  code,
			Path:  filepath.Join(w.Dir, name),
			Cards: len(cards),
			Bytes: len(data),
		})
	}

	for _, set := range summary.Sets {
		name := filepath.Base(set.Path)
		if err := os.Rename(filepath.Join(staging, name), set.Path); err != nil {
			return nil, fmt.Errorf("%w: failed to commit %s: %w", ErrFilesystem, set.Path, err)
		}

		w.logger.Debug("set file written", "set", set.Code, "cards", set.Cards, "bytes", set.Bytes)
	}

	return summary, nil
}

func validCode(code string) error {
	if code == "" || code == "." || code == ".." || strings.ContainsAny(code, `/\`+"\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidSetCode, code)
	}

	return nil
}
