// Package jsonldb stores a table of rows as a single JSON array document.
//
// The whole document is rewritten on every change. It is meant for small
// collections that are loaded once and fully held in memory.
package jsonldb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Table handles storage and in-memory caching for a single JSON array document.
type Table[T any] struct {
	path   string
	atomic bool
	Mu     sync.RWMutex

	Rows []T
}

// NewTable creates a new Table and loads all data from the file.
//
// A missing file is an empty table; it is created on the first write. When
// atomic is true, writes go through a temporary file renamed over the
// document, otherwise the document is truncated and rewritten in place.
func NewTable[T any](path string, atomic bool) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // G301: data directory
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	table := &Table[T]{
		path:   path,
		atomic: atomic,
	}
	if err := table.load(); err != nil {
		return nil, err
	}
	return table, nil
}

// Path returns the document path.
func (t *Table[T]) Path() string {
	return t.path
}

func (t *Table[T]) load() error {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Rows = []T{}
			return nil
		}
		return fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		t.Rows = []T{}
		return nil
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", t.path, err)
	}
	if rows == nil {
		rows = []T{}
	}
	t.Rows = rows
	return nil
}

// All returns a copy of all rows.
func (t *Table[T]) All() []T {
	t.Mu.RLock()
	defer t.Mu.RUnlock()
	rows := make([]T, len(t.Rows))
	copy(rows, t.Rows)
	return rows
}

// Append adds a new row to the table and persists the whole document.
func (t *Table[T]) Append(row T) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	rows := make([]T, len(t.Rows), len(t.Rows)+1)
	copy(rows, t.Rows)
	rows = append(rows, row)
	if err := t.write(rows); err != nil {
		return err
	}
	t.Rows = rows
	return nil
}

// Replace replaces all rows with the provided slice and persists it.
//
// The in-memory rows are only updated when the write succeeded.
func (t *Table[T]) Replace(rows []T) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if rows == nil {
		rows = []T{}
	}
	if err := t.write(rows); err != nil {
		return err
	}
	t.Rows = rows
	return nil
}

// Marshal renders rows the way they are stored: a JSON array indented with
// two spaces, no trailing newline. HTML characters and the U+2028/U+2029
// separators are left unescaped.
func Marshal[T any](rows []T) ([]byte, error) {
	if rows == nil {
		rows = []T{}
	}
	var buf bytes.Buffer
	e := json.NewEncoder(&buf)
	e.SetEscapeHTML(false)
	e.SetIndent("", "  ")
	if err := e.Encode(rows); err != nil {
		return nil, fmt.Errorf("failed to marshal rows: %w", err)
	}
	return unescapeSeparators(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// unescapeSeparators turns the \u2028 and \u2029 escapes encoding/json always
// emits back into the raw characters. Escaped backslashes are skipped as pairs
// so a literal `\\u2028` in a string is preserved.
func unescapeSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 == len(data) {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && string(data[i+1:i+5]) == "u202" && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

func (t *Table[T]) write(rows []T) error {
	data, err := Marshal(rows)
	if err != nil {
		return err
	}
	if !t.atomic {
		if err := os.WriteFile(t.path, data, 0o644); err != nil { //nolint:gosec // G306: world readable document
			return fmt.Errorf("failed to write table file: %w", err)
		}
		return nil
	}
	f, err := os.CreateTemp(filepath.Dir(t.path), "."+filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(data); err != nil {
		return errors.Join(fmt.Errorf("failed to write temp file: %w", err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Sync(); err != nil {
		return errors.Join(fmt.Errorf("failed to sync temp file: %w", err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // G302: world readable document
		return errors.Join(fmt.Errorf("failed to chmod temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename table file: %w", err), os.Remove(tmpPath))
	}
	return nil
}
