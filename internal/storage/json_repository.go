package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/maruel/jokedb/internal/jsonldb"
	"github.com/maruel/jokedb/internal/storage/entity"
)

// JSONFile is a Repository backed by a single JSON array document that is
// rewritten in full after every mutation.
type JSONFile struct {
	table *jsonldb.Table[entity.Joke]
}

// NewJSONFile opens the document at path. See jsonldb.NewTable for atomic.
func NewJSONFile(path string, atomic bool) (*JSONFile, error) {
	table, err := jsonldb.NewTable[entity.Joke](path, atomic)
	if err != nil {
		return nil, err
	}
	return &JSONFile{table: table}, nil
}

// Path returns the document path.
func (r *JSONFile) Path() string {
	return r.table.Path()
}

// Load implements Repository.
func (r *JSONFile) Load(ctx context.Context) ([]entity.Joke, error) {
	return r.table.All(), nil
}

// Renumber implements Repository.
//
// Only the in-memory copy is updated; the document keeps its ids until the
// next mutation rewrites it.
func (r *JSONFile) Renumber(ctx context.Context, jokes []entity.Joke) error {
	r.table.Mu.Lock()
	defer r.table.Mu.Unlock()
	if len(jokes) != len(r.table.Rows) {
		return fmt.Errorf("renumber: got %d jokes, have %d", len(jokes), len(r.table.Rows))
	}
	for i := range jokes {
		r.table.Rows[i].ID = jokes[i].ID
	}
	return nil
}

// Insert implements Repository.
func (r *JSONFile) Insert(ctx context.Context, j entity.Joke) error {
	return r.table.Append(j)
}

// Replace implements Repository.
func (r *JSONFile) Replace(ctx context.Context, j entity.Joke) error {
	rows := r.table.All()
	i := slices.IndexFunc(rows, func(row entity.Joke) bool { return row.ID == j.ID })
	if i == -1 {
		return fmt.Errorf("%w: %d", ErrNotFound, j.ID)
	}
	rows[i] = j
	return r.table.Replace(rows)
}

// Remove implements Repository.
func (r *JSONFile) Remove(ctx context.Context, id int) error {
	rows := r.table.All()
	i := slices.IndexFunc(rows, func(row entity.Joke) bool { return row.ID == id })
	if i == -1 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return r.table.Replace(slices.Delete(rows, i, i+1))
}

// Close implements Repository.
func (r *JSONFile) Close() error {
	return nil
}
