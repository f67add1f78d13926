// Package storage owns the joke collection and its persistence backends.
package storage

import (
	"context"
	"errors"

	"github.com/maruel/jokedb/internal/storage/entity"
)

var (
	// ErrValidation is returned when a required joke field is missing.
	ErrValidation = errors.New("invalid joke data")
	// ErrNotFound is returned when no joke has the requested id.
	ErrNotFound = errors.New("Joke not found") //nolint:staticcheck // ST1005: message is part of the API
)

// Repository persists jokes. The Store is its only caller and serializes
// all mutations.
type Repository interface {
	// Load returns all stored jokes in document order.
	Load(ctx context.Context) ([]entity.Joke, error)
	// Renumber replaces the stored ids with the ones in jokes, which are in
	// the order returned by Load.
	Renumber(ctx context.Context, jokes []entity.Joke) error
	// Insert appends a joke.
	Insert(ctx context.Context, j entity.Joke) error
	// Replace overwrites the joke with the same id.
	Replace(ctx context.Context, j entity.Joke) error
	// Remove deletes the joke with the id.
	Remove(ctx context.Context, id int) error
	// Close releases resources held by the repository.
	Close() error
}
