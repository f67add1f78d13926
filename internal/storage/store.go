package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/maruel/jokedb/internal/storage/entity"
)

// Store owns the authoritative joke collection.
//
// The collection is loaded once from the Repository and held in memory.
// Mutations are serialized: the write lock is held across persistence and
// the in-memory update, and a failed write leaves the collection unchanged.
type Store struct {
	repo     Repository
	onChange func(count int)

	mu     sync.RWMutex
	jokes  []entity.Joke
	lastID int
}

// NewStore creates a Store on top of repo. onChange, if not nil, is called
// with the collection size after load and after each successful mutation.
func NewStore(repo Repository, onChange func(count int)) *Store {
	return &Store{repo: repo, onChange: onChange, jokes: []entity.Joke{}}
}

// Load reads the repository and assigns ids 1..N in document order,
// overwriting any stored ids.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	jokes, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load jokes: %w", err)
	}
	changed := false
	for i := range jokes {
		if jokes[i].ID != i+1 {
			jokes[i].ID = i + 1
			changed = true
		}
	}
	if changed {
		if err := s.repo.Renumber(ctx, jokes); err != nil {
			return fmt.Errorf("failed to renumber jokes: %w", err)
		}
	}
	s.jokes = jokes
	s.lastID = len(jokes)
	s.notify()
	return nil
}

// Insert validates f, assigns the next id and persists the new joke.
func (s *Store) Insert(ctx context.Context, f entity.Fields) (entity.Joke, error) {
	if err := f.Validate(); err != nil {
		return entity.Joke{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j := f.Joke(s.lastID + 1)
	if err := s.repo.Insert(ctx, j); err != nil {
		return entity.Joke{}, err
	}
	s.lastID = j.ID
	s.jokes = append(s.jokes, j)
	s.notify()
	return j, nil
}

// Replace overwrites the content of the joke with the given id.
func (s *Store) Replace(ctx context.Context, id int, f entity.Fields) (entity.Joke, error) {
	if err := f.Validate(); err != nil {
		return entity.Joke{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i == -1 {
		return entity.Joke{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	j := f.Joke(id)
	if err := s.repo.Replace(ctx, j); err != nil {
		return entity.Joke{}, err
	}
	s.jokes[i] = j
	s.notify()
	return j, nil
}

// Remove deletes the joke with the given id.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i == -1 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	s.jokes = slices.Delete(s.jokes, i, i+1)
	s.notify()
	return nil
}

// Get returns the joke with the given id.
func (s *Store) Get(id int) (entity.Joke, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i != -1 {
		return s.jokes[i], true
	}
	return entity.Joke{}, false
}

// All returns a copy of the collection in document order.
func (s *Store) All() []entity.Joke {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.jokes)
}

// Count returns the number of jokes.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jokes)
}

// Types returns the distinct joke types in first-seen order.
func (s *Store) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	types := []string{}
	for i := range s.jokes {
		if _, ok := seen[s.jokes[i].Type]; !ok {
			seen[s.jokes[i].Type] = struct{}{}
			types = append(types, s.jokes[i].Type)
		}
	}
	return types
}

// Close closes the repository.
func (s *Store) Close() error {
	return s.repo.Close()
}

func (s *Store) index(id int) int {
	return slices.IndexFunc(s.jokes, func(j entity.Joke) bool { return j.ID == id })
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange(len(s.jokes))
	}
}
