// Package handlers provides HTTP request handlers for the REST API.
//
// Handlers accept request DTOs, call the joke store and query functions, and
// translate storage errors into dto.APIError values.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/maruel/jokedb/internal/query"
	"github.com/maruel/jokedb/internal/server/dto"
	"github.com/maruel/jokedb/internal/storage"
	"github.com/maruel/jokedb/internal/storage/entity"
)

// JokeHandler handles joke-related HTTP requests.
type JokeHandler struct {
	store          *storage.Store
	rand           query.Rand
	strictNotFound bool
}

// NewJokeHandler creates a new joke handler.
//
// When strictNotFound is set, updating or deleting an unknown id answers 404
// instead of 500.
func NewJokeHandler(store *storage.Store, r query.Rand, strictNotFound bool) *JokeHandler {
	if r == nil {
		r = query.Default
	}
	return &JokeHandler{store: store, rand: r, strictNotFound: strictNotFound}
}

// RandomJoke returns one random joke, or null when the collection is empty.
func (h *JokeHandler) RandomJoke(ctx context.Context, req *dto.EmptyRequest) (*dto.Joke, error) {
	j, ok := query.RandomOne(h.rand, h.store.All())
	if !ok {
		return nil, nil
	}
	out := jokeToDTO(&j)
	return &out, nil
}

// RandomTen returns up to ten distinct random jokes.
func (h *JokeHandler) RandomTen(ctx context.Context, req *dto.EmptyRequest) (*dto.JokeList, error) {
	out := jokesToDTO(query.RandomN(h.rand, h.store.All(), 10))
	return &out, nil
}

// RandomJokes returns req.Num distinct random jokes.
func (h *JokeHandler) RandomJokes(ctx context.Context, req *dto.RandomJokesRequest) (*dto.JokeList, error) {
	n := req.N()
	if n <= 0 {
		return nil, dto.NotANumber()
	}
	all := h.store.All()
	if n > len(all) {
		return nil, dto.ExceedsCount(len(all))
	}
	out := jokesToDTO(query.RandomN(h.rand, all, n))
	return &out, nil
}

// TypedJokes returns one ("random") or up to ten ("ten") random jokes of a type.
func (h *JokeHandler) TypedJokes(ctx context.Context, req *dto.TypedJokesRequest) (*dto.JokeList, error) {
	n := 1
	if req.Action == "ten" {
		n = 10
	}
	out := jokesToDTO(query.RandomN(h.rand, query.FilterByType(h.store.All(), req.Type), n))
	return &out, nil
}

// PaginatedJokes returns one sorted page.
func (h *JokeHandler) PaginatedJokes(ctx context.Context, req *dto.PaginatedJokesRequest) (*dto.PaginatedJokesResponse, error) {
	field, order := req.Sort()
	p := query.Paginate(h.store.All(), req.Offset(), req.Limit(), field, order)
	return &dto.PaginatedJokesResponse{
		Jokes:   jokesToDTO(p.Jokes),
		HasMore: p.HasMore,
		Total:   p.Total,
	}, nil
}

// GetJoke returns a joke by id.
func (h *JokeHandler) GetJoke(ctx context.Context, req *dto.JokeIDRequest) (*dto.Joke, error) {
	id, err := strconv.Atoi(req.ID)
	if err != nil {
		return nil, dto.NotFound("joke")
	}
	j, ok := h.store.Get(id)
	if !ok {
		return nil, dto.NotFound("joke")
	}
	out := jokeToDTO(&j)
	return &out, nil
}

// ListJokes returns the whole collection.
func (h *JokeHandler) ListJokes(ctx context.Context, req *dto.EmptyRequest) (*dto.JokeList, error) {
	out := jokesToDTO(h.store.All())
	return &out, nil
}

// ListTypes returns the distinct joke types.
func (h *JokeHandler) ListTypes(ctx context.Context, req *dto.EmptyRequest) (*dto.TypeList, error) {
	out := dto.TypeList(h.store.Types())
	return &out, nil
}

// CreateJoke adds a joke.
func (h *JokeHandler) CreateJoke(ctx context.Context, req *dto.CreateJokeRequest) (*dto.CreateJokeResponse, error) {
	j, err := h.store.Insert(ctx, entity.Fields{Type: req.Type, Setup: req.Setup, Punchline: req.Punchline})
	if err != nil {
		return nil, h.storeError(err)
	}
	return &dto.CreateJokeResponse{Joke: jokeToDTO(&j)}, nil
}

// UpdateJoke replaces the content of a joke.
func (h *JokeHandler) UpdateJoke(ctx context.Context, req *dto.UpdateJokeRequest) (*dto.Joke, error) {
	id, err := strconv.Atoi(req.ID)
	if err != nil {
		return nil, h.storeError(storage.ErrNotFound)
	}
	j, err := h.store.Replace(ctx, id, entity.Fields{Type: req.Type, Setup: req.Setup, Punchline: req.Punchline})
	if err != nil {
		return nil, h.storeError(err)
	}
	out := jokeToDTO(&j)
	return &out, nil
}

// DeleteJoke removes a joke.
func (h *JokeHandler) DeleteJoke(ctx context.Context, req *dto.JokeIDRequest) (*dto.DeleteJokeResponse, error) {
	id, err := strconv.Atoi(req.ID)
	if err != nil {
		return nil, h.storeError(storage.ErrNotFound)
	}
	if err := h.store.Remove(ctx, id); err != nil {
		return nil, h.storeError(err)
	}
	return &dto.DeleteJokeResponse{}, nil
}

func (h *JokeHandler) storeError(err error) error {
	switch {
	case errors.Is(err, storage.ErrValidation):
		return dto.InvalidJokeData().Wrap(err)
	case errors.Is(err, storage.ErrNotFound):
		status := http.StatusInternalServerError
		code := dto.ErrorCodeInternal
		if h.strictNotFound {
			status, code = http.StatusNotFound, dto.ErrorCodeNotFound
		}
		return dto.NewAPIError(status, code, storage.ErrNotFound.Error()).Wrap(err)
	default:
		return dto.Internal("failed to save jokes").Wrap(err)
	}
}
