package client

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maruel/jokedb/internal/server"
	"github.com/maruel/jokedb/internal/storage"
	"github.com/maruel/jokedb/internal/storage/entity"
)

// newTestServer serves n jokes whose types cycle through a, b, c.
func newTestServer(t *testing.T, n int) (*Client, *storage.Store) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("[")
	for i := range n {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"type": %q, "setup": "setup %02d", "punchline": "punchline %02d"}`, string(rune('a'+i%3)), (i*7)%n, i)
	}
	sb.WriteString("]")
	path := filepath.Join(t.TempDir(), "jokes.json")
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	repo, err := storage.NewJSONFile(path, true)
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewStore(repo, nil)
	if err := store.Load(t.Context()); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(server.NewRouter(&server.Config{
		Store:   store,
		Version: "test",
		Rand:    rand.New(rand.NewPCG(5, 6)),
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), store
}

func TestClient_Random(t *testing.T) {
	c, _ := newTestServer(t, 12)
	ctx := t.Context()

	j, err := c.RandomJoke(ctx)
	if err != nil || j == nil {
		t.Fatalf("RandomJoke() = %v, %v", j, err)
	}
	ten, err := c.RandomTen(ctx)
	if err != nil || len(ten) != 10 {
		t.Fatalf("RandomTen() = %d, %v", len(ten), err)
	}
	five, err := c.RandomN(ctx, 5)
	if err != nil || len(five) != 5 {
		t.Fatalf("RandomN(5) = %d, %v", len(five), err)
	}

	_, err = c.RandomN(ctx, 13)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusOK || apiErr.Message != "The passed path exceeds the number of jokes (12)." {
		t.Errorf("RandomN(13) error = %v", err)
	}
	_, err = c.RandomN(ctx, 0)
	if !errors.As(err, &apiErr) || apiErr.Message != "The passed path is not a number." {
		t.Errorf("RandomN(0) error = %v", err)
	}

	typed, err := c.ByType(ctx, "b", true)
	if err != nil || len(typed) != 4 {
		t.Fatalf("ByType(b, ten) = %d, %v", len(typed), err)
	}
	for _, j := range typed {
		if j.Type != "b" {
			t.Errorf("unexpected type %q", j.Type)
		}
	}
}

func TestClient_RandomJokeEmpty(t *testing.T) {
	c, _ := newTestServer(t, 0)
	j, err := c.RandomJoke(t.Context())
	if err != nil || j != nil {
		t.Errorf("RandomJoke() on empty = %v, %v", j, err)
	}
}

func TestClient_CRUD(t *testing.T) {
	c, store := newTestServer(t, 3)
	ctx := t.Context()

	created, err := c.Create(ctx, entity.Fields{Type: "d", Setup: "s", Punchline: "p"})
	if err != nil || created.ID != 4 {
		t.Fatalf("Create() = %+v, %v", created, err)
	}
	got, err := c.Get(ctx, 4)
	if err != nil || got.Setup != "s" {
		t.Fatalf("Get(4) = %+v, %v", got, err)
	}
	updated, err := c.Update(ctx, 4, entity.Fields{Type: "d", Setup: "s2", Punchline: "p"})
	if err != nil || updated.Setup != "s2" {
		t.Fatalf("Update(4) = %+v, %v", updated, err)
	}
	types, err := c.Types(ctx)
	if err != nil || strings.Join(types, ",") != "a,b,c,d" {
		t.Fatalf("Types() = %v, %v", types, err)
	}
	if err := c.Delete(ctx, 4); err != nil {
		t.Fatalf("Delete(4) = %v", err)
	}
	if store.Count() != 3 {
		t.Errorf("Count() = %d", store.Count())
	}

	var apiErr *APIError
	if _, err := c.Get(ctx, 4); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "joke not found" {
		t.Errorf("Get(4) after delete = %v", err)
	}
	if _, err := c.Create(ctx, entity.Fields{Type: "x"}); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Invalid joke data" {
		t.Errorf("Create(partial) = %v", err)
	}
	if err := c.Delete(ctx, 999); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "Joke not found" {
		t.Errorf("Delete(999) = %v", err)
	}
}
