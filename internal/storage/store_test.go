package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/maruel/jokedb/internal/storage/entity"
)

const seedDocument = `[
  {"id": 17, "type": "pun", "setup": "s1", "punchline": "p1"},
  {"type": "pun", "setup": "s2", "punchline": "p2"},
  {"id": 3, "type": "dad", "setup": "s3", "punchline": "p3"}
]`

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jokes.json")
	if err := os.WriteFile(path, []byte(seedDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	repo, err := NewJSONFile(path, true)
	if err != nil {
		t.Fatalf("NewJSONFile: %v", err)
	}
	s := NewStore(repo, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, path
}

func TestStore_Load(t *testing.T) {
	s, path := newTestStore(t)
	all := s.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 jokes, got %d", len(all))
	}
	for i, j := range all {
		if j.ID != i+1 {
			t.Errorf("joke %d has id %d, want %d", i, j.ID, i+1)
		}
	}
	if s.Count() != 3 {
		t.Errorf("Count() = %d, want 3", s.Count())
	}
	// Loading does not rewrite the document.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != seedDocument {
		t.Errorf("document was modified on load:\n%s", data)
	}
}

func TestStore_InsertGet(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()
	f := entity.Fields{Type: "knock-knock", Setup: "Who's there?", Punchline: "Lettuce."}
	j, err := s.Insert(ctx, f)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if j.ID != 4 {
		t.Errorf("new id = %d, want 4", j.ID)
	}
	got, ok := s.Get(j.ID)
	if !ok {
		t.Fatal("Get after Insert: not found")
	}
	if got != f.Joke(4) {
		t.Errorf("Get() = %+v, want %+v", got, f.Joke(4))
	}

	// The document now holds the renumbered ids and the new joke.
	repo, err := NewJSONFile(path, true)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 || rows[0].ID != 1 || rows[1].ID != 2 || rows[3] != j {
		t.Errorf("persisted rows = %+v", rows)
	}
}

func TestStore_InsertValidation(t *testing.T) {
	s, path := newTestStore(t)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Insert(context.Background(), entity.Fields{Type: "x"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Insert() error = %v, want ErrValidation", err)
	}
	if s.Count() != 3 {
		t.Errorf("Count() = %d after failed insert, want 3", s.Count())
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("document changed after failed insert")
	}
}

func TestStore_Replace(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := entity.Fields{Type: "dad", Setup: "new setup", Punchline: "new punchline"}
	j, err := s.Replace(ctx, 2, f)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if j != f.Joke(2) {
		t.Errorf("Replace() = %+v", j)
	}
	if got, _ := s.Get(2); got != j {
		t.Errorf("Get(2) = %+v, want %+v", got, j)
	}
	if all := s.All(); all[1] != j {
		t.Errorf("position changed: %+v", all)
	}

	if _, err := s.Replace(ctx, 999, f); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace(999) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Replace(ctx, 1, entity.Fields{Type: "dad"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Replace() with missing fields error = %v, want ErrValidation", err)
	}
}

func TestStore_Remove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.Remove(ctx, 2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := s.Get(2); ok {
		t.Error("Get(2) found a removed joke")
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
	if err := s.Remove(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(999) error = %v, want ErrNotFound", err)
	}
	// Ids are not reused after a removal.
	j, err := s.Insert(ctx, entity.Fields{Type: "a", Setup: "b", Punchline: "c"})
	if err != nil {
		t.Fatal(err)
	}
	if j.ID != 4 {
		t.Errorf("id after remove = %d, want 4", j.ID)
	}
}

func TestStore_Types(t *testing.T) {
	s, _ := newTestStore(t)
	if got := strings.Join(s.Types(), ","); got != "pun,dad" {
		t.Errorf("Types() = %q, want %q", got, "pun,dad")
	}
	if _, err := s.Insert(context.Background(), entity.Fields{Type: "general", Setup: "s", Punchline: "p"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(s.Types(), ","); got != "pun,dad,general" {
		t.Errorf("Types() after insert = %q", got)
	}
}

func TestStore_AllIsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	all := s.All()
	all[0].Setup = "mutated"
	if got, _ := s.Get(1); got.Setup == "mutated" {
		t.Error("All() exposed internal storage")
	}
}

func TestStore_OnChange(t *testing.T) {
	repo, err := NewJSONFile(filepath.Join(t.TempDir(), "jokes.json"), false)
	if err != nil {
		t.Fatal(err)
	}
	var counts []int
	s := NewStore(repo, func(n int) { counts = append(counts, n) })
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	j, err := s.Insert(ctx, entity.Fields{Type: "a", Setup: "b", Punchline: "c"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, j.ID); err != nil {
		t.Fatal(err)
	}
	if len(counts) != 3 || counts[0] != 0 || counts[1] != 1 || counts[2] != 0 {
		t.Errorf("onChange calls = %v, want [0 1 0]", counts)
	}
}

func TestStore_ConcurrentInsert(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()
	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			if _, err := s.Insert(ctx, entity.Fields{Type: "c", Setup: "s", Punchline: "p"}); err != nil {
				t.Errorf("Insert: %v", err)
			}
		})
	}
	wg.Wait()

	seen := map[int]bool{}
	for _, j := range s.All() {
		if seen[j.ID] {
			t.Errorf("duplicate id %d", j.ID)
		}
		seen[j.ID] = true
	}
	if s.Count() != 3+n {
		t.Errorf("Count() = %d, want %d", s.Count(), 3+n)
	}
	repo, err := NewJSONFile(path, true)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3+n {
		t.Errorf("persisted %d rows, want %d", len(rows), 3+n)
	}
}

// failingRepo fails every mutation.
type failingRepo struct {
	jokes []entity.Joke
}

var errDiskFull = errors.New("disk full")

func (f *failingRepo) Load(context.Context) ([]entity.Joke, error)   { return f.jokes, nil }
func (f *failingRepo) Renumber(context.Context, []entity.Joke) error { return nil }
func (f *failingRepo) Insert(context.Context, entity.Joke) error     { return errDiskFull }
func (f *failingRepo) Replace(context.Context, entity.Joke) error    { return errDiskFull }
func (f *failingRepo) Remove(context.Context, int) error             { return errDiskFull }
func (f *failingRepo) Close() error                                  { return nil }

func TestStore_PersistFailure(t *testing.T) {
	repo := &failingRepo{jokes: []entity.Joke{{ID: 1, Type: "pun", Setup: "s", Punchline: "p"}}}
	s := NewStore(repo, nil)
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	f := entity.Fields{Type: "a", Setup: "b", Punchline: "c"}
	if _, err := s.Insert(ctx, f); !errors.Is(err, errDiskFull) {
		t.Errorf("Insert() error = %v", err)
	}
	if _, err := s.Replace(ctx, 1, f); !errors.Is(err, errDiskFull) {
		t.Errorf("Replace() error = %v", err)
	}
	if err := s.Remove(ctx, 1); !errors.Is(err, errDiskFull) {
		t.Errorf("Remove() error = %v", err)
	}
	all := s.All()
	if len(all) != 1 || all[0].Type != "pun" {
		t.Errorf("collection changed after failed writes: %+v", all)
	}
	// The id was not consumed by the failed insert.
	if s.lastID != 1 {
		t.Errorf("lastID = %d, want 1", s.lastID)
	}
}
