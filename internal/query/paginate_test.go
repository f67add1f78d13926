package query

import (
	"math"
	"slices"
	"testing"

	"github.com/maruel/jokedb/internal/storage/entity"
)

func ids(jokes []entity.Joke) []int {
	out := make([]int, len(jokes))
	for i := range jokes {
		out[i] = jokes[i].ID
	}
	return out
}

func TestPaginate_Unsorted(t *testing.T) {
	jokes := makeJokes("a", "b", "c", "d", "e")
	tests := []struct {
		name        string
		from, limit int
		want        []int
		hasMore     bool
	}{
		{"first page", 0, 2, []int{1, 2}, true},
		{"middle page", 2, 2, []int{3, 4}, true},
		{"last page", 4, 2, []int{5}, false},
		{"exact end", 3, 2, []int{4, 5}, false},
		{"beyond end", 10, 2, []int{}, false},
		{"zero limit", 1, 0, []int{}, true},
		{"whole", 0, 5, []int{1, 2, 3, 4, 5}, false},
		{"saturated from", math.MaxInt, 2, []int{}, false},
		{"saturated limit", 1, math.MaxInt, []int{2, 3, 4, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(jokes, tt.from, tt.limit, SortNone, SortDefault)
			if got := ids(p.Jokes); !slices.Equal(got, tt.want) {
				t.Errorf("Jokes = %v, want %v", got, tt.want)
			}
			if p.HasMore != tt.hasMore {
				t.Errorf("HasMore = %v, want %v", p.HasMore, tt.hasMore)
			}
			if p.Total != 5 {
				t.Errorf("Total = %d, want 5", p.Total)
			}
		})
	}
}

func TestPaginate_SortedPagesConcatenate(t *testing.T) {
	jokes := makeJokes("pun", "dad", "general", "knock-knock", "dad", "programming", "pun", "anti")
	for _, order := range []SortOrder{SortAsc, SortDefault, SortDesc} {
		t.Run(string(order), func(t *testing.T) {
			var all []entity.Joke
			for from := 0; ; from += 3 {
				p := Paginate(jokes, from, 3, SortType, order)
				all = append(all, p.Jokes...)
				if !p.HasMore {
					break
				}
			}
			if len(all) != len(jokes) {
				t.Fatalf("pages hold %d jokes, want %d", len(all), len(jokes))
			}
			for i := 1; i < len(all); i++ {
				a, b := all[i-1].Type, all[i].Type
				if order == SortDesc && a < b {
					t.Errorf("not non-increasing at %d: %q < %q", i, a, b)
				}
				if order != SortDesc && a > b {
					t.Errorf("not non-decreasing at %d: %q > %q", i, a, b)
				}
			}
		})
	}
}

func TestPaginate_DoesNotMutate(t *testing.T) {
	jokes := makeJokes("c", "b", "a")
	_ = Paginate(jokes, 0, 3, SortType, SortAsc)
	if got := ids(jokes); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("input reordered: %v", got)
	}
	p := Paginate(jokes, 0, 3, SortNone, SortDefault)
	p.Jokes[0].Type = "mutated"
	if jokes[0].Type == "mutated" {
		t.Error("page aliases the input")
	}
}

func TestPaginate_SortByID(t *testing.T) {
	jokes := makeJokes("a", "b", "c")
	p := Paginate(jokes, 0, 2, SortID, SortDesc)
	if got := ids(p.Jokes); !slices.Equal(got, []int{3, 2}) {
		t.Errorf("Jokes = %v, want [3 2]", got)
	}
}

func TestParseSort(t *testing.T) {
	for _, s := range []string{"", "id", "type", "setup", "punchline"} {
		if _, err := ParseSortField(s); err != nil {
			t.Errorf("ParseSortField(%q) = %v", s, err)
		}
	}
	if _, err := ParseSortField("Type"); err == nil {
		t.Error("ParseSortField(Type) succeeded")
	}
	for _, s := range []string{"", "asc", "desc"} {
		if _, err := ParseSortOrder(s); err != nil {
			t.Errorf("ParseSortOrder(%q) = %v", s, err)
		}
	}
	if _, err := ParseSortOrder("up"); err == nil {
		t.Error("ParseSortOrder(up) succeeded")
	}
}
