package query

import (
	"cmp"
	"errors"
	"slices"

	"github.com/maruel/jokedb/internal/storage/entity"
)

// SortField is a joke field a page can be sorted by. The zero value means
// collection order.
type SortField string

// Sortable fields.
const (
	SortNone      SortField = ""
	SortID        SortField = "id"
	SortType      SortField = "type"
	SortSetup     SortField = "setup"
	SortPunchline SortField = "punchline"
)

// SortOrder is the sort direction. Anything but SortDesc sorts ascending.
type SortOrder string

// Sort directions.
const (
	SortDefault SortOrder = ""
	SortAsc     SortOrder = "asc"
	SortDesc    SortOrder = "desc"
)

var (
	errUnknownField = errors.New("unknown sort field")
	errUnknownOrder = errors.New("unknown sort order")
)

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortNone, SortID, SortType, SortSetup, SortPunchline:
		return f, nil
	}
	return SortNone, errUnknownField
}

// ParseSortOrder validates a sort direction.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case SortDefault, SortAsc, SortDesc:
		return o, nil
	}
	return SortDefault, errUnknownOrder
}

// Page is one slice of the collection.
type Page struct {
	Jokes   []entity.Joke `json:"jokes"`
	HasMore bool          `json:"hasMore"`
	Total   int           `json:"total"`
}

// Paginate returns at most limit jokes starting at offset from.
//
// When field is set, the whole collection is sorted on a copy before slicing
// so pages are consistent with each other. Ties keep collection order.
func Paginate(jokes []entity.Joke, from, limit int, field SortField, order SortOrder) Page {
	sorted := jokes
	if field != SortNone {
		sorted = slices.Clone(jokes)
		slices.SortStableFunc(sorted, func(a, b entity.Joke) int {
			c := compareField(&a, &b, field)
			if order == SortDesc {
				return -c
			}
			return c
		})
	}
	total := len(jokes)
	start := min(max(from, 0), total)
	end := start + min(max(limit, 0), total-start)
	page := make([]entity.Joke, end-start)
	copy(page, sorted[start:end])
	return Page{
		Jokes:   page,
		HasMore: end < total,
		Total:   total,
	}
}

func compareField(a, b *entity.Joke, field SortField) int {
	switch field {
	case SortID:
		return cmp.Compare(a.ID, b.ID)
	case SortType:
		return cmp.Compare(a.Type, b.Type)
	case SortSetup:
		return cmp.Compare(a.Setup, b.Setup)
	case SortPunchline:
		return cmp.Compare(a.Punchline, b.Punchline)
	default:
		return 0
	}
}
