package client

import (
	"context"

	"github.com/maruel/jokedb/internal/query"
	"github.com/maruel/jokedb/internal/storage/entity"
)

// Mode selects where pages are computed.
type Mode int

const (
	// ModeServer asks the server for every page.
	ModeServer Mode = iota
	// ModeCached downloads the collection once and pages through it locally.
	ModeCached
)

func (m Mode) String() string {
	if m == ModeCached {
		return "cached"
	}
	return "server"
}

// Source is the subset of Client a Browser needs.
type Source interface {
	Paginated(ctx context.Context, from, number int, field query.SortField, order query.SortOrder) (*query.Page, error)
	All(ctx context.Context) ([]entity.Joke, error)
}

// DefaultPageSize is the number of jokes per page.
const DefaultPageSize = 10

// Browser holds the state of a paginated, sortable joke list.
//
// Both modes follow the same contract: the whole collection is sorted, then
// sliced. A Browser is not safe for concurrent use.
type Browser struct {
	src      Source
	mode     Mode
	pageSize int

	page  int
	field query.SortField
	order query.SortOrder
	jokes []entity.Joke
	total int

	cache  []entity.Joke
	loaded bool
}

// NewBrowser returns a Browser on page 1, unsorted. A pageSize <= 0 uses
// DefaultPageSize.
func NewBrowser(src Source, mode Mode, pageSize int) *Browser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Browser{src: src, mode: mode, pageSize: pageSize, page: 1}
}

// FetchPage loads page (1-based) with the current sort.
//
// The state is only updated when the fetch succeeds.
func (b *Browser) FetchPage(ctx context.Context, page int) error {
	page = max(page, 1)
	from := (page - 1) * b.pageSize
	var p *query.Page
	if b.mode == ModeCached {
		if !b.loaded {
			all, err := b.src.All(ctx)
			if err != nil {
				return err
			}
			b.cache, b.loaded = all, true
		}
		pg := query.Paginate(b.cache, from, b.pageSize, b.field, b.order)
		p = &pg
	} else {
		var err error
		if p, err = b.src.Paginated(ctx, from, b.pageSize, b.field, b.order); err != nil {
			return err
		}
	}
	b.jokes = p.Jokes
	b.total = p.Total
	b.page = page
	return nil
}

// ToggleSort cycles the sort of field: a new field starts ascending, then
// descending, then unsorted. The current page is fetched again.
func (b *Browser) ToggleSort(ctx context.Context, field query.SortField) error {
	if b.field == field {
		switch b.order {
		case query.SortAsc:
			b.order = query.SortDesc
		case query.SortDesc:
			b.field, b.order = query.SortNone, query.SortDefault
		default:
			b.order = query.SortAsc
		}
	} else {
		b.field, b.order = field, query.SortAsc
	}
	return b.FetchPage(ctx, b.page)
}

// Invalidate drops the cached collection; the next fetch downloads it again.
func (b *Browser) Invalidate() {
	b.cache, b.loaded = nil, false
}

// Mode returns the pagination mode.
func (b *Browser) Mode() Mode { return b.mode }

// Jokes returns the jokes of the current page.
func (b *Browser) Jokes() []entity.Joke { return b.jokes }

// Total returns the collection size reported with the last page.
func (b *Browser) Total() int { return b.total }

// Page returns the current 1-based page number.
func (b *Browser) Page() int { return b.page }

// Pages returns the number of pages for Total.
func (b *Browser) Pages() int {
	return (b.total + b.pageSize - 1) / b.pageSize
}

// Sort returns the current sort field and order.
func (b *Browser) Sort() (query.SortField, query.SortOrder) {
	return b.field, b.order
}
