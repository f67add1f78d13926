// Request types with path/query/json struct tags for parameter binding.

package dto

import (
	"math"
	"strconv"
	"strings"

	"github.com/maruel/jokedb/internal/query"
)

// EmptyRequest is the request type for endpoints without parameters.
type EmptyRequest struct{}

// Validate implements Validatable.
func (r *EmptyRequest) Validate() error {
	return nil
}

// RandomJokesRequest asks for num distinct random jokes.
//
// Num is kept as a string: a non-numeric value is answered by the handler,
// not rejected as a bad request.
type RandomJokesRequest struct {
	Num string `path:"num"`

	n int
}

// Validate implements Validatable.
func (r *RandomJokesRequest) Validate() error {
	r.n, _ = parseInt(r.Num)
	return nil
}

// N returns the requested count, or 0 when Num does not start with a
// number.
func (r *RandomJokesRequest) N() int { return r.n }

// PaginatedJokesRequest asks for one page of jokes.
type PaginatedJokesRequest struct {
	From      string `query:"from"`
	Number    string `query:"number"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`

	from   int
	number int
	field  query.SortField
	order  query.SortOrder
}

// Validate implements Validatable. from and number must be non-negative
// integers; sortBy and sortOrder must be known values when set.
func (r *PaginatedJokesRequest) Validate() error {
	from, ok := parseInt(r.From)
	if !ok || from < 0 {
		return InvalidQueryParameters()
	}
	number, ok := parseInt(r.Number)
	if !ok || number < 0 {
		return InvalidQueryParameters()
	}
	field, err := query.ParseSortField(r.SortBy)
	if err != nil {
		return InvalidSortParameters()
	}
	order, err := query.ParseSortOrder(r.SortOrder)
	if err != nil {
		return InvalidSortParameters()
	}
	r.from, r.number, r.field, r.order = from, number, field, order
	return nil
}

// Offset returns the parsed from parameter.
func (r *PaginatedJokesRequest) Offset() int { return r.from }

// Limit returns the parsed number parameter.
func (r *PaginatedJokesRequest) Limit() int { return r.number }

// Sort returns the parsed sort field and order.
func (r *PaginatedJokesRequest) Sort() (query.SortField, query.SortOrder) {
	return r.field, r.order
}

// TypedJokesRequest asks for random jokes of one type.
//
// Action is "random" for one joke or "ten" for up to ten.
type TypedJokesRequest struct {
	Type   string `path:"type"`
	Action string `path:"action"`
}

// Validate implements Validatable.
func (r *TypedJokesRequest) Validate() error {
	if r.Action != "random" && r.Action != "ten" {
		return NotFound("route")
	}
	return nil
}

// JokeIDRequest addresses one joke by id.
//
// ID stays a string so a non-numeric id is answered like an unknown one.
type JokeIDRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *JokeIDRequest) Validate() error {
	return nil
}

// CreateJokeRequest is the body of POST /jokes. Unknown fields, such as an
// id sent by a client, are ignored.
type CreateJokeRequest struct {
	Type      string `json:"type" jsonschema:"minLength=1,description=Joke category such as general or programming"`
	Setup     string `json:"setup" jsonschema:"minLength=1,description=Question or lead-in"`
	Punchline string `json:"punchline" jsonschema:"minLength=1,description=Answer to the setup"`
}

// Validate implements Validatable.
func (r *CreateJokeRequest) Validate() error {
	if r.Type == "" || r.Setup == "" || r.Punchline == "" {
		return InvalidJokeData()
	}
	return nil
}

// UpdateJokeRequest is the body of PUT /jokes/{id}. The id comes from the
// path; an id in the body is ignored.
type UpdateJokeRequest struct {
	ID        string `path:"id" json:"-"`
	Type      string `json:"type"`
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// Validate implements Validatable.
func (r *UpdateJokeRequest) Validate() error {
	if r.Type == "" || r.Setup == "" || r.Punchline == "" {
		return InvalidJokeData()
	}
	return nil
}

// parseInt reads the integer prefix of s after leading white space and an
// optional sign. A "0x" prefix selects hexadecimal. "12abc" is 12, "0x10" is
// 16, "abc" is not a number. Values out of range saturate.
func parseInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < base {
		end++
	}
	if end == 0 {
		return 0, false
	}
	u, err := strconv.ParseUint(s[:end], base, 64)
	if err != nil || u > math.MaxInt {
		if neg {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if neg {
		return -int(u), true
	}
	return int(u), true
}

func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return 99
}
