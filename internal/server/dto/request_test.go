package dto

import (
	"errors"
	"math"
	"testing"

	"github.com/maruel/jokedb/internal/query"
)

func TestPaginatedJokesRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PaginatedJokesRequest
		wantErr string
	}{
		{"defaults", PaginatedJokesRequest{From: "0", Number: "10"}, ""},
		{"sorted", PaginatedJokesRequest{From: "5", Number: "5", SortBy: "type", SortOrder: "desc"}, ""},
		{"missing from", PaginatedJokesRequest{Number: "10"}, "Invalid query parameters"},
		{"negative", PaginatedJokesRequest{From: "-1", Number: "10"}, "Invalid query parameters"},
		{"not a number", PaginatedJokesRequest{From: "0", Number: "ten"}, "Invalid query parameters"},
		{"unknown field", PaginatedJokesRequest{From: "0", Number: "10", SortBy: "rating"}, "Invalid sort parameters"},
		{"unknown order", PaginatedJokesRequest{From: "0", Number: "10", SortBy: "id", SortOrder: "up"}, "Invalid sort parameters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Error() != tt.wantErr || !apiErr.Text() {
				t.Fatalf("got %v, want text error %q", err, tt.wantErr)
			}
		})
	}

	req := PaginatedJokesRequest{From: "5", Number: "3", SortBy: "setup", SortOrder: "asc"}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	field, order := req.Sort()
	if req.Offset() != 5 || req.Limit() != 3 || field != query.SortSetup || order != query.SortAsc {
		t.Errorf("parsed %d %d %q %q", req.Offset(), req.Limit(), field, order)
	}
}

func TestJokeRequests_Validate(t *testing.T) {
	if err := (&CreateJokeRequest{Type: "pun", Setup: "s", Punchline: "p"}).Validate(); err != nil {
		t.Errorf("complete create: %v", err)
	}
	if err := (&CreateJokeRequest{Type: "x"}).Validate(); err == nil || err.Error() != "Invalid joke data" {
		t.Errorf("partial create: %v", err)
	}
	if err := (&UpdateJokeRequest{ID: "1", Setup: "s", Punchline: "p"}).Validate(); err == nil {
		t.Error("update without type accepted")
	}
	if err := (&TypedJokesRequest{Type: "pun", Action: "ten"}).Validate(); err != nil {
		t.Errorf("ten: %v", err)
	}
	if err := (&TypedJokesRequest{Type: "pun", Action: "eleven"}).Validate(); err == nil {
		t.Error("unknown action accepted")
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"5", 5, true},
		{"  12abc", 12, true},
		{"-3", -3, true},
		{"+4", 4, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"0x10", 16, true},
		{"0XfFz", 255, true},
		{"-0x10", -16, true},
		{"0x", 0, false},
		{"\v7", 7, true},
		{"99999999999999999999999", math.MaxInt, true},
		{"-99999999999999999999999", math.MinInt, true},
	}
	for _, tt := range tests {
		got, ok := parseInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRandomJokesRequest_N(t *testing.T) {
	for in, want := range map[string]int{"3": 3, "3x": 3, "x": 0, "0": 0, "-2": -2} {
		r := RandomJokesRequest{Num: in}
		if err := r.Validate(); err != nil {
			t.Fatal(err)
		}
		if got := r.N(); got != want {
			t.Errorf("N(%q) = %d, want %d", in, got, want)
		}
	}
}
