package dto

import "net/http"

// Text is a text/plain response body.
type Text string

// Joke is the API representation of a joke.
type Joke struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// JokeList is a JSON array of jokes.
type JokeList []Joke

// TypeList is a JSON array of joke types.
type TypeList []string

// PaginatedJokesResponse is one page of jokes.
type PaginatedJokesResponse struct {
	Jokes   JokeList `json:"jokes"`
	HasMore bool     `json:"hasMore"`
	Total   int      `json:"total"`
}

// CreateJokeResponse is the created joke, answered with 201.
type CreateJokeResponse struct {
	Joke
}

// StatusCode returns 201 Created.
func (*CreateJokeResponse) StatusCode() int { return http.StatusCreated }

// DeleteJokeResponse is the empty answer to a deletion, sent as 204.
type DeleteJokeResponse struct{}

// StatusCode returns 204 No Content.
func (*DeleteJokeResponse) StatusCode() int { return http.StatusNoContent }

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
