// Package entity defines the records persisted by the storage layer.
package entity

import "errors"

// Joke is the atomic record served by the API.
//
// ID is assigned by the store and never supplied by callers on creation.
type Joke struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// Fields returns the caller-owned part of the joke.
func (j *Joke) Fields() Fields {
	return Fields{Type: j.Type, Setup: j.Setup, Punchline: j.Punchline}
}

// Fields is the caller-supplied content of a joke, used on insert and replace.
type Fields struct {
	Type      string `json:"type"`
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

var (
	errTypeRequired      = errors.New("type is required")
	errSetupRequired     = errors.New("setup is required")
	errPunchlineRequired = errors.New("punchline is required")
)

// Validate checks that all three fields are present.
func (f *Fields) Validate() error {
	switch {
	case f.Type == "":
		return errTypeRequired
	case f.Setup == "":
		return errSetupRequired
	case f.Punchline == "":
		return errPunchlineRequired
	}
	return nil
}

// Joke returns a record carrying id and the fields.
func (f *Fields) Joke(id int) Joke {
	return Joke{ID: id, Type: f.Type, Setup: f.Setup, Punchline: f.Punchline}
}
