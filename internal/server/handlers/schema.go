package handlers

import (
	"context"

	"github.com/invopop/jsonschema"

	"github.com/maruel/jokedb/internal/server/dto"
)

// SchemaHandler serves the JSON Schema of the joke create and update body.
type SchemaHandler struct {
	schema *jsonschema.Schema
}

// NewSchemaHandler reflects the schema once.
func NewSchemaHandler() *SchemaHandler {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true, AllowAdditionalProperties: true}
	s := r.Reflect(&dto.CreateJokeRequest{})
	s.Title = "Joke"
	return &SchemaHandler{schema: s}
}

// JokeSchema returns the schema.
func (h *SchemaHandler) JokeSchema(ctx context.Context, req *dto.EmptyRequest) (*jsonschema.Schema, error) {
	return h.schema, nil
}
