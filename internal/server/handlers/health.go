package handlers

import (
	"context"

	"github.com/maruel/jokedb/internal/server/dto"
)

const usage = "Try /random_joke, /random_ten, /jokes/random, or /jokes/ten , /jokes/random/<any-number>"

// HealthHandler handles health check, ping and usage requests.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version: version,
	}
}

// Health handles health check requests.
func (h *HealthHandler) Health(ctx context.Context, req *dto.EmptyRequest) (*dto.HealthResponse, error) {
	return &dto.HealthResponse{
		Status:  "ok",
		Version: h.version,
	}, nil
}

// Ping answers "pong".
func (h *HealthHandler) Ping(ctx context.Context, req *dto.EmptyRequest) (*dto.Text, error) {
	t := dto.Text("pong")
	return &t, nil
}

// Usage lists the main routes.
func (h *HealthHandler) Usage(ctx context.Context, req *dto.EmptyRequest) (*dto.Text, error) {
	t := dto.Text(usage)
	return &t, nil
}
