// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/maruel/jokedb/internal/query"
	"github.com/maruel/jokedb/internal/server/handlers"
	"github.com/maruel/jokedb/internal/server/ipgeo"
	"github.com/maruel/jokedb/internal/server/metrics"
	"github.com/maruel/jokedb/internal/server/ratelimit"
	"github.com/maruel/jokedb/internal/storage"
)

// Config holds everything the router needs.
type Config struct {
	Store   *storage.Store
	Version string

	// Rand picks random jokes. Defaults to query.Default.
	Rand query.Rand
	// StrictNotFound answers 404 instead of 500 when updating or deleting an
	// unknown id.
	StrictNotFound      bool
	MaxRequestBodyBytes int64

	// Optional.
	RateLimits *ratelimit.Config
	Metrics    *metrics.Metrics
	IPGeo      *ipgeo.Checker
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *Config) http.Handler {
	mux := &http.ServeMux{}
	jh := handlers.NewJokeHandler(cfg.Store, cfg.Rand, cfg.StrictNotFound)
	hh := handlers.NewHealthHandler(cfg.Version)
	sh := handlers.NewSchemaHandler()
	limit := cfg.MaxRequestBodyBytes

	mux.Handle("GET /{$}", Wrap(hh.Usage, limit))
	mux.Handle("GET /ping", Wrap(hh.Ping, limit))
	mux.Handle("GET /health", Wrap(hh.Health, limit))

	// Random selection.
	mux.Handle("GET /random_joke", Wrap(jh.RandomJoke, limit))
	mux.Handle("GET /random_ten", Wrap(jh.RandomTen, limit))
	mux.Handle("GET /jokes/random", Wrap(jh.RandomJoke, limit))
	mux.Handle("GET /jokes/ten", Wrap(jh.RandomTen, limit))
	mux.Handle("GET /jokes/random/{num}", Wrap(jh.RandomJokes, limit))
	mux.Handle("GET /jokes/{type}/{action}", Wrap(jh.TypedJokes, limit))

	// Collection.
	mux.Handle("GET /jokes/paginated", Wrap(jh.PaginatedJokes, limit))
	mux.Handle("GET /jokes/schema", Wrap(sh.JokeSchema, limit))
	mux.Handle("GET /jokes", Wrap(jh.ListJokes, limit))
	mux.Handle("GET /types", Wrap(jh.ListTypes, limit))
	mux.Handle("GET /jokes/{id}", Wrap(jh.GetJoke, limit))
	mux.Handle("POST /jokes", Wrap(jh.CreateJoke, limit))
	mux.Handle("PUT /jokes/{id}", Wrap(jh.UpdateJoke, limit))
	mux.Handle("DELETE /jokes/{id}", Wrap(jh.DeleteJoke, limit))

	// Preflight.
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var h http.Handler = mux
	if cfg.RateLimits != nil {
		h = cfg.RateLimits.Middleware(h)
	}
	// Outside the limiter so throttled requests are counted too.
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
		h = cfg.Metrics.Middleware(h)
	}
	h = corsMiddleware(h)
	return requestMetadataMiddleware(cfg.IPGeo, h)
}
