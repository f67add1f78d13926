package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/maruel/ksid"

	"github.com/maruel/jokedb/internal/server/ipgeo"
	"github.com/maruel/jokedb/internal/server/reqctx"
)

// corsMiddleware allows any origin to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next.ServeHTTP(w, r)
	})
}

// requestMetadataMiddleware stores the request ID, client IP and country in
// the context, echoes the ID in X-Request-ID and logs one line per request.
func requestMetadataMiddleware(geo *ipgeo.Checker, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ksid.NewID()
		ip := reqctx.GetClientIP(r)
		ctx := reqctx.WithRequestID(r.Context(), id)
		ctx = reqctx.WithClientIP(ctx, ip)
		country := ""
		if geo != nil {
			country = geo.CountryCode(ip)
			ctx = reqctx.WithCountryCode(ctx, country)
		}
		w.Header().Set("X-Request-ID", id.String())

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))

		level := slog.LevelInfo
		if rw.status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"dur", time.Since(start).Round(time.Microsecond),
			"ip", ip,
			"country", country,
			"rid", id.String(),
		)
	})
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.status = statusCode
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
