package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maruel/jokedb/internal/config"
	"github.com/maruel/jokedb/internal/server/dto"
)

func TestWriteHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteHeaders(w, Result{
		Allowed:   true,
		Limit:     60,
		Remaining: 45,
		ResetAt:   time.Unix(1706012345, 0),
	})
	if got := w.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("X-RateLimit-Limit = %s, want 60", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "45" {
		t.Errorf("X-RateLimit-Remaining = %s, want 45", got)
	}
	if got := w.Header().Get("X-RateLimit-Reset"); got != "1706012345" {
		t.Errorf("X-RateLimit-Reset = %s, want 1706012345", got)
	}
	if got := w.Header().Get("Retry-After"); got != "" {
		t.Errorf("Retry-After should not be set for allowed requests, got %s", got)
	}
}

func TestWriteHeaders_RateLimited(t *testing.T) {
	w := httptest.NewRecorder()
	WriteHeaders(w, Result{RetryAfter: 30 * time.Second})
	if got := w.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %s, want 30", got)
	}
}

func TestBuildKey(t *testing.T) {
	if got := BuildKey("192.168.1.1", "read"); got != "ip:192.168.1.1:read" {
		t.Errorf("BuildKey() = %s", got)
	}
}

func TestRateLimitResponseWriter_HeadersOnlyOnce(t *testing.T) {
	underlying := httptest.NewRecorder()
	rw := NewResponseWriter(underlying, Result{Allowed: true, Limit: 100, Remaining: 99})
	rw.WriteHeader(http.StatusOK)
	if _, err := rw.Write([]byte("first")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := underlying.Header().Get("X-RateLimit-Limit"); got != "100" {
		t.Errorf("X-RateLimit-Limit = %s, want 100", got)
	}
	if underlying.Body.String() != "first" {
		t.Errorf("Body = %s", underlying.Body.String())
	}
}

func TestMiddleware(t *testing.T) {
	limits := config.Default().RateLimits
	limits.Write = config.Limit{Requests: 2, WindowSeconds: 60, Burst: 2}
	cfg := NewConfig(limits)
	defer cfg.Close()

	calls := 0
	h := cfg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/jokes", http.NoBody)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}
	for i := range 2 {
		if w := do("192.0.2.1:1234"); w.Code != http.StatusCreated {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	w := do("192.0.2.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Type != "error" || body.Message != "Too many requests, please try again later." {
		t.Errorf("unexpected body %+v", body)
	}
	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
	if w := do("192.0.2.2:1234"); w.Code != http.StatusCreated {
		t.Errorf("other client throttled: %d", w.Code)
	}
}
