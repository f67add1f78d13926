package ratelimit

import (
	"net/http"

	"github.com/maruel/jokedb/internal/config"
)

// Tier is a named limiter applied to a class of requests.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Config holds the read and write tiers.
//
// A nil Limiter disables its tier.
type Config struct {
	Read  Tier
	Write Tier
}

// NewConfig creates the tiers described by limits.
func NewConfig(limits config.RateLimits) *Config {
	return &Config{
		Read:  newTier("read", limits.Read),
		Write: newTier("write", limits.Write),
	}
}

func newTier(name string, l config.Limit) Tier {
	t := Tier{Name: name}
	if l.Requests > 0 {
		t.Limiter = NewLimiter(l.Requests, l.Window(), l.Burst)
	}
	return t
}

// Match returns the tier for a request, or nil when it is not rate limited.
func (c *Config) Match(method, path string) *Tier {
	if path == "/metrics" {
		return nil
	}
	var t *Tier
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		t = &c.Read
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		t = &c.Write
	default:
		return nil
	}
	if t.Limiter == nil {
		return nil
	}
	return t
}

// Close stops all limiter cleanup goroutines.
func (c *Config) Close() {
	if c.Read.Limiter != nil {
		c.Read.Limiter.Close()
	}
	if c.Write.Limiter != nil {
		c.Write.Limiter.Close()
	}
}
