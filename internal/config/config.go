// Package config loads the server configuration.
//
// The file format is selected by extension: .json, .yaml/.yml or .toml.
// Missing fields keep their defaults.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config stores all server-wide configuration.
type Config struct {
	// HTTP is the address to listen on.
	HTTP string `json:"http" yaml:"http" toml:"http"`

	// DataFile is the JSON document or SQLite database holding the jokes.
	DataFile string `json:"data_file" yaml:"data_file" toml:"data_file"`

	// Storage selects the backend: "json" or "sqlite".
	Storage string `json:"storage" yaml:"storage" toml:"storage"`

	// AtomicWrites makes the JSON backend write through a temporary file
	// and rename it over the document.
	AtomicWrites bool `json:"atomic_writes" yaml:"atomic_writes" toml:"atomic_writes"`

	// StrictNotFound answers 404 instead of 500 when PUT or DELETE target an
	// unknown id.
	StrictNotFound bool `json:"strict_not_found" yaml:"strict_not_found" toml:"strict_not_found"`

	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	MaxRequestBodyBytes int64 `json:"max_request_body_bytes" yaml:"max_request_body_bytes" toml:"max_request_body_bytes"`

	// GeoDB is an optional MaxMind MMDB file used to annotate request logs.
	GeoDB string `json:"geo_db" yaml:"geo_db" toml:"geo_db"`

	// RateLimits defines per-IP rate limiting.
	RateLimits RateLimits `json:"rate_limits" yaml:"rate_limits" toml:"rate_limits"`
}

// RateLimits defines the rate limiting tiers.
type RateLimits struct {
	// Read applies to GET, HEAD and OPTIONS.
	Read Limit `json:"read" yaml:"read" toml:"read"`
	// Write applies to POST, PUT and DELETE.
	Write Limit `json:"write" yaml:"write" toml:"write"`
}

// Limit is a token bucket: Requests per window with Burst capacity.
// Requests 0 disables the tier.
type Limit struct {
	Requests      int `json:"requests" yaml:"requests" toml:"requests"`
	WindowSeconds int `json:"window_seconds" yaml:"window_seconds" toml:"window_seconds"`
	Burst         int `json:"burst" yaml:"burst" toml:"burst"`
}

// Window returns the window as a duration.
func (l *Limit) Window() time.Duration {
	return time.Duration(l.WindowSeconds) * time.Second
}

// Validate checks that limit values are usable.
func (l *Limit) Validate() error {
	if l.Requests < 0 {
		return errors.New("requests must be non-negative")
	}
	if l.Requests == 0 {
		return nil
	}
	if l.WindowSeconds <= 0 {
		return errors.New("window_seconds must be positive")
	}
	if l.Burst <= 0 {
		return errors.New("burst must be positive")
	}
	return nil
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		HTTP:                "localhost:3005",
		DataFile:            "./data/jokes.json",
		Storage:             StorageJSON,
		AtomicWrites:        true,
		MaxRequestBodyBytes: 1 << 20, // 1 MiB
		RateLimits: RateLimits{
			Read:  Limit{Requests: 100, WindowSeconds: 20 * 60, Burst: 100},
			Write: Limit{Requests: 60, WindowSeconds: 60, Burst: 10},
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.HTTP == "" {
		return errors.New("http is required")
	}
	if c.DataFile == "" {
		return errors.New("data_file is required")
	}
	switch c.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StorageJSON, StorageSQLite, c.Storage)
	}
	if c.MaxRequestBodyBytes < 0 {
		return errors.New("max_request_body_bytes must be non-negative")
	}
	if err := c.RateLimits.Read.Validate(); err != nil {
		return fmt.Errorf("rate_limits.read: %w", err)
	}
	if err := c.RateLimits.Write.Validate(); err != nil {
		return fmt.Errorf("rate_limits.write: %w", err)
	}
	return nil
}

// Load reads path on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a command line flag
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		d := json.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		return d.Decode(cfg)
	case ".yaml", ".yml":
		d := yaml.NewDecoder(bytes.NewReader(data))
		d.KnownFields(true)
		if err := d.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		d := toml.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		return d.Decode(cfg)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}
