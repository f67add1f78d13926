// Package main is the entry point for the jokedb server.
//
// jokedb serves a collection of jokes over HTTP. The collection lives in a
// JSON document or an SQLite database. Configuration is read from an optional
// config file (JSON, YAML or TOML) and CLI flags, flags taking precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/maruel/jokedb/internal/config"
	"github.com/maruel/jokedb/internal/server"
	"github.com/maruel/jokedb/internal/server/ipgeo"
	"github.com/maruel/jokedb/internal/server/metrics"
	"github.com/maruel/jokedb/internal/server/ratelimit"
	"github.com/maruel/jokedb/internal/storage"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "jokedb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Config file (.json, .yaml, .yml or .toml)")
	httpAddr := flag.String("http", "", "Address to listen on (e.g., localhost:3005, :3005). Defaults to the config value, or PORT")
	dataFile := flag.String("data", "", "JSON document or SQLite database holding the jokes")
	storageKind := flag.String("storage", "", "Storage backend (json, sqlite)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	geoDB := flag.String("geo-db", "", "Path to MaxMind MMDB file for IP geolocation (optional)")
	strictNotFound := flag.Bool("strict-not-found", false, "Answer 404 instead of 500 when updating or deleting an unknown joke")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			skip := false
			switch t := a.Value.Any().(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case int64:
				skip = t == 0
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if set["http"] {
		cfg.HTTP = *httpAddr
	}
	if set["data"] {
		cfg.DataFile = *dataFile
	}
	if set["storage"] {
		cfg.Storage = *storageKind
	}
	if set["geo-db"] {
		cfg.GeoDB = *geoDB
	}
	if set["strict-not-found"] {
		cfg.StrictNotFound = *strictNotFound
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	addr := listenAddr(cfg.HTTP, set["http"], os.Getenv("PORT"))

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	m := metrics.New()
	store := storage.NewStore(repo, m.SetJokes)
	defer func() {
		if err := store.Close(); err != nil {
			slog.ErrorContext(ctx, "Failed to close storage", "err", err)
		}
	}()
	if err := store.Load(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Loaded jokes", "storage", cfg.Storage, "path", cfg.DataFile, "count", store.Count())

	limits := ratelimit.NewConfig(cfg.RateLimits)
	defer limits.Close()

	var geoChecker *ipgeo.Checker
	if cfg.GeoDB != "" {
		geoChecker, err = ipgeo.Open(cfg.GeoDB)
		if err != nil {
			return fmt.Errorf("failed to open geo database: %w", err)
		}
		defer func() { _ = geoChecker.Close() }()
		slog.InfoContext(ctx, "IP geolocation enabled", "db", cfg.GeoDB)
	}

	// Watch own executable for modifications (for development restarts)
	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	buildVersion, _, _, _ := getBuildInfo()
	httpServer := &http.Server{
		Addr: addr,
		Handler: server.NewRouter(&server.Config{
			Store:               store,
			Version:             buildVersion,
			StrictNotFound:      cfg.StrictNotFound,
			MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
			RateLimits:          limits,
			Metrics:             m,
			IPGeo:               geoChecker,
		}),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// listenAddr returns the address to listen on.
//
// An explicit -http wins. Otherwise PORT, when set, listens on all
// interfaces. A configured ":3005" becomes "localhost:3005".
func listenAddr(configured string, explicit bool, port string) string {
	if !explicit && port != "" {
		return ":" + port
	}
	if strings.HasPrefix(configured, ":") {
		return "localhost" + configured
	}
	return configured
}

// openRepository opens the backend selected by cfg.Storage.
func openRepository(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755); err != nil { //nolint:gosec // G301: data directory
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		repo, err := storage.NewSQLite(ctx, cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return repo, nil
	default:
		repo, err := storage.NewJSONFile(cfg.DataFile, cfg.AtomicWrites)
		if err != nil {
			return nil, fmt.Errorf("failed to open jokes file: %w", err)
		}
		return repo, nil
	}
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("jokedb %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

// watchExecutable calls stop when the current executable is rewritten, so a
// rebuilt binary can be restarted by a supervisor.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
