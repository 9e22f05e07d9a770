// Package config resolves learnhub settings from defaults, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/mod/semver"

	"github.com/abhisek/learnhub/internal/store"
)

// Config holds all client configuration.
type Config struct {
	// APIURL is the REST backend base URL.
	APIURL string

	// DBPath is the SQLite file backing the durable store.
	DBPath string

	// Timeout bounds a single REST request. Default: 15s.
	Timeout time.Duration

	// LogPath is where diagnostic logs go. Empty disables logging.
	LogPath string

	// ContentPreview shows course content before its questions.
	ContentPreview bool

	// MinAPIVersion is the oldest backend API version this client accepts.
	MinAPIVersion string

	// RequestLogKeep is how many API request events are retained.
	RequestLogKeep int

	// ExportDir receives downloaded certificates and profile pictures.
	ExportDir string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cfg := Config{
		APIURL:         "http://localhost:8080/api",
		Timeout:        15 * time.Second,
		ContentPreview: true,
		MinAPIVersion:  "v1.0.0",
		RequestLogKeep: 1000,
		ExportDir:      ".",
	}
	if p, err := store.DefaultDBPath(); err == nil {
		cfg.DBPath = p
	}
	if dir, err := store.DataDir(); err == nil {
		cfg.LogPath = dir + string(os.PathSeparator) + "learnhub.log"
	}
	return cfg
}

// Load reads an optional .env file and then the environment. A missing
// .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from LEARNHUB_* environment variables, falling
// back to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("LEARNHUB_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("LEARNHUB_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LEARNHUB_LOG"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("LEARNHUB_MIN_API_VERSION"); v != "" {
		cfg.MinAPIVersion = v
	}
	if v := os.Getenv("LEARNHUB_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("LEARNHUB_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("LEARNHUB_CONTENT_PREVIEW"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("LEARNHUB_CONTENT_PREVIEW: %w", err)
		}
		cfg.ContentPreview = b
	}
	if v := os.Getenv("LEARNHUB_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("LEARNHUB_REQUEST_LOG_KEEP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("LEARNHUB_REQUEST_LOG_KEEP: %w", err)
		}
		cfg.RequestLogKeep = n
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("API URL must be an absolute http(s) URL, got %q", c.APIURL)
	}
	if c.DBPath == "" {
		return errors.New("database path is required (set LEARNHUB_DB)")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MinAPIVersion != "" && !semver.IsValid(c.MinAPIVersion) {
		return fmt.Errorf("minimum API version %q is not a semantic version", c.MinAPIVersion)
	}
	if c.ExportDir == "" {
		return errors.New("export directory is required")
	}
	if c.RequestLogKeep < 0 {
		return fmt.Errorf("request log size must not be negative, got %d", c.RequestLogKeep)
	}
	return nil
}
