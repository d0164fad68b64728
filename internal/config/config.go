// Package config reads settings from the environment, optionally seeded from
// a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/constellate/internal/theme"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Library
	Dir   string
	Watch bool

	// Site
	Theme        string
	ThemesFile   string
	ColorMode    string
	PanelURL     string
	StaticDir    string
	BasePath     string
	MaxTableRows int

	// Auth
	APIKey string

	// Import pipeline
	WorkerCount    int
	MaxQueueSize   int
	MaxUploadBytes int64
	JobTTL         time.Duration
	PageSizeWords  int

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

// Load reads the environment. Values from envFiles (default ".env") fill in
// variables that are not already set; missing files are ignored.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	cfg := Config{
		Port: envOr("PORT", "8090"),

		Dir:   envOr("CONSTELLATION_DIR", "constellations"),
		Watch: envBool("WATCH", true),

		Theme:        envOr("CONSTELLATE_THEME", "default"),
		ThemesFile:   os.Getenv("CONSTELLATE_THEMES_FILE"),
		ColorMode:    envOr("COLOR_MODE", "light"),
		PanelURL:     os.Getenv("PANEL_URL"),
		StaticDir:    os.Getenv("STATIC_DIR"),
		BasePath:     os.Getenv("BASE_PATH"),
		MaxTableRows: envInt("MAX_TABLE_ROWS", 100),

		APIKey: os.Getenv("CONSTELLATE_API_KEY"),

		WorkerCount:    envInt("WORKER_COUNT", 2),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 100),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
		PageSizeWords:  envInt("PAGE_SIZE_WORDS", 250),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.PageSizeWords <= 0 {
		cfg.PageSizeWords = 250
	}
	if cfg.MaxTableRows < 0 {
		cfg.MaxTableRows = 0
	}

	return cfg
}

// Validate checks values that have no safe fallback.
func (c Config) Validate() error {
	var errs []error
	if c.Dir == "" {
		errs = append(errs, errors.New("CONSTELLATION_DIR is required"))
	}
	if _, err := theme.ParseColorMode(c.ColorMode); err != nil {
		errs = append(errs, fmt.Errorf("COLOR_MODE: %w", err))
	}
	if _, err := c.LogLevelValue(); err != nil {
		errs = append(errs, err)
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		errs = append(errs, fmt.Errorf("BASE_PATH must start with /: %q", c.BasePath))
	}
	if c.StaticDir != "" {
		if info, err := os.Stat(c.StaticDir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("STATIC_DIR %q is not a directory", c.StaticDir))
		}
	}
	return errors.Join(errs...)
}

// Themes returns the builtin themes merged with ThemesFile, if set.
func (c Config) Themes() (theme.Set, error) {
	set := theme.Builtin()
	if c.ThemesFile != "" {
		if err := set.LoadFile(c.ThemesFile); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// LogLevelValue parses LogLevel.
func (c Config) LogLevelValue() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
