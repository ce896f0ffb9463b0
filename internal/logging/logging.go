// Package logging configures the process-wide zerolog logger and the field
// names shared by render log lines.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Field names used across packages so page loads can be followed by run.
const (
	FieldComponent = "component"
	FieldPage      = "page"
	FieldRunID     = "run_id"
	FieldSection   = "section"
	FieldContainer = "container"
)

const defaultService = "livingroom"

type Config struct {
	Level   string    // falls back to LOG_LEVEL, then info
	Output  io.Writer // defaults to os.Stdout
	Service string    // defaults to "livingroom"
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global logger exactly once. Later calls are ignored.
func Configure(cfg Config) {
	once.Do(func() {
		base = build(cfg)
	})
}

func build(cfg Config) zerolog.Logger {
	raw := cfg.Level
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil || raw == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	service := cfg.Service
	if service == "" {
		service = defaultService
	}
	return zerolog.New(out).With().Timestamp().Str("service", service).Logger()
}

// Bootstrap is a stderr logger for the few lines written before Configure,
// such as .env loading, which must not fix the level too early.
func Bootstrap() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Str("service", defaultService).Logger()
}

func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}

// PageRun annotates parent with one page load.
func PageRun(parent zerolog.Logger, page, runID string) zerolog.Logger {
	return parent.With().Str(FieldPage, page).Str(FieldRunID, runID).Logger()
}

// Section annotates a page run logger with one of its sections.
func Section(run zerolog.Logger, section string) zerolog.Logger {
	return run.With().Str(FieldSection, section).Logger()
}

// ForPage is the logger of a long-lived writer bound to one page, such as
// the service clock.
func ForPage(component, page string) zerolog.Logger {
	return WithComponent(component).With().Str(FieldPage, page).Logger()
}
