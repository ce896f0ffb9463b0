// Package config reads the renderer configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/reinarrr/TLR-web-cfpages/internal/schedule"
)

const DefaultFeedURL = "https://youtube-proxy.reinar-6fd.workers.dev/"

type Config struct {
	ListenAddr    string
	FeedURL       string
	SiteBaseURL   string
	OverridesPath string
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
	PagesFile     string
	LogLevel      string

	LibraryYear     string
	DisplayLocation *time.Location
	Rule            schedule.Rule

	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	FragmentTTL     time.Duration
	RateLimitPerMin int
}

// LoadEnvFile loads .env (or ENV_FILE) into the process environment. Real
// environment variables still win unless ENV_FILE is given explicitly.
func LoadEnvFile(logger zerolog.Logger) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			logger.Warn().Err(err).Str("file", envFile).Msg("env: failed to load ENV_FILE")
		} else {
			logger.Info().Str("file", envFile).Msg("env: loaded")
		}
		return
	}
	if err := godotenv.Load(); err == nil {
		logger.Info().Msg("env: loaded .env")
	}
}

// Load builds a Config from the environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	var errs []string
	getInt := func(key string, def int) int {
		v := get(key, "")
		if v == "" {
			return def
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s=%q", key, v))
			return def
		}
		return i
	}

	cfg := Config{
		ListenAddr:      get("LISTEN_ADDR", ":8080"),
		FeedURL:         get("FEED_URL", DefaultFeedURL),
		SiteBaseURL:     get("SITE_BASE_URL", ""),
		OverridesPath:   get("OVERRIDES_PATH", "/messages.json"),
		DatabaseURL:     get("DATABASE_URL", ""),
		RedisURL:        get("REDIS_URL", ""),
		RedisPassword:   getenv("REDIS_PASSWORD"),
		PagesFile:       get("PAGES_FILE", ""),
		LogLevel:        get("LOG_LEVEL", "info"),
		LibraryYear:     get("LIBRARY_YEAR", strconv.Itoa(time.Now().UTC().Year())),
		RefreshInterval: time.Duration(getInt("REFRESH_SECONDS", 300)) * time.Second,
		RequestTimeout:  time.Duration(getInt("REQUEST_TIMEOUT_SECONDS", 20)) * time.Second,
		FragmentTTL:     time.Duration(getInt("FRAGMENT_TTL_HOURS", 24)) * time.Hour,
		RateLimitPerMin: getInt("RATE_LIMIT_PER_MIN", 120),
	}

	weekday, err := parseWeekday(get("SERVICE_WEEKDAY", "sunday"))
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.Rule = schedule.Rule{
		Weekday:         weekday,
		Hour:            getInt("SERVICE_UTC_HOUR", 1),
		Minute:          getInt("SERVICE_UTC_MIN", 0),
		LiveWindow:      time.Duration(getInt("LIVE_WINDOW_MINUTES", 120)) * time.Minute,
		CountdownWindow: time.Duration(getInt("COUNTDOWN_WINDOW_HOURS", 8)) * time.Hour,
	}

	tz := get("DISPLAY_TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DISPLAY_TZ=%q: %v", tz, err))
		loc = time.UTC
	}
	cfg.DisplayLocation = loc

	if cfg.SiteBaseURL == "" {
		errs = append(errs, "missing SITE_BASE_URL")
	} else if u, err := url.Parse(cfg.SiteBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid SITE_BASE_URL=%q", cfg.SiteBaseURL))
	}
	if err := cfg.Rule.Validate(); err != nil {
		errs = append(errs, "service schedule: "+err.Error())
	}
	if cfg.RefreshInterval <= 0 {
		errs = append(errs, "REFRESH_SECONDS must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) || strings.EqualFold(d.String()[:3], s) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid SERVICE_WEEKDAY=%q", s)
}
