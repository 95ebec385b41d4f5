// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is read first when present; variables
// already set in the real environment win over the file.
//
//	PORT                 listen port                         (8080)
//	DB_PATH              SQLite file                         (data/blog.db)
//	SESSION_SECRET       HMAC key for session tokens         (required, ≥16 chars)
//	SESSION_TTL          session lifetime                    (24h)
//	COOKIE_SECURE        mark cookies Secure                 (false)
//	ADMIN_KEY            shared secret of the admin JSON endpoints
//	SMTP_HOST            mail relay; empty logs mail instead of sending
//	SMTP_PORT            (587)
//	SMTP_USERNAME
//	SMTP_PASSWORD
//	CONTACT_TO           contact form recipient              (SMTP_USERNAME)
//	GITHUB_CLIENT_ID     GitHub sign-in; empty disables it
//	GITHUB_CLIENT_SECRET
//	GITHUB_CALLBACK_URL  (http://localhost:PORT/auth/github/callback)
//	LOG_LEVEL            debug, info, warn or error          (info)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	Port          int
	DBPath        string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	AdminKey      string
	LogLevel      slog.Level

	SMTP      SMTP
	ContactTo string

	GitHub GitHub
}

// SMTP holds the mail relay settings.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Enabled reports whether a relay is configured.
func (s SMTP) Enabled() bool { return s.Host != "" }

// GitHub holds the OAuth app credentials.
type GitHub struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether GitHub sign-in is configured.
func (g GitHub) Enabled() bool { return g.ClientID != "" && g.ClientSecret != "" }

// Load reads .env (if any) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of
// os.LookupEnv. Tests pass a map-backed function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []error

	port, err := strconv.Atoi(get("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a port number, got %q", get("PORT", "")))
	}

	ttl, err := time.ParseDuration(get("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", get("SESSION_TTL", "")))
	}

	secure, err := strconv.ParseBool(get("COOKIE_SECURE", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("COOKIE_SECURE must be a boolean, got %q", get("COOKIE_SECURE", "")))
	}

	secret := get("SESSION_SECRET", "")
	if len(secret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be set to at least 16 characters"))
	}

	smtpPort, err := strconv.Atoi(get("SMTP_PORT", "587"))
	if err != nil || smtpPort <= 0 {
		errs = append(errs, fmt.Errorf("SMTP_PORT must be a port number, got %q", get("SMTP_PORT", "")))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}

	smtpUser := get("SMTP_USERNAME", "")
	return Config{
		Port:          port,
		DBPath:        get("DB_PATH", "data/blog.db"),
		SessionSecret: secret,
		SessionTTL:    ttl,
		CookieSecure:  secure,
		AdminKey:      get("ADMIN_KEY", ""),
		LogLevel:      level,
		SMTP: SMTP{
			Host:     get("SMTP_HOST", ""),
			Port:     smtpPort,
			Username: smtpUser,
			Password: get("SMTP_PASSWORD", ""),
		},
		ContactTo: get("CONTACT_TO", smtpUser),
		GitHub: GitHub{
			ClientID:     get("GITHUB_CLIENT_ID", ""),
			ClientSecret: get("GITHUB_CLIENT_SECRET", ""),
			CallbackURL:  get("GITHUB_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/github/callback", port)),
		},
	}, nil
}
