package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"SESSION_SECRET": "0123456789abcdef",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/blog.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "", cfg.AdminKey)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.GitHub.Enabled())
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHub.CallbackURL)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":                 "9000",
		"DB_PATH":              "/var/lib/blog/blog.db",
		"SESSION_SECRET":       "a-much-longer-secret-value",
		"SESSION_TTL":          "2h30m",
		"COOKIE_SECURE":        "true",
		"ADMIN_KEY":            "letmein",
		"SMTP_HOST":            "smtp.example.com",
		"SMTP_PORT":            "465",
		"SMTP_USERNAME":        "blog@example.com",
		"SMTP_PASSWORD":        "pw",
		"GITHUB_CLIENT_ID":     "id",
		"GITHUB_CLIENT_SECRET": "secret",
		"LOG_LEVEL":            "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/var/lib/blog/blog.db", cfg.DBPath)
	assert.Equal(t, 150*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "letmein", cfg.AdminKey)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "blog@example.com", cfg.ContactTo, "CONTACT_TO defaults to the SMTP user")
	assert.True(t, cfg.GitHub.Enabled())
	assert.Equal(t, "http://localhost:9000/auth/github/callback", cfg.GitHub.CallbackURL)
}

func TestFromLookup_Invalid(t *testing.T) {
	valid := map[string]string{"SESSION_SECRET": "0123456789abcdef"}

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port not a number", "PORT", "eighty"},
		{"port out of range", "PORT", "70000"},
		{"ttl not a duration", "SESSION_TTL", "tomorrow"},
		{"ttl negative", "SESSION_TTL", "-1h"},
		{"secret too short", "SESSION_SECRET", "short"},
		{"smtp port not a number", "SMTP_PORT", "x"},
		{"cookie secure not bool", "COOKIE_SECURE", "maybe"},
		{"unknown log level", "LOG_LEVEL", "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range valid {
				env[k] = v
			}
			env[tt.key] = tt.val

			_, err := FromLookup(lookupFrom(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestFromLookup_MissingSecret(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}
