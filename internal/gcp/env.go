package gcp

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// GetEnv reads an environment variable or returns fallback when it is unset.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt64 reads an integer environment variable. Unset or malformed
// values yield fallback; malformed ones are logged.
func GetEnvInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		slog.Warn("Ignoring malformed integer environment variable", "key", key, "value", value, "error", err)
		return fallback
	}
	return n
}

// GetEnvBool reads a boolean environment variable using strconv.ParseBool
// syntax.
func GetEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		slog.Warn("Ignoring malformed boolean environment variable", "key", key, "value", value, "error", err)
		return fallback
	}
	return b
}
