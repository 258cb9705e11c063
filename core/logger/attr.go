package logger

import (
	"log/slog"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks,
// following the principle of making zero values useful.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Scheme creates an attribute for the login scheme in use.
func Scheme(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("scheme", name)
}

// UserID creates an attribute for the authenticated user id.
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// DeviceID creates an attribute for the per-browser device id.
func DeviceID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("device_id", id)
}

// Level creates an attribute for the authentication level.
func Level(level string) slog.Attr {
	return slog.String("auth_level", level)
}

// ErrorID creates an attribute for stable client-facing error identifiers.
func ErrorID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("error_id", id)
}
