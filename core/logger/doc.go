// Package logger provides slog attribute helpers for structured logging
// across the authentication core.
//
// Helpers follow the empty-Attr pattern: passing a nil error or an empty
// identifier yields an attribute slog silently drops, so call sites never
// need nil checks:
//
//	log.Debug("envelope rejected",
//		logger.Component("resolver"),
//		logger.Error(err))
package logger
