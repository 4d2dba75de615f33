// Package logging provides structured logging configuration for the provider.
//
// This package wraps log/slog so every component logs the same way. Components
// accept a *slog.Logger through an option and fall back to Nop() when none is
// given.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("provider started", "port", 9292)
//
// Middleware wraps an http.Handler and emits one record per request with the
// method, path, status, duration and request ID.
package logging
