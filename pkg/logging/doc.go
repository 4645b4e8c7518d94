// Package logging provides structured logging configuration for mockrest.
//
// This package wraps log/slog so every component logs the same way.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("server started", "addr", ":3000")
//
// Request handlers pull a request-scoped logger from the context:
//
//	log := logging.FromContext(r.Context())
//	log.Warn("rejected payload", "errors", len(msgs))
//
// Components accept a *slog.Logger in their constructor or via a setter.
// When none is provided they fall back to Nop.
package logging
