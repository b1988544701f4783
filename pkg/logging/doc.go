// Package logging provides structured logging configuration for schemafaker.
//
// It wraps log/slog so the CLI, the generation engine and the mock server all
// log the same way. Components accept a *slog.Logger; when none is supplied
// they fall back to Nop().
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("server listening", "addr", addr)
package logging
