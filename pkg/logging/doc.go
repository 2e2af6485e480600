// Package logging provides structured logging configuration for stubd.
//
// This package wraps log/slog to keep log setup consistent across the
// server, the stores, and the CLI. It supports configurable levels and
// text or JSON output.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "port", 4780)
//	logger.Error("store open failed", "error", err)
//
// Components accept a *slog.Logger in their constructor or via a setter.
// If no logger is provided, use logging.Nop() for a no-op logger.
package logging
