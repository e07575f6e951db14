// Package logging provides structured logging for the beamer bridge.
//
// This package wraps Go's standard log/slog package so that every
// component logs with the same handler and default fields.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Per-subsystem child loggers via Component
//   - Level-based filtering (debug, info, warn, error)
//   - Append-only file output for devices without a journal
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr or a file path
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.1")
//	defer logger.Close()
//	bus := logger.Component("session")
//	bus.Info("MQTT connected", "broker", host)
//	logger.Error("failed to open serial port", "error", err)
//
// Never log broker or admin passwords.
package logging
