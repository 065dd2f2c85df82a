// Package logging provides structured logging using uber/zap.
//
// This package offers two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Output defaults to stderr. trussfs usually runs inside a host process
// (through the C library or the CLI) whose stdout belongs to the host.
//
// Log Levels:
//   - Debug: handle allocation, watcher registration
//   - Info: context lifecycle, archive mounts
//   - Warn: failures recorded on a context's error channel
//   - Error: watcher backend failures
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Archive mounted", zap.String("path", path), zap.Uint64("handle", h))
//	logger.Warn("Operation failed", zap.String("op", "archive_read"), zap.Error(err))
package logging
