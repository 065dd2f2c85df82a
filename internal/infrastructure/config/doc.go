// Package config loads trussfs configuration.
//
// Values come from TRUSSFS_* environment variables (Load, LoadOrDefault) or
// from a YAML/TOML file layered over Default (LoadFile). Every consumer
// receives a *Config; nothing reads the environment directly.
//
// Example:
//
//	cfg := config.LoadOrDefault()
//	logger, _ := logging.New(logging.Config{
//	    Level:       cfg.Logging.Level,
//	    Development: cfg.Logging.Development,
//	    OutputPaths: cfg.Logging.OutputPaths,
//	})
package config
