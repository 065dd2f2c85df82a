// Package main runs the trussfs HTTP bridge.
//
// The bridge exposes trussfs contexts to processes that cannot load the
// shared library: each session owns one context and its handles.
//
// Configuration:
//   - Environment variables (TRUSSFS_*)
//   - An optional YAML or TOML file (-config)
//   - CLI flags (override both)
//
// Usage:
//
//	# Defaults: 127.0.0.1:8470
//	./server
//
//	# Config file, development logging
//	./server -config trussfs.yaml -dev
//
//	# Listen on all interfaces, no rate limit
//	./server -host 0.0.0.0 -port 9000 -rate-limit=false
package main
