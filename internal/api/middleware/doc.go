// Package middleware provides the HTTP middleware of the trussfs bridge.
//
// Middleware stack includes:
//   - CORS: cross-origin access for browser front-ends, origins from config
//   - RateLimit: per-IP token bucket with idle client eviction
//   - GlobalRateLimit: one bucket shared by every caller
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.Server)))
//	router.Use(middleware.RateLimit(cfg.RateLimit))
package middleware
