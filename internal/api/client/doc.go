// Package client is a Go client for the trussfs HTTP bridge.
//
// Requests go through resty with retries for idempotent reads, and through
// a circuit breaker that opens on transport failures and 5xx answers only.
// Bridge errors come back as *APIError, which matches the fserr sentinels:
//
//	s, err := client.New("http://127.0.0.1:8470").Open(ctx)
//	names, err := s.ListDir(ctx, "/tmp", false, false)
//	if errors.Is(err, fserr.ErrNotFound) { ... }
package client
