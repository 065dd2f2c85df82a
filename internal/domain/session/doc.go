// Package session maps bridge session IDs to vfs contexts.
//
// Each session owns one vfs.Context, so handles issued to one remote caller
// never resolve for another. Sessions idle for longer than the configured
// TTL are closed by a background reaper along with every resource they
// still hold.
//
// Components:
//   - Manager: session creation, lookup and reaping
//   - Session: a context plus its last-activity time
//
// Example Usage:
//
//	manager := session.NewManager(cfg, log).WithMetrics(metrics)
//	manager.Start(ctx)
//	defer manager.Shutdown()
//
//	s := manager.Create()
//	h, err := s.Context.MountArchive("data.zip")
package session
