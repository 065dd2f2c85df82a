// Package ws streams watcher records over WebSocket.
//
// A stream is bound to one watcher of one bridge session. Records are pushed
// as soon as the watcher signals them, so a streamed watcher should not also
// be polled over HTTP: both consume the same queue.
//
// Message Types (Client → Server):
//   - ping: keep-alive, answered with pong
//   - poll: push whatever is queued right now
//
// Message Types (Server → Client):
//   - system: stream established
//   - events: encoded change records ("ADD:/path", ...)
//   - pong: reply to ping
//   - closed: the watcher was freed or failed; message carries the cause
//   - error: malformed client frame
//
// Example Usage:
//
//	stream := ws.NewHandler(sessions, metrics, log, cfg.Server.AllowedOrigins)
//	router.GET("/contexts/:id/watchers/:handle/stream", stream.Stream)
package ws
