// Package http exposes vfs contexts over HTTP/JSON.
//
// Every route below /contexts/:id runs against that session's context.
// Operations that produce a string list return its entries and free the
// list, unless the request sets keep=true, in which case the handle is
// returned as well and stays live until DELETE /contexts/:id/handles/:handle.
// Failures carry {"error", "kind"} with a status derived from the error
// kind.
package http
