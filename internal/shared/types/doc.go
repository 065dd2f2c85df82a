// Package types provides shared data structures for trussfs.
//
// Core Types:
//   - StringList: ordered, mutex-guarded text container returned by every
//     enumerating operation and usable as a caller-built accumulator
//
// Request Types:
//   - MountRequest, ListDirRequest, WatchRequest: bridge request bodies
//   - WSMessage: WebSocket watcher frames
//
// Example Usage:
//
//	l := types.NewStringList()
//	l.Push("a.txt")
//	name, ok := l.Get(0)
package types
