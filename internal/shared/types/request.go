package types

// PathRequest names a single filesystem path.
type PathRequest struct {
	Path string `json:"path" binding:"required"`
}

// ListDirRequest selects a directory listing.
type ListDirRequest struct {
	Path      string `form:"path" binding:"required"`
	FilesOnly bool   `form:"files_only"`
	Metadata  bool   `form:"metadata"`
}

// SplitRequest carries a path to decompose. An empty path is allowed.
type SplitRequest struct {
	Path string `form:"path"`
}

// MountRequest mounts an archive.
type MountRequest struct {
	Path string `json:"path" binding:"required"`
}

// WatchRequest creates a watcher or adds a root to one.
type WatchRequest struct {
	Path      string `json:"path" binding:"required"`
	Recursive bool   `json:"recursive"`
}

// PushRequest appends an item to a list.
type PushRequest struct {
	Item string `json:"item"`
}

// ContextInfo describes a bridge session.
type ContextInfo struct {
	ID         string `json:"id"`
	WorkingDir string `json:"working_dir"`
	BinaryDir  string `json:"binary_dir"`
	Version    uint64 `json:"version"`
}

// HandleResponse returns a freshly allocated handle. Handles are encoded as
// strings so JavaScript callers keep all 64 bits.
type HandleResponse struct {
	Handle uint64 `json:"handle,string"`
}

// EntriesResponse carries the contents of a string list.
type EntriesResponse struct {
	Entries []string `json:"entries"`
}

// SizeResponse carries an entry or list size.
type SizeResponse struct {
	Size uint64 `json:"size"`
}

// ErrorResponse is the body of every failed bridge call.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string   `json:"type"`
	Handle    uint64   `json:"handle,string,omitempty"`
	Events    []string `json:"events,omitempty"`
	Message   string   `json:"message,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
}
