package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

// Session is a handle-scoped view of one bridge context. Handles returned by
// its methods are only meaningful to the same session.
type Session struct {
	c    *Client
	info types.ContextInfo
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.info.ID }

// Info returns the session description captured at Open.
func (s *Session) Info() types.ContextInfo { return s.info }

func (s *Session) path(parts ...string) string {
	p := "/contexts/" + s.info.ID
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func query(kv ...string) func(*resty.Request) {
	return func(r *resty.Request) {
		for i := 0; i+1 < len(kv); i += 2 {
			r.SetQueryParam(kv[i], kv[i+1])
		}
	}
}

func body(v any) func(*resty.Request) {
	return func(r *resty.Request) { r.SetBody(v) }
}

func id(h uint64) string { return strconv.FormatUint(h, 10) }

// Close ends the session and releases everything it holds.
func (s *Session) Close(ctx context.Context) error {
	_, err := s.c.do(ctx, http.MethodDelete, s.path(), nil, nil)
	return err
}

// Dirs returns the bridge's working and binary directories.
func (s *Session) Dirs(ctx context.Context) (workingDir, binaryDir string, err error) {
	var out map[string]string
	if _, err = s.c.do(ctx, http.MethodGet, s.path("dirs"), nil, &out); err != nil {
		return "", "", err
	}
	return out["working_dir"], out["binary_dir"], nil
}

// MakeDir creates path and its parents on the bridge host.
func (s *Session) MakeDir(ctx context.Context, path string) error {
	_, err := s.c.do(ctx, http.MethodPost, s.path("mkdir"), body(types.PathRequest{Path: path}), nil)
	return err
}

// ListDir lists a directory.
func (s *Session) ListDir(ctx context.Context, path string, filesOnly, metadata bool) ([]string, error) {
	return s.entries(ctx, s.path("dir"), query(
		"path", path,
		"files_only", strconv.FormatBool(filesOnly),
		"metadata", strconv.FormatBool(metadata),
	))
}

// SplitPath decomposes path into its components.
func (s *Session) SplitPath(ctx context.Context, path string) ([]string, error) {
	return s.entries(ctx, s.path("split"), query("path", path))
}

func (s *Session) entries(ctx context.Context, path string, configure func(*resty.Request)) ([]string, error) {
	var out types.EntriesResponse
	_, err := s.c.do(ctx, http.MethodGet, path, configure, &out)
	return out.Entries, err
}

func (s *Session) allocate(ctx context.Context, path string, v any) (uint64, error) {
	var out types.HandleResponse
	_, err := s.c.do(ctx, http.MethodPost, path, body(v), &out)
	return out.Handle, err
}

// NewList creates a list holding items.
func (s *Session) NewList(ctx context.Context, items ...string) (uint64, error) {
	return s.allocate(ctx, s.path("lists"), types.EntriesResponse{Entries: items})
}

// ListItems returns every item of list h.
func (s *Session) ListItems(ctx context.Context, h uint64) ([]string, error) {
	return s.entries(ctx, s.path("lists", id(h)), nil)
}

// ListGet returns item i of list h.
func (s *Session) ListGet(ctx context.Context, h uint64, i int) (string, error) {
	var out struct {
		Item string `json:"item"`
	}
	_, err := s.c.do(ctx, http.MethodGet, s.path("lists", id(h), "items", strconv.Itoa(i)), nil, &out)
	return out.Item, err
}

// ListPush appends item to list h and returns the new length.
func (s *Session) ListPush(ctx context.Context, h uint64, item string) (uint64, error) {
	var out types.SizeResponse
	_, err := s.c.do(ctx, http.MethodPost, s.path("lists", id(h), "items"), body(types.PushRequest{Item: item}), &out)
	return out.Size, err
}

// IsValid reports whether h names a live resource.
func (s *Session) IsValid(ctx context.Context, h uint64) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	_, err := s.c.do(ctx, http.MethodGet, s.path("handles", id(h)), nil, &out)
	return out.Valid, err
}

// Free releases h whatever its kind.
func (s *Session) Free(ctx context.Context, h uint64) error {
	_, err := s.c.do(ctx, http.MethodDelete, s.path("handles", id(h)), nil, nil)
	return err
}

// Mount mounts the archive at path.
func (s *Session) Mount(ctx context.Context, path string) (uint64, error) {
	return s.allocate(ctx, s.path("archives"), types.MountRequest{Path: path})
}

// Unmount releases archive h.
func (s *Session) Unmount(ctx context.Context, h uint64) error {
	_, err := s.c.do(ctx, http.MethodDelete, s.path("archives", id(h)), nil, nil)
	return err
}

// Entries lists the names of archive h.
func (s *Session) Entries(ctx context.Context, h uint64) ([]string, error) {
	return s.entries(ctx, s.path("archives", id(h), "entries"), nil)
}

// EntriesDetailed lists archive h in the detailed encoding.
func (s *Session) EntriesDetailed(ctx context.Context, h uint64) ([]string, error) {
	return s.entries(ctx, s.path("archives", id(h), "entries"), query("detailed", "true"))
}

// Glob lists the names of archive h matching pattern.
func (s *Session) Glob(ctx context.Context, h uint64, pattern string) ([]string, error) {
	return s.entries(ctx, s.path("archives", id(h), "entries"), query("glob", pattern))
}

// Export renders the index of archive h as json, yaml or toml.
func (s *Session) Export(ctx context.Context, h uint64, format string) ([]byte, error) {
	resp, err := s.c.do(ctx, http.MethodGet, s.path("archives", id(h), "export"), query("format", format), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// SizeByName returns the size of the named entry.
func (s *Session) SizeByName(ctx context.Context, h uint64, name string) (uint64, error) {
	return s.size(ctx, h, query("name", name))
}

// SizeByIndex returns the size of entry i.
func (s *Session) SizeByIndex(ctx context.Context, h uint64, i int) (uint64, error) {
	return s.size(ctx, h, query("index", strconv.Itoa(i)))
}

func (s *Session) size(ctx context.Context, h uint64, configure func(*resty.Request)) (uint64, error) {
	var out types.SizeResponse
	_, err := s.c.do(ctx, http.MethodGet, s.path("archives", id(h), "size"), configure, &out)
	return out.Size, err
}

// Content returns the bytes of the named entry and their sniffed type.
func (s *Session) Content(ctx context.Context, h uint64, name string) ([]byte, string, error) {
	resp, err := s.c.do(ctx, http.MethodGet, s.path("archives", id(h), "content"), query("name", name), nil)
	if err != nil {
		return nil, "", err
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// Watch starts a watcher on path.
func (s *Session) Watch(ctx context.Context, path string, recursive bool) (uint64, error) {
	return s.allocate(ctx, s.path("watchers"), types.WatchRequest{Path: path, Recursive: recursive})
}

// AddRoot adds a root to watcher h.
func (s *Session) AddRoot(ctx context.Context, h uint64, path string, recursive bool) error {
	_, err := s.c.do(ctx, http.MethodPost, s.path("watchers", id(h), "roots"),
		body(types.WatchRequest{Path: path, Recursive: recursive}), nil)
	return err
}

// Poll drains the records of watcher h.
func (s *Session) Poll(ctx context.Context, h uint64) ([]string, error) {
	return s.entries(ctx, s.path("watchers", id(h), "events"), nil)
}

// StopWatch stops watcher h.
func (s *Session) StopWatch(ctx context.Context, h uint64) error {
	_, err := s.c.do(ctx, http.MethodDelete, s.path("watchers", id(h)), nil, nil)
	return err
}
