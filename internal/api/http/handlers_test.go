package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/trussfs/internal/domain/session"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
	"github.com/GriffinCanCode/trussfs/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type bridge struct {
	t      *testing.T
	router *gin.Engine
	base   string
}

func newBridge(t *testing.T) *bridge {
	t.Helper()
	sessions := session.NewManager(config.Default(), nil)
	t.Cleanup(func() { sessions.Shutdown() })

	router := gin.New()
	NewHandlers(sessions, nil).Register(router)

	b := &bridge{t: t, router: router}
	var info types.ContextInfo
	b.do(http.MethodPost, "/contexts", nil, http.StatusCreated, &info)
	require.NotEmpty(t, info.ID)
	b.base = "/contexts/" + info.ID
	return b
}

func (b *bridge) do(method, path string, body any, want int, out any) *httptest.ResponseRecorder {
	b.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	require.Equal(b.t, want, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestRootAndHealth(t *testing.T) {
	b := newBridge(t)
	var root map[string]any
	b.do(http.MethodGet, "/", nil, http.StatusOK, &root)
	assert.Equal(t, "trussfs", root["service"])

	var health map[string]any
	b.do(http.MethodGet, "/health", nil, http.StatusOK, &health)
	assert.Equal(t, 1.0, health["sessions"])
}

func TestUnknownSession(t *testing.T) {
	b := newBridge(t)
	var resp types.ErrorResponse
	b.do(http.MethodGet, "/contexts/nope/dir?path=/", nil, http.StatusNotFound, &resp)
	assert.Equal(t, fserr.KindNotFound.String(), resp.Kind)
}

func TestDirectoryRoutes(t *testing.T) {
	b := newBridge(t)
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "f.txt"), []byte("hey"))

	var entries types.EntriesResponse
	b.do(http.MethodGet, b.base+"/dir?path="+dir+"&metadata=true", nil, http.StatusOK, &entries)
	assert.Equal(t, []string{"F _ 3:f.txt"}, entries.Entries)

	b.do(http.MethodGet, b.base+"/dir?path="+filepath.Join(dir, "none"), nil, http.StatusNotFound, nil)
	b.do(http.MethodGet, b.base+"/dir", nil, http.StatusBadRequest, nil)

	b.do(http.MethodGet, b.base+"/split?path=/a/b", nil, http.StatusOK, &entries)
	assert.Equal(t, []string{"a", "b"}, entries.Entries)

	target := filepath.Join(dir, "x", "y")
	b.do(http.MethodPost, b.base+"/mkdir", types.PathRequest{Path: target}, http.StatusOK, nil)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListRoutes(t *testing.T) {
	b := newBridge(t)

	var created types.HandleResponse
	b.do(http.MethodPost, b.base+"/lists", types.EntriesResponse{Entries: []string{"a"}}, http.StatusCreated, &created)
	h := b.base + "/lists/" + handleString(created.Handle)

	var size types.SizeResponse
	b.do(http.MethodPost, h+"/items", types.PushRequest{Item: "b"}, http.StatusOK, &size)
	assert.Equal(t, uint64(2), size.Size)

	var item map[string]string
	b.do(http.MethodGet, h+"/items/1", nil, http.StatusOK, &item)
	assert.Equal(t, "b", item["item"])
	b.do(http.MethodGet, h+"/items/5", nil, http.StatusNotFound, nil)

	var entries types.EntriesResponse
	b.do(http.MethodGet, h, nil, http.StatusOK, &entries)
	assert.Equal(t, []string{"a", "b"}, entries.Entries)

	handlePath := b.base + "/handles/" + handleString(created.Handle)
	var valid map[string]bool
	b.do(http.MethodGet, handlePath, nil, http.StatusOK, &valid)
	assert.True(t, valid["valid"])

	b.do(http.MethodDelete, handlePath, nil, http.StatusNoContent, nil)
	b.do(http.MethodDelete, handlePath, nil, http.StatusGone, nil)
	b.do(http.MethodGet, h, nil, http.StatusGone, nil)
	b.do(http.MethodGet, b.base+"/handles/garbage", nil, http.StatusBadRequest, nil)
}

func TestArchiveRoutes(t *testing.T) {
	b := newBridge(t)
	path := testutil.WriteTar(t, t.TempDir(), "s.tgz", testutil.Gzip, testutil.SampleFiles()...)

	var mounted types.HandleResponse
	b.do(http.MethodPost, b.base+"/archives", types.MountRequest{Path: path}, http.StatusCreated, &mounted)
	arc := b.base + "/archives/" + handleString(mounted.Handle)

	var entries types.EntriesResponse
	b.do(http.MethodGet, arc+"/entries", nil, http.StatusOK, &entries)
	assert.Equal(t, []string{"a.txt", "b.bin"}, entries.Entries)

	b.do(http.MethodGet, arc+"/entries?detailed=true", nil, http.StatusOK, &entries)
	assert.Equal(t, []string{"0 3 F:a.txt", "1 10 F:b.bin"}, entries.Entries)

	b.do(http.MethodGet, arc+"/entries?glob=*.txt", nil, http.StatusOK, &entries)
	assert.Equal(t, []string{"a.txt"}, entries.Entries)

	var kept map[string]any
	b.do(http.MethodGet, arc+"/entries?keep=true", nil, http.StatusOK, &kept)
	assert.NotEmpty(t, kept["handle"])

	var size types.SizeResponse
	b.do(http.MethodGet, arc+"/size?name=b.bin", nil, http.StatusOK, &size)
	assert.Equal(t, uint64(10), size.Size)
	b.do(http.MethodGet, arc+"/size?index=0", nil, http.StatusOK, &size)
	assert.Equal(t, uint64(3), size.Size)
	b.do(http.MethodGet, arc+"/size", nil, http.StatusBadRequest, nil)
	b.do(http.MethodGet, arc+"/size?name=zzz", nil, http.StatusNotFound, nil)

	rec := b.do(http.MethodGet, arc+"/content?name=a.txt", nil, http.StatusOK, nil)
	assert.Equal(t, "abc", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	rec = b.do(http.MethodGet, arc+"/export?format=yaml", nil, http.StatusOK, nil)
	assert.Contains(t, rec.Body.String(), "a.txt")
	b.do(http.MethodGet, arc+"/export?format=xml", nil, http.StatusBadRequest, nil)

	b.do(http.MethodDelete, arc, nil, http.StatusNoContent, nil)
	b.do(http.MethodGet, arc+"/entries", nil, http.StatusGone, nil)

	junk := filepath.Join(t.TempDir(), "junk")
	testutil.WriteFile(t, junk, []byte("plain words"))
	b.do(http.MethodPost, b.base+"/archives", types.MountRequest{Path: junk}, http.StatusUnprocessableEntity, nil)
}

func TestWatcherRoutes(t *testing.T) {
	b := newBridge(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	var created types.HandleResponse
	b.do(http.MethodPost, b.base+"/watchers", types.WatchRequest{Path: dir, Recursive: true}, http.StatusCreated, &created)
	w := b.base + "/watchers/" + handleString(created.Handle)

	b.do(http.MethodPost, w+"/roots", types.WatchRequest{Path: t.TempDir()}, http.StatusNoContent, nil)
	b.do(http.MethodPost, w+"/roots", types.WatchRequest{Path: filepath.Join(dir, "nope")}, http.StatusNotFound, nil)

	target := filepath.Join(dir, "n.txt")
	f, err := os.Create(target)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		var entries types.EntriesResponse
		b.do(http.MethodGet, w+"/events", nil, http.StatusOK, &entries)
		for _, e := range entries.Entries {
			if e == "ADD:"+target {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	b.do(http.MethodDelete, w, nil, http.StatusNoContent, nil)
	b.do(http.MethodGet, w+"/events", nil, http.StatusGone, nil)
}

func TestDeleteContext(t *testing.T) {
	b := newBridge(t)
	b.do(http.MethodDelete, b.base, nil, http.StatusNoContent, nil)
	b.do(http.MethodGet, b.base, nil, http.StatusNotFound, nil)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(fserr.KindNotFound))
	assert.Equal(t, http.StatusGone, StatusFor(fserr.KindInvalidHandle))
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusFor(fserr.KindCapacity))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(fserr.KindMalformed))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(fserr.KindIO))
}

func handleString(h uint64) string {
	return strconv.FormatUint(h, 10)
}
