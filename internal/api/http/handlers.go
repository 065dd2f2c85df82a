package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/trussfs/internal/domain/session"
	"github.com/GriffinCanCode/trussfs/internal/domain/vfs"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

const sessionKey = "trussfs.session"

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions *session.Manager
	metrics  *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(sessions *session.Manager, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{sessions: sessions, metrics: metrics}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "trussfs",
		"version": vfs.Version(),
	})
}

// Health reports session and handle counts.
func (h *Handlers) Health(c *gin.Context) {
	handles := 0
	for _, s := range h.sessions.List() {
		handles += s.Context.Handles()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.sessions.Len(),
		"handles":  handles,
	})
}

// MetricsJSON returns the metrics snapshot.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// CreateContext opens a session.
func (h *Handlers) CreateContext(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, s.Info())
}

// ListContexts lists open sessions.
func (h *Handlers) ListContexts(c *gin.Context) {
	out := []types.ContextInfo{}
	for _, s := range h.sessions.List() {
		out = append(out, s.Info())
	}
	c.JSON(http.StatusOK, gin.H{"contexts": out})
}

// GetContext describes one session.
func (h *Handlers) GetContext(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).Info())
}

// DeleteContext closes a session and everything it holds.
func (h *Handlers) DeleteContext(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequireSession resolves :id and stores the session for later handlers.
func (h *Handlers) RequireSession(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		fail(c, fserr.NotFound("session", c.Param("id")))
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func vfsOf(c *gin.Context) *vfs.Context {
	return current(c).Context
}

// handleParam parses the :handle path parameter.
func handleParam(c *gin.Context) (handle.Handle, bool) {
	h, err := handle.Parse(c.Param("handle"))
	if err != nil {
		badRequest(c, err)
		return handle.Invalid, false
	}
	return h, true
}

func keep(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("keep"))
	return v
}

// respondList writes a list result and frees it unless the caller keeps it.
func respondList(c *gin.Context, h handle.Handle, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	ctx := vfsOf(c)
	entries, err := ctx.ListItems(h)
	if err != nil {
		fail(c, err)
		return
	}
	if keep(c) {
		c.JSON(http.StatusOK, gin.H{"handle": h.String(), "entries": entries})
		return
	}
	_ = ctx.FreeList(h)
	c.JSON(http.StatusOK, types.EntriesResponse{Entries: entries})
}

func respondHandle(c *gin.Context, h handle.Handle, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.HandleResponse{Handle: uint64(h)})
}
