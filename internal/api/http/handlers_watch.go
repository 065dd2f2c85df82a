package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

// CreateWatcher starts a watcher.
func (h *Handlers) CreateWatcher(c *gin.Context) {
	var req types.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	// The request context only bounds the initial directory walk.
	wh, err := vfsOf(c).Watch(c.Request.Context(), req.Path, req.Recursive)
	respondHandle(c, wh, err)
}

// AugmentWatcher adds a root.
func (h *Handlers) AugmentWatcher(c *gin.Context) {
	wh, ok := handleParam(c)
	if !ok {
		return
	}
	var req types.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := vfsOf(c).WatchAugment(c.Request.Context(), wh, req.Path, req.Recursive); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PollWatcher drains pending events.
func (h *Handlers) PollWatcher(c *gin.Context) {
	wh, ok := handleParam(c)
	if !ok {
		return
	}
	lh, err := vfsOf(c).WatchPoll(wh)
	respondList(c, lh, err)
}

// FreeWatcher stops a watcher.
func (h *Handlers) FreeWatcher(c *gin.Context) {
	wh, ok := handleParam(c)
	if !ok {
		return
	}
	if err := vfsOf(c).FreeWatcher(wh); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
