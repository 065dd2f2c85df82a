package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

// MakeDir creates a directory and its parents.
func (h *Handlers) MakeDir(c *gin.Context) {
	var req types.PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := vfsOf(c).MakeDirAll(req.Path); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": req.Path})
}

// ListDir enumerates a directory.
func (h *Handlers) ListDir(c *gin.Context) {
	var req types.ListDirRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	lh, err := vfsOf(c).ListDir(req.Path, req.FilesOnly, req.Metadata)
	respondList(c, lh, err)
}

// SplitPath decomposes a path.
func (h *Handlers) SplitPath(c *gin.Context) {
	var req types.SplitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	lh, err := vfsOf(c).SplitPath(req.Path)
	respondList(c, lh, err)
}

// NewList creates a list, optionally seeded with items.
func (h *Handlers) NewList(c *gin.Context) {
	var req types.EntriesResponse
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	lh, err := vfsOf(c).NewList(req.Entries...)
	respondHandle(c, lh, err)
}

// GetList returns every item of a list.
func (h *Handlers) GetList(c *gin.Context) {
	lh, ok := handleParam(c)
	if !ok {
		return
	}
	entries, err := vfsOf(c).ListItems(lh)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.EntriesResponse{Entries: entries})
}

// GetListItem returns one item of a list.
func (h *Handlers) GetListItem(c *gin.Context) {
	lh, ok := handleParam(c)
	if !ok {
		return
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return
	}
	item, err := vfsOf(c).ListGet(lh, i)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// PushList appends to a list.
func (h *Handlers) PushList(c *gin.Context) {
	lh, ok := handleParam(c)
	if !ok {
		return
	}
	var req types.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := vfsOf(c).ListPush(lh, req.Item)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SizeResponse{Size: uint64(n)})
}

// HandleValid reports whether a handle is live.
func (h *Handlers) HandleValid(c *gin.Context) {
	hh, ok := handleParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": vfsOf(c).IsValid(hh)})
}

// FreeHandle releases a handle of any kind.
func (h *Handlers) FreeHandle(c *gin.Context) {
	hh, ok := handleParam(c)
	if !ok {
		return
	}
	if err := vfsOf(c).Free(hh); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dirs returns the working and binary directories.
func (h *Handlers) Dirs(c *gin.Context) {
	ctx := vfsOf(c)
	wd, err := ctx.WorkingDir()
	if err != nil {
		fail(c, err)
		return
	}
	bin, err := ctx.BinaryDir()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"working_dir": wd, "binary_dir": bin})
}
