package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/trussfs/internal/providers/filesystem"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

// MountArchive mounts an archive.
func (h *Handlers) MountArchive(c *gin.Context) {
	var req types.MountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ah, err := vfsOf(c).MountArchive(req.Path)
	respondHandle(c, ah, err)
}

// FreeArchive unmounts an archive.
func (h *Handlers) FreeArchive(c *gin.Context) {
	ah, ok := handleParam(c)
	if !ok {
		return
	}
	if err := vfsOf(c).FreeArchive(ah); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ArchiveEntries lists entries. detailed=true switches to the detailed
// encoding; glob=<pattern> filters names.
func (h *Handlers) ArchiveEntries(c *gin.Context) {
	ah, ok := handleParam(c)
	if !ok {
		return
	}
	ctx := vfsOf(c)

	var (
		lh  handle.Handle
		err error
	)
	detailed, _ := strconv.ParseBool(c.Query("detailed"))
	switch pattern := c.Query("glob"); {
	case pattern != "":
		lh, err = ctx.ArchiveGlob(ah, pattern)
	case detailed:
		lh, err = ctx.ArchiveListDetailed(ah)
	default:
		lh, err = ctx.ArchiveList(ah)
	}
	respondList(c, lh, err)
}

// ArchiveExport renders the archive index as json, yaml or toml.
func (h *Handlers) ArchiveExport(c *gin.Context) {
	ah, ok := handleParam(c)
	if !ok {
		return
	}
	a, err := vfsOf(c).Archive(ah)
	if err != nil {
		fail(c, err)
		return
	}
	format := c.DefaultQuery("format", "json")
	data, err := filesystem.Export(a.Entries(), format)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.Data(http.StatusOK, exportContentType(format), data)
}

func exportContentType(format string) string {
	switch format {
	case "yaml":
		return "application/yaml"
	case "toml":
		return "application/toml"
	default:
		return "application/json"
	}
}

// ArchiveSize returns the size of the entry selected by name or index.
func (h *Handlers) ArchiveSize(c *gin.Context) {
	ah, ok := handleParam(c)
	if !ok {
		return
	}
	ctx := vfsOf(c)

	var (
		size uint64
		err  error
	)
	if name, byName := c.GetQuery("name"); byName {
		size, err = ctx.ArchiveSizeByName(ah, name)
	} else if raw, byIndex := c.GetQuery("index"); byIndex {
		i, perr := strconv.Atoi(raw)
		if perr != nil {
			badRequest(c, perr)
			return
		}
		size, err = ctx.ArchiveSizeByIndex(ah, i)
	} else {
		badRequest(c, errors.New("name or index required"))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SizeResponse{Size: size})
}

// ArchiveContent streams the named entry with a sniffed content type.
func (h *Handlers) ArchiveContent(c *gin.Context) {
	ah, ok := handleParam(c)
	if !ok {
		return
	}
	name, present := c.GetQuery("name")
	if !present {
		badRequest(c, errors.New("name required"))
		return
	}
	data, err := vfsOf(c).ArchiveContent(ah, name)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, filesystem.ContentType(data), data)
}
