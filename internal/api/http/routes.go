package http

import "github.com/gin-gonic/gin"

// Register mounts every bridge route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics/json", h.MetricsJSON)

	r.POST("/contexts", h.CreateContext)
	r.GET("/contexts", h.ListContexts)

	ctx := r.Group("/contexts/:id", h.RequireSession)
	ctx.GET("", h.GetContext)
	ctx.DELETE("", h.DeleteContext)
	ctx.GET("/dirs", h.Dirs)

	ctx.POST("/mkdir", h.MakeDir)
	ctx.GET("/dir", h.ListDir)
	ctx.GET("/split", h.SplitPath)

	ctx.GET("/handles/:handle", h.HandleValid)
	ctx.DELETE("/handles/:handle", h.FreeHandle)

	ctx.POST("/lists", h.NewList)
	ctx.GET("/lists/:handle", h.GetList)
	ctx.GET("/lists/:handle/items/:index", h.GetListItem)
	ctx.POST("/lists/:handle/items", h.PushList)

	ctx.POST("/archives", h.MountArchive)
	ctx.DELETE("/archives/:handle", h.FreeArchive)
	ctx.GET("/archives/:handle/entries", h.ArchiveEntries)
	ctx.GET("/archives/:handle/export", h.ArchiveExport)
	ctx.GET("/archives/:handle/size", h.ArchiveSize)
	ctx.GET("/archives/:handle/content", h.ArchiveContent)

	ctx.POST("/watchers", h.CreateWatcher)
	ctx.POST("/watchers/:handle/roots", h.AugmentWatcher)
	ctx.GET("/watchers/:handle/events", h.PollWatcher)
	ctx.DELETE("/watchers/:handle", h.FreeWatcher)
}
