// Package vfs is the owning context behind every trussfs boundary.
//
// A Context holds one generational handle table shared by string lists,
// mounted archives and watchers. Every enumerating operation returns its
// result as a new list handle, which the caller drains with ListGet and
// releases with FreeList (or the kind-agnostic Free). Operations return
// ordinary Go errors classified by fserr; flattening them into sentinel
// values and a last-error slot is left to the boundary packages.
//
// Example Usage:
//
//	ctx := vfs.New(vfs.WithLogger(log))
//	defer ctx.Close()
//
//	h, err := ctx.MountArchive("assets.zip")
//	size, err := ctx.ArchiveSizeByName(h, "textures/grass.png")
//	buf := make([]byte, size)
//	n, err := ctx.ArchiveReadByName(h, "textures/grass.png", buf)
package vfs
