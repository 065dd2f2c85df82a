package vfs

import (
	"fmt"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

func (c *Context) list(op string, h handle.Handle) (*types.StringList, error) {
	l, err := handle.Get[*types.StringList](c.handles, h, handle.KindList)
	if err != nil {
		return nil, handleErr(op, err)
	}
	return l, nil
}

// NewList creates a list holding items.
func (c *Context) NewList(items ...string) (handle.Handle, error) {
	return c.newResult("list_new", items)
}

// FreeList releases a list handle.
func (c *Context) FreeList(h handle.Handle) error {
	return c.free("list_free", h, handle.KindList)
}

// ListLen returns the number of items in a list.
func (c *Context) ListLen(h handle.Handle) (int, error) {
	l, err := c.list("list_length", h)
	if err != nil {
		return 0, err
	}
	return l.Len(), nil
}

// ListGet returns item i of a list.
func (c *Context) ListGet(h handle.Handle, i int) (string, error) {
	l, err := c.list("list_get", h)
	if err != nil {
		return "", err
	}
	item, ok := l.Get(i)
	if !ok {
		return "", fserr.NotFound("list_get", fmt.Sprintf("#%d", i))
	}
	return item, nil
}

// ListPush appends item and returns the new length.
func (c *Context) ListPush(h handle.Handle, item string) (int, error) {
	l, err := c.list("list_push", h)
	if err != nil {
		return 0, err
	}
	return l.Push(item), nil
}

// ListItems returns a snapshot of a list.
func (c *Context) ListItems(h handle.Handle) ([]string, error) {
	l, err := c.list("list_items", h)
	if err != nil {
		return nil, err
	}
	return l.Items(), nil
}
