package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind fserr.Kind) int {
	switch kind {
	case fserr.KindNotFound:
		return http.StatusNotFound
	case fserr.KindInvalidHandle, fserr.KindClosed:
		return http.StatusGone
	case fserr.KindCapacity:
		return http.StatusRequestEntityTooLarge
	case fserr.KindMalformed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	kind := fserr.KindOf(err)
	c.AbortWithStatusJSON(StatusFor(kind), types.ErrorResponse{
		Error: err.Error(),
		Kind:  kind.String(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{
		Error: err.Error(),
		Kind:  fserr.KindMalformed.String(),
	})
}
