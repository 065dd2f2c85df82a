package monitoring

import "github.com/GriffinCanCode/trussfs/internal/shared/fserr"

// StatusOK labels a successful operation.
const StatusOK = "ok"

// StatusOf returns the operation status label for err.
func StatusOf(err error) string {
	if err == nil {
		return StatusOK
	}
	return fserr.KindOf(err).String()
}
