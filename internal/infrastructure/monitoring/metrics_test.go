package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
)

func TestHandleObserver(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	tbl := handle.NewTable().WithObserver(m)

	h, err := tbl.Allocate(handle.KindArchive, "a")
	require.NoError(t, err)
	_, err = tbl.Allocate(handle.KindList, "b")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlesLive.WithLabelValues("archive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlesLive.WithLabelValues("list")))

	_, err = tbl.Free(h, handle.KindArchive)
	require.NoError(t, err)
	_, err = tbl.Free(h, handle.KindArchive)
	require.Error(t, err)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.HandlesLive.WithLabelValues("archive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandleEvents.WithLabelValues("archive", "reject")))
	assert.Equal(t, int64(1), m.Snapshot().LiveHandles)
}

func TestRecordOpStatus(t *testing.T) {
	m := NewMetrics(nil)

	NewTimer(m, "archive_read").Stop(nil)
	NewTimer(m, "archive_read").Stop(fserr.NotFound("archive_read", "x"))
	NewTimer(m, "archive_read").Stop(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("archive_read", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("archive_read", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("archive_read", "io")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalOps)
	assert.Equal(t, int64(2), snap.FailedOps)
}

func TestIndependentRegistries(t *testing.T) {
	// Two collectors on separate registries must not panic on duplicate names.
	a := NewMetrics(nil)
	b := NewMetrics(nil)
	a.AddArchiveBytes(10)
	b.AddArchiveBytes(3)
	assert.Equal(t, 10.0, testutil.ToFloat64(a.ArchiveBytesRead))
	assert.Equal(t, 3.0, testutil.ToFloat64(b.ArchiveBytesRead))
}

func TestNilMetricsIsInert(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOp("x", StatusOK, time.Millisecond)
		m.HandleAllocated(handle.KindList)
		m.RecordWatcherEvent("ADD")
		m.RecordWatcherDropped()
		m.AddArchiveBytes(1)
		m.IncWSConnections()
		NewTimer(m, "noop").Stop(nil)
	})
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(nil)

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/lists/:handle", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lists/4294967297", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/lists/:handle", "404")))
	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}
