package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/trussfs/internal/api/client"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/tracing"
)

func start(t *testing.T, cfg *config.Config) (*Server, string, func() error) {
	t.Helper()
	srv := NewServer(cfg, logging.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	stop := func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(15 * time.Second):
			t.Fatal("server did not stop")
			return nil
		}
	}
	return srv, "http://" + ln.Addr().String(), stop
}

func TestServeBridge(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Development = true
	srv, url, stop := start(t, cfg)
	ctx := context.Background()

	c := client.New(url)
	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])

	s, err := c.Open(ctx)
	require.NoError(t, err)
	parts, err := s.SplitPath(ctx, "/a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parts)
	assert.Equal(t, 1, srv.Sessions().Len())

	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "trussfs_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")

	resp, err = http.Get(url + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(tracing.TraceHeader))

	require.NoError(t, stop())
	assert.Equal(t, 0, srv.Sessions().Len())
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	_, url, stop := start(t, cfg)

	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(url + "/metrics/json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, stop())
}

func TestRunRejectsBadAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "256.0.0.1"
	err := NewServer(cfg, logging.NewNop()).Run(context.Background())
	assert.Error(t, err)
}
