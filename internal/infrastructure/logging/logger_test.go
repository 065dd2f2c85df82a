package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
)

func TestNewWritesJSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trussfs.log")

	logger, err := New(Config{Level: "info", OutputPaths: []string{out}})
	require.NoError(t, err)

	logger.Named("vfs").Info("archive mounted", zap.String("path", "a.zip"))
	logger.Debug("dropped below level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"archive mounted"`)
	assert.Contains(t, string(data), `"logger":"vfs"`)
	assert.Contains(t, string(data), `"path":"a.zip"`)
	assert.NotContains(t, string(data), "dropped below level")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "info"},
		{"debug", "debug"},
		{"WARN", "warn"},
		{"error", "error"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l, err := parseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.String())
		})
	}
}

func TestDefaultsWriteToStderr(t *testing.T) {
	assert.Equal(t, []string{"stderr"}, DefaultConfig().OutputPaths)
	assert.True(t, DevelopmentConfig().Development)
	assert.NotNil(t, NewDefault())
	assert.NotNil(t, NewNop().With(zap.Int("n", 1)))
}

func TestFromConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cfg.log")
	cfg := config.Default().Logging
	cfg.OutputPaths = []string{out}

	logger, err := FromConfig(cfg)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	cfg.Level = "chatty"
	logger, err = FromConfig(cfg)
	assert.Error(t, err)
	assert.NotNil(t, logger)
}
