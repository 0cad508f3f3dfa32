package logging

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	logger := FromConfig(config.LogConfig{Level: "warn"})
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	dev := FromConfig(config.LogConfig{Level: "debug", Development: true})
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	fallback := FromConfig(config.LogConfig{Level: "loud"})
	assert.True(t, fallback.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, fallback.Core().Enabled(zapcore.DebugLevel))
}

func TestRecordsCarryServiceAndComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	logger, err := New(Options{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.For("namespace").Info("folder created", zap.String("name", "album"))
	logger.Debug("dropped")
	require.NoError(t, logger.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]interface{}
		require.NoError(t, sonic.Unmarshal(scanner.Bytes(), &rec))
		lines = append(lines, rec)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 1)

	rec := lines[0]
	assert.Equal(t, ServiceName, rec["service"])
	assert.Equal(t, "namespace", rec["logger"])
	assert.Equal(t, "folder created", rec["message"])
	assert.Equal(t, "album", rec["name"])
	assert.Contains(t, rec, "timestamp")
}
