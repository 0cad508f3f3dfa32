package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/config"
)

func TestParseFlagsOverridesConfig(t *testing.T) {
	cfg := config.Default()

	err := parseFlags(cfg, []string{"--port", "9100", "--host", "127.0.0.1", "--store", "badger", "--dev"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "badger", cfg.Data.Backend)
	assert.True(t, cfg.Logging.Development)
}

func TestParseFlagsValidates(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"non numeric port", []string{"--port", "abc"}, "Server.Port must be numeric"},
		{"empty port", []string{"--port", ""}, "Server.Port is required"},
		{"unknown backend", []string{"--store", "sqlite"}, "Data.Backend must be one of [json badger]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseFlags(config.Default(), tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	err := parseFlags(config.Default(), []string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
