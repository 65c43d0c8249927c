package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	require.NotNil(t, cmd, "command should not be nil")
	assert.Equal(t, "specpub", cmd.Use, "command name should match")
	assert.NotEmpty(t, cmd.Short, "should have short description")

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"), "should have config flag")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("dry-run"), "should have dry-run flag")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"), "should have debug flag")
}

func TestHandlerRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) *Handler
		errContains string
	}{
		{
			name: "missing_config_file",
			setup: func(t *testing.T) *Handler {
				return &Handler{configFile: filepath.Join(t.TempDir(), "missing.yaml")}
			},
			errContains: "loading config",
		},
		{
			name: "invalid_config",
			setup: func(t *testing.T) *Handler {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte("source: /a\n"), 0644))
				return &Handler{configFile: path}
			},
			errContains: "target is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.setup(t)
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

			err := h.Run(ctx)
			require.Error(t, err, "Run should return error")
			assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
		})
	}
}

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	require.NotNil(t, info, "version info should not be nil")
	assert.NotEmpty(t, info.GoVersion, "go version should be populated")
	assert.NotEmpty(t, info.Platform, "platform should be populated")
	assert.Contains(t, FormatVersion(), "specpub version info", "formatted version should name the binary")
}
