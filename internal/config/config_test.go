package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/config"
)

func TestLoadDefaultsWithNoOverrides(t *testing.T) {
	t.Setenv("WHTS_MTU", "")
	os.Unsetenv("WHTS_MTU")
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), cfg)
}

func TestLoadEnvFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WHTS_MTU=200\nWHTS_LOG_LEVEL=debug\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 200, cfg.MTU)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadOSEnvOverridesEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WHTS_MTU=200\n"), 0o644))
	t.Setenv("WHTS_MTU", "300")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 300, cfg.MTU)
}

func TestValidateRejectsMTUTooSmall(t *testing.T) {
	cfg := config.Defaults()
	cfg.MTU = 7
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsGPIOPinsOutOfRange(t *testing.T) {
	cfg := config.Defaults()
	cfg.MaxGPIOPins = 65
	require.Error(t, cfg.Validate())
}
