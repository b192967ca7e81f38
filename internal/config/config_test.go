package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	ws := t.TempDir()
	cfg, err := Load(viper.New(), ws)
	require.NoError(t, err)
	assert.Equal(t, ws, cfg.Workspace)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, int64(2<<20), cfg.Index.MaxFileSizeBytes)
	assert.Equal(t, 10, cfg.Search.DefaultTopK)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".omni"), 0o755))
	content := []byte("logLevel: debug\nsearch:\n  defaultTopK: 25\n")
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".omni", "config.yaml"), content, 0o644))

	cfg, err := Load(viper.New(), ws)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 25, cfg.Search.DefaultTopK)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".omni"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".omni", "config.yaml"), []byte("logLevel: debug\n"), 0o644))
	t.Setenv("OMNI_LOGLEVEL", "warn")

	cfg, err := Load(viper.New(), ws)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".omni"), 0o755))
	content := []byte("logLevel: verbose\n")
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".omni", "config.yaml"), content, 0o644))

	_, err := Load(viper.New(), ws)
	require.Error(t, err)
}

func TestWriteDefault_CreatesFile(t *testing.T) {
	ws := t.TempDir()
	path, err := WriteDefault(ws)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestWriteDefault_DoesNotOverwrite(t *testing.T) {
	ws := t.TempDir()
	path, err := WriteDefault(ws)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("custom: true\n"), 0o644))
	path2, err := WriteDefault(ws)
	require.NoError(t, err)
	assert.Equal(t, path, path2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom: true\n", string(data))
}
