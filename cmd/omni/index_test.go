package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAndSymbol_EndToEnd(t *testing.T) {
	ws := t.TempDir()
	content := `/// Greets the caller.
pub fn greet() -> &'static str {
    "hi"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(ws, "lib.rs"), []byte(content), 0o644))

	viper.Reset()
	require.NoError(t, viper.BindPFlags(rootCmd.PersistentFlags()))
	globalConfig = nil
	b := &bytes.Buffer{}
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs([]string{"index", "--workspace", ws, "--json"})
	require.NoError(t, rootCmd.Execute())

	viper.Reset()
	require.NoError(t, viper.BindPFlags(rootCmd.PersistentFlags()))
	globalConfig = nil
	b.Reset()
	rootCmd.SetArgs([]string{"symbol", "greet", "--workspace", ws, "--json"})
	require.NoError(t, rootCmd.Execute())
}

func TestIndexAndQuery_EndToEnd(t *testing.T) {
	ws := t.TempDir()
	content := `/// Greets the caller.
pub fn greet() -> &'static str {
    "hi"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(ws, "lib.rs"), []byte(content), 0o644))

	viper.Reset()
	require.NoError(t, viper.BindPFlags(rootCmd.PersistentFlags()))
	globalConfig = nil
	b := &bytes.Buffer{}
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs([]string{"index", "--workspace", ws, "--json"})
	require.NoError(t, rootCmd.Execute())

	viper.Reset()
	require.NoError(t, viper.BindPFlags(rootCmd.PersistentFlags()))
	globalConfig = nil
	b.Reset()
	rootCmd.SetArgs([]string{"query", "greet", "--workspace", ws, "--json"})
	require.NoError(t, rootCmd.Execute())
}

func TestSymbol_NotFoundExitsWithUsageCode(t *testing.T) {
	ws := t.TempDir()

	viper.Reset()
	require.NoError(t, viper.BindPFlags(rootCmd.PersistentFlags()))
	globalConfig = nil
	rootCmd.SetArgs([]string{"symbol", "does-not-exist", "--workspace", ws, "--json"})
	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Equal(t, 2, exitCode(err, ranPersistentPreRun))
}
