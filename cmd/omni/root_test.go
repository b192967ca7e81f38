package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oss-omni/omni/internal/ocierr"
)

func TestRootCmd_RegistersAllSubcommands(t *testing.T) {
	want := []string{"index", "search", "query", "symbol", "calls", "fold", "topology", "watch", "mcp", "init"}
	got := make(map[string]bool, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "expected %q to be registered on rootCmd", name)
	}
}

func TestWorkspaceStateDir(t *testing.T) {
	assert.Equal(t, "myproject/.omni", workspaceStateDir("myproject"))
}

func TestErrSilent_UnwrapsToOriginal(t *testing.T) {
	base := assertErr{"boom"}
	wrapped := errSilent{base}
	assert.Equal(t, "boom", wrapped.Error())
	assert.Equal(t, error(base), wrapped.Unwrap())
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func TestExitCode_UsageErrorBeforeRunEIsTwo(t *testing.T) {
	assert.Equal(t, 2, exitCode(assertErr{"accepts 1 arg(s), received 0"}, false))
}

func TestExitCode_InvalidQueryAndNotFoundAreTwo(t *testing.T) {
	assert.Equal(t, 2, exitCode(ocierr.InvalidQuery("bad query"), true))
	assert.Equal(t, 2, exitCode(ocierr.NotFound("missing"), true))
}

func TestExitCode_OtherOperationErrorsAreOne(t *testing.T) {
	assert.Equal(t, 1, exitCode(ocierr.Internal("boom"), true))
	assert.Equal(t, 1, exitCode(assertErr{"io failure"}, true))
}
