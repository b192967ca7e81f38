package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := make([]byte, size)
	for i := range content {
		content[i] = 'a'
	}
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestWalk_FindsRustFilesOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", 10)
	writeFile(t, root, "README.md", 10)

	got, err := Walk(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, got)
}

func TestWalk_SkipsDefaultExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", 10)
	writeFile(t, root, "target/debug/build.rs", 10)
	writeFile(t, root, "vendor/crate/lib.rs", 10)

	got, err := Walk(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, got)
}

func TestWalk_SkipsNonRustBuildOutputDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", 10)
	writeFile(t, root, "dist/bundle.rs", 10)
	writeFile(t, root, "build/out.rs", 10)
	writeFile(t, root, "out/artifact.rs", 10)
	writeFile(t, root, "coverage/report.rs", 10)
	writeFile(t, root, ".venv/lib.rs", 10)
	writeFile(t, root, ".next/cache.rs", 10)

	got, err := Walk(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, got)
}

func TestWalk_NoDefaultExcludesIncludesTarget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "target/debug/build.rs", 10)

	got, err := Walk(Options{Root: root, NoDefaultExcludes: true})
	require.NoError(t, err)
	assert.Contains(t, got, "target/debug/build.rs")
}

func TestWalk_SkipsHiddenFilesByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden.rs", 10)
	writeFile(t, root, "src/lib.rs", 10)

	got, err := Walk(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, got)
}

func TestWalk_IncludeHiddenFindsDotFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden.rs", 10)

	got, err := Walk(Options{Root: root, IncludeHidden: true})
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden.rs"}, got)
}

func TestWalk_SkipsOversizedFilesUnlessIncludeLarge(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.rs", 100)

	got, err := Walk(Options{Root: root, MaxFileSize: 10})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Walk(Options{Root: root, MaxFileSize: 10, IncludeLarge: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"big.rs"}, got)
}

func TestWalk_IncludeGlobRestrictsResults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", 10)
	writeFile(t, root, "tests/integration.rs", 10)

	got, err := Walk(Options{Root: root, Include: []string{"src/**"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, got)
}

func TestWalk_ExcludeGlobRemovesMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", 10)
	writeFile(t, root, "src/generated.rs", 10)

	got, err := Walk(Options{Root: root, Exclude: []string{"**/generated.rs"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, got)
}
