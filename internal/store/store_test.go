package store

import (
	"testing"

	"github.com/oss-omni/omni/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSymbols() ([]model.SymbolDef, []model.CallEdge) {
	symbols := []model.SymbolDef{
		{Name: "new", ScopedName: "user::User::new", Kind: model.KindMethod},
		{Name: "User", ScopedName: "user::User", Kind: model.KindStruct},
	}
	calls := []model.CallEdge{
		{CallerScoped: "user::User::new", CalleeName: "validate"},
	}
	return symbols, calls
}

func TestPutFileAndLookups(t *testing.T) {
	s := New()
	symbols, calls := sampleSymbols()
	s.PutFile("src/user.rs", symbols, calls, nil)

	def, ok := s.ByScoped("user::User::new")
	require.True(t, ok)
	assert.Equal(t, "new", def.Name)

	byName := s.ByName("new")
	require.Len(t, byName, 1)
	assert.Equal(t, "user::User::new", byName[0].ScopedName)

	edges := s.CallersOf("validate")
	require.Len(t, edges, 1)
	assert.Equal(t, "user::User::new", edges[0].CallerScoped)

	inFile := s.SymbolsInFile("src/user.rs")
	assert.Len(t, inFile, 2)

	files := s.Files()
	assert.Equal(t, []string{"src/user.rs"}, files)
}

func TestByPrefix(t *testing.T) {
	s := New()
	symbols, calls := sampleSymbols()
	s.PutFile("src/user.rs", symbols, calls, nil)

	got := s.ByPrefix("user::User")
	assert.Len(t, got, 2)

	got = s.ByPrefix("user::Other")
	assert.Empty(t, got)
}

func TestRemoveFile_DropsSymbolsAndCallEdges(t *testing.T) {
	s := New()
	symbols, calls := sampleSymbols()
	s.PutFile("src/user.rs", symbols, calls, nil)

	s.RemoveFile("src/user.rs")

	_, ok := s.ByScoped("user::User::new")
	assert.False(t, ok)
	assert.Empty(t, s.ByName("new"))
	assert.Empty(t, s.CallersOf("validate"))
	assert.Empty(t, s.Files())
}

func TestPutFile_ReplacesPriorStateForSamePath(t *testing.T) {
	s := New()
	s.PutFile("src/lib.rs", []model.SymbolDef{
		{Name: "old", ScopedName: "lib::old", Kind: model.KindFunction},
	}, nil, nil)

	s.PutFile("src/lib.rs", []model.SymbolDef{
		{Name: "new", ScopedName: "lib::new", Kind: model.KindFunction},
	}, nil, nil)

	_, ok := s.ByScoped("lib::old")
	assert.False(t, ok, "stale symbol from the previous version of the file should be gone")
	_, ok = s.ByScoped("lib::new")
	assert.True(t, ok)
}

func TestFileCache_RoundTrip(t *testing.T) {
	s := New()
	content := []byte("fn main() {}")
	fc := s.CacheFile("src/main.rs", content)
	assert.Equal(t, content, fc.Content)

	got, ok := s.FileCache("src/main.rs")
	require.True(t, ok)
	assert.Equal(t, fc.FastHash, got.FastHash)

	s.UncacheFile("src/main.rs")
	_, ok = s.FileCache("src/main.rs")
	assert.False(t, ok)
}

func TestCalleesOf(t *testing.T) {
	s := New()
	symbols, calls := sampleSymbols()
	s.PutFile("src/user.rs", symbols, calls, nil)

	edges := s.CalleesOf("user::User::new")
	require.Len(t, edges, 1)
	assert.Equal(t, "validate", edges[0].CalleeName)

	assert.Empty(t, s.CalleesOf("user::User"))
}

func TestImportsOf(t *testing.T) {
	s := New()
	imports := []model.ImportInfo{{RawPath: "std::fmt"}}
	s.PutFile("src/lib.rs", nil, nil, imports)

	got := s.ImportsOf("src/lib.rs")
	require.Len(t, got, 1)
	assert.Equal(t, "std::fmt", got[0].RawPath)
}
