// Package store holds the in-memory, readers-writer-locked state that
// backs every query omni serves: symbol multi-maps, call-graph indices,
// and a content-addressed file cache. There is no on-disk database here —
// the durable copy lives in the indexer's manifest/state snapshot; this
// package is the live, queryable view rebuilt from it.
package store

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/oss-omni/omni/internal/intern"
	"github.com/oss-omni/omni/internal/model"
)

// FileContent is one entry of the content cache: the full bytes of a file
// as of its last (re)parse, plus a fast hash for fingerprint comparison.
// Grounded in the lazy, per-key sync.Map insertion pattern a content
// snapshot cache uses to avoid a single file read blocking unrelated
// lookups.
type FileContent struct {
	Path     string
	Content  []byte
	FastHash uint64
}

// Store is the process's queryable view of the indexed workspace. All
// mutation happens under mu (the writer lock); reads take the read lock.
// Symbol/call names are deduplicated through an append-only intern.Interner
// before they key the multi-maps below, so a name repeated across many
// symbols or call edges (a common method name, a frequently-called
// function) only ever occupies one string header in the index rather than
// one per occurrence. The file-content cache is a sync.Map so unrelated
// file reads never contend with the multi-map writer lock.
type Store struct {
	mu sync.RWMutex

	names *intern.Interner

	byName   map[intern.Key][]model.SymbolDef // simple name -> all defs sharing it
	byScoped map[intern.Key]model.SymbolDef   // scoped name -> single def
	byFile   map[string][]intern.Key          // file path -> scoped-name keys defined there

	callersOf map[intern.Key][]model.CallEdge // callee name -> edges calling it
	calleesOf map[intern.Key][]model.CallEdge // caller scoped name -> edges it makes

	importsByFile map[string][]model.ImportInfo

	files sync.Map // path -> *FileContent
}

// New creates an empty store.
func New() *Store {
	return &Store{
		names:         intern.New(),
		byName:        make(map[intern.Key][]model.SymbolDef),
		byScoped:      make(map[intern.Key]model.SymbolDef),
		byFile:        make(map[string][]intern.Key),
		callersOf:     make(map[intern.Key][]model.CallEdge),
		calleesOf:     make(map[intern.Key][]model.CallEdge),
		importsByFile: make(map[string][]model.ImportInfo),
	}
}

// PutFile atomically replaces all state belonging to path: its symbols,
// call edges, and imports. Any prior entries for path are removed first,
// so re-indexing a changed file never leaves stale symbols behind.
func (s *Store) PutFile(path string, symbols []model.SymbolDef, calls []model.CallEdge, imports []model.ImportInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFileLocked(path)

	scopedKeys := make([]intern.Key, 0, len(symbols))
	for _, sym := range symbols {
		nameKey := s.names.Intern(sym.Name)
		scopedKey := s.names.Intern(sym.ScopedName)
		s.byName[nameKey] = append(s.byName[nameKey], sym)
		s.byScoped[scopedKey] = sym
		scopedKeys = append(scopedKeys, scopedKey)
	}
	s.byFile[path] = scopedKeys

	for _, c := range calls {
		calleeKey := s.names.Intern(c.CalleeName)
		callerKey := s.names.Intern(c.CallerScoped)
		s.callersOf[calleeKey] = append(s.callersOf[calleeKey], c)
		s.calleesOf[callerKey] = append(s.calleesOf[callerKey], c)
	}

	if len(imports) > 0 {
		s.importsByFile[path] = imports
	}
}

// RemoveFile deletes every symbol, call edge, and import that belongs to
// path. The file's symbols are found through the byFile index; its call
// edges are dropped from the callers index by a scan of that whole index.
func (s *Store) RemoveFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFileLocked(path)
	s.files.Delete(path)
}

func (s *Store) removeFileLocked(path string) {
	scopedKeys, ok := s.byFile[path]
	if !ok {
		return
	}
	inFile := make(map[intern.Key]bool, len(scopedKeys))
	for _, k := range scopedKeys {
		inFile[k] = true
	}

	for _, scopedKey := range scopedKeys {
		sym, ok := s.byScoped[scopedKey]
		if !ok {
			continue
		}
		delete(s.byScoped, scopedKey)
		nameKey := s.names.Intern(sym.Name)
		s.byName[nameKey] = removeSymbol(s.byName[nameKey], sym.ScopedName)
		if len(s.byName[nameKey]) == 0 {
			delete(s.byName, nameKey)
		}
		delete(s.calleesOf, scopedKey)
	}
	delete(s.byFile, path)
	delete(s.importsByFile, path)

	// Drop call edges whose caller belonged to this file from callersOf's
	// reverse index too.
	for callee, edges := range s.callersOf {
		filtered := edges[:0]
		for _, e := range edges {
			if !inFile[s.names.Intern(e.CallerScoped)] {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			delete(s.callersOf, callee)
		} else {
			s.callersOf[callee] = filtered
		}
	}
}

func removeSymbol(defs []model.SymbolDef, scoped string) []model.SymbolDef {
	out := defs[:0]
	for _, d := range defs {
		if d.ScopedName != scoped {
			out = append(out, d)
		}
	}
	return out
}

// ByScoped returns the single definition for an exact scoped name.
func (s *Store) ByScoped(scoped string) (model.SymbolDef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byScoped[s.names.Intern(scoped)]
	return d, ok
}

// ByName returns every definition sharing a simple name.
func (s *Store) ByName(name string) []model.SymbolDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.SymbolDef(nil), s.byName[s.names.Intern(name)]...)
}

// ByPrefix returns every scoped-name definition whose scoped name starts
// with prefix, for prefix-scan lookups.
func (s *Store) ByPrefix(prefix string) []model.SymbolDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.SymbolDef
	for _, d := range s.byScoped {
		if len(d.ScopedName) >= len(prefix) && d.ScopedName[:len(prefix)] == prefix {
			out = append(out, d)
		}
	}
	return out
}

// CallersOf returns every call edge whose callee name is name.
func (s *Store) CallersOf(name string) []model.CallEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CallEdge(nil), s.callersOf[s.names.Intern(name)]...)
}

// CalleesOf returns every call edge made from within the function/method
// whose scoped name is scoped.
func (s *Store) CalleesOf(scoped string) []model.CallEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CallEdge(nil), s.calleesOf[s.names.Intern(scoped)]...)
}

// ImportsOf returns the imports declared in path.
func (s *Store) ImportsOf(path string) []model.ImportInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ImportInfo(nil), s.importsByFile[path]...)
}

// AllSymbols returns every stored symbol, in indeterminate order. Used by
// the BM25 index builder.
func (s *Store) AllSymbols() []model.SymbolDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SymbolDef, 0, len(s.byScoped))
	for _, d := range s.byScoped {
		out = append(out, d)
	}
	return out
}

// Files returns every file path stored by PutFile, including files stored
// with no symbols.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byFile))
	for p := range s.byFile {
		out = append(out, p)
	}
	return out
}

// SymbolsInFile returns every symbol defined in path.
func (s *Store) SymbolsInFile(path string) []model.SymbolDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.byFile[path]
	out := make([]model.SymbolDef, 0, len(keys))
	for _, k := range keys {
		if d, ok := s.byScoped[k]; ok {
			out = append(out, d)
		}
	}
	return out
}

// CacheFile stores path's full content in the lazy, per-key file-content
// cache, keyed by a fast xxhash of the bytes for cheap equality checks
// against the on-disk fingerprint.
func (s *Store) CacheFile(path string, content []byte) *FileContent {
	fc := &FileContent{Path: path, Content: content, FastHash: xxhash.Sum64(content)}
	s.files.Store(path, fc)
	return fc
}

// FileCache returns the cached content for path, if present.
func (s *Store) FileCache(path string) (*FileContent, bool) {
	v, ok := s.files.Load(path)
	if !ok {
		return nil, false
	}
	return v.(*FileContent), true
}

// UncacheFile drops path from the file-content cache.
func (s *Store) UncacheFile(path string) {
	s.files.Delete(path)
}
