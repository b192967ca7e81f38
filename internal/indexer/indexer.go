// Package indexer implements omni's incremental indexing pipeline: file
// discovery, fingerprint-based change detection, parallel parsing, and
// persistence of the manifest/state/BM25 caches under <root>/.omni/.
// The worker-pool parsing shape (jobs channel, panic-recovering workers,
// a WaitGroup) is grounded directly in the teacher's own
// codeintel.Indexer.IndexDirectory.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/oss-omni/omni/internal/bm25"
	"github.com/oss-omni/omni/internal/discover"
	"github.com/oss-omni/omni/internal/model"
	"github.com/oss-omni/omni/internal/ocierr"
	"github.com/oss-omni/omni/internal/rustparse"
	"github.com/oss-omni/omni/internal/store"
	"github.com/oss-omni/omni/internal/topology"
)

const (
	manifestFile = "manifest.json"
	stateFile    = "state.bin"
	bm25File     = "bm25.bin"
	stateDirName = ".omni"
)

// Stats summarizes the outcome of an indexing operation.
type Stats struct {
	FilesScanned int
	FilesParsed  int
	FilesSkipped int
	FilesRemoved int
	Symbols      int
	Duration     time.Duration
	Errors       []string
}

// Engine owns a workspace's durable index state (manifest, parsed-file
// cache, BM25 cache) and its live, queryable Store and topology Graph.
type Engine struct {
	Root     string
	Store    *store.Store
	BM25     *bm25.Index
	Registry *rustparse.Registry
	Logger   *slog.Logger

	mu       sync.Mutex // guards manifest/records/topology swaps
	manifest *Manifest
	records  map[string]FileRecord
	topo     *topology.Graph
}

// NewEngine creates an engine rooted at root with an empty store, ready for
// FullIndex or, if a manifest/state already exist on disk, Update.
func NewEngine(root string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Root:     root,
		Store:    store.New(),
		BM25:     bm25.New(),
		Registry: rustparse.NewDefaultRegistry(),
		Logger:   logger,
		manifest: NewManifest(),
		records:  make(map[string]FileRecord),
	}
}

func (e *Engine) stateDir() string     { return filepath.Join(e.Root, stateDirName) }
func (e *Engine) manifestPath() string { return filepath.Join(e.stateDir(), manifestFile) }
func (e *Engine) statePath() string    { return filepath.Join(e.stateDir(), stateFile) }
func (e *Engine) bm25Path() string     { return filepath.Join(e.stateDir(), bm25File) }

// Load restores manifest/state/BM25 from <root>/.omni if present, replaying
// every cached file record into the live Store. A stale or missing
// manifest leaves the engine empty and is not an error — callers should
// follow up with FullIndex.
func (e *Engine) Load() error {
	manifest, found, err := LoadManifest(e.manifestPath())
	if err != nil {
		return err
	}
	if !found || manifest.Stale() {
		e.Logger.Info("no usable manifest found, starting empty", "root", e.Root)
		return nil
	}

	snap, found, err := LoadState(e.statePath())
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	e.mu.Lock()
	e.manifest = manifest
	e.records = snap.Records
	e.mu.Unlock()

	for path, rec := range snap.Records {
		e.Store.PutFile(path, rec.Symbols, rec.Calls, rec.Imports)
	}

	e.rebuildTopology()

	if err := e.BM25.Load(e.bm25Path()); err != nil {
		e.Logger.Warn("bm25 cache unreadable, will rebuild lazily", "error", err)
	}
	return nil
}

// FullIndex discovers every matching file under opts and parses all of
// them unconditionally, replacing the manifest and store wholesale.
func (e *Engine) FullIndex(ctx context.Context, opts discover.Options) (*Stats, error) {
	start := time.Now()
	opts.Root = e.Root

	paths, err := discover.Walk(opts)
	if err != nil {
		return nil, ocierr.IOError(err, "walking workspace")
	}

	e.mu.Lock()
	e.manifest = NewManifest()
	e.records = make(map[string]FileRecord)
	e.mu.Unlock()
	e.Store = store.New()

	stats, err := e.parseAll(ctx, paths)
	if err != nil {
		return stats, err
	}
	stats.Duration = time.Since(start)

	e.rebuildTopology()
	if err := e.persist(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Update re-walks the workspace and reparses only files whose fingerprint
// changed, removes files that disappeared, and leaves everything else
// untouched.
func (e *Engine) Update(ctx context.Context, opts discover.Options) (*Stats, error) {
	start := time.Now()
	opts.Root = e.Root

	paths, err := discover.Walk(opts)
	if err != nil {
		return nil, ocierr.IOError(err, "walking workspace")
	}
	current := make(map[string]bool, len(paths))
	for _, p := range paths {
		current[p] = true
	}

	e.mu.Lock()
	existing := e.manifest.Files
	e.mu.Unlock()

	var removed []string
	for p := range existing {
		if !current[p] {
			removed = append(removed, p)
		}
	}
	for _, p := range removed {
		e.removeFileLocked(p)
	}

	var changed []string
	stats := &Stats{FilesScanned: len(paths), FilesRemoved: len(removed)}
	for _, p := range paths {
		fp, err := fingerprint(p, filepath.Join(e.Root, p))
		if err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		e.mu.Lock()
		prev, ok := e.manifest.Files[p]
		e.mu.Unlock()
		if ok && prev == fp {
			stats.FilesSkipped++
			continue
		}
		changed = append(changed, p)
	}

	parseStats, err := e.parseAll(ctx, changed)
	if err != nil {
		return stats, err
	}
	stats.FilesParsed = parseStats.FilesParsed
	stats.Symbols = parseStats.Symbols
	stats.Errors = append(stats.Errors, parseStats.Errors...)
	stats.Duration = time.Since(start)

	e.rebuildTopology()
	if err := e.persist(); err != nil {
		return stats, err
	}
	return stats, nil
}

// UpdateFile reparses a single file, regardless of its fingerprint — used
// by the fsnotify watch surface where the caller already knows path
// changed.
func (e *Engine) UpdateFile(ctx context.Context, relPath string) error {
	stats, err := e.parseAll(ctx, []string{relPath})
	if err != nil {
		return err
	}
	if len(stats.Errors) > 0 {
		return ocierr.ParseError(errors.New(stats.Errors[0]), "parsing %s", relPath)
	}
	e.rebuildTopology()
	return e.persist()
}

// RemoveFile deletes a single file's symbols, calls, and imports from the
// store and manifest.
func (e *Engine) RemoveFile(relPath string) error {
	e.removeFileLocked(relPath)
	e.rebuildTopology()
	return e.persist()
}

func (e *Engine) removeFileLocked(relPath string) {
	e.Store.RemoveFile(relPath)
	e.mu.Lock()
	delete(e.manifest.Files, relPath)
	delete(e.records, relPath)
	e.mu.Unlock()
}

// parseAll runs a bounded worker pool over paths, grounded in the
// teacher's jobs-channel/WaitGroup indexer loop, extended with per-file
// panic recovery and cooperative ctx cancellation checked between files.
func (e *Engine) parseAll(ctx context.Context, paths []string) (*Stats, error) {
	stats := &Stats{FilesScanned: len(paths)}
	if len(paths) == 0 {
		return stats, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string, len(paths))
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	results := make(chan parseResult, len(paths))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					results <- parseResult{path: path, err: ocierr.Cancelled("indexing cancelled before %s", path)}
					continue
				default:
				}
				results <- e.parseOne(path)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			stats.Errors = append(stats.Errors, r.err.Error())
			continue
		}
		stats.FilesParsed++
		stats.Symbols += r.symbols
	}

	if ctx.Err() != nil {
		return stats, ocierr.Cancelled("indexing cancelled")
	}
	return stats, nil
}

// parseResult is one worker's outcome for a single file.
type parseResult struct {
	path    string
	record  FileRecord
	symbols int
	err     error
}

func (e *Engine) parseOne(relPath string) (res parseResult) {
	defer func() {
		if r := recover(); r != nil {
			res.err = ocierr.ParseError(fmt.Errorf("panic: %v", r), "parsing %s", relPath)
		}
	}()

	absPath := filepath.Join(e.Root, relPath)
	content, err := os.ReadFile(absPath)
	if err != nil {
		res.err = ocierr.IOError(err, "reading %s", relPath)
		return
	}

	parser := e.Registry.ForPath(relPath)
	if parser == nil {
		res.err = ocierr.ParseError(nil, "no parser registered for %s", relPath)
		return
	}

	out := parser.Parse(relPath, content)
	rec := FileRecord{Symbols: out.Symbols, Calls: out.Calls, Imports: out.Imports}

	e.Store.PutFile(relPath, out.Symbols, out.Calls, out.Imports)
	e.Store.CacheFile(relPath, content)

	fp := model.FileFingerprint{
		Path:        relPath,
		ContentHash: xxhash.Sum64(content),
	}
	if info, statErr := os.Stat(absPath); statErr == nil {
		fp.Size = info.Size()
		fp.MtimeNanos = info.ModTime().UnixNano()
	}

	e.mu.Lock()
	e.manifest.Files[relPath] = fp
	e.records[relPath] = rec
	e.mu.Unlock()

	res.path = relPath
	res.record = rec
	res.symbols = len(out.Symbols)
	for _, perr := range out.Errors {
		e.Logger.Debug("partial parse error", "file", relPath, "error", perr)
	}
	return
}

func (e *Engine) rebuildTopology() {
	e.mu.Lock()
	defer e.mu.Unlock()
	files := make([]string, 0, len(e.records))
	imports := make(map[string][]model.ImportInfo, len(e.records))
	for p, rec := range e.records {
		files = append(files, p)
		if len(rec.Imports) > 0 {
			imports[p] = rec.Imports
		}
	}
	e.topo = topology.Build(files, imports)
}

// Topology returns the most recently built topology graph.
func (e *Engine) Topology() *topology.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.topo
}

// ManifestVersionString exposes the current manifest's version tag, used
// to key the lazily-built BM25 cache.
func (e *Engine) ManifestVersionString() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manifest.Version
}

func (e *Engine) persist() error {
	if err := os.MkdirAll(e.stateDir(), 0o755); err != nil {
		return ocierr.IOError(err, "creating state directory")
	}

	e.mu.Lock()
	manifest := e.manifest
	records := make(map[string]FileRecord, len(e.records))
	for k, v := range e.records {
		records[k] = v
	}
	e.mu.Unlock()

	if err := manifest.Save(e.manifestPath()); err != nil {
		return err
	}
	snap := &StateSnapshot{Version: manifest.Version, Records: records}
	if err := SaveState(e.statePath(), snap); err != nil {
		return err
	}

	// The records may have changed, so the BM25 index is stale: clear the
	// in-memory copy's version and drop the on-disk cache so the next
	// EnsureBM25 rebuilds it.
	e.BM25.Build(nil, "")
	if err := os.Remove(e.bm25Path()); err != nil && !os.IsNotExist(err) {
		return ocierr.IOError(err, "removing stale bm25 cache")
	}
	return nil
}

// EnsureBM25 lazily (re)builds the BM25 index if it is stale relative to
// the current manifest version, then persists it.
func (e *Engine) EnsureBM25(ctx context.Context) error {
	version := e.ManifestVersionString()
	err := e.BM25.Ensure(version, func() []model.SymbolDef {
		return e.Store.AllSymbols()
	})
	if err != nil {
		return err
	}
	if e.BM25.Version() == version {
		if err := e.BM25.Save(e.bm25Path()); err != nil {
			e.Logger.Warn("failed to persist bm25 cache", "error", err)
		}
	}
	return nil
}

func fingerprint(relPath, absPath string) (model.FileFingerprint, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return model.FileFingerprint{}, ocierr.IOError(err, "reading %s", absPath)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return model.FileFingerprint{}, ocierr.IOError(err, "stat %s", absPath)
	}
	return model.FileFingerprint{
		Path:        relPath,
		Size:        info.Size(),
		MtimeNanos:  info.ModTime().UnixNano(),
		ContentHash: xxhash.Sum64(content),
	}, nil
}
