// Package bm25 implements omni's field-weighted BM25 search index: a
// from-scratch scorer (no pack example implements one; TaskWing delegates
// to SQLite FTS5's built-in bm25() instead) kept entirely in memory and
// mirrored to disk as a gob-encoded cache keyed to the manifest version.
package bm25

import (
	"bufio"
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/oss-omni/omni/internal/model"
	"github.com/oss-omni/omni/internal/ocierr"
)

// Field weights and BM25 constants, fixed by the spec's scoring contract.
const (
	WeightPath   = 1.0
	WeightIdent  = 3.0
	WeightDoc    = 1.5
	WeightString = 1.0

	K1 = 1.2
	B  = 0.75
)

var fieldWeights = map[string]float64{
	"path":   WeightPath,
	"ident":  WeightIdent,
	"doc":    WeightDoc,
	"string": WeightString,
}

var fieldOrder = []string{"path", "ident", "doc", "string"}

type docEntry struct {
	Symbol model.SymbolDef
	Terms  map[string]map[string]int // field -> term -> frequency
	Length map[string]int            // field -> token count
}

// Index is the in-memory field-weighted BM25 index over every symbol in
// the store. It is built once per process (see Ensure) and invalidated
// whenever the manifest version it was built against no longer matches.
type Index struct {
	mu      sync.RWMutex
	version string
	docs    map[string]*docEntry
	df      map[string]map[string]int // field -> term -> doc frequency
	avgLen  map[string]float64
	total   int

	buildGroup singleflight.Group
}

// New creates an empty index.
func New() *Index {
	return &Index{
		docs:   make(map[string]*docEntry),
		df:     make(map[string]map[string]int),
		avgLen: make(map[string]float64),
	}
}

// Build replaces the index contents from symbols, tagging the result with
// version (typically the manifest version string) so a later Ensure call
// against a different version rebuilds rather than serving stale scores.
func (idx *Index) Build(symbols []model.SymbolDef, version string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs = make(map[string]*docEntry, len(symbols))
	idx.df = make(map[string]map[string]int, len(fieldOrder))
	for _, f := range fieldOrder {
		idx.df[f] = make(map[string]int)
	}
	lenSum := make(map[string]int, len(fieldOrder))

	for _, sym := range symbols {
		entry := &docEntry{
			Symbol: sym,
			Terms:  make(map[string]map[string]int, len(fieldOrder)),
			Length: make(map[string]int, len(fieldOrder)),
		}
		fields := map[string]string{
			"path":   sym.Location.Path,
			"ident":  sym.Name + " " + sym.ScopedName,
			"doc":    sym.DocComment + " " + strings.Join(sym.Attributes, " "),
			"string": sym.Body,
		}
		for _, f := range fieldOrder {
			toks := Tokenize(fields[f])
			entry.Length[f] = len(toks)
			lenSum[f] += len(toks)
			tf := make(map[string]int, len(toks))
			for _, t := range toks {
				tf[t]++
			}
			entry.Terms[f] = tf
			for t := range tf {
				idx.df[f][t]++
			}
		}
		idx.docs[sym.ScopedName] = entry
	}

	idx.total = len(symbols)
	idx.avgLen = make(map[string]float64, len(fieldOrder))
	for _, f := range fieldOrder {
		if idx.total > 0 {
			idx.avgLen[f] = float64(lenSum[f]) / float64(idx.total)
		}
	}
	idx.version = version
}

// Ensure builds the index via build() if it hasn't been built for version
// yet, coalescing concurrent callers into a single build (the first caller
// to observe a stale/empty index builds; the rest wait on its result,
// matching the engine's one-shot lazy-init contract).
func (idx *Index) Ensure(version string, build func() []model.SymbolDef) error {
	idx.mu.RLock()
	current := idx.version
	idx.mu.RUnlock()
	if current == version {
		return nil
	}

	_, err, _ := idx.buildGroup.Do(version, func() (any, error) {
		idx.mu.RLock()
		stillStale := idx.version != version
		idx.mu.RUnlock()
		if stillStale {
			idx.Build(build(), version)
		}
		return nil, nil
	})
	return err
}

// Query is a parsed search query: positive/negative free-text terms plus
// structured filters.
type Query struct {
	Positive []string
	Negative []string
	Filters  map[string]string // path, ext, kind
}

// ParseQuery parses a raw query string. `-term` marks a negative term,
// `key:value` sets a filter (path, ext, kind); anything else is a positive
// term, tokenized the same way documents are.
func ParseQuery(raw string) Query {
	q := Query{Filters: make(map[string]string)}
	for _, field := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(field, "-") && len(field) > 1:
			q.Negative = append(q.Negative, Tokenize(field[1:])...)
		case strings.Contains(field, ":"):
			parts := strings.SplitN(field, ":", 2)
			key, val := parts[0], parts[1]
			switch key {
			case "path", "ext", "kind":
				q.Filters[key] = val
			default:
				q.Positive = append(q.Positive, Tokenize(field)...)
			}
		default:
			q.Positive = append(q.Positive, Tokenize(field)...)
		}
	}
	return q
}

// Result is a single scored hit.
type Result struct {
	Symbol model.SymbolDef
	Score  float64
}

// Search scores every document against q and returns the top-k results,
// highest score first, ties broken by scoped name for determinism.
func (idx *Index) Search(q Query, topK int) ([]Result, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(q.Positive) == 0 {
		return nil, ocierr.InvalidQuery("search query has no positive terms")
	}

	var results []Result
	for scoped, entry := range idx.docs {
		if !idx.passesFilters(entry, q.Filters) {
			continue
		}
		if idx.hasAnyTerm(entry, q.Negative) {
			continue
		}
		score := idx.score(entry, q.Positive)
		if score <= 0 {
			continue
		}
		results = append(results, Result{Symbol: entry.Symbol, Score: score})
		_ = scoped
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Symbol.ScopedName < results[j].Symbol.ScopedName
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (idx *Index) passesFilters(entry *docEntry, filters map[string]string) bool {
	if v, ok := filters["path"]; ok && !strings.Contains(entry.Symbol.Location.Path, v) {
		return false
	}
	if v, ok := filters["ext"]; ok {
		ext := strings.TrimPrefix(filepath.Ext(entry.Symbol.Location.Path), ".")
		if !strings.EqualFold(ext, strings.TrimPrefix(v, ".")) {
			return false
		}
	}
	if v, ok := filters["kind"]; ok && !strings.EqualFold(string(entry.Symbol.Kind), v) {
		return false
	}
	return true
}

func (idx *Index) hasAnyTerm(entry *docEntry, terms []string) bool {
	for _, t := range terms {
		for _, f := range fieldOrder {
			if entry.Terms[f][t] > 0 {
				return true
			}
		}
	}
	return false
}

func (idx *Index) score(entry *docEntry, terms []string) float64 {
	var total float64
	for _, f := range fieldOrder {
		weight := fieldWeights[f]
		avgLen := idx.avgLen[f]
		if avgLen == 0 {
			avgLen = 1
		}
		docLen := float64(entry.Length[f])
		for _, t := range terms {
			tf := float64(entry.Terms[f][t])
			if tf == 0 {
				continue
			}
			df := idx.df[f][t]
			idf := idfBM25(idx.total, df)
			denom := tf + K1*(1-B+B*docLen/avgLen)
			total += weight * idf * (tf * (K1 + 1)) / denom
		}
	}
	return total
}

func idfBM25(totalDocs, df int) float64 {
	if totalDocs == 0 {
		return 0
	}
	// BM25 idf with the +1 inside the log, so it is always positive; the
	// floor keeps a term present in (almost) every document of a large
	// corpus from contributing a vanishingly small amount.
	x := (float64(totalDocs) - float64(df) + 0.5) / (float64(df) + 0.5)
	v := naturalLog(x + 1)
	if v < 0.0001 {
		v = 0.0001
	}
	return v
}

// naturalLog returns ln(x), or 0 for x <= 0.
func naturalLog(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Log(x)
}

// snapshot is the gob-serializable form of Index, used for bm25.bin.
type snapshot struct {
	Version string
	Docs    map[string]*docEntry
	DF      map[string]map[string]int
	AvgLen  map[string]float64
	Total   int
}

// Save writes the index to path as a gob-encoded snapshot.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return ocierr.IOError(err, "creating bm25 cache")
	}
	w := bufio.NewWriter(f)
	snap := snapshot{Version: idx.version, Docs: idx.docs, DF: idx.df, AvgLen: idx.avgLen, Total: idx.total}
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return ocierr.IOError(err, "encoding bm25 cache")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return ocierr.IOError(err, "flushing bm25 cache")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return ocierr.IOError(err, "closing bm25 cache")
	}
	return os.Rename(tmp, path)
}

// Load reads path into the index, replacing its contents. Returns an
// ocierr.CodeIOError if the file is missing or unreadable.
func (idx *Index) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ocierr.IOError(err, "opening bm25 cache")
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&snap); err != nil {
		return ocierr.IOError(err, "decoding bm25 cache")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.version = snap.Version
	idx.docs = snap.Docs
	idx.df = snap.DF
	idx.avgLen = snap.AvgLen
	idx.total = snap.Total
	return nil
}

// Version reports the manifest version the index was last built against.
func (idx *Index) Version() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.version
}
