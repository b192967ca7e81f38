// Package query implements the read-only operations omni serves: symbol
// lookup, caller/callee traversal, BM25 search, and signature-skeleton
// folding of a file.
package query

import (
	"context"
	"sort"
	"strings"

	"github.com/oss-omni/omni/internal/bm25"
	"github.com/oss-omni/omni/internal/indexer"
	"github.com/oss-omni/omni/internal/model"
	"github.com/oss-omni/omni/internal/ocierr"
)

// previewMaxRunes bounds how much of a search hit's first non-empty body
// line surfaces in a preview.
const previewMaxRunes = 120

// Engine answers queries against an indexer.Engine's store and BM25 index.
type Engine struct {
	idx *indexer.Engine
}

// New wraps idx in a query Engine.
func New(idx *indexer.Engine) *Engine {
	return &Engine{idx: idx}
}

// Symbol resolves name to its definitions. An exact scoped name
// ("mod::Type::method") returns that single definition; anything else is
// looked up by simple name and may return several. When prefix is true,
// name is additionally treated as a scoped-name prefix and every matching
// definition is included.
func (e *Engine) Symbol(name string, prefix bool) ([]model.SymbolDef, error) {
	if name == "" {
		return nil, ocierr.InvalidQuery("symbol name must not be empty")
	}
	if d, ok := e.idx.Store.ByScoped(name); ok {
		return []model.SymbolDef{d}, nil
	}
	defs := e.idx.Store.ByName(name)
	if prefix {
		defs = append(defs, e.idx.Store.ByPrefix(name)...)
	}
	defs = dedupeSymbols(defs)
	if len(defs) == 0 {
		return nil, ocierr.NotFound("no symbol named %q", name)
	}
	sortSymbols(defs)
	return defs, nil
}

// Callers returns every call edge whose callee name is name.
func (e *Engine) Callers(name string) ([]model.CallEdge, error) {
	if name == "" {
		return nil, ocierr.InvalidQuery("callee name must not be empty")
	}
	edges := e.idx.Store.CallersOf(name)
	sortEdges(edges)
	return edges, nil
}

// Callees returns every call edge made from within scopedName.
func (e *Engine) Callees(scopedName string) ([]model.CallEdge, error) {
	if scopedName == "" {
		return nil, ocierr.InvalidQuery("caller scoped name must not be empty")
	}
	if _, ok := e.idx.Store.ByScoped(scopedName); !ok {
		return nil, ocierr.NotFound("no symbol with scoped name %q", scopedName)
	}
	edges := e.idx.Store.CalleesOf(scopedName)
	sortEdges(edges)
	return edges, nil
}

// SearchOptions configures a Search or Query call.
type SearchOptions struct {
	TopK int
}

// SearchHit is the stable, flat JSON shape every search result renders as:
// { "symbol": ..., "kind": ..., "file": ..., "line": ..., "score": ... }.
type SearchHit struct {
	Symbol string           `json:"symbol"`
	Kind   model.SymbolKind `json:"kind"`
	File   string           `json:"file"`
	Line   int              `json:"line"`
	Score  float64          `json:"score"`
}

// QueryHit extends SearchHit with the symbol's byte span and a body
// preview — the richer payload the `query` command returns.
type QueryHit struct {
	SearchHit
	StartByte int    `json:"start_byte"`
	EndByte   int    `json:"end_byte"`
	Preview   string `json:"preview"`
}

// Search runs rawQuery through the BM25 index, lazily building/refreshing
// it against the current manifest version first, and renders each hit as
// the flat stable contract.
func (e *Engine) Search(ctx context.Context, rawQuery string, opts SearchOptions) ([]SearchHit, error) {
	results, err := e.search(ctx, rawQuery, opts)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = toSearchHit(r)
	}
	return hits, nil
}

// Query runs rawQuery the same way Search does, but returns the richer
// payload: each hit's byte span alongside a body preview.
func (e *Engine) Query(ctx context.Context, rawQuery string, opts SearchOptions) ([]QueryHit, error) {
	results, err := e.search(ctx, rawQuery, opts)
	if err != nil {
		return nil, err
	}
	hits := make([]QueryHit, len(results))
	for i, r := range results {
		hits[i] = toQueryHit(r)
	}
	return hits, nil
}

func (e *Engine) search(ctx context.Context, rawQuery string, opts SearchOptions) ([]bm25.Result, error) {
	if err := e.idx.EnsureBM25(ctx); err != nil {
		return nil, err
	}
	q := bm25.ParseQuery(rawQuery)
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}
	return e.idx.BM25.Search(q, topK)
}

func toSearchHit(r bm25.Result) SearchHit {
	return SearchHit{
		Symbol: r.Symbol.ScopedName,
		Kind:   r.Symbol.Kind,
		File:   r.Symbol.Location.Path,
		Line:   r.Symbol.Location.StartLine,
		Score:  r.Score,
	}
}

func toQueryHit(r bm25.Result) QueryHit {
	return QueryHit{
		SearchHit: toSearchHit(r),
		StartByte: r.Symbol.Location.StartByte,
		EndByte:   r.Symbol.Location.EndByte,
		Preview:   preview(r.Symbol.Body),
	}
}

// preview returns the first non-empty line of body, truncated to
// previewMaxRunes.
func preview(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r := []rune(line)
		if len(r) > previewMaxRunes {
			r = r[:previewMaxRunes]
		}
		return string(r)
	}
	return ""
}

// FoldEntry is one signature-skeleton line produced by Fold.
type FoldEntry struct {
	ScopedName string           `json:"scoped_name"`
	Kind       model.SymbolKind `json:"kind"`
	Signature  string           `json:"signature"`
	Line       int              `json:"line"`
}

// Fold returns every symbol defined in path, nested ones included, as a signature
// skeleton, ordered by source position — a quick structural summary of a
// file without its bodies.
func (e *Engine) Fold(path string) ([]FoldEntry, error) {
	syms := e.idx.Store.SymbolsInFile(path)
	if len(syms) == 0 {
		return nil, ocierr.NotFound("no indexed symbols in %q", path)
	}
	out := make([]FoldEntry, 0, len(syms))
	for _, s := range syms {
		out = append(out, FoldEntry{
			ScopedName: s.ScopedName,
			Kind:       s.Kind,
			Signature:  s.Signature,
			Line:       s.Location.StartLine,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out, nil
}

func dedupeSymbols(defs []model.SymbolDef) []model.SymbolDef {
	seen := make(map[string]bool, len(defs))
	out := defs[:0]
	for _, d := range defs {
		if seen[d.ScopedName] {
			continue
		}
		seen[d.ScopedName] = true
		out = append(out, d)
	}
	return out
}

func sortSymbols(defs []model.SymbolDef) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Location.Path != defs[j].Location.Path {
			return defs[i].Location.Path < defs[j].Location.Path
		}
		return defs[i].Location.StartLine < defs[j].Location.StartLine
	})
}

func sortEdges(edges []model.CallEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Location.Path != edges[j].Location.Path {
			return edges[i].Location.Path < edges[j].Location.Path
		}
		return edges[i].Location.StartLine < edges[j].Location.StartLine
	})
}
