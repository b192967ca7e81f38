// Package model defines the data types shared across omni's indexing,
// storage, and query layers.
package model

import "fmt"

// SymbolKind enumerates the kinds of symbols the Rust parser can produce.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindStruct    SymbolKind = "struct"
	KindEnum      SymbolKind = "enum"
	KindTrait     SymbolKind = "trait"
	KindImpl      SymbolKind = "impl"
	KindConst     SymbolKind = "const"
	KindStatic    SymbolKind = "static"
	KindModule    SymbolKind = "module"
	KindTypeAlias SymbolKind = "type_alias"
	KindMacro     SymbolKind = "macro"
	KindField     SymbolKind = "field"
	KindVariant   SymbolKind = "variant"
)

// Visibility is the three-valued visibility a Rust item can declare.
type Visibility string

const (
	VisPublic     Visibility = "public"
	VisRestricted Visibility = "restricted" // pub(crate), pub(super), pub(in path)
	VisPrivate    Visibility = "private"
)

// Location pinpoints a symbol or call site inside a file. Byte offsets are
// 0-based and half-open ([StartByte, EndByte)); Line/Col are 1-based and
// measured in Unicode scalar values, not UTF-8 bytes.
type Location struct {
	Path       string `json:"path"`
	StartByte  int    `json:"start_byte"`
	EndByte    int    `json:"end_byte"`
	StartLine  int    `json:"start_line"`
	StartCol   int    `json:"start_col"`
	EndLine    int    `json:"end_line"`
	EndCol     int    `json:"end_col"`
}

// SymbolDef is a single extracted definition.
type SymbolDef struct {
	Name       string     `json:"name"`
	ScopedName string     `json:"scoped_name"`
	Kind       SymbolKind `json:"kind"`
	Location   Location   `json:"location"`
	Signature  string     `json:"signature"`
	DocComment string     `json:"doc_comment,omitempty"`
	Visibility Visibility `json:"visibility"`
	Attributes []string   `json:"attributes,omitempty"`

	// Body is the raw source text of the symbol's span (declaration
	// through closing brace/semicolon). It feeds the BM25 index's
	// "string" field and search-result previews; it is not part of the
	// stable JSON surface other consumers render.
	Body string `json:"-"`
}

// CallEdge records a call site: the scoped name of the enclosing function or
// method, and the (unqualified) callee name as it appears in source. Callee
// resolution to a concrete SymbolDef happens at query time, not extraction
// time — a single textual callee may resolve to zero, one, or many
// definitions.
type CallEdge struct {
	CallerScoped string   `json:"caller_scoped"`
	CalleeName   string   `json:"callee_name"`
	Location     Location `json:"location"`
}

// ImportInfo records a single `use` declaration.
type ImportInfo struct {
	RawPath    string `json:"raw_path"`
	Alias      string `json:"alias,omitempty"`
	IsGlob     bool   `json:"is_glob"`
	IsReexport bool   `json:"is_reexport"`
	Location   Location `json:"location"`
}

// TopologyNodeKind enumerates the coarse-grained nodes in the repository
// topology graph.
type TopologyNodeKind string

const (
	NodeCrate  TopologyNodeKind = "crate"
	NodeModule TopologyNodeKind = "module"
	NodeFile   TopologyNodeKind = "file"
)

// TopologyNode is a vertex in the repository-structure graph.
type TopologyNode struct {
	ID   string           `json:"id"`
	Kind TopologyNodeKind `json:"kind"`
	Path string           `json:"path"`
}

// TopologyEdgeKind enumerates the edges between topology nodes.
type TopologyEdgeKind string

const (
	EdgeContains  TopologyEdgeKind = "contains"
	EdgeImports   TopologyEdgeKind = "imports"
	EdgeReExports TopologyEdgeKind = "reexports"
)

// TopologyEdge is a directed edge in the repository-structure graph.
type TopologyEdge struct {
	From string           `json:"from"`
	To   string           `json:"to"`
	Kind TopologyEdgeKind `json:"kind"`
}

// FileFingerprint is the incremental-reindex unit: a file is reparsed only
// when one of these fields changes relative to the stored manifest entry.
type FileFingerprint struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	MtimeNanos  int64  `json:"mtime_nanos"`
	ContentHash uint64 `json:"content_hash"`
}

// String renders a human-readable one-liner, used in log lines and CLI
// diagnostics.
func (f FileFingerprint) String() string {
	return fmt.Sprintf("%s (size=%d hash=%016x)", f.Path, f.Size, f.ContentHash)
}

// ParseOutput is the full result of running the parser over a single file.
type ParseOutput struct {
	Path    string
	Symbols []SymbolDef
	Calls   []CallEdge
	Imports []ImportInfo
	Errors  []error
}
