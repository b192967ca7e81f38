// Package rustparse implements the single production parser omni ships:
// a regex- and brace-matching-based extractor for Rust source, grounded in
// the same CGO-free philosophy as a tree-sitter-free Rust parser — it
// tolerates files that don't fully parse (macros it doesn't understand,
// partial edits) by extracting everything it recognizes and skipping the
// rest, rather than failing the whole file.
package rustparse

import "github.com/oss-omni/omni/internal/model"

// Parser is the contract every language extractor satisfies. A single
// Parse call performs all four logical operations the engine needs from a
// source file — symbol extraction, call-edge extraction, import
// extraction, and language tagging — because all four are cheap
// by-products of one pass over the file's bytes; splitting them into four
// interface methods would only force four redundant scans.
type Parser interface {
	// Language returns the language tag attached to every symbol this
	// parser produces (e.g. "rust").
	Language() string

	// SupportedExtensions returns the file extensions (with leading dot)
	// this parser claims.
	SupportedExtensions() []string

	// CanParse reports whether this parser claims the given repo-relative
	// path based on its extension.
	CanParse(path string) bool

	// Parse extracts symbols, call edges, and imports from content, a
	// single file's bytes. path is the repo-relative, forward-slash path
	// used to derive the file's module scope. Parse never returns a nil
	// *model.ParseOutput; parse errors are collected into Output.Errors
	// rather than failing the call, so a file with one broken region still
	// yields everything extracted around it.
	Parse(path string, content []byte) *model.ParseOutput
}
