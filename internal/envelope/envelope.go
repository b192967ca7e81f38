// Package envelope defines the deterministic JSON response shape every
// omni CLI command and MCP tool returns: a fixed success/error envelope,
// not a freeform map, so callers can depend on field order and presence
// rather than parsing loosely-typed output.
package envelope

import (
	"encoding/json"
	"path/filepath"

	"github.com/oss-omni/omni/internal/ocierr"
)

// Envelope is the top-level JSON object returned by every omni operation.
// Exactly one of Result or Error is populated. Field order here is the
// field order in the rendered JSON; json.Marshal on a struct always emits
// fields in declaration order, which is what makes the output
// deterministic without needing to sort map keys.
type Envelope struct {
	OK     bool          `json:"ok"`
	Result any           `json:"result,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
	Meta   *Meta         `json:"meta,omitempty"`
}

// ErrorPayload is the error field's shape.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries operation-level bookkeeping, e.g. timing or pagination;
// nil when the caller doesn't ask for it.
type Meta struct {
	Count int `json:"count,omitempty"`
}

// Success wraps result in an ok envelope.
func Success(result any) Envelope {
	return Envelope{OK: true, Result: result}
}

// SuccessWithCount wraps result in an ok envelope annotated with a count,
// typically len(result) for list-shaped results.
func SuccessWithCount(result any, count int) Envelope {
	return Envelope{OK: true, Result: result, Meta: &Meta{Count: count}}
}

// Failure wraps err in an error envelope, extracting its taxonomy code via
// ocierr.CodeOf so the envelope's error.code is stable even for errors that
// pass through several layers of wrapping.
func Failure(err error) Envelope {
	return Envelope{
		OK: false,
		Error: &ErrorPayload{
			Code:    string(ocierr.CodeOf(err)),
			Message: err.Error(),
		},
	}
}

// MarshalIndent renders e as pretty-printed JSON, the default rendering
// for interactive CLI use.
func MarshalIndent(e Envelope) ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// Marshal renders e as compact single-line JSON, used for --json piping
// and the MCP transport.
func Marshal(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

// ToSlash normalizes path to forward slashes regardless of host OS, so the
// response envelope's paths are stable across platforms.
func ToSlash(path string) string {
	return filepath.ToSlash(path)
}

// RelSlash returns path relative to root, forward-slash normalized. If
// path cannot be made relative to root, path is returned unchanged
// (slash-normalized) rather than erroring — path fields are diagnostic,
// not load-bearing.
func RelSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ToSlash(path)
	}
	return ToSlash(rel)
}
