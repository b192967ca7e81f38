package ocierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_SetExpectedCode(t *testing.T) {
	cases := []struct {
		name string
		err  *OciError
		code Code
	}{
		{"InvalidQuery", InvalidQuery("bad query %q", "x"), CodeInvalidQuery},
		{"NotFound", NotFound("symbol %q", "foo"), CodeNotFound},
		{"Internal", Internal("boom"), CodeInternal},
		{"Cancelled", Cancelled("stopped"), CodeCancelled},
		{"IndexStale", IndexStale("rebuild"), CodeIndexStale},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
		})
	}
}

func TestIOError_WrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := IOError(cause, "writing %s", "state.bin")
	assert.Equal(t, CodeIOError, err.Code)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "writing state.bin")
}

func TestCodeOf_UnwrapsThroughFmtWrap(t *testing.T) {
	base := NotFound("symbol %q", "foo")
	wrapped := fmt.Errorf("handler failed: %w", base)
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestCodeOf_DefaultsToInternalForForeignErrors(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain error")))
}

func TestWrapInternal_AlwaysInternalRegardlessOfCause(t *testing.T) {
	cause := NotFound("symbol %q", "foo")
	wrapped := WrapInternal(cause, "unexpected failure")
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, CodeInternal, CodeOf(wrapped))
}
