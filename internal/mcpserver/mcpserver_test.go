package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-omni/omni/internal/indexer"
	"github.com/oss-omni/omni/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng := indexer.NewEngine(t.TempDir(), nil)
	eng.Store.PutFile("src/lib.rs",
		[]model.SymbolDef{
			{
				Name:       "greet",
				ScopedName: "lib::greet",
				Kind:       model.KindFunction,
				Location:   model.Location{Path: "src/lib.rs", StartLine: 1},
				Signature:  "pub fn greet() -> &'static str",
				Visibility: model.VisPublic,
			},
		},
		nil, nil,
	)
	return New(eng, "test", false)
}

func TestFindSymbolHandler(t *testing.T) {
	s := newTestServer(t)
	handler := s.findSymbolHandler()
	res, err := handler(context.Background(), nil, &mcp.CallToolParamsFor[findSymbolParams]{
		Arguments: findSymbolParams{Name: "greet"},
	})
	require.NoError(t, err)
	require.Len(t, res.StructuredContent.Symbols, 1)
	assert.Equal(t, "lib::greet", res.StructuredContent.Symbols[0].ScopedName)
}

func TestFindSymbolHandler_NotFound(t *testing.T) {
	s := newTestServer(t)
	handler := s.findSymbolHandler()
	_, err := handler(context.Background(), nil, &mcp.CallToolParamsFor[findSymbolParams]{
		Arguments: findSymbolParams{Name: "missing"},
	})
	assert.Error(t, err)
}

func TestFoldHandler(t *testing.T) {
	s := newTestServer(t)
	handler := s.foldHandler()
	res, err := handler(context.Background(), nil, &mcp.CallToolParamsFor[foldParams]{
		Arguments: foldParams{Path: "src/lib.rs"},
	})
	require.NoError(t, err)
	require.Len(t, res.StructuredContent.Entries, 1)
	assert.Equal(t, "lib::greet", res.StructuredContent.Entries[0].ScopedName)
}

func TestTopologyHandler_NoneBuiltYet(t *testing.T) {
	s := newTestServer(t)
	handler := s.topologyHandler()
	_, err := handler(context.Background(), nil, &mcp.CallToolParamsFor[topologyParams]{})
	assert.Error(t, err)
}

func TestFindCallsHandler_DefaultsToCallers(t *testing.T) {
	s := newTestServer(t)
	handler := s.findCallsHandler()
	res, err := handler(context.Background(), nil, &mcp.CallToolParamsFor[findCallsParams]{
		Arguments: findCallsParams{Name: "nonexistent-callee"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.StructuredContent.Edges)
}
