// Package mcpserver exposes omni's query engine over the Model Context
// Protocol, grounded in the teacher's mcp.NewServer/mcp.AddTool/
// server.AddResource/server.AddPrompt bootstrap (cmd/mcp_server.go),
// adapted from a task-store-backed tool set to a code-intelligence one:
// index, search, find_symbol, find_calls, topology, and fold.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oss-omni/omni/internal/discover"
	"github.com/oss-omni/omni/internal/indexer"
	"github.com/oss-omni/omni/internal/model"
	"github.com/oss-omni/omni/internal/query"
)

// Server wraps the indexer/query engines and an MCP server instance.
type Server struct {
	engine     *indexer.Engine
	queries    *query.Engine
	mcp        *mcp.Server
	verbose    bool
	instanceID string
}

// New builds a Server for engine, registering every tool, resource, and
// prompt. Version is reported in the MCP implementation handshake.
func New(engine *indexer.Engine, version string, verbose bool) *Server {
	s := &Server{
		engine:     engine,
		queries:    query.New(engine),
		verbose:    verbose,
		instanceID: uuid.NewString(),
	}

	impl := &mcp.Implementation{Name: "omni", Version: version}
	opts := &mcp.ServerOptions{
		InitializedHandler: func(ctx context.Context, session *mcp.ServerSession, params *mcp.InitializedParams) {
			s.logInfo(fmt.Sprintf("client initialized (instance %s)", s.instanceID))
		},
	}
	s.mcp = mcp.NewServer(impl, opts)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// Run serves the MCP protocol over stdin/stdout until ctx is cancelled or
// the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if err := s.mcp.Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func (s *Server) logInfo(msg string) {
	if s.verbose {
		log.Printf("[MCP INFO] %s", msg)
	}
}

func (s *Server) logError(err error) {
	if s.verbose {
		log.Printf("[MCP ERROR] %v", err)
	}
}

// --- index ---

type indexParams struct {
	Force bool `json:"force,omitempty"`
}

type indexResult struct {
	Stats *indexer.Stats `json:"stats"`
}

func (s *Server) indexHandler() mcp.ToolHandlerFor[indexParams, indexResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[indexParams]) (*mcp.CallToolResultFor[indexResult], error) {
		args := params.Arguments
		var stats *indexer.Stats
		var err error
		if args.Force {
			stats, err = s.engine.FullIndex(ctx, discover.Options{})
		} else {
			stats, err = s.engine.Update(ctx, discover.Options{})
		}
		if err != nil {
			s.logError(err)
			return nil, err
		}
		result := indexResult{Stats: stats}
		return &mcp.CallToolResultFor[indexResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("parsed %d files, %d symbols", stats.FilesParsed, stats.Symbols)}},
			StructuredContent: result,
		}, nil
	}
}

// --- search ---

type searchParams struct {
	Query string `json:"query"`
	TopK  int    `json:"topK,omitempty"`
}

type searchResult struct {
	Results []query.SearchHit `json:"results"`
}

func (s *Server) searchHandler() mcp.ToolHandlerFor[searchParams, searchResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[searchParams]) (*mcp.CallToolResultFor[searchResult], error) {
		args := params.Arguments
		results, err := s.queries.Search(ctx, args.Query, query.SearchOptions{TopK: args.TopK})
		if err != nil {
			s.logError(err)
			return nil, err
		}
		return &mcp.CallToolResultFor[searchResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d results for %q", len(results), args.Query)}},
			StructuredContent: searchResult{Results: results},
		}, nil
	}
}

// --- find_symbol ---

type findSymbolParams struct {
	Name   string `json:"name"`
	Prefix bool   `json:"prefix,omitempty"`
}

type findSymbolResult struct {
	Symbols []model.SymbolDef `json:"symbols"`
}

func (s *Server) findSymbolHandler() mcp.ToolHandlerFor[findSymbolParams, findSymbolResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[findSymbolParams]) (*mcp.CallToolResultFor[findSymbolResult], error) {
		args := params.Arguments
		defs, err := s.queries.Symbol(args.Name, args.Prefix)
		if err != nil {
			s.logError(err)
			return nil, err
		}
		return &mcp.CallToolResultFor[findSymbolResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d definitions for %q", len(defs), args.Name)}},
			StructuredContent: findSymbolResult{Symbols: defs},
		}, nil
	}
}

// --- find_calls ---

type findCallsParams struct {
	Name      string `json:"name"`
	Direction string `json:"direction,omitempty"` // "callers" (default) or "callees"
}

type findCallsResult struct {
	Edges []model.CallEdge `json:"edges"`
}

func (s *Server) findCallsHandler() mcp.ToolHandlerFor[findCallsParams, findCallsResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[findCallsParams]) (*mcp.CallToolResultFor[findCallsResult], error) {
		args := params.Arguments
		var edges []model.CallEdge
		var err error
		if args.Direction == "callees" {
			edges, err = s.queries.Callees(args.Name)
		} else {
			edges, err = s.queries.Callers(args.Name)
		}
		if err != nil {
			s.logError(err)
			return nil, err
		}
		return &mcp.CallToolResultFor[findCallsResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d edges for %q", len(edges), args.Name)}},
			StructuredContent: findCallsResult{Edges: edges},
		}, nil
	}
}

// --- topology ---

type topologyParams struct{}

type topologyResult struct {
	Nodes []model.TopologyNode `json:"nodes"`
	Edges []model.TopologyEdge `json:"edges"`
	Rank  map[string]float64   `json:"rank"`
}

func (s *Server) topologyHandler() mcp.ToolHandlerFor[topologyParams, topologyResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[topologyParams]) (*mcp.CallToolResultFor[topologyResult], error) {
		graph := s.engine.Topology()
		if graph == nil {
			return nil, fmt.Errorf("no topology built yet; run index first")
		}
		return &mcp.CallToolResultFor[topologyResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d nodes, %d edges", len(graph.Nodes), len(graph.Edges))}},
			StructuredContent: topologyResult{Nodes: graph.Nodes, Edges: graph.Edges, Rank: graph.Rank},
		}, nil
	}
}

// --- fold ---

type foldParams struct {
	Path string `json:"path"`
}

type foldResult struct {
	Entries []query.FoldEntry `json:"entries"`
}

func (s *Server) foldHandler() mcp.ToolHandlerFor[foldParams, foldResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[foldParams]) (*mcp.CallToolResultFor[foldResult], error) {
		args := params.Arguments
		entries, err := s.queries.Fold(args.Path)
		if err != nil {
			s.logError(err)
			return nil, err
		}
		return &mcp.CallToolResultFor[foldResult]{
			Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d symbols in %s", len(entries), args.Path)}},
			StructuredContent: foldResult{Entries: entries},
		}, nil
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index",
		Description: "index or incrementally update the workspace's Rust symbol and call-graph database",
	}, s.indexHandler())

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "BM25 search over every indexed symbol's path, identifier, doc-comment/attributes, and body text",
	}, s.searchHandler())

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_symbol",
		Description: "look up a symbol by exact scoped name or simple name",
	}, s.findSymbolHandler())

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_calls",
		Description: "list callers of, or callees from, a symbol",
	}, s.findCallsHandler())

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "topology",
		Description: "repository crate/module/file structure graph with PageRank scores",
	}, s.topologyHandler())

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "fold",
		Description: "signature skeleton of every symbol in a file, nested ones included",
	}, s.foldHandler())
}

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         "omni://manifest",
		Name:        "manifest",
		Description: "the current indexing manifest version and file count",
		MIMEType:    "application/json",
	}, s.manifestResourceHandler())
}

func (s *Server) manifestResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error) {
		payload := struct {
			Version string `json:"version"`
			Files   int    `json:"files"`
		}{
			Version: s.engine.ManifestVersionString(),
			Files:   len(s.engine.Store.Files()),
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: params.URI, MIMEType: "application/json", Text: string(data)},
			},
		}, nil
	}
}

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "explore-symbol",
		Description: "suggests a sequence of omni tool calls to understand a symbol's role in the codebase",
		Arguments: []*mcp.PromptArgument{
			{Name: "name", Description: "symbol name or scoped name to explore", Required: true},
		},
	}, s.exploreSymbolPromptHandler())
}

func (s *Server) exploreSymbolPromptHandler() func(context.Context, *mcp.ServerSession, *mcp.GetPromptParams) (*mcp.GetPromptResult, error) {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.GetPromptParams) (*mcp.GetPromptResult, error) {
		name := params.Arguments["name"]
		text := fmt.Sprintf(
			"Use find_symbol with name=%q to locate its definition(s), then find_calls "+
				"(direction=callers) to see what depends on it, and find_calls "+
				"(direction=callees) to see what it depends on.", name)
		return &mcp.GetPromptResult{
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	}
}
