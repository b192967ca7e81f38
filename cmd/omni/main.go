// Command omni indexes a Rust workspace and serves symbol, call-graph,
// and BM25 search queries over it, via both a CLI and an MCP/JSON-RPC
// server.
package main

func main() {
	Execute()
}
