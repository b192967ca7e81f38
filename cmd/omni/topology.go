package main

import (
	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/ocierr"
)

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "print the crate/module/file structure graph with PageRank scores",
	Long: `topology renders the repository topology graph built from the
indexed files and their use-declarations: crate, module, and file nodes
connected by contains/imports/reexports edges, each node annotated with
its PageRank score over the import graph.`,
	RunE: runTopology,
}

func init() {
	rootCmd.AddCommand(topologyCmd)
}

func runTopology(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}
	graph := eng.Topology()
	if graph == nil {
		return emit(nil, ocierr.NotFound("no topology built yet; run `omni index` first"))
	}
	return emit(graph, nil)
}
