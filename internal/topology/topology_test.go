package topology

import (
	"testing"

	"github.com/oss-omni/omni/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_CreatesCrateModuleFileNodes(t *testing.T) {
	files := []string{"src/lib.rs", "src/util/helpers.rs"}
	g := Build(files, nil)

	var kinds = map[model.TopologyNodeKind]int{}
	for _, n := range g.Nodes {
		kinds[n.Kind]++
	}
	assert.Equal(t, 1, kinds[model.NodeCrate])
	assert.Equal(t, 2, kinds[model.NodeFile])
	assert.Equal(t, 2, kinds[model.NodeModule]) // src, src/util

	var fileToUtilEdge, crateToSrcEdge bool
	for _, e := range g.Edges {
		if e.Kind == model.EdgeContains && e.To == "module:src" && e.From == "crate:root" {
			crateToSrcEdge = true
		}
		if e.Kind == model.EdgeContains && e.To == "file:src/util/helpers.rs" {
			fileToUtilEdge = true
		}
	}
	assert.True(t, crateToSrcEdge, "expected crate -> module:src contains edge")
	assert.True(t, fileToUtilEdge, "expected module:src/util -> file contains edge")
}

func TestBuild_TopLevelFileContainedDirectlyByCrate(t *testing.T) {
	files := []string{"lib.rs"}
	g := Build(files, nil)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, "crate:root", g.Edges[0].From)
	assert.Equal(t, "file:lib.rs", g.Edges[0].To)
}

func TestBuild_ImportResolvesToIndexedModule(t *testing.T) {
	files := []string{"src/lib.rs", "src/util/helpers.rs"}
	imports := map[string][]model.ImportInfo{
		"src/lib.rs": {{RawPath: "crate::util::helpers::parse"}},
	}
	g := Build(files, imports)

	var found bool
	for _, e := range g.Edges {
		if e.Kind == model.EdgeImports && e.From == "file:src/lib.rs" && e.To == "module:src/util" {
			found = true
		}
	}
	assert.True(t, found, "expected an imports edge from lib.rs to module:src/util")
}

func TestBuild_ImportReexportBecomesReExportsEdge(t *testing.T) {
	files := []string{"src/lib.rs", "src/util/helpers.rs"}
	imports := map[string][]model.ImportInfo{
		"src/lib.rs": {{RawPath: "crate::util::helpers::parse", IsReexport: true}},
	}
	g := Build(files, imports)

	var found bool
	for _, e := range g.Edges {
		if e.Kind == model.EdgeReExports {
			found = true
		}
	}
	assert.True(t, found, "expected a reexports edge")
}

func TestBuild_UnresolvableImportIsDropped(t *testing.T) {
	files := []string{"src/lib.rs"}
	imports := map[string][]model.ImportInfo{
		"src/lib.rs": {{RawPath: "crate::nonexistent::thing"}},
	}
	g := Build(files, imports)

	for _, e := range g.Edges {
		assert.NotEqual(t, model.EdgeImports, e.Kind)
	}
}

func TestBuild_RankOnlyCoversFileNodes(t *testing.T) {
	files := []string{"src/lib.rs", "src/util/helpers.rs"}
	imports := map[string][]model.ImportInfo{
		"src/lib.rs": {{RawPath: "crate::util::helpers::parse"}},
	}
	g := Build(files, imports)

	_, libRanked := g.Rank["file:src/lib.rs"]
	_, helpersRanked := g.Rank["file:src/util/helpers.rs"]
	assert.True(t, libRanked)
	assert.True(t, helpersRanked)
	assert.NotContains(t, g.Rank, "crate:root")
	assert.NotContains(t, g.Rank, "module:src")
}

func TestBuild_RankPropagatesOverFileToFileImports(t *testing.T) {
	files := []string{"src/lib.rs", "src/util/helpers.rs", "src/unused.rs"}
	imports := map[string][]model.ImportInfo{
		"src/lib.rs":    {{RawPath: "crate::util::helpers::parse"}},
		"src/unused.rs": {{RawPath: "crate::util::helpers::parse"}},
	}
	g := Build(files, imports)

	assert.Greater(t, g.Rank["file:src/util/helpers.rs"], g.Rank["file:src/lib.rs"])
}

func TestPageRank_EmptyGraph(t *testing.T) {
	rank := PageRank(nil, nil)
	assert.Empty(t, rank)
}

func TestPageRank_RanksSumsToApproximatelyOne(t *testing.T) {
	nodes := []model.TopologyNode{
		{ID: "a", Kind: model.NodeFile},
		{ID: "b", Kind: model.NodeFile},
		{ID: "c", Kind: model.NodeFile},
	}
	edges := []model.TopologyEdge{
		{From: "a", To: "b", Kind: model.EdgeImports},
		{From: "b", To: "c", Kind: model.EdgeImports},
		{From: "c", To: "a", Kind: model.EdgeImports},
	}
	rank := PageRank(nodes, edges)

	var sum float64
	for _, r := range rank {
		sum += r
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestPageRank_MoreIncomingLinksRanksHigher(t *testing.T) {
	nodes := []model.TopologyNode{
		{ID: "popular", Kind: model.NodeFile},
		{ID: "a", Kind: model.NodeFile},
		{ID: "b", Kind: model.NodeFile},
		{ID: "lonely", Kind: model.NodeFile},
	}
	edges := []model.TopologyEdge{
		{From: "a", To: "popular", Kind: model.EdgeImports},
		{From: "b", To: "popular", Kind: model.EdgeImports},
	}
	rank := PageRank(nodes, edges)
	assert.Greater(t, rank["popular"], rank["lonely"])
}
