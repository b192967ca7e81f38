// Package topology builds the repository-structure graph (crates, modules,
// files, and the contains/imports/re-exports edges between them) and ranks
// its nodes with PageRank. Neither the graph construction nor PageRank
// itself comes from a library in the example pack — this is hand-written
// domain math, the same way the Rust parser's regex extraction is
// hand-written rather than delegated to a dependency.
package topology

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/oss-omni/omni/internal/model"
)

// Graph is the repository-structure graph plus each node's PageRank score.
type Graph struct {
	Nodes []model.TopologyNode
	Edges []model.TopologyEdge
	Rank  map[string]float64 // node ID -> PageRank score
}

// Damping is PageRank's damping factor.
const Damping = 0.85

// ConvergenceEpsilon is the L1 delta below which iteration stops.
const ConvergenceEpsilon = 1e-6

// MaxIterations bounds PageRank even if it doesn't converge.
const MaxIterations = 100

// Build constructs the topology graph from the set of indexed files and
// their parsed imports. A crate root is synthesized once; every file gets
// a File node, every distinct directory prefix gets a Module node, and
// imports become Imports edges from the importing file to the
// best-effort-resolved module it names (an import that doesn't resolve to
// any indexed module is simply dropped — topology is a best-effort
// structural view, not a full linker).
func Build(files []string, importsByFile map[string][]model.ImportInfo) *Graph {
	g := &Graph{Rank: make(map[string]float64)}

	crateID := "crate:root"
	g.Nodes = append(g.Nodes, model.TopologyNode{ID: crateID, Kind: model.NodeCrate, Path: ""})

	moduleIDs := map[string]bool{}
	addModule := func(dir string) string {
		id := "module:" + dir
		if !moduleIDs[dir] {
			moduleIDs[dir] = true
			g.Nodes = append(g.Nodes, model.TopologyNode{ID: id, Kind: model.NodeModule, Path: dir})
		}
		return id
	}

	sortedFiles := append([]string(nil), files...)
	sort.Strings(sortedFiles)

	fileIDs := map[string]string{}
	for _, f := range sortedFiles {
		fileID := "file:" + f
		fileIDs[f] = fileID
		g.Nodes = append(g.Nodes, model.TopologyNode{ID: fileID, Kind: model.NodeFile, Path: f})

		dir := filepath.ToSlash(filepath.Dir(f))
		if dir == "." {
			g.Edges = append(g.Edges, model.TopologyEdge{From: crateID, To: fileID, Kind: model.EdgeContains})
			continue
		}
		parent := crateID
		acc := ""
		for _, seg := range strings.Split(dir, "/") {
			if acc == "" {
				acc = seg
			} else {
				acc = acc + "/" + seg
			}
			modID := addModule(acc)
			g.Edges = append(g.Edges, model.TopologyEdge{From: parent, To: modID, Kind: model.EdgeContains})
			parent = modID
		}
		g.Edges = append(g.Edges, model.TopologyEdge{From: parent, To: fileID, Kind: model.EdgeContains})
	}

	for f, imports := range importsByFile {
		fromID, ok := fileIDs[f]
		if !ok {
			continue
		}
		for _, imp := range imports {
			toDir := resolveImportPath(imp.RawPath, sortedFiles)
			if toDir == "" {
				continue
			}
			toID := "module:" + toDir
			if !moduleIDs[toDir] {
				continue // import names a module we never indexed; drop it
			}
			kind := model.EdgeImports
			if imp.IsReexport {
				kind = model.EdgeReExports
			}
			g.Edges = append(g.Edges, model.TopologyEdge{From: fromID, To: toID, Kind: kind})
		}
	}

	g.Rank = PageRank(fileNodes(g.Nodes), fileImportEdges(sortedFiles, importsByFile))
	return g
}

// fileNodes narrows nodes to the File-kind subset PageRank ranks over —
// relevance is an import-centrality question, not a crate/module one.
func fileNodes(nodes []model.TopologyNode) []model.TopologyNode {
	var out []model.TopologyNode
	for _, n := range nodes {
		if n.Kind == model.NodeFile {
			out = append(out, n)
		}
	}
	return out
}

// fileImportEdges builds the file-level subgraph of Imports edges PageRank
// ranks over: each import is resolved to its target module directory, then
// fanned out to every file directly inside that directory (the graph built
// for display keeps the coarser file->module edges; this one is file-to-
// file, since PageRank needs to propagate rank between the files
// themselves).
func fileImportEdges(files []string, importsByFile map[string][]model.ImportInfo) []model.TopologyEdge {
	var edges []model.TopologyEdge
	for from, imports := range importsByFile {
		for _, imp := range imports {
			dir := resolveImportPath(imp.RawPath, files)
			if dir == "" {
				continue
			}
			for _, to := range files {
				if to == from {
					continue
				}
				if filepath.ToSlash(filepath.Dir(to)) == dir {
					edges = append(edges, model.TopologyEdge{From: "file:" + from, To: "file:" + to, Kind: model.EdgeImports})
				}
			}
		}
	}
	return edges
}

// resolveImportPath maps a Rust `use` path's module segments
// (`crate::foo::bar::Baz` -> `foo/bar`) onto an indexed directory. The
// segments are tried longest first, dropping trailing ones, and match a
// file's directory that equals them or ends in them (so `foo/bar` matches
// `src/foo/bar`); that directory is returned. Returns "" if nothing matches.
func resolveImportPath(rawPath string, files []string) string {
	segs := strings.Split(rawPath, "::")
	// Drop the crate root keyword and the trailing item name, leaving the
	// module path segments.
	var mod []string
	for _, s := range segs {
		if s == "crate" || s == "self" || s == "super" {
			continue
		}
		mod = append(mod, s)
	}
	if len(mod) <= 1 {
		return ""
	}
	mod = mod[:len(mod)-1]

	for k := len(mod); k > 0; k-- {
		candidate := strings.Join(mod[:k], "/")
		for _, f := range files {
			dir := filepath.ToSlash(filepath.Dir(f))
			if dir == candidate || strings.HasSuffix(dir, "/"+candidate) {
				return dir
			}
		}
	}
	return ""
}

// PageRank computes the PageRank score of every node in the graph treating
// every edge as a directed link, damping factor Damping, iterating until
// the L1 change between rounds drops below ConvergenceEpsilon or
// MaxIterations rounds have run.
func PageRank(nodes []model.TopologyNode, edges []model.TopologyEdge) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}
	}

	out := make(map[string][]string)
	outDegree := make(map[string]int)
	ids := make([]string, 0, n)
	for _, node := range nodes {
		ids = append(ids, node.ID)
	}
	for _, e := range edges {
		out[e.From] = append(out[e.From], e.To)
		outDegree[e.From]++
	}

	rank := make(map[string]float64, n)
	init := 1.0 / float64(n)
	for _, id := range ids {
		rank[id] = init
	}

	danglingMass := func(r map[string]float64) float64 {
		var sum float64
		for _, id := range ids {
			if outDegree[id] == 0 {
				sum += r[id]
			}
		}
		return sum
	}

	for iter := 0; iter < MaxIterations; iter++ {
		next := make(map[string]float64, n)
		base := (1 - Damping) / float64(n)
		dangling := Damping * danglingMass(rank) / float64(n)
		for _, id := range ids {
			next[id] = base + dangling
		}
		for _, id := range ids {
			if outDegree[id] == 0 {
				continue
			}
			share := Damping * rank[id] / float64(outDegree[id])
			for _, to := range out[id] {
				next[to] += share
			}
		}

		var delta float64
		for _, id := range ids {
			d := next[id] - rank[id]
			if d < 0 {
				d = -d
			}
			delta += d
		}
		rank = next
		if delta < ConvergenceEpsilon {
			break
		}
	}

	return rank
}
