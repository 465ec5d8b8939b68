// Package graph builds the reference graph between definitions, finds
// reference cycles and computes PageRank.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/schemagen/internal/model"
	"github.com/phobologic/schemagen/internal/schema"
)

// Build assembles the catalog for every definition in table.
func Build(root string, table *schema.Table) *model.Catalog {
	deps, unresolved := BuildGraph(table)

	defs := make([]model.Definition, 0, table.Len())
	for _, key := range table.Keys() {
		spec, _ := table.Lookup(key)
		defs = append(defs, model.Definition{
			Name:     spec.Name,
			Key:      key,
			File:     schema.SourceID(key),
			Fields:   len(spec.Fields),
			Required: len(spec.Required),
		})
	}
	Rank(defs, deps)

	return &model.Catalog{
		Root:         root,
		Definitions:  defs,
		Dependencies: deps,
		Unresolved:   unresolved,
		Cycles:       FindCycles(table.Keys(), deps),
	}
}

// BuildGraph creates reference edges between definitions, and lists the
// references that do not resolve.
func BuildGraph(table *schema.Table) ([]model.Dependency, []model.Unresolved) {
	type edgeKey struct{ src, tgt string }
	edgeFields := make(map[edgeKey][]string)
	var unresolved []model.Unresolved

	for _, key := range table.Keys() {
		spec, _ := table.Lookup(key)
		for _, fr := range spec.ReferencedKeys() {
			target, _, ok := table.ResolveRef(key, fr.Ref)
			if !ok {
				unresolved = append(unresolved, model.Unresolved{Definition: key, Field: fr.Field, Ref: fr.Ref})
				continue
			}
			ek := edgeKey{key, target}
			// Only add field if not already present
			if !contains(edgeFields[ek], fr.Field) {
				edgeFields[ek] = append(edgeFields[ek], fr.Field)
			}
		}
	}

	var deps []model.Dependency
	for ek, fields := range edgeFields {
		deps = append(deps, model.Dependency{
			Source: ek.src,
			Target: ek.tgt,
			Via:    fields,
		})
	}

	// Sort for deterministic output
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps, unresolved
}

// FindCycles returns the strongly connected components of the field
// reference graph that contain a cycle, each sorted, in sorted order.
// Generating a definition on such a cycle can fail with a cyclic reference
// error. Edges contributed only by allOf are ignored since allOf refs are
// never expanded.
func FindCycles(keys []string, deps []model.Dependency) [][]string {
	adj := make(map[string][]string)
	selfLoop := make(map[string]bool)
	for _, d := range deps {
		if len(d.Via) == 1 && d.Via[0] == allOfField {
			continue
		}
		if d.Source == d.Target {
			selfLoop[d.Source] = true
		}
		adj[d.Source] = append(adj[d.Source], d.Target)
	}

	// Tarjan's algorithm.
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var cycles [][]string
	next := 0

	var connect func(v string)
	connect = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := index[w]; !seen {
				connect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		var comp []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		if len(comp) > 1 || selfLoop[v] {
			sort.Strings(comp)
			cycles = append(cycles, comp)
		}
	}

	for _, k := range keys {
		if _, seen := index[k]; !seen {
			connect(k)
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// Rank applies PageRank to defs and sorts them by rank descending, ties by
// key. Definitions referenced from many places rank highest.
func Rank(defs []model.Definition, deps []model.Dependency) {
	if len(defs) == 0 {
		return
	}

	// Edge from source to target means source references target.
	// Each referencing field is an edge; self references are ignored.
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	nodes := make(map[string]struct{})

	for i := range defs {
		nodes[defs[i].Key] = struct{}{}
	}

	for _, d := range deps {
		if d.Source == d.Target {
			continue
		}
		for range d.Via {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	if len(outEdges) == 0 {
		uniform := 1.0 / float64(len(defs))
		for i := range defs {
			defs[i].Rank = uniform
		}
	} else {
		ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
		for i := range defs {
			defs[i].Rank = ranks[defs[i].Key]
		}
	}

	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Rank != defs[j].Rank {
			return defs[i].Rank > defs[j].Rank
		}
		return defs[i].Key < defs[j].Key
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		// Distribute rank through edges
		for src, targets := range outEdges {
			deg := float64(outDegree[src])
			contrib := alpha * rank[src] / deg
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		// Check convergence
		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

const allOfField = "allOf"

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
