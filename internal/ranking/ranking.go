// Package ranking narrows a ranked catalog for display.
package ranking

import (
	"strings"

	"github.com/phobologic/schemagen/internal/model"
)

// SelectTop returns a new Catalog with only the top-ranked definitions.
// If maxDefs is <= 0 or >= len(Definitions), the catalog is returned as is.
func SelectTop(cat *model.Catalog, maxDefs int) *model.Catalog {
	if maxDefs <= 0 || maxDefs >= len(cat.Definitions) {
		return cat
	}

	selected := cat.Definitions[:maxDefs]
	keys := make(map[string]struct{}, maxDefs)
	for i := range selected {
		keys[selected[i].Key] = struct{}{}
	}

	var deps []model.Dependency
	for i := range cat.Dependencies {
		d := &cat.Dependencies[i]
		_, srcOK := keys[d.Source]
		_, tgtOK := keys[d.Target]
		if srcOK && tgtOK {
			deps = append(deps, *d)
		}
	}

	return &model.Catalog{
		Root:         cat.Root,
		Definitions:  selected,
		Dependencies: deps,
		Unresolved:   keepUnresolved(cat.Unresolved, keys),
		Cycles:       keepCycles(cat.Cycles, keys),
	}
}

// FilterByName returns a new Catalog containing only definitions whose local
// name contains substr (case-insensitive), with every dependency edge
// touching them and their unresolved references. Cycles are kept when any
// member matched.
func FilterByName(cat *model.Catalog, substr string) *model.Catalog {
	lower := strings.ToLower(substr)

	keys := make(map[string]struct{})
	var defs []model.Definition
	for i := range cat.Definitions {
		if strings.Contains(strings.ToLower(cat.Definitions[i].Name), lower) {
			keys[cat.Definitions[i].Key] = struct{}{}
			defs = append(defs, cat.Definitions[i])
		}
	}

	var deps []model.Dependency
	for i := range cat.Dependencies {
		d := &cat.Dependencies[i]
		_, srcOK := keys[d.Source]
		_, tgtOK := keys[d.Target]
		if srcOK || tgtOK {
			deps = append(deps, *d)
		}
	}

	return &model.Catalog{
		Root:         cat.Root,
		Definitions:  defs,
		Dependencies: deps,
		Unresolved:   keepUnresolved(cat.Unresolved, keys),
		Cycles:       keepCycles(cat.Cycles, keys),
	}
}

func keepUnresolved(in []model.Unresolved, keys map[string]struct{}) []model.Unresolved {
	var out []model.Unresolved
	for i := range in {
		if _, ok := keys[in[i].Definition]; ok {
			out = append(out, in[i])
		}
	}
	return out
}

func keepCycles(in [][]string, keys map[string]struct{}) [][]string {
	var out [][]string
	for _, cycle := range in {
		for _, k := range cycle {
			if _, ok := keys[k]; ok {
				out = append(out, cycle)
				break
			}
		}
	}
	return out
}
