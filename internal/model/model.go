// Package model defines the catalog report built from a reference table.
package model

// Definition describes one exported definition.
type Definition struct {
	Name     string // local name
	Key      string // qualified key
	File     string
	Fields   int
	Required int
	Rank     float64
}

// Dependency represents an edge in the reference graph:
// Source refers to Target through the listed fields ("allOf" for allOf refs).
type Dependency struct {
	Source string
	Target string
	Via    []string
}

// Unresolved is a reference whose target is not in the table.
type Unresolved struct {
	Definition string
	Field      string
	Ref        string
}

// Catalog is the complete analyzed schema directory, ready for serialization.
type Catalog struct {
	Root         string
	Definitions  []Definition
	Dependencies []Dependency
	Unresolved   []Unresolved
	Cycles       [][]string
}
