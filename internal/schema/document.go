// Package schema maps JSON-Schema style documents onto a closed model of
// object definitions, fields and field kinds, and folds parsed documents
// into a table addressed by qualified key.
package schema

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phobologic/schemagen/internal/node"
)

// PlaceholderName names the single definition of a document parsed without
// a source id.
const PlaceholderName = "temp"

// Document is one parsed schema file.
type Document struct {
	// SourceID is the originating file name. Documents without one cannot
	// be exported.
	SourceID string

	// AllOf holds the $ref strings of a top-level allOf next to embedded
	// definitions.
	AllOf []string

	defs []*ObjectSpec
}

// ParseDocument parses a decoded schema file. A document with a
// "definitions" key holds any number of definitions; otherwise the whole
// document is one definition named after the source id.
func ParseDocument(root *node.Node, sourceID string) (*Document, error) {
	if root.Kind != node.Object {
		return nil, malformed("", "schema "+root.String()+" is not an object")
	}

	doc := &Document{SourceID: sourceID}
	defs, ok := root.Get("definitions")
	if !ok {
		spec, err := ParseObject(SingleDefinitionName(sourceID), root, "")
		if err != nil {
			return nil, err
		}
		doc.defs = []*ObjectSpec{spec}
		return doc, nil
	}

	path := node.Pointer("definitions")
	if defs.Kind != node.Object {
		return nil, malformed(path, "definitions "+defs.String()+" is not an object")
	}
	for _, m := range defs.Members {
		spec, err := ParseObject(m.Key, m.Value, path+node.Pointer(m.Key))
		if err != nil {
			return nil, err
		}
		doc.defs = append(doc.defs, spec)
	}

	if allOf, ok := root.Get("allOf"); ok {
		refs, err := parseAllOfRefs(allOf, node.Pointer("allOf"))
		if err != nil {
			return nil, err
		}
		doc.AllOf = refs
	}
	return doc, nil
}

// parseAllOfRefs reads only the $ref of each fragment; other fragments
// contribute nothing.
func parseAllOfRefs(v *node.Node, path string) ([]string, error) {
	if v.Kind != node.Array {
		return nil, malformed(path, "allOf "+v.String()+" is not an array")
	}
	refs := make([]string, 0, len(v.Items))
	for i, frag := range v.Items {
		fragPath := path + node.Pointer(strconv.Itoa(i))
		if frag.Kind != node.Object {
			return nil, malformed(fragPath, "value in allOf "+frag.String()+" is not an object")
		}
		ref, ok := frag.Get("$ref")
		if !ok {
			continue
		}
		s, ok := ref.AsString()
		if !ok {
			return nil, malformed(fragPath+node.Pointer("$ref"), "$ref is not a string")
		}
		refs = append(refs, s)
	}
	return refs, nil
}

// SingleDefinitionName returns the definition name used for a document
// without "definitions": the base name of sourceID without its extension.
func SingleDefinitionName(sourceID string) string {
	if sourceID == "" {
		return PlaceholderName
	}
	base := filepath.Base(sourceID)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// QualifiedKey addresses a definition across files.
func QualifiedKey(sourceID, name string) string {
	return sourceID + "#/definitions/" + name
}

// Definitions returns the parsed definitions in declaration order.
func (d *Document) Definitions() []*ObjectSpec {
	return d.defs
}

// Definition returns the definition with the given local name.
func (d *Document) Definition(name string) (*ObjectSpec, bool) {
	for _, spec := range d.defs {
		if spec.Name == name {
			return spec, true
		}
	}
	return nil, false
}

// Export hands the document's definitions over keyed by qualified key. It
// reports false when the document has no source id. The document holds no
// definitions afterwards.
func (d *Document) Export() (map[string]*ObjectSpec, bool) {
	if d.SourceID == "" {
		return nil, false
	}
	out := make(map[string]*ObjectSpec, len(d.defs))
	for _, spec := range d.defs {
		out[QualifiedKey(d.SourceID, spec.Name)] = spec
	}
	d.defs = nil
	return out, true
}
