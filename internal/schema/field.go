package schema

import (
	"github.com/phobologic/schemagen/internal/node"
)

// FieldSpec is one named property of an object definition.
//
// At generation time exactly one attribute decides the value, in priority
// order Format, Pattern, Reference kind, Kind; a nil Kind produces null.
type FieldSpec struct {
	Name    string
	Format  string // "" when absent
	Pattern string // "" when absent
	Kind    Kind   // nil when absent
}

// HasFormat reports whether the field carries a format.
func (f *FieldSpec) HasFormat() bool { return f.Format != "" }

// HasPattern reports whether the field carries a pattern.
func (f *FieldSpec) HasPattern() bool { return f.Pattern != "" }

// ParseField reads one property node. When a node has both "type" and "$ref",
// "$ref" decides the kind regardless of key order.
func ParseField(name string, v *node.Node, path string) (FieldSpec, error) {
	fs := FieldSpec{Name: name}
	if v.Kind != node.Object {
		return fs, malformed(path, "property "+v.String()+" is not an object")
	}

	var ref *node.Node
	for _, m := range v.Members {
		keyPath := path + node.Pointer(m.Key)
		switch m.Key {
		case "type":
			k, err := ParseKind(m.Value, v, path)
			if err != nil {
				return fs, err
			}
			fs.Kind = k
		case "format":
			s, ok := m.Value.AsString()
			if !ok {
				return fs, malformed(keyPath, "format is not a string")
			}
			fs.Format = s
		case "pattern":
			s, ok := m.Value.AsString()
			if !ok {
				return fs, malformed(keyPath, "pattern is not a string")
			}
			fs.Pattern = s
		case "$ref":
			ref = m.Value
		}
	}

	if ref != nil {
		s, ok := ref.AsString()
		if !ok {
			return fs, malformed(path+node.Pointer("$ref"), "$ref is not a string")
		}
		fs.Kind = Reference(s)
	}
	return fs, nil
}

// ParseFields reads a "properties" node in declaration order.
func ParseFields(v *node.Node, path string) ([]FieldSpec, error) {
	if v.Kind != node.Object {
		return nil, malformed(path, "properties "+v.String()+" is not an object")
	}
	fields := make([]FieldSpec, 0, len(v.Members))
	for _, m := range v.Members {
		fs, err := ParseField(m.Key, m.Value, path+node.Pointer(m.Key))
		if err != nil {
			return nil, err
		}
		fields = append(fields, fs)
	}
	return fields, nil
}
