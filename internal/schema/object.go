package schema

import (
	"strconv"

	"github.com/phobologic/schemagen/internal/node"
)

// ObjectSpec is one named object definition.
type ObjectSpec struct {
	Name string
	Type string // the "type" keyword, normally "object"

	// Required lists the required property names in declaration order.
	// It is informational; generation always produces every field.
	Required []string

	// Fields holds the "properties" fields followed by the fields of every
	// allOf properties fragment. Names are not deduplicated.
	Fields []FieldSpec

	// References holds the $ref of every allOf fragment. They are recorded
	// but not expanded into generated payloads.
	References []string
}

// ParseObject reads an object definition node.
func ParseObject(name string, v *node.Node, path string) (*ObjectSpec, error) {
	if v.Kind != node.Object {
		return nil, malformed(path, "definition "+v.String()+" is not an object")
	}

	spec := &ObjectSpec{Name: name}
	var allOfFields []FieldSpec
	for _, m := range v.Members {
		keyPath := path + node.Pointer(m.Key)
		switch m.Key {
		case "type":
			s, ok := m.Value.AsString()
			if !ok {
				return nil, malformed(keyPath, "type "+m.Value.String()+" is not a string")
			}
			spec.Type = s
		case "required":
			req, err := parseRequired(m.Value, keyPath)
			if err != nil {
				return nil, err
			}
			spec.Required = req
		case "properties":
			fields, err := ParseFields(m.Value, keyPath)
			if err != nil {
				return nil, err
			}
			spec.Fields = fields
		case "allOf":
			refs, fields, err := parseAllOf(m.Value, keyPath)
			if err != nil {
				return nil, err
			}
			spec.References = append(spec.References, refs...)
			allOfFields = append(allOfFields, fields...)
		}
	}
	spec.Fields = append(spec.Fields, allOfFields...)
	return spec, nil
}

func parseRequired(v *node.Node, path string) ([]string, error) {
	if v.Kind != node.Array {
		return nil, malformed(path, "required "+v.String()+" is not an array")
	}
	req := make([]string, 0, len(v.Items))
	for i, it := range v.Items {
		s, ok := it.AsString()
		if !ok {
			return nil, malformed(path+node.Pointer(strconv.Itoa(i)), "required entry "+it.String()+" is not a string")
		}
		req = append(req, s)
	}
	return req, nil
}

// parseAllOf splits allOf fragments into $ref strings and properties fields.
// A fragment may carry both.
func parseAllOf(v *node.Node, path string) ([]string, []FieldSpec, error) {
	if v.Kind != node.Array {
		return nil, nil, malformed(path, "allOf "+v.String()+" is not an array")
	}

	var refs []string
	var fields []FieldSpec
	for i, frag := range v.Items {
		fragPath := path + node.Pointer(strconv.Itoa(i))
		if frag.Kind != node.Object {
			return nil, nil, malformed(fragPath, "value in allOf "+frag.String()+" is not an object")
		}
		for _, m := range frag.Members {
			switch m.Key {
			case "$ref":
				s, ok := m.Value.AsString()
				if !ok {
					return nil, nil, malformed(fragPath+node.Pointer("$ref"), "$ref is not a string")
				}
				refs = append(refs, s)
			case "properties":
				fs, err := ParseFields(m.Value, fragPath+node.Pointer("properties"))
				if err != nil {
					return nil, nil, err
				}
				fields = append(fields, fs...)
			}
		}
	}
	return refs, fields, nil
}

// ReferencedKeys returns every reference the definition mentions: field kinds
// (including those nested in OneOf and ListOf) and allOf refs. Fields whose
// value is decided by a format or pattern are skipped. Each ref is paired
// with its field name, or "allOf".
func (o *ObjectSpec) ReferencedKeys() []FieldRef {
	var out []FieldRef
	for i := range o.Fields {
		f := &o.Fields[i]
		if f.HasFormat() || f.HasPattern() {
			continue
		}
		collectRefs(f.Kind, func(ref Reference) {
			out = append(out, FieldRef{Field: f.Name, Ref: string(ref)})
		})
	}
	for _, r := range o.References {
		out = append(out, FieldRef{Field: "allOf", Ref: r})
	}
	return out
}

// FieldRef is a reference found in a definition.
type FieldRef struct {
	Field string
	Ref   string
}

func collectRefs(k Kind, fn func(Reference)) {
	switch k := k.(type) {
	case Reference:
		fn(k)
	case OneOf:
		for _, sub := range k {
			collectRefs(sub, fn)
		}
	case ListOf:
		for _, sub := range k {
			collectRefs(sub, fn)
		}
	case Scalar, nil:
	}
}
