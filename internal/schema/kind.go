package schema

import (
	"strconv"
	"strings"

	"github.com/phobologic/schemagen/internal/node"
)

// Kind is the closed set of field types. The concrete kinds are Scalar,
// OneOf, ListOf and Reference; switches over a Kind handle all four.
type Kind interface {
	isKind()
	String() string
}

// Scalar is a primitive kind named by a single type string.
type Scalar uint8

const (
	Str Scalar = iota + 1
	Int
	Float
	Bool
	Object
	Null
)

// OneOf is a kind given as a list of alternatives, e.g. ["string", "null"].
// Order is preserved and duplicates are kept.
type OneOf []Kind

// ListOf is an array kind. It holds one entry per recognized key of the
// items node ("type" and "$ref"); the entries are not merged.
type ListOf []Kind

// Reference names another definition by qualified key.
type Reference string

func (Scalar) isKind()    {}
func (OneOf) isKind()     {}
func (ListOf) isKind()    {}
func (Reference) isKind() {}

var scalarNames = map[string]Scalar{
	"string":  Str,
	"integer": Int,
	"number":  Float,
	"boolean": Bool,
	"object":  Object,
	"null":    Null,
}

func (s Scalar) String() string {
	switch s {
	case Str:
		return "string"
	case Int:
		return "integer"
	case Float:
		return "number"
	case Bool:
		return "boolean"
	case Object:
		return "object"
	case Null:
		return "null"
	}
	return "scalar(" + strconv.Itoa(int(s)) + ")"
}

func (o OneOf) String() string  { return "oneOf(" + joinKinds(o) + ")" }
func (l ListOf) String() string { return "listOf(" + joinKinds(l) + ")" }
func (r Reference) String() string {
	return "ref(" + string(r) + ")"
}

func joinKinds(ks []Kind) string {
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

// ParseKind builds a Kind from the value of a "type" key. parent is the node
// holding that key; it is consulted for "items" when the type is "array".
// path is the JSON pointer of parent, used in errors.
func ParseKind(v, parent *node.Node, path string) (Kind, error) {
	typePath := path + node.Pointer("type")
	switch v.Kind {
	case node.String:
		if v.Str == "array" {
			return parseListOf(parent, path)
		}
		return parseScalar(v.Str, typePath)
	case node.Array:
		kinds := make(OneOf, 0, len(v.Items))
		for i, it := range v.Items {
			name, ok := it.AsString()
			itPath := typePath + node.Pointer(strconv.Itoa(i))
			if !ok {
				return nil, malformed(itPath, "type entry "+it.String()+" is not a string")
			}
			s, err := parseScalar(name, itPath)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, s)
		}
		return kinds, nil
	}
	return nil, malformed(typePath, "type "+v.String()+" is neither a string nor an array")
}

func parseScalar(name, path string) (Scalar, error) {
	s, ok := scalarNames[name]
	if !ok {
		return 0, &Error{Kind: ErrUnsupportedType, Path: path, Detail: strconv.Quote(name)}
	}
	return s, nil
}

func parseListOf(parent *node.Node, path string) (ListOf, error) {
	items, ok := parent.Get("items")
	itemsPath := path + node.Pointer("items")
	if !ok {
		return nil, malformed(path, "array type without items")
	}
	if items.Kind != node.Object {
		return nil, malformed(itemsPath, "items "+items.String()+" is not an object")
	}

	var kinds ListOf
	for _, m := range items.Members {
		switch m.Key {
		case "type":
			k, err := ParseKind(m.Value, items, itemsPath)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		case "$ref":
			ref, ok := m.Value.AsString()
			if !ok {
				return nil, malformed(itemsPath+node.Pointer("$ref"), "$ref is not a string")
			}
			kinds = append(kinds, Reference(ref))
		}
	}
	if len(kinds) == 0 {
		return nil, malformed(itemsPath, "items has neither type nor $ref")
	}
	return kinds, nil
}
