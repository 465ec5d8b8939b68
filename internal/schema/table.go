package schema

import (
	"sort"
	"strings"
)

const definitionsPrefix = "#/definitions/"

// Table maps qualified keys to definitions. It is built once with a
// TableBuilder and never modified afterwards, so it may be shared by
// concurrent generators.
type Table struct {
	defs map[string]*ObjectSpec
	keys []string
}

// TableBuilder folds exported documents into a Table.
type TableBuilder struct {
	defs map[string]*ObjectSpec
}

// NewTableBuilder returns an empty builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{defs: make(map[string]*ObjectSpec)}
}

// Add exports doc into the builder. A document is added whole or not at all:
// if any of its keys is already present, ErrDuplicateKey is returned and the
// builder is unchanged.
func (b *TableBuilder) Add(doc *Document) error {
	if doc.SourceID == "" {
		return &Error{Kind: ErrMalformedSchema, Detail: "document without source id cannot be exported"}
	}
	for _, spec := range doc.Definitions() {
		key := QualifiedKey(doc.SourceID, spec.Name)
		if _, dup := b.defs[key]; dup {
			return &Error{Kind: ErrDuplicateKey, Definition: key}
		}
	}
	exported, _ := doc.Export()
	for key, spec := range exported {
		b.defs[key] = spec
	}
	return nil
}

// Build returns the table. The builder must not be used afterwards.
func (b *TableBuilder) Build() *Table {
	keys := make([]string, 0, len(b.defs))
	for k := range b.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := &Table{defs: b.defs, keys: keys}
	b.defs = nil
	return t
}

// NewTable builds a table from docs, stopping at the first error.
func NewTable(docs ...*Document) (*Table, error) {
	b := NewTableBuilder()
	for _, d := range docs {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Lookup returns the definition stored under a qualified key. A nil table
// holds nothing.
func (t *Table) Lookup(key string) (*ObjectSpec, bool) {
	if t == nil {
		return nil, false
	}
	spec, ok := t.defs[key]
	return spec, ok
}

// Keys returns all qualified keys in sorted order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return t.keys
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Resolve finds a definition by qualified key or by local name. A local name
// defined in more than one file is rejected with the candidate keys.
func (t *Table) Resolve(name string) (string, *ObjectSpec, error) {
	if spec, ok := t.Lookup(name); ok {
		return name, spec, nil
	}

	var matches []string
	for _, key := range t.Keys() {
		if LocalName(key) == name {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return "", nil, &Error{Kind: ErrUnresolvedReference, Detail: name}
	case 1:
		return matches[0], t.defs[matches[0]], nil
	}
	return "", nil, &Error{
		Kind:   ErrUnresolvedReference,
		Detail: name + " is ambiguous: " + strings.Join(matches, ", "),
	}
}

// ResolveRef looks up a $ref found in the definition with qualified key from.
// Refs starting with "#" address the referring file, and a ref naming a whole
// file addresses that file's single definition.
func (t *Table) ResolveRef(from, ref string) (string, *ObjectSpec, bool) {
	key := ref
	if strings.HasPrefix(ref, "#") {
		key = SourceID(from) + ref
	}
	if spec, ok := t.Lookup(key); ok {
		return key, spec, true
	}
	if !strings.Contains(ref, "#") {
		key = QualifiedKey(ref, SingleDefinitionName(ref))
		if spec, ok := t.Lookup(key); ok {
			return key, spec, true
		}
	}
	return "", nil, false
}

// SourceID returns the file part of a qualified key.
func SourceID(key string) string {
	src, _, _ := strings.Cut(key, "#")
	return src
}

// LocalName returns the definition name part of a qualified key.
func LocalName(key string) string {
	if i := strings.Index(key, definitionsPrefix); i >= 0 {
		return key[i+len(definitionsPrefix):]
	}
	return key
}
