package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, src, sourceID string) *Document {
	t.Helper()
	doc, err := ParseDocument(decode(t, src), sourceID)
	require.NoError(t, err)
	return doc
}

func TestTableBuild(t *testing.T) {
	t.Parallel()

	table, err := NewTable(
		parseDoc(t, `{"definitions": {"b": {"type": "object"}, "a": {"type": "object"}}}`, "two.json"),
		parseDoc(t, `{"type": "object", "properties": {"x": {"type": "string"}}}`, "one.schema.json"),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{
		"one.schema.json#/definitions/one.schema",
		"two.json#/definitions/a",
		"two.json#/definitions/b",
	}, table.Keys())

	spec, ok := table.Lookup("two.json#/definitions/a")
	require.True(t, ok)
	assert.Equal(t, "a", spec.Name)

	_, ok = table.Lookup("two.json#/definitions/c")
	assert.False(t, ok)
}

func TestTableDuplicateKeySkipsDocument(t *testing.T) {
	t.Parallel()

	b := NewTableBuilder()
	require.NoError(t, b.Add(parseDoc(t, `{"definitions": {"a": {}}}`, "x.json")))

	dup := parseDoc(t, `{"definitions": {"z": {}, "a": {}}}`, "x.json")
	err := b.Add(dup)
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Len(t, dup.Definitions(), 2, "rejected document keeps its definitions")

	table := b.Build()
	assert.Equal(t, []string{"x.json#/definitions/a"}, table.Keys())
}

func TestTableRejectsDocumentWithoutSource(t *testing.T) {
	t.Parallel()

	err := NewTableBuilder().Add(parseDoc(t, `{"definitions": {"a": {}}}`, ""))
	assert.ErrorIs(t, err, ErrMalformedSchema)
}

func TestNilTable(t *testing.T) {
	t.Parallel()

	var table *Table
	_, ok := table.Lookup("a")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Nil(t, table.Keys())
}

func TestTableResolve(t *testing.T) {
	t.Parallel()

	table, err := NewTable(
		parseDoc(t, `{"definitions": {"user": {}, "shared": {}}}`, "a.json"),
		parseDoc(t, `{"definitions": {"shared": {}}}`, "b.json"),
	)
	require.NoError(t, err)

	key, spec, err := table.Resolve("a.json#/definitions/shared")
	require.NoError(t, err)
	assert.Equal(t, "a.json#/definitions/shared", key)
	assert.Equal(t, "shared", spec.Name)

	key, _, err = table.Resolve("user")
	require.NoError(t, err)
	assert.Equal(t, "a.json#/definitions/user", key)

	_, _, err = table.Resolve("shared")
	require.ErrorIs(t, err, ErrUnresolvedReference)
	assert.Contains(t, err.Error(), "a.json#/definitions/shared, b.json#/definitions/shared")

	_, _, err = table.Resolve("missing")
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestTableResolveRef(t *testing.T) {
	t.Parallel()

	table, err := NewTable(
		parseDoc(t, `{"definitions": {"base": {}, "child": {}}}`, "a.json"),
		parseDoc(t, `{"type": "object"}`, "meta.json"),
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"qualified", "a.json#/definitions/base", "a.json#/definitions/base"},
		{"same file", "#/definitions/base", "a.json#/definitions/base"},
		{"whole file", "meta.json", "meta.json#/definitions/meta"},
		{"missing", "b.json#/definitions/base", ""},
		{"missing local", "#/definitions/nope", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, _, ok := table.ResolveRef("a.json#/definitions/child", tt.ref)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestKeyParts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "foo.json#/definitions/bar", QualifiedKey("foo.json", "bar"))
	assert.Equal(t, "foo.json", SourceID("foo.json#/definitions/bar"))
	assert.Equal(t, "bar", LocalName("foo.json#/definitions/bar"))
	assert.Equal(t, "plain", LocalName("plain"))
}
