// Package node decodes JSON and YAML schema documents into an ordered tree.
//
// The standard map-based decoders lose member order, but property declaration
// order decides the field order of generated payloads, so schema files are
// decoded into Node values that keep members in document order.
package node

import (
	"bytes"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind identifies the JSON type of a Node.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Member is one key/value pair of an object node.
type Member struct {
	Key   string
	Value *Node
}

// Node is a decoded JSON value. Str holds the text of strings and numbers.
type Node struct {
	Kind    Kind
	Str     string
	Bool    bool
	Items   []*Node
	Members []Member
}

// Get returns the value stored under key in an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != Object {
		return nil, false
	}
	for i := range n.Members {
		if n.Members[i].Key == key {
			return n.Members[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether an object node carries key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// AsString returns the value of a string node.
func (n *Node) AsString() (string, bool) {
	if n == nil || n.Kind != String {
		return "", false
	}
	return n.Str, true
}

// set adds key to an object node. A repeated key replaces the earlier value
// but keeps its position.
func (n *Node) set(key string, v *Node) {
	for i := range n.Members {
		if n.Members[i].Key == key {
			n.Members[i].Value = v
			return
		}
	}
	n.Members = append(n.Members, Member{Key: key, Value: v})
}

// MarshalJSON renders the node with members in document order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	if err := n.encode(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (n *Node) encode(b *bytes.Buffer) error {
	if n == nil {
		b.WriteString("null")
		return nil
	}
	switch n.Kind {
	case Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(n.Bool))
	case Number:
		b.WriteString(n.Str)
	case String:
		s, err := json.Marshal(n.Str)
		if err != nil {
			return err
		}
		b.Write(s)
	case Array:
		b.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := it.encode(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, m := range n.Members {
			if i > 0 {
				b.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			b.Write(k)
			b.WriteByte(':')
			if err := m.Value.encode(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	}
	return nil
}

// String returns the compact JSON form, for diagnostics.
func (n *Node) String() string {
	data, err := n.MarshalJSON()
	if err != nil {
		return "<" + n.Kind.String() + ">"
	}
	return string(data)
}

// Pointer joins reference tokens into a JSON pointer (RFC 6901).
func Pointer(tokens ...string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		t = strings.ReplaceAll(t, "~", "~0")
		b.WriteString(strings.ReplaceAll(t, "/", "~1"))
	}
	return b.String()
}
