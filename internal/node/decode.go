package node

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names a schema file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var extensions = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
}

// ForExtension returns the format for a file extension, or "" if unsupported.
func ForExtension(ext string) Format {
	return extensions[ext]
}

// Decode decodes data in the given format.
func Decode(f Format, data []byte) (*Node, error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// DecodeJSON decodes a single JSON value, keeping object members in order.
func DecodeJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected data after top-level value")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			n := &Node{Kind: Object}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key: unexpected token %v", kt)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: Array}
			for dec.More() {
				it, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, it)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
	case string:
		return &Node{Kind: String, Str: v}, nil
	case json.Number:
		return &Node{Kind: Number, Str: string(v)}, nil
	case float64:
		return &Node{Kind: Number, Str: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case bool:
		return &Node{Kind: Bool, Bool: v}, nil
	case nil:
		return &Node{Kind: Null}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// DecodeYAML decodes the first document of a YAML stream. Mapping order is
// kept, so YAML schema files behave exactly like their JSON equivalents.
func DecodeYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return &Node{Kind: Null}, nil
	}
	return fromYAML(&doc)
}

func fromYAML(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return &Node{Kind: Null}, nil
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.MappingNode:
		n := &Node{Kind: Object}
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key is not a scalar", k.Line)
			}
			v, err := fromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.set(k.Value, v)
		}
		return n, nil
	case yaml.SequenceNode:
		n := &Node{Kind: Array}
		for _, c := range y.Content {
			it, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, it)
		}
		return n, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(y)
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", y.Line, y.Kind)
}

func fromYAMLScalar(y *yaml.Node) (*Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return &Node{Kind: Null}, nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, err
		}
		return &Node{Kind: Bool, Bool: b}, nil
	case "!!int", "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, err
		}
		return &Node{Kind: Number, Str: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	}
	return &Node{Kind: String, Str: y.Value}, nil
}
