// Package synth generates random JSON values that conform to parsed schema
// definitions.
package synth

import (
	"encoding/binary"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/phobologic/schemagen/internal/node"
	"github.com/phobologic/schemagen/internal/schema"
)

// DefaultMaxPatternAttempts bounds how many samples are drawn for a pattern
// with anchors before giving up with schema.ErrPatternUnsatisfiable.
const DefaultMaxPatternAttempts = 1000

// Source supplies all randomness: integers through rand.Source and raw bytes
// for UUIDs through io.Reader. *rand.ChaCha8 satisfies it.
type Source interface {
	rand.Source
	io.Reader
}

// NewSource returns a deterministic source for seed.
func NewSource(seed uint64) *rand.ChaCha8 {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	return rand.NewChaCha8(s)
}

// Generator synthesizes values. The reference table may be nil, in which
// case any reference field fails with schema.ErrMissingReferenceMap.
//
// A Generator is not safe for concurrent use; give each goroutine its own.
type Generator struct {
	src         Source
	rng         *rand.Rand
	table       *schema.Table
	maxAttempts int
	patterns    map[string]*patternGen
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxPatternAttempts sets the sample bound for anchored patterns.
func WithMaxPatternAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// New returns a generator drawing from src and resolving references in table.
func New(src Source, table *schema.Table, opts ...Option) *Generator {
	g := &Generator{
		src:         src,
		rng:         rand.New(src),
		table:       table,
		maxAttempts: DefaultMaxPatternAttempts,
		patterns:    make(map[string]*patternGen),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// frame tracks the definition being generated and the chain of definitions
// above it, so that a reference back into the chain is caught.
type frame struct {
	key   string
	chain []string
}

func (f *frame) resolving(key string) bool {
	for _, k := range f.chain {
		if k == key {
			return true
		}
	}
	return false
}

func (f *frame) enter(key string) *frame {
	chain := make([]string, len(f.chain), len(f.chain)+1)
	copy(chain, f.chain)
	return &frame{key: key, chain: append(chain, key)}
}

// Definition generates a payload for the definition stored under key.
func (g *Generator) Definition(key string) (any, error) {
	spec, ok := g.table.Lookup(key)
	if !ok {
		if g.table == nil {
			return nil, &schema.Error{Kind: schema.ErrMissingReferenceMap, Detail: key}
		}
		return nil, &schema.Error{Kind: schema.ErrUnresolvedReference, Detail: key}
	}
	return g.Object(key, spec)
}

// Object generates one value per field of spec, in field order. It returns
// nil, not an empty object, when spec has no fields. key is the qualified key
// of spec, used to resolve same-file references and in errors; it may be "".
func (g *Generator) Object(key string, spec *schema.ObjectSpec) (any, error) {
	f := &frame{key: key}
	if key != "" {
		f.chain = []string{key}
	}
	obj, err := g.object(f, spec)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj, nil
}

func (g *Generator) object(f *frame, spec *schema.ObjectSpec) (*Object, error) {
	if len(spec.Fields) == 0 {
		return nil, nil
	}
	obj := NewObject()
	for i := range spec.Fields {
		fs := &spec.Fields[i]
		v, err := g.field(f, fs)
		if err != nil {
			return nil, annotate(err, f.key, fs.Name)
		}
		obj.Set(fs.Name, v)
	}
	return obj, nil
}

// annotate records where a failure happened. The innermost definition and
// the payload path from the outermost field are kept.
func annotate(err error, key, field string) error {
	e, ok := schema.AsError(err)
	if !ok {
		return &schema.Error{Kind: schema.ErrMalformedSchema, Definition: key, Path: node.Pointer(field), Err: err}
	}
	if e.Definition == "" {
		e.Definition = key
	}
	e.Path = node.Pointer(field) + e.Path
	return e
}

// Field generates the value of one field.
func (g *Generator) Field(fs *schema.FieldSpec) (any, error) {
	return g.field(&frame{}, fs)
}

func (g *Generator) field(f *frame, fs *schema.FieldSpec) (any, error) {
	switch {
	case fs.HasFormat():
		return g.Format(fs.Format)
	case fs.HasPattern():
		return g.Pattern(fs.Pattern)
	case fs.Kind == nil:
		return nil, nil
	}
	return g.kind(f, fs.Kind)
}

// Format generates a string for a "format" keyword. "hex-string" yields a
// random alphanumeric string, not strictly hexadecimal digits.
func (g *Generator) Format(format string) (any, error) {
	switch format {
	case "uuid":
		return g.UUID()
	case "date-time":
		return g.Timestamp(), nil
	case "hex-string":
		return g.String(), nil
	}
	return nil, &schema.Error{Kind: schema.ErrUnsupportedFormat, Detail: strconv.Quote(format)}
}

// Pattern generates a string matching the regular expression pattern.
func (g *Generator) Pattern(pattern string) (string, error) {
	pg, ok := g.patterns[pattern]
	if !ok {
		var err error
		pg, err = compilePattern(pattern)
		if err != nil {
			return "", err
		}
		g.patterns[pattern] = pg
	}

	if pg.check == nil {
		return pg.sample(g.rng), nil
	}
	for range g.maxAttempts {
		if s := pg.sample(g.rng); pg.check.MatchString(s) {
			return s, nil
		}
	}
	return "", &schema.Error{
		Kind:   schema.ErrPatternUnsatisfiable,
		Detail: strconv.Quote(pattern) + " after " + strconv.Itoa(g.maxAttempts) + " attempts",
	}
}

// Kind generates a value of kind k. Reference kinds are resolved from the
// table as absolute keys.
func (g *Generator) Kind(k schema.Kind) (any, error) {
	return g.kind(&frame{}, k)
}

func (g *Generator) kind(f *frame, k schema.Kind) (any, error) {
	switch k := k.(type) {
	case schema.Scalar:
		return g.scalar(k), nil
	case schema.OneOf:
		if len(k) == 0 {
			return nil, nil
		}
		return g.kind(f, k[g.rng.IntN(len(k))])
	case schema.ListOf:
		out := []any{}
		for _, sub := range k {
			n := g.rng.IntN(maxListEntries)
			for range n {
				v, err := g.kind(f, sub)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
		}
		return out, nil
	case schema.Reference:
		return g.reference(f, string(k))
	case nil:
		return nil, nil
	}
	return nil, &schema.Error{Kind: schema.ErrUnsupportedType, Detail: k.String()}
}

func (g *Generator) reference(f *frame, ref string) (any, error) {
	if g.table == nil {
		return nil, &schema.Error{Kind: schema.ErrMissingReferenceMap, Detail: ref}
	}
	key, spec, ok := g.table.ResolveRef(f.key, ref)
	if !ok {
		return nil, &schema.Error{Kind: schema.ErrUnresolvedReference, Detail: ref}
	}
	if f.resolving(key) {
		return nil, &schema.Error{
			Kind:   schema.ErrCyclicReference,
			Detail: strings.Join(append(f.chain, key), " -> "),
		}
	}

	obj, err := g.object(f.enter(key), spec)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj, nil
}
