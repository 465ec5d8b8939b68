package synth

import (
	"time"

	"github.com/google/uuid"

	"github.com/phobologic/schemagen/internal/schema"
)

const (
	alphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	stringLength   = 20
	maxInteger     = 10000
	maxFloat       = 1000.0
	maxOffset      = 10_000_000
	fillerSize     = 10
	maxListEntries = 10

	// TimestampLayout is RFC 3339 with a numeric offset, so UTC renders as
	// "+00:00" rather than "Z".
	TimestampLayout = "2006-01-02T15:04:05-07:00"
)

// String returns a random alphanumeric string of 20 characters.
func (g *Generator) String() string {
	b := make([]byte, stringLength)
	for i := range b {
		b[i] = alphanumeric[g.rng.IntN(len(alphanumeric))]
	}
	return string(b)
}

// Integer returns an integer in [0, 10000).
func (g *Generator) Integer() int {
	return g.rng.IntN(maxInteger)
}

// Float returns a float in [0, 1000).
func (g *Generator) Float() float64 {
	return g.rng.Float64() * maxFloat
}

// Boolean returns true or false with equal probability.
func (g *Generator) Boolean() bool {
	return g.rng.IntN(2) == 1
}

// Timestamp returns the Unix epoch plus n*1440 seconds for a random n in
// [0, 10000000), formatted with TimestampLayout.
func (g *Generator) Timestamp() string {
	offset := g.rng.Int64N(maxOffset)
	return time.Unix(offset*60*24, 0).UTC().Format(TimestampLayout)
}

// UUID returns a version 4 UUID drawn from the generator's source.
func (g *Generator) UUID() (string, error) {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Filler returns an object with ten random keys whose values are random
// integers, strings or booleans. It stands in for "type": "object" fields,
// which carry no nested schema.
func (g *Generator) Filler() *Object {
	obj := NewObject()
	for range fillerSize {
		obj.Set(g.String(), g.scalar(fillerKinds[g.rng.IntN(len(fillerKinds))]))
	}
	return obj
}

var fillerKinds = []schema.Scalar{schema.Int, schema.Str, schema.Bool}

func (g *Generator) scalar(s schema.Scalar) any {
	switch s {
	case schema.Str:
		return g.String()
	case schema.Int:
		return g.Integer()
	case schema.Float:
		return g.Float()
	case schema.Bool:
		return g.Boolean()
	case schema.Object:
		return g.Filler()
	}
	return nil
}
