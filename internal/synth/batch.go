package synth

import (
	"github.com/phobologic/schemagen/internal/schema"
)

// Failure is a payload left out of a batch.
type Failure struct {
	Index int
	Err   error
}

// Batch generates count payloads for the definition stored under key and
// passes each to emit in order. A payload whose failure originates in a
// referenced definition is handed to skip and left out. A failure in the
// requested definition itself, or an error from emit, stops the batch.
// It returns the number of payloads skipped.
func (g *Generator) Batch(key string, count int, emit func(payload any) error, skip func(Failure)) (int, error) {
	skipped := 0
	for i := range count {
		v, err := g.Definition(key)
		if err != nil {
			if !fatalFor(key, err) {
				skipped++
				if skip != nil {
					skip(Failure{Index: i, Err: err})
				}
				continue
			}
			return skipped, err
		}
		if err := emit(v); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

func fatalFor(key string, err error) bool {
	e, ok := schema.AsError(err)
	if !ok || e.Definition == "" {
		return true
	}
	return e.Definition == key
}
