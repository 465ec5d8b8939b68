package schema

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by this package and by the synthesizer
// wraps exactly one of them, so callers can branch with errors.Is.
var (
	ErrMalformedSchema      = errors.New("malformed schema")
	ErrUnsupportedType      = errors.New("unsupported type")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrMissingReferenceMap  = errors.New("missing reference map")
	ErrUnresolvedReference  = errors.New("unresolved reference")
	ErrPatternCompile       = errors.New("pattern compile error")
	ErrCyclicReference      = errors.New("cyclic reference")
	ErrPatternUnsatisfiable = errors.New("pattern unsatisfiable")
	ErrDuplicateKey         = errors.New("duplicate qualified key")
)

// Error describes where a schema failed to parse or generate.
type Error struct {
	Kind       error  // One of the Err* kinds above.
	Path       string // JSON pointer into the schema when parsing, into the payload when generating.
	Definition string // Qualified key of the definition being generated, if any.
	Detail     string
	Err        error // Optional underlying cause.
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Definition != "" {
		b.WriteString(" in ")
		b.WriteString(e.Definition)
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(path, detail string) *Error {
	return &Error{Kind: ErrMalformedSchema, Path: path, Detail: detail}
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
