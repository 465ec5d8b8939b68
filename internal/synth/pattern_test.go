package synth

import (
	"regexp"
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/schemagen/internal/schema"
)

func TestPatternWithAnchors(t *testing.T) {
	t.Parallel()

	const pattern = `^[a-zA-Z0-9]+(-*[a-zA-Z0-9]+)*$`
	expr := regexp.MustCompile(pattern)
	g := newGen(t, nil)
	for range 100 {
		s, err := g.Pattern(pattern)
		require.NoError(t, err)
		assert.Regexp(t, expr, s)
	}
}

func TestPatternWithoutAnchors(t *testing.T) {
	t.Parallel()

	const pattern = `[a-zA-Z0-9]+(-*[a-zA-Z0-9]+)*`
	expr := regexp.MustCompile(`^` + pattern + `$`)
	g := newGen(t, nil)
	for range 100 {
		s, err := g.Pattern(pattern)
		require.NoError(t, err)
		assert.Regexp(t, expr, s, "unanchored samples come straight from the tree")
	}
}

func TestPatternVariety(t *testing.T) {
	t.Parallel()

	patterns := []string{
		`^\d{3}-\d{4}$`,
		`^[A-F0-9]{8}$`,
		`^(foo|bar|baz)_[a-z]{2,}$`,
		`^[^a-z]+$`,
		`^.{5}$`,
		`^(?i)abc$`,
		`^\w+@\w+\.(com|org)$`,
		`^x?y*z+$`,
		`\bword\b`,
		`^\p{Greek}+$`,
	}
	g := newGen(t, nil)
	for _, p := range patterns {
		expr := regexp.MustCompile(p)
		for range 50 {
			s, err := g.Pattern(p)
			require.NoError(t, err, p)
			assert.Regexp(t, expr, s, p)
		}
	}
}

func TestPatternCompileError(t *testing.T) {
	t.Parallel()

	_, err := newGen(t, nil).Pattern(`^[a-z+$`)
	require.ErrorIs(t, err, schema.ErrPatternCompile)
	var synErr *syntax.Error
	assert.ErrorAs(t, err, &synErr)
}

func TestPatternUnsatisfiable(t *testing.T) {
	t.Parallel()

	g := newGen(t, nil, WithMaxPatternAttempts(25))
	_, err := g.Pattern(`^a$b`)
	require.ErrorIs(t, err, schema.ErrPatternUnsatisfiable)
	assert.Contains(t, err.Error(), "after 25 attempts")
}

func TestStripAssertions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		want    bool
	}{
		{`abc`, false},
		{`^abc`, true},
		{`abc$`, true},
		{`[^abc]`, false},
		{`a\$b`, false},
		{`\bx`, true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			re, err := syntax.Parse(tt.pattern, syntax.Perl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stripAssertions(re))
		})
	}
}

func TestPickRunePrefersPrintable(t *testing.T) {
	t.Parallel()

	g := newGen(t, nil)
	// [^a] as parsed: everything but 'a'
	ranges := []rune{0, 'a' - 1, 'a' + 1, 0x10FFFF}
	for range 200 {
		r, ok := pickRune(g.rng, ranges)
		require.True(t, ok)
		assert.NotEqual(t, 'a', r)
		assert.GreaterOrEqual(t, r, rune(0x20))
		assert.LessOrEqual(t, r, rune(0x7e))
	}

	r, ok := pickRune(g.rng, []rune{0x3b1, 0x3b1})
	require.True(t, ok)
	assert.Equal(t, rune(0x3b1), r)
}
