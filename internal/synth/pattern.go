package synth

import (
	"math/rand/v2"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"

	"github.com/phobologic/schemagen/internal/schema"
)

// maxExtraRepeat bounds open-ended repetition: x* yields at most 5 copies,
// x{n,} at most n+5.
const maxExtraRepeat = 5

const (
	printableLo = 0x20
	printableHi = 0x7e
)

// patternGen samples strings from a parsed regular expression with its
// zero-width assertions removed. check is set when assertions were removed,
// and samples must then be validated against the original expression.
type patternGen struct {
	re    *syntax.Regexp
	check *regexp.Regexp
}

func compilePattern(pattern string) (*patternGen, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &schema.Error{Kind: schema.ErrPatternCompile, Detail: strconv.Quote(pattern), Err: err}
	}

	pg := &patternGen{re: re}
	if stripAssertions(re) {
		check, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &schema.Error{Kind: schema.ErrPatternCompile, Detail: strconv.Quote(pattern), Err: err}
		}
		pg.check = check
	}
	return pg, nil
}

// stripAssertions replaces anchors and word boundaries with empty matches.
// It reports whether the tree held any, or anything else the sampler cannot
// honour.
func stripAssertions(re *syntax.Regexp) bool {
	found := false
	switch re.Op {
	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		re.Op = syntax.OpEmptyMatch
		found = true
	case syntax.OpNoMatch:
		found = true
	}
	for _, sub := range re.Sub {
		if stripAssertions(sub) {
			found = true
		}
	}
	return found
}

func (pg *patternGen) sample(rng *rand.Rand) string {
	var b strings.Builder
	sampleInto(&b, rng, pg.re)
	return b.String()
}

func sampleInto(b *strings.Builder, rng *rand.Rand, re *syntax.Regexp) {
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			b.WriteRune(r)
		}
	case syntax.OpCharClass:
		if r, ok := pickRune(rng, re.Rune); ok {
			b.WriteRune(r)
		}
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		b.WriteRune(rune(printableLo + rng.IntN(printableHi-printableLo+1)))
	case syntax.OpCapture:
		sampleInto(b, rng, re.Sub[0])
	case syntax.OpStar:
		repeat(b, rng, re.Sub[0], 0, -1)
	case syntax.OpPlus:
		repeat(b, rng, re.Sub[0], 1, -1)
	case syntax.OpQuest:
		repeat(b, rng, re.Sub[0], 0, 1)
	case syntax.OpRepeat:
		repeat(b, rng, re.Sub[0], re.Min, re.Max)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			sampleInto(b, rng, sub)
		}
	case syntax.OpAlternate:
		sampleInto(b, rng, re.Sub[rng.IntN(len(re.Sub))])
	}
}

func repeat(b *strings.Builder, rng *rand.Rand, re *syntax.Regexp, lo, hi int) {
	if hi < 0 {
		hi = lo + maxExtraRepeat
	}
	n := lo + rng.IntN(hi-lo+1)
	for range n {
		sampleInto(b, rng, re)
	}
}

// pickRune draws a rune from a class given as [lo, hi] pairs. Printable ASCII
// members are preferred so negated classes stay readable.
func pickRune(rng *rand.Rand, ranges []rune) (rune, bool) {
	if r, ok := pickFrom(rng, ranges, printableLo, printableHi); ok {
		return r, true
	}
	return pickFrom(rng, ranges, 0, 0x10FFFF)
}

func pickFrom(rng *rand.Rand, ranges []rune, floor, ceil rune) (rune, bool) {
	var total int
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := clamp(ranges[i], ranges[i+1], floor, ceil)
		if lo <= hi {
			total += int(hi-lo) + 1
		}
	}
	if total == 0 {
		return 0, false
	}
	n := rng.IntN(total)
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := clamp(ranges[i], ranges[i+1], floor, ceil)
		if lo > hi {
			continue
		}
		size := int(hi-lo) + 1
		if n < size {
			return lo + rune(n), true
		}
		n -= size
	}
	return 0, false
}

func clamp(lo, hi, floor, ceil rune) (rune, rune) {
	if lo < floor {
		lo = floor
	}
	if hi > ceil {
		hi = ceil
	}
	return lo, hi
}
