// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/schemagen/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Catalog into TOON format. The unresolved and cycles
// tables are only written when they have rows.
func Encode(cat *model.Catalog) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(cat.Root)))

	var defRows [][]string
	for i := range cat.Definitions {
		d := &cat.Definitions[i]
		defRows = append(defRows, []string{
			d.Name,
			d.Key,
			fmt.Sprintf("%d", d.Fields),
			fmt.Sprintf("%d", d.Required),
			fmt.Sprintf("%.4f", d.Rank),
		})
	}
	parts = append(parts, formatTabular("definitions", []string{"name", "key", "fields", "required", "rank"}, defRows))

	var depRows [][]string
	for i := range cat.Dependencies {
		d := &cat.Dependencies[i]
		depRows = append(depRows, []string{
			d.Source,
			d.Target,
			strings.Join(d.Via, " "),
		})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target", "via"}, depRows))

	if len(cat.Unresolved) > 0 {
		var rows [][]string
		for i := range cat.Unresolved {
			u := &cat.Unresolved[i]
			rows = append(rows, []string{u.Definition, u.Field, u.Ref})
		}
		parts = append(parts, formatTabular("unresolved", []string{"definition", "field", "ref"}, rows))
	}

	if len(cat.Cycles) > 0 {
		var rows [][]string
		for _, cycle := range cat.Cycles {
			rows = append(rows, []string{strings.Join(cycle, " ")})
		}
		parts = append(parts, formatTabular("cycles", []string{"members"}, rows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
