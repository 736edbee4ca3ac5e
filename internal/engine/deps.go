package engine

import (
	"regexp"
	"strings"
)

// Dependency discovery works on raw formula text, not parse trees: a light
// identifier scan is enough to order the graphs, and it runs before any
// formula is parsed.

// identPattern matches a bare identifier or a qualified pair.
var identPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)?`)

// columnRef is a qualified table.column occurrence in formula text.
type columnRef struct {
	Table  string
	Column string
}

// extractRefs scans formula text for referenced names. Function calls are
// skipped (an identifier directly followed by an opening parenthesis),
// as are string literals and boolean keywords. Qualified pairs come back
// as column references, everything else as bare identifiers.
func extractRefs(formulaText string) (idents []string, columns []columnRef) {
	text := stripStrings(strings.TrimPrefix(strings.TrimSpace(formulaText), "="))
	for _, loc := range identPattern.FindAllStringIndex(text, -1) {
		tok := text[loc[0]:loc[1]]
		rest := strings.TrimLeft(text[loc[1]:], " \t")
		if strings.HasPrefix(rest, "(") {
			continue
		}
		if table, column, ok := strings.Cut(tok, "."); ok {
			columns = append(columns, columnRef{Table: table, Column: column})
			continue
		}
		switch strings.ToUpper(tok) {
		case "TRUE", "FALSE":
			continue
		}
		idents = append(idents, tok)
	}
	return idents, columns
}

// extractColumnReferences returns the qualified column references in a
// formula, de-duplicated in first-seen order.
func extractColumnReferences(formulaText string) []columnRef {
	_, columns := extractRefs(formulaText)
	seen := make(map[columnRef]struct{}, len(columns))
	var out []columnRef
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// extractScalarRefs returns the referenced names that match known scalar
// variables.
func extractScalarRefs(formulaText string, isScalar func(string) bool) []string {
	idents, _ := extractRefs(formulaText)
	seen := make(map[string]struct{}, len(idents))
	var out []string
	for _, id := range idents {
		if !isScalar(id) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// extractTableDeps returns the other tables referenced by a formula.
func extractTableDeps(formulaText, ownTable string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range extractColumnReferences(formulaText) {
		if c.Table == ownTable {
			continue
		}
		if _, ok := seen[c.Table]; ok {
			continue
		}
		seen[c.Table] = struct{}{}
		out = append(out, c.Table)
	}
	return out
}

// stripStrings blanks out double-quoted literals so their contents are not
// mistaken for references. Doubled quotes inside a literal stay inside it.
func stripStrings(s string) string {
	var sb strings.Builder
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			if inString && i+1 < len(s) && s[i+1] == '"' {
				sb.WriteByte(' ')
				i++
				continue
			}
			inString = !inString
			sb.WriteByte(' ')
			continue
		}
		if inString {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
