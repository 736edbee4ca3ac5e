package eval

import "strings"

// Set is the capability value deciding which function names resolve.
// Semantics of a resolvable function never change between sets; a name
// missing from the active set is simply an unknown function.
type Set struct {
	names map[string]struct{}
}

func newSet(names ...string) Set {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[strings.ToUpper(n)] = struct{}{}
	}
	return Set{names: m}
}

// Contains reports whether the set resolves the given function name.
func (s Set) Contains(name string) bool {
	_, ok := s.names[strings.ToUpper(name)]
	return ok
}

// Len returns the number of names in the set.
func (s Set) Len() int {
	return len(s.names)
}

var allFunctionNames = []string{
	// aggregation
	"SUM", "AVERAGE", "AVG", "COUNT", "COUNTA", "MIN", "MAX", "MEDIAN",
	"MODE", "PRODUCT", "VAR", "VAR.S", "VAR.P", "STDEV", "STDEV.S",
	"STDEV.P", "PERCENTILE", "QUARTILE", "CORREL",
	// array
	"UNIQUE", "SORT", "FILTER", "SEQUENCE", "RANDARRAY",
	// conditional
	"SUMIF", "SUMIFS", "COUNTIF", "COUNTIFS", "AVERAGEIF", "AVERAGEIFS",
	"MAXIFS", "MINIFS",
	// logical
	"IF", "IFS", "IFERROR", "AND", "OR", "NOT", "XOR", "TRUE", "FALSE",
	// lookup
	"INDEX", "MATCH", "CHOOSE", "XLOOKUP", "VLOOKUP", "INDIRECT",
	// text
	"CONCAT", "CONCATENATE", "LEFT", "RIGHT", "MID", "TRIM", "UPPER",
	"LOWER", "LEN", "SUBSTITUTE", "FIND", "SEARCH", "REPT",
	// math
	"ABS", "ROUND", "ROUNDUP", "ROUNDDOWN", "FLOOR", "CEILING", "SQRT",
	"POWER", "MOD", "EXP", "LN", "LOG", "LOG10", "INT", "SIGN", "PI", "RAND",
}

var demoFunctionNames = []string{
	"SUM", "AVERAGE", "AVG", "COUNT", "MIN", "MAX",
	"IF", "AND", "OR", "NOT",
	"CONCAT", "LEN", "UPPER", "LOWER",
	"ABS", "ROUND", "SQRT",
}

// FullSet returns the complete built-in function set.
func FullSet() Set {
	return newSet(allFunctionNames...)
}

// DemoSet returns the reduced function set used by demo builds.
func DemoSet() Set {
	return newSet(demoFunctionNames...)
}
