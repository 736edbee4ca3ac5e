package engine

import (
	"regexp"
	"strings"
)

// topLevelCall matches the function name opening a formula, if any.
var topLevelCall = regexp.MustCompile(`^\s*=?\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\(`)

// aggregationNames are the reducers that collapse a column to one value.
var aggregationNames = map[string]struct{}{
	"SUM": {}, "AVERAGE": {}, "AVG": {}, "COUNT": {}, "COUNTA": {},
	"MIN": {}, "MAX": {}, "MEDIAN": {}, "MODE": {}, "PRODUCT": {},
	"VAR": {}, "VAR.S": {}, "VAR.P": {},
	"STDEV": {}, "STDEV.S": {}, "STDEV.P": {},
	"PERCENTILE": {}, "QUARTILE": {}, "CORREL": {},
}

// isAggregationFormula reports whether the formula's top-level call is an
// aggregation. Such formulas collapse a column to a single value and are
// rejected as row formulas. The check is textual and case-insensitive;
// every *IF/*IFS conditional reducer counts, but IF and IFS themselves are
// plain conditionals, not reducers.
func isAggregationFormula(formulaText string) bool {
	m := topLevelCall.FindStringSubmatch(formulaText)
	if m == nil {
		return false
	}
	name := strings.ToUpper(m[1])
	if _, ok := aggregationNames[name]; ok {
		return true
	}
	if name == "IF" || name == "IFS" {
		return false
	}
	return strings.HasSuffix(name, "IF") || strings.HasSuffix(name, "IFS")
}
