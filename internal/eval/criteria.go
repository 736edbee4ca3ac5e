package eval

import (
	"strconv"
	"strings"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// MatchesCriteria interprets a spreadsheet-style criteria value against v.
// Numeric criteria mean numeric equality. Text criteria may carry a leading
// comparison operator (">", ">=", "<", "<=", "<>", "="); without one the
// comparison is implicit equality. Equality and inequality on text are
// case-insensitive. This is the single matching policy shared by every
// *IF and *IFS aggregation.
func MatchesCriteria(v value.Value, criteria value.Value) bool {
	switch criteria.Kind() {
	case value.KindNumber, value.KindBoolean:
		n, ok := criteria.AsNumber()
		if !ok {
			return false
		}
		vn, ok := v.AsNumber()
		return ok && vn == n
	case value.KindNull:
		return v.IsNull()
	}

	op, operand := splitCriteria(criteria.AsText())

	// Numeric comparison when both sides form numbers.
	if cn, err := strconv.ParseFloat(operand, 64); err == nil {
		if vn, ok := v.AsNumber(); ok {
			return compareNumbers(op, vn, cn)
		}
		// Value is not numeric: only inequality can hold.
		return op == "<>"
	}

	return compareText(op, v.AsText(), operand)
}

// splitCriteria strips a leading comparison operator from a criteria string.
// Two-character operators are recognized before one-character ones.
func splitCriteria(s string) (op, operand string) {
	s = strings.TrimSpace(s)
	for _, candidate := range []string{">=", "<=", "<>", ">", "<", "="} {
		if strings.HasPrefix(s, candidate) {
			return candidate, strings.TrimSpace(s[len(candidate):])
		}
	}
	return "=", s
}

func compareNumbers(op string, a, b float64) bool {
	switch op {
	case "=":
		return a == b
	case "<>":
		return a != b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	}
	return false
}

func compareText(op string, a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch op {
	case "=":
		return la == lb
	case "<>":
		return la != lb
	case ">":
		return la > lb
	case ">=":
		return la >= lb
	case "<":
		return la < lb
	case "<=":
		return la <= lb
	}
	return false
}
