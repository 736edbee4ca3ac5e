package eval

import (
	"strings"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// tryLookup handles positional lookups. Everything here is 1-based, unlike
// the evaluator's bracket indexing; the two conventions are deliberate and
// must not be unified.
func (l *Library) tryLookup(name string, args []value.Value, ctx *Context) (value.Value, bool, error) {
	switch name {
	case "INDEX":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		arr := asArray(args[0])
		nf, err := argNumber(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		n := int(nf)
		if n < 1 || n > len(arr) {
			return value.Null, true, Errf(KindIndexOutOfBounds,
				"INDEX: position %d out of range 1..%d", n, len(arr))
		}
		return arr[n-1], true, nil

	case "MATCH":
		if err := checkArity(name, args, 2, 3); err != nil {
			return value.Null, true, err
		}
		matchType := 1.0
		if len(args) == 3 {
			var err error
			if matchType, err = argNumber(name, args, 2); err != nil {
				return value.Null, true, err
			}
		}
		pos, err := match(args[0], asArray(args[1]), int(matchType))
		if err != nil {
			return value.Null, true, err
		}
		return value.Number(float64(pos)), true, nil

	case "CHOOSE":
		if err := checkArity(name, args, 2, -1); err != nil {
			return value.Null, true, err
		}
		nf, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		n := int(nf)
		if n < 1 || n > len(args)-1 {
			return value.Null, true, Errf(KindIndexOutOfBounds,
				"CHOOSE: index %d out of range 1..%d", n, len(args)-1)
		}
		return args[n], true, nil

	case "XLOOKUP":
		if err := checkArity(name, args, 3, 4); err != nil {
			return value.Null, true, err
		}
		lookupArr := asArray(args[1])
		returnArr := asArray(args[2])
		if len(lookupArr) != len(returnArr) {
			return value.Null, true, Errf(KindRowCountMismatch,
				"XLOOKUP: arrays have %d and %d rows", len(lookupArr), len(returnArr))
		}
		for i, v := range lookupArr {
			if valuesEqual(v, args[0]) {
				return returnArr[i], true, nil
			}
		}
		if len(args) == 4 {
			return args[3], true, nil
		}
		return value.Null, true, Errf(KindIndexOutOfBounds,
			"XLOOKUP: value %q not found", args[0].AsText())

	case "VLOOKUP":
		if err := checkArity(name, args, 3, 3); err != nil {
			return value.Null, true, err
		}
		lookupArr := asArray(args[1])
		returnArr := asArray(args[2])
		if len(lookupArr) != len(returnArr) {
			return value.Null, true, Errf(KindRowCountMismatch,
				"VLOOKUP: arrays have %d and %d rows", len(lookupArr), len(returnArr))
		}
		for i, v := range lookupArr {
			if valuesEqual(v, args[0]) {
				return returnArr[i], true, nil
			}
		}
		return value.Null, true, Errf(KindIndexOutOfBounds,
			"VLOOKUP: value %q not found", args[0].AsText())

	case "INDIRECT":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		return indirect(args[0].AsText(), ctx)
	}
	return value.Null, false, nil
}

// match implements the three MATCH modes. Type 1 wants ascending data and
// finds the largest value <= target; type -1 finds the smallest value >=
// target; type 0 is exact. No match is an error, never a fallback.
func match(target value.Value, arr []value.Value, matchType int) (int, error) {
	switch matchType {
	case 0:
		for i, v := range arr {
			if valuesEqual(v, target) {
				return i + 1, nil
			}
		}
		return 0, Errf(KindIndexOutOfBounds, "MATCH: value %q not found", target.AsText())
	case 1:
		best := 0
		for i, v := range arr {
			if !lessValue(target, v) { // v <= target
				best = i + 1
			}
		}
		if best == 0 {
			return 0, Errf(KindIndexOutOfBounds, "MATCH: no value <= %q", target.AsText())
		}
		return best, nil
	case -1:
		best := 0
		for i, v := range arr {
			if !lessValue(v, target) { // v >= target
				best = i + 1
			}
		}
		if best == 0 {
			return 0, Errf(KindIndexOutOfBounds, "MATCH: no value >= %q", target.AsText())
		}
		return best, nil
	}
	return 0, Errf(KindDomain, "MATCH: invalid match type %d", matchType)
}

// valuesEqual compares numerically when possible, case-insensitively on
// text otherwise.
func valuesEqual(a, b value.Value) bool {
	na, oka := a.AsNumber()
	nb, okb := b.AsNumber()
	if oka && okb {
		return na == nb
	}
	return strings.EqualFold(a.AsText(), b.AsText())
}

// indirect resolves a textual reference: either a scalar name or a
// qualified table.column. Column references honor the current row the same
// way a parsed reference does.
func indirect(ref string, ctx *Context) (value.Value, bool, error) {
	ref = strings.TrimSpace(ref)
	if table, column, ok := strings.Cut(ref, "."); ok {
		vals, found := ctx.Column(table, column)
		if !found {
			return value.Null, true, Errf(KindUnknownReference, "unknown reference %q", ref)
		}
		if ctx.HasRow() {
			if ctx.CurrentRow >= len(vals) {
				return value.Null, true, Errf(KindRowCountMismatch,
					"table %q has %d rows, row %d requested", table, len(vals), ctx.CurrentRow)
			}
			return vals[ctx.CurrentRow], true, nil
		}
		return value.Array(vals), true, nil
	}
	if v, ok := ctx.Scalars[ref]; ok {
		return v, true, nil
	}
	return value.Null, true, Errf(KindUnknownReference, "unknown reference %q", ref)
}
