package eval

import (
	"math"
	"sort"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// tryArray handles functions whose result is an array.
func (l *Library) tryArray(name string, args []value.Value, ctx *Context) (value.Value, bool, error) {
	switch name {
	case "UNIQUE":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		// First-seen order, comparing by text form: 1 and "1" collide.
		seen := make(map[string]struct{})
		var out []value.Value
		for _, v := range asArray(args[0]) {
			key := v.AsText()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
		return value.Array(out), true, nil

	case "SORT":
		if err := checkArity(name, args, 1, 2); err != nil {
			return value.Null, true, err
		}
		descending := false
		if len(args) == 2 {
			order, err := argNumber(name, args, 1)
			if err != nil {
				return value.Null, true, err
			}
			descending = order < 0
		}
		src := asArray(args[0])
		out := make([]value.Value, len(src))
		copy(out, src)
		sort.SliceStable(out, func(i, j int) bool {
			if descending {
				return lessValue(out[j], out[i])
			}
			return lessValue(out[i], out[j])
		})
		return value.Array(out), true, nil

	case "FILTER":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		data := asArray(args[0])
		include := asArray(args[1])
		if len(data) != len(include) {
			return value.Null, true, Errf(KindRowCountMismatch, "FILTER: arrays have %d and %d rows", len(data), len(include))
		}
		var out []value.Value
		for i, v := range data {
			if include[i].IsTruthy() {
				out = append(out, v)
			}
		}
		return value.Array(out), true, nil

	case "SEQUENCE":
		if err := checkArity(name, args, 1, 3); err != nil {
			return value.Null, true, err
		}
		countF, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		count := int(countF)
		if count < 0 {
			return value.Null, true, Errf(KindDomain, "SEQUENCE: count must be non-negative, got %v", countF)
		}
		start, step := 1.0, 1.0
		if len(args) >= 2 {
			if start, err = argNumber(name, args, 1); err != nil {
				return value.Null, true, err
			}
		}
		if len(args) == 3 {
			if step, err = argNumber(name, args, 2); err != nil {
				return value.Null, true, err
			}
		}
		out := make([]value.Value, count)
		for i := range out {
			out[i] = value.Number(start + float64(i)*step)
		}
		return value.Array(out), true, nil

	case "RANDARRAY":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		countF, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		count := int(countF)
		if count < 0 {
			return value.Null, true, Errf(KindDomain, "RANDARRAY: count must be non-negative, got %v", countF)
		}
		out := make([]value.Value, count)
		for i := range out {
			out[i] = value.Number(l.rng())
		}
		return value.Array(out), true, nil
	}
	return value.Null, false, nil
}

// lessValue orders values numerically when both sides coerce to numbers,
// and by lowercase text otherwise. Used by SORT and MATCH.
func lessValue(a, b value.Value) bool {
	na, oka := a.AsNumber()
	nb, okb := b.AsNumber()
	if oka && okb {
		if math.IsNaN(na) || math.IsNaN(nb) {
			return false
		}
		return na < nb
	}
	return lowerText(a) < lowerText(b)
}
