package eval

import "github.com/gridstack-labs/gridcalc/internal/value"

// tryConditional handles criteria-driven reducers. All of them route
// through MatchesCriteria so the criteria grammar lives in one place.
// The *IFS forms AND their criteria pairs element-wise before reducing.
func (l *Library) tryConditional(name string, args []value.Value, ctx *Context) (value.Value, bool, error) {
	switch name {
	case "SUMIF", "AVERAGEIF":
		if err := checkArity(name, args, 2, 3); err != nil {
			return value.Null, true, err
		}
		criteriaRange := asArray(args[0])
		valueRange := criteriaRange
		if len(args) == 3 {
			valueRange = asArray(args[2])
		}
		if len(valueRange) != len(criteriaRange) {
			return value.Null, true, Errf(KindRowCountMismatch,
				"%s: ranges have %d and %d rows", name, len(criteriaRange), len(valueRange))
		}
		mask := criteriaMask(criteriaRange, args[1])
		if name == "SUMIF" {
			return value.Number(maskedSum(valueRange, mask)), true, nil
		}
		return maskedAverage(name, valueRange, mask)

	case "COUNTIF":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		count := 0
		for _, v := range asArray(args[0]) {
			if MatchesCriteria(v, args[1]) {
				count++
			}
		}
		return value.Number(float64(count)), true, nil

	case "SUMIFS", "AVERAGEIFS", "MAXIFS", "MINIFS":
		if err := checkArity(name, args, 3, -1); err != nil {
			return value.Null, true, err
		}
		if len(args)%2 == 0 {
			return value.Null, true, Errf(KindArity,
				"%s expects a value range followed by range/criteria pairs, got %d arguments", name, len(args))
		}
		valueRange := asArray(args[0])
		mask, err := combinedMask(name, valueRange, args[1:])
		if err != nil {
			return value.Null, true, err
		}
		switch name {
		case "SUMIFS":
			return value.Number(maskedSum(valueRange, mask)), true, nil
		case "AVERAGEIFS":
			return maskedAverage(name, valueRange, mask)
		case "MAXIFS":
			return maskedExtreme(valueRange, mask, func(a, b float64) bool { return a > b }), true, nil
		default: // MINIFS
			return maskedExtreme(valueRange, mask, func(a, b float64) bool { return a < b }), true, nil
		}

	case "COUNTIFS":
		if err := checkArity(name, args, 2, -1); err != nil {
			return value.Null, true, err
		}
		if len(args)%2 != 0 {
			return value.Null, true, Errf(KindArity,
				"COUNTIFS expects range/criteria pairs, got %d arguments", len(args))
		}
		first := asArray(args[0])
		mask, err := combinedMask(name, first, args)
		if err != nil {
			return value.Null, true, err
		}
		count := 0
		for _, m := range mask {
			if m {
				count++
			}
		}
		return value.Number(float64(count)), true, nil
	}
	return value.Null, false, nil
}

// criteriaMask marks which rows of the range satisfy the criteria.
func criteriaMask(rng []value.Value, criteria value.Value) []bool {
	mask := make([]bool, len(rng))
	for i, v := range rng {
		mask[i] = MatchesCriteria(v, criteria)
	}
	return mask
}

// combinedMask ANDs every range/criteria pair. Each range must match the
// value range's row count.
func combinedMask(name string, valueRange []value.Value, pairs []value.Value) ([]bool, error) {
	mask := make([]bool, len(valueRange))
	for i := range mask {
		mask[i] = true
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		rng := asArray(pairs[i])
		if len(rng) != len(valueRange) {
			return nil, Errf(KindRowCountMismatch,
				"%s: criteria range %d has %d rows, expected %d", name, i/2+1, len(rng), len(valueRange))
		}
		for j, v := range rng {
			mask[j] = mask[j] && MatchesCriteria(v, pairs[i+1])
		}
	}
	return mask, nil
}

func maskedSum(vals []value.Value, mask []bool) float64 {
	total := 0.0
	for i, v := range vals {
		if !mask[i] {
			continue
		}
		if n, ok := v.AsNumber(); ok {
			total += n
		}
	}
	return total
}

func maskedAverage(name string, vals []value.Value, mask []bool) (value.Value, bool, error) {
	total, count := 0.0, 0
	for i, v := range vals {
		if !mask[i] {
			continue
		}
		if n, ok := v.AsNumber(); ok {
			total += n
			count++
		}
	}
	if count == 0 {
		return value.Null, true, Errf(KindDomain, "%s: no values match the criteria", name)
	}
	return value.Number(total / float64(count)), true, nil
}

// maskedExtreme returns 0 when nothing matches, per MAXIFS/MINIFS semantics.
func maskedExtreme(vals []value.Value, mask []bool, better func(a, b float64) bool) value.Value {
	var best float64
	found := false
	for i, v := range vals {
		if !mask[i] {
			continue
		}
		if n, ok := v.AsNumber(); ok {
			if !found || better(n, best) {
				best = n
				found = true
			}
		}
	}
	if !found {
		return value.Number(0)
	}
	return value.Number(best)
}
