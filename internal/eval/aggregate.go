package eval

import (
	"math"
	"sort"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// tryAggregate handles reducers that collapse ranges to one number.
// Empty-input policy matters here: SUM and PRODUCT of nothing are 0, while
// AVERAGE, MIN, MAX, MEDIAN and the statistical reducers fail.
func (l *Library) tryAggregate(name string, args []value.Value, ctx *Context) (value.Value, bool, error) {
	switch name {
	case "SUM":
		total := 0.0
		for _, n := range numbersIn(args) {
			total += n
		}
		return value.Number(total), true, nil

	case "PRODUCT":
		nums := numbersIn(args)
		if len(nums) == 0 {
			return value.Number(0), true, nil
		}
		product := 1.0
		for _, n := range nums {
			product *= n
		}
		return value.Number(product), true, nil

	case "AVERAGE", "AVG":
		nums := numbersIn(args)
		if len(nums) == 0 {
			return value.Null, true, Errf(KindDomain, "AVERAGE has no numeric values")
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return value.Number(total / float64(len(nums))), true, nil

	case "MIN":
		nums := numbersIn(args)
		if len(nums) == 0 {
			return value.Null, true, Errf(KindDomain, "MIN has no numeric values")
		}
		min := nums[0]
		for _, n := range nums[1:] {
			if n < min {
				min = n
			}
		}
		return value.Number(min), true, nil

	case "MAX":
		nums := numbersIn(args)
		if len(nums) == 0 {
			return value.Null, true, Errf(KindDomain, "MAX has no numeric values")
		}
		max := nums[0]
		for _, n := range nums[1:] {
			if n > max {
				max = n
			}
		}
		return value.Number(max), true, nil

	case "MEDIAN":
		nums := numbersIn(args)
		if len(nums) == 0 {
			return value.Null, true, Errf(KindDomain, "MEDIAN has no numeric values")
		}
		sort.Float64s(nums)
		mid := len(nums) / 2
		if len(nums)%2 == 0 {
			return value.Number((nums[mid-1] + nums[mid]) / 2), true, nil
		}
		return value.Number(nums[mid]), true, nil

	case "MODE":
		nums := numbersIn(args)
		if len(nums) == 0 {
			return value.Null, true, Errf(KindDomain, "MODE has no numeric values")
		}
		freq := make(map[float64]int)
		for _, n := range nums {
			freq[n]++
		}
		best, bestCount := 0.0, 0
		for n, c := range freq {
			if c > bestCount || (c == bestCount && n < best) {
				best, bestCount = n, c
			}
		}
		if bestCount < 2 {
			return value.Null, true, Errf(KindDomain, "MODE: no value appears more than once")
		}
		return value.Number(best), true, nil

	case "COUNT":
		// Counts numeric elements only; text and booleans are skipped.
		count := 0
		for _, v := range flatten(args) {
			if v.Kind() == value.KindNumber {
				count++
			}
		}
		return value.Number(float64(count)), true, nil

	case "COUNTA":
		// Counts every non-null element, empty strings included.
		count := 0
		for _, v := range flatten(args) {
			if !v.IsNull() {
				count++
			}
		}
		return value.Number(float64(count)), true, nil

	case "VAR", "VAR.S":
		return l.variance(name, args, true)
	case "VAR.P":
		return l.variance(name, args, false)
	case "STDEV", "STDEV.S":
		v, handled, err := l.variance(name, args, true)
		if err != nil {
			return value.Null, handled, err
		}
		n, _ := v.AsNumber()
		return value.Number(math.Sqrt(n)), true, nil
	case "STDEV.P":
		v, handled, err := l.variance(name, args, false)
		if err != nil {
			return value.Null, handled, err
		}
		n, _ := v.AsNumber()
		return value.Number(math.Sqrt(n)), true, nil

	case "PERCENTILE":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		k, err := argNumber(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		return percentile(name, asArray(args[0]), k)

	case "QUARTILE":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		q, err := argNumber(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		if q != math.Trunc(q) || q < 0 || q > 4 {
			return value.Null, true, Errf(KindDomain, "QUARTILE: quart must be an integer between 0 and 4, got %v", q)
		}
		return percentile(name, asArray(args[0]), q/4)

	case "CORREL":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		return correl(asArray(args[0]), asArray(args[1]))
	}
	return value.Null, false, nil
}

func (l *Library) variance(name string, args []value.Value, sample bool) (value.Value, bool, error) {
	nums := numbersIn(args)
	if sample && len(nums) < 2 {
		return value.Null, true, Errf(KindDomain, "%s requires at least 2 numeric values", name)
	}
	if !sample && len(nums) == 0 {
		return value.Null, true, Errf(KindDomain, "%s has no numeric values", name)
	}
	mean := 0.0
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))
	ss := 0.0
	for _, n := range nums {
		d := n - mean
		ss += d * d
	}
	div := float64(len(nums))
	if sample {
		div = float64(len(nums) - 1)
	}
	return value.Number(ss / div), true, nil
}

// percentile computes the k-th percentile (k in [0,1]) with linear
// interpolation between closest ranks, matching PERCENTILE.INC.
func percentile(name string, vals []value.Value, k float64) (value.Value, bool, error) {
	if k < 0 || k > 1 {
		return value.Null, true, Errf(KindDomain, "%s: k must be between 0 and 1, got %v", name, k)
	}
	var nums []float64
	for _, v := range vals {
		if n, ok := v.AsNumber(); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return value.Null, true, Errf(KindDomain, "%s has no numeric values", name)
	}
	sort.Float64s(nums)
	rank := k * float64(len(nums)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return value.Number(nums[lo]), true, nil
	}
	frac := rank - float64(lo)
	return value.Number(nums[lo] + frac*(nums[hi]-nums[lo])), true, nil
}

func correl(xs, ys []value.Value) (value.Value, bool, error) {
	if len(xs) != len(ys) {
		return value.Null, true, Errf(KindRowCountMismatch, "CORREL: arrays have %d and %d rows", len(xs), len(ys))
	}
	var ax, ay []float64
	for i := range xs {
		nx, okx := xs[i].AsNumber()
		ny, oky := ys[i].AsNumber()
		if okx && oky {
			ax = append(ax, nx)
			ay = append(ay, ny)
		}
	}
	if len(ax) < 2 {
		return value.Null, true, Errf(KindDomain, "CORREL requires at least 2 numeric pairs")
	}
	var mx, my float64
	for i := range ax {
		mx += ax[i]
		my += ay[i]
	}
	mx /= float64(len(ax))
	my /= float64(len(ay))
	var cov, vx, vy float64
	for i := range ax {
		dx, dy := ax[i]-mx, ay[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return value.Null, true, Errf(KindDomain, "CORREL: division by zero")
	}
	return value.Number(cov / math.Sqrt(vx*vy)), true, nil
}
