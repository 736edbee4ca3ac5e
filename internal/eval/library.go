package eval

import (
	"math/rand/v2"
	"strings"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// family probes one group of built-in functions. It reports handled=false
// when the name does not belong to the group, letting the next family try.
type family func(l *Library, name string, args []value.Value, ctx *Context) (value.Value, bool, error)

// Library dispatches function calls across the built-in families in a fixed
// order: aggregation, array, conditional, logical, lookup, text, math.
// Which names resolve at all is decided by the Set it was built with.
type Library struct {
	set      Set
	rng      func() float64
	families []family
}

// NewLibrary creates a function library restricted to the given set.
func NewLibrary(set Set) *Library {
	return &Library{
		set: set,
		rng: rand.Float64,
		families: []family{
			(*Library).tryAggregate,
			(*Library).tryArray,
			(*Library).tryConditional,
			(*Library).tryLogical,
			(*Library).tryLookup,
			(*Library).tryText,
			(*Library).tryMath,
		},
	}
}

// SetRandom replaces the random source used by RAND and RANDARRAY.
func (l *Library) SetRandom(fn func() float64) {
	l.rng = fn
}

// Contains reports whether the library resolves the given name.
func (l *Library) Contains(name string) bool {
	return l.set.Contains(name)
}

// Call evaluates a built-in function over already-evaluated arguments.
func (l *Library) Call(name string, args []value.Value, ctx *Context) (value.Value, error) {
	upper := strings.ToUpper(name)
	if !l.set.Contains(upper) {
		return value.Null, Errf(KindUnknownFunction, "unknown function %q", name)
	}
	for _, f := range l.families {
		v, handled, err := f(l, upper, args, ctx)
		if err != nil {
			return value.Null, err
		}
		if handled {
			return v, nil
		}
	}
	return value.Null, Errf(KindUnknownFunction, "unknown function %q", name)
}

// flatten expands array arguments one level so ranges and bare values mix.
func flatten(args []value.Value) []value.Value {
	out := make([]value.Value, 0, len(args))
	for _, a := range args {
		if a.Kind() == value.KindArray {
			out = append(out, a.Items()...)
		} else {
			out = append(out, a)
		}
	}
	return out
}

// numbersIn flattens args and keeps every element that coerces to a number.
func numbersIn(args []value.Value) []float64 {
	var nums []float64
	for _, v := range flatten(args) {
		if n, ok := v.AsNumber(); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

// asArray views a value as a sequence: arrays as themselves, anything else
// as a single-element sequence.
func asArray(v value.Value) []value.Value {
	if v.Kind() == value.KindArray {
		return v.Items()
	}
	return []value.Value{v}
}

// checkArity validates the argument count. max < 0 means unbounded.
func checkArity(name string, args []value.Value, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		switch {
		case max == min:
			return Errf(KindArity, "%s expects %d argument(s), got %d", name, min, len(args))
		case max < 0:
			return Errf(KindArity, "%s expects at least %d argument(s), got %d", name, min, len(args))
		default:
			return Errf(KindArity, "%s expects between %d and %d arguments, got %d", name, min, max, len(args))
		}
	}
	return nil
}

func lowerText(v value.Value) string {
	return strings.ToLower(v.AsText())
}

// argNumber coerces one argument to a number or fails with a domain error.
func argNumber(name string, args []value.Value, i int) (float64, error) {
	n, ok := args[i].AsNumber()
	if !ok {
		return 0, Errf(KindDomain, "%s: argument %d must be numeric, got %s", name, i+1, args[i].Kind())
	}
	return n, nil
}
