package eval

import (
	"math"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// tryMath handles scalar numeric functions. It is the last family probed,
// so a name that falls through here is unknown.
func (l *Library) tryMath(name string, args []value.Value, ctx *Context) (value.Value, bool, error) {
	switch name {
	case "ABS":
		return l.unaryMath(name, args, math.Abs)
	case "SQRT":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		n, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		if n < 0 {
			return value.Null, true, Errf(KindDomain, "SQRT of negative number %v", n)
		}
		return value.Number(math.Sqrt(n)), true, nil
	case "EXP":
		return l.unaryMath(name, args, math.Exp)
	case "LN":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		n, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		if n <= 0 {
			return value.Null, true, Errf(KindDomain, "LN requires a positive argument, got %v", n)
		}
		return value.Number(math.Log(n)), true, nil
	case "LOG10":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		n, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		if n <= 0 {
			return value.Null, true, Errf(KindDomain, "LOG10 requires a positive argument, got %v", n)
		}
		return value.Number(math.Log10(n)), true, nil
	case "LOG":
		if err := checkArity(name, args, 1, 2); err != nil {
			return value.Null, true, err
		}
		n, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		base := 10.0
		if len(args) == 2 {
			if base, err = argNumber(name, args, 1); err != nil {
				return value.Null, true, err
			}
		}
		if n <= 0 || base <= 0 || base == 1 {
			return value.Null, true, Errf(KindDomain, "LOG: invalid arguments %v, %v", n, base)
		}
		return value.Number(math.Log(n) / math.Log(base)), true, nil

	case "FLOOR":
		return l.unaryMath(name, args, math.Floor)
	case "CEILING":
		return l.unaryMath(name, args, math.Ceil)
	case "INT":
		return l.unaryMath(name, args, math.Floor)
	case "SIGN":
		return l.unaryMath(name, args, func(n float64) float64 {
			switch {
			case n > 0:
				return 1
			case n < 0:
				return -1
			}
			return 0
		})

	case "ROUND", "ROUNDUP", "ROUNDDOWN":
		if err := checkArity(name, args, 1, 2); err != nil {
			return value.Null, true, err
		}
		n, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		places := 0.0
		if len(args) == 2 {
			if places, err = argNumber(name, args, 1); err != nil {
				return value.Null, true, err
			}
		}
		mult := math.Pow(10, math.Trunc(places))
		scaled := n * mult
		switch name {
		case "ROUNDUP":
			scaled = math.Trunc(scaled)
			if scaled != n*mult {
				scaled += math.Copysign(1, n)
			}
		case "ROUNDDOWN":
			scaled = math.Trunc(scaled)
		default:
			scaled = math.Round(scaled)
		}
		return value.Number(scaled / mult), true, nil

	case "POWER":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		base, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		exp, err := argNumber(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		return value.Number(math.Pow(base, exp)), true, nil

	case "MOD":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		a, err := argNumber(name, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		b, err := argNumber(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		if b == 0 {
			return value.Null, true, Errf(KindDomain, "MOD: division by zero")
		}
		return value.Number(math.Mod(a, b)), true, nil

	case "PI":
		if err := checkArity(name, args, 0, 0); err != nil {
			return value.Null, true, err
		}
		return value.Number(math.Pi), true, nil

	case "RAND":
		if err := checkArity(name, args, 0, 0); err != nil {
			return value.Null, true, err
		}
		return value.Number(l.rng()), true, nil
	}
	return value.Null, false, nil
}

func (l *Library) unaryMath(name string, args []value.Value, fn func(float64) float64) (value.Value, bool, error) {
	if err := checkArity(name, args, 1, 1); err != nil {
		return value.Null, true, err
	}
	n, err := argNumber(name, args, 0)
	if err != nil {
		return value.Null, true, err
	}
	return value.Number(fn(n)), true, nil
}
