package eval

import "github.com/gridstack-labs/gridcalc/internal/value"

// tryLogical handles boolean combinators over evaluated arguments.
// IF, IFS and IFERROR never reach this family: the evaluator intercepts
// them so their untaken branches are not evaluated at all.
func (l *Library) tryLogical(name string, args []value.Value, ctx *Context) (value.Value, bool, error) {
	switch name {
	case "AND":
		if err := checkArity(name, args, 1, -1); err != nil {
			return value.Null, true, err
		}
		for _, v := range flatten(args) {
			if !v.IsTruthy() {
				return value.Boolean(false), true, nil
			}
		}
		return value.Boolean(true), true, nil

	case "OR":
		if err := checkArity(name, args, 1, -1); err != nil {
			return value.Null, true, err
		}
		for _, v := range flatten(args) {
			if v.IsTruthy() {
				return value.Boolean(true), true, nil
			}
		}
		return value.Boolean(false), true, nil

	case "NOT":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		return value.Boolean(!args[0].IsTruthy()), true, nil

	case "XOR":
		if err := checkArity(name, args, 1, -1); err != nil {
			return value.Null, true, err
		}
		odd := false
		for _, v := range flatten(args) {
			if v.IsTruthy() {
				odd = !odd
			}
		}
		return value.Boolean(odd), true, nil

	case "TRUE":
		if err := checkArity(name, args, 0, 0); err != nil {
			return value.Null, true, err
		}
		return value.Boolean(true), true, nil

	case "FALSE":
		if err := checkArity(name, args, 0, 0); err != nil {
			return value.Null, true, err
		}
		return value.Boolean(false), true, nil
	}
	return value.Null, false, nil
}
