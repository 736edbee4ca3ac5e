package eval

import (
	"math"
	"strings"

	"github.com/gridstack-labs/gridcalc/internal/formula"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// Evaluator interprets expression trees against a Context. The same tree is
// reusable across rows because all row state lives in the Context, never in
// the evaluator.
type Evaluator struct {
	lib *Library
}

// New creates an evaluator backed by the given function library.
func New(lib *Library) *Evaluator {
	return &Evaluator{lib: lib}
}

// Library returns the function library the evaluator dispatches to.
func (e *Evaluator) Library() *Library {
	return e.lib
}

// Eval evaluates an expression to a value or fails with an *Error.
func (e *Evaluator) Eval(expr formula.Expr, ctx *Context) (value.Value, error) {
	switch n := expr.(type) {
	case *formula.NumberLit:
		return value.Number(n.Value), nil
	case *formula.StringLit:
		return value.Text(n.Value), nil
	case *formula.BoolLit:
		return value.Boolean(n.Value), nil
	case *formula.Ident:
		return e.resolveIdent(n.Name, ctx)
	case *formula.ColumnRef:
		return e.resolveColumn(n.Table, n.Column, ctx)
	case *formula.IndexExpr:
		return e.evalIndex(n, ctx)
	case *formula.UnaryExpr:
		return e.evalUnary(n, ctx)
	case *formula.BinaryExpr:
		return e.evalBinary(n, ctx)
	case *formula.CallExpr:
		return e.evalCall(n, ctx)
	}
	return value.Null, Errf(KindDomain, "unsupported expression node %T", expr)
}

// resolveIdent resolves a bare name: a column of the current table first,
// then a scalar.
func (e *Evaluator) resolveIdent(name string, ctx *Context) (value.Value, error) {
	if ctx.CurrentTable != "" {
		if vals, ok := ctx.Column(ctx.CurrentTable, name); ok {
			return columnValue(ctx.CurrentTable, name, vals, ctx)
		}
	}
	if v, ok := ctx.Scalars[name]; ok {
		return v, nil
	}
	return value.Null, Errf(KindUnknownReference, "unknown reference %q", name)
}

// resolveColumn resolves a qualified table.column reference. Under a current
// row it yields the single element at that row; otherwise the whole column
// as an array. Cross-table references during row evaluation must agree on
// row count.
func (e *Evaluator) resolveColumn(table, column string, ctx *Context) (value.Value, error) {
	cols, ok := ctx.Tables[table]
	if !ok {
		return value.Null, Errf(KindUnknownReference, "unknown table %q", table)
	}
	vals, ok := cols[column]
	if !ok {
		return value.Null, Errf(KindUnknownReference, "unknown column %q in table %q", column, table)
	}
	return columnValue(table, column, vals, ctx)
}

func columnValue(table, column string, vals []value.Value, ctx *Context) (value.Value, error) {
	if !ctx.HasRow() {
		return value.Array(vals), nil
	}
	if table != ctx.CurrentTable && len(vals) != ctx.RowCount {
		return value.Null, Errf(KindRowCountMismatch,
			"table %q has %d rows but %q has %d rows", table, len(vals), ctx.CurrentTable, ctx.RowCount)
	}
	if ctx.CurrentRow >= len(vals) {
		return value.Null, Errf(KindRowCountMismatch,
			"column %q of table %q has %d rows, row %d requested", column, table, len(vals), ctx.CurrentRow)
	}
	return vals[ctx.CurrentRow], nil
}

// evalIndex handles the 0-based bracket syntax. The indexed expression is
// evaluated with whole-array visibility so sales.revenue[0] means the same
// thing inside and outside a row formula.
func (e *Evaluator) evalIndex(n *formula.IndexExpr, ctx *Context) (value.Value, error) {
	target, err := e.Eval(n.X, ctx.WithoutRow())
	if err != nil {
		return value.Null, err
	}
	if target.Kind() != value.KindArray {
		return value.Null, Errf(KindDomain, "cannot index into a %s value", target.Kind())
	}
	idxVal, err := e.Eval(n.Index, ctx)
	if err != nil {
		return value.Null, err
	}
	idxF, ok := idxVal.AsNumber()
	if !ok {
		return value.Null, Errf(KindDomain, "array index must be numeric, got %s", idxVal.Kind())
	}
	idx := int(idxF)
	items := target.Items()
	if idx < 0 || idx >= len(items) {
		return value.Null, Errf(KindIndexOutOfBounds, "index %d out of range 0..%d", idx, len(items)-1)
	}
	return items[idx], nil
}

func (e *Evaluator) evalUnary(n *formula.UnaryExpr, ctx *Context) (value.Value, error) {
	x, err := e.Eval(n.X, ctx)
	if err != nil {
		return value.Null, err
	}
	if x.Kind() == value.KindArray {
		items := x.Items()
		out := make([]value.Value, len(items))
		for i, it := range items {
			if out[i], err = negate(it); err != nil {
				return value.Null, err
			}
		}
		return value.Array(out), nil
	}
	return negate(x)
}

func negate(v value.Value) (value.Value, error) {
	n, ok := v.AsNumber()
	if !ok {
		return value.Null, Errf(KindDomain, "cannot negate a %s value", v.Kind())
	}
	return value.Number(-n), nil
}

// evalBinary applies an infix operator, broadcasting over arrays. Two array
// operands must agree on length; a scalar operand pairs with every element.
func (e *Evaluator) evalBinary(n *formula.BinaryExpr, ctx *Context) (value.Value, error) {
	left, err := e.Eval(n.Left, ctx)
	if err != nil {
		return value.Null, err
	}
	right, err := e.Eval(n.Right, ctx)
	if err != nil {
		return value.Null, err
	}

	if left.Kind() == value.KindArray || right.Kind() == value.KindArray {
		ls, rs := asArray(left), asArray(right)
		if left.Kind() == value.KindArray && right.Kind() == value.KindArray && len(ls) != len(rs) {
			return value.Null, Errf(KindRowCountMismatch,
				"operator %q: arrays have %d and %d rows", n.Op, len(ls), len(rs))
		}
		length := len(ls)
		if len(rs) > length {
			length = len(rs)
		}
		out := make([]value.Value, length)
		for i := range out {
			a, b := left, right
			if left.Kind() == value.KindArray {
				a = ls[i]
			}
			if right.Kind() == value.KindArray {
				b = rs[i]
			}
			if out[i], err = applyBinary(n.Op, a, b); err != nil {
				return value.Null, err
			}
		}
		return value.Array(out), nil
	}
	return applyBinary(n.Op, left, right)
}

func applyBinary(op string, a, b value.Value) (value.Value, error) {
	switch op {
	case "+", "-", "*", "/", "^", "%":
		na, ok := a.AsNumber()
		if !ok {
			return value.Null, Errf(KindDomain, "operator %q requires numeric operands, got %s", op, a.Kind())
		}
		nb, ok := b.AsNumber()
		if !ok {
			return value.Null, Errf(KindDomain, "operator %q requires numeric operands, got %s", op, b.Kind())
		}
		switch op {
		case "+":
			return value.Number(na + nb), nil
		case "-":
			return value.Number(na - nb), nil
		case "*":
			return value.Number(na * nb), nil
		case "/":
			if nb == 0 {
				return value.Null, Errf(KindDomain, "division by zero")
			}
			return value.Number(na / nb), nil
		case "^":
			return value.Number(math.Pow(na, nb)), nil
		default: // %
			if nb == 0 {
				return value.Null, Errf(KindDomain, "division by zero")
			}
			return value.Number(math.Mod(na, nb)), nil
		}
	case "&":
		return value.Text(a.AsText() + b.AsText()), nil
	case "=":
		return value.Boolean(valuesEqual(a, b)), nil
	case "<>":
		return value.Boolean(!valuesEqual(a, b)), nil
	case "<":
		return value.Boolean(lessValue(a, b)), nil
	case "<=":
		return value.Boolean(lessValue(a, b) || valuesEqual(a, b)), nil
	case ">":
		return value.Boolean(lessValue(b, a)), nil
	case ">=":
		return value.Boolean(lessValue(b, a) || valuesEqual(a, b)), nil
	}
	return value.Null, Errf(KindDomain, "unsupported operator %q", op)
}

// evalCall dispatches a function call. IF, IFS and IFERROR are intercepted
// before argument evaluation: their untaken branches must never run, so an
// error hiding in a dead branch cannot surface.
func (e *Evaluator) evalCall(n *formula.CallExpr, ctx *Context) (value.Value, error) {
	upper := strings.ToUpper(n.Name)
	switch upper {
	case "IF", "IFS", "IFERROR":
		if !e.lib.Contains(upper) {
			return value.Null, Errf(KindUnknownFunction, "unknown function %q", n.Name)
		}
		switch upper {
		case "IF":
			return e.evalIf(n, ctx)
		case "IFS":
			return e.evalIfs(n, ctx)
		default:
			return e.evalIfError(n, ctx)
		}
	}

	args := make([]value.Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := e.Eval(arg, ctx)
		if err != nil {
			return value.Null, err
		}
		args[i] = v
	}
	return e.lib.Call(upper, args, ctx)
}

func (e *Evaluator) evalIf(n *formula.CallExpr, ctx *Context) (value.Value, error) {
	if err := checkArity("IF", make([]value.Value, len(n.Args)), 2, 3); err != nil {
		return value.Null, err
	}
	cond, err := e.Eval(n.Args[0], ctx)
	if err != nil {
		return value.Null, err
	}
	if cond.IsTruthy() {
		return e.Eval(n.Args[1], ctx)
	}
	if len(n.Args) == 3 {
		return e.Eval(n.Args[2], ctx)
	}
	return value.Boolean(false), nil
}

// evalIfs tries condition/result pairs in order. An odd trailing argument
// acts as the unconditional fallback; without one, no match is an error.
func (e *Evaluator) evalIfs(n *formula.CallExpr, ctx *Context) (value.Value, error) {
	if err := checkArity("IFS", make([]value.Value, len(n.Args)), 2, -1); err != nil {
		return value.Null, err
	}
	i := 0
	for ; i+1 < len(n.Args); i += 2 {
		cond, err := e.Eval(n.Args[i], ctx)
		if err != nil {
			return value.Null, err
		}
		if cond.IsTruthy() {
			return e.Eval(n.Args[i+1], ctx)
		}
	}
	if i < len(n.Args) {
		return e.Eval(n.Args[i], ctx)
	}
	return value.Null, Errf(KindDomain, "IFS: no condition matched")
}

func (e *Evaluator) evalIfError(n *formula.CallExpr, ctx *Context) (value.Value, error) {
	if err := checkArity("IFERROR", make([]value.Value, len(n.Args)), 2, 2); err != nil {
		return value.Null, err
	}
	v, err := e.Eval(n.Args[0], ctx)
	if err == nil {
		return v, nil
	}
	return e.Eval(n.Args[1], ctx)
}
