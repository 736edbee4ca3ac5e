// Package engine orchestrates model resolution: it discovers dependencies
// between scalars, columns, and tables, orders their computation, and
// drives the expression evaluator row-by-row over tables and once over
// scalars, producing a fully-computed copy of the input model.
package engine

import (
	"log/slog"

	"github.com/gridstack-labs/gridcalc/internal/dag"
	"github.com/gridstack-labs/gridcalc/internal/eval"
	"github.com/gridstack-labs/gridcalc/internal/formula"
	"github.com/gridstack-labs/gridcalc/internal/model"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// Config holds engine configuration.
type Config struct {
	// Functions is the active function set. Zero value means the full set.
	Functions eval.Set
	// Logger is the structured logger (optional, discards if nil).
	Logger *slog.Logger
}

// Engine resolves calculation models. It is stateless between runs: every
// Resolve recomputes the model from scratch.
type Engine struct {
	logger    *slog.Logger
	evaluator *eval.Evaluator
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	set := cfg.Functions
	if set.Len() == 0 {
		set = eval.FullSet()
	}
	return &Engine{
		logger:    logger,
		evaluator: eval.New(eval.NewLibrary(set)),
	}
}

// Library exposes the function library, mainly so tests and the REPL can
// inspect or reseed it.
func (e *Engine) Library() *eval.Library {
	return e.evaluator.Library()
}

// Resolve computes every formula-defined scalar and column of the model
// and returns a new model with all values materialized. The input is never
// mutated. Any evaluation failure aborts the whole run.
func (e *Engine) Resolve(m *model.Model) (*model.Model, error) {
	return e.resolve(m, "")
}

// ResolveScenario resolves the model with a named scenario's scalar
// overrides applied first.
func (e *Engine) ResolveScenario(m *model.Model, scenario string) (*model.Model, error) {
	return e.resolve(m, scenario)
}

// EvalFormula evaluates one formula against an already-resolved model with
// whole-array visibility. Used by the REPL.
func (e *Engine) EvalFormula(m *model.Model, formulaText string) (value.Value, error) {
	expr, err := formula.Parse(formulaText)
	if err != nil {
		return value.Null, err
	}
	ctx := eval.NewContext()
	for name, v := range m.Variables {
		if v.HasValue {
			ctx.Scalars[name] = v.Value
		}
	}
	for name, t := range m.Tables {
		ctx.Tables[name] = tableValues(t)
	}
	return e.evaluator.Eval(expr, ctx)
}

// ScalarGraph builds the dependency graph among the model's scalars.
func (e *Engine) ScalarGraph(m *model.Model) (*dag.Graph, error) {
	g := dag.New()
	for name := range m.Variables {
		g.AddNode(name)
	}
	for _, name := range m.VariableNames() {
		v := m.Variables[name]
		if v.Formula == "" {
			continue
		}
		isScalar := func(id string) bool {
			_, ok := m.Variables[id]
			return ok
		}
		for _, dep := range extractScalarRefs(v.Formula, isScalar) {
			if dep == name {
				return nil, eval.Errf(eval.KindCircularDependency,
					"Circular dependency: scalar %q references itself", name)
			}
			if err := g.AddEdge(dep, name); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// TableGraph builds the dependency graph among the model's tables, from
// the cross-table references in their row formulas.
func (e *Engine) TableGraph(m *model.Model) (*dag.Graph, error) {
	g := dag.New()
	for name := range m.Tables {
		g.AddNode(name)
	}
	for _, name := range m.TableNames() {
		t := m.Tables[name]
		for _, col := range t.FormulaNames() {
			for _, dep := range extractTableDeps(t.Formulas[col], name) {
				if !g.Has(dep) {
					// Unknown table; evaluation will surface it.
					continue
				}
				if err := g.AddEdge(dep, name); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

// tableValues converts a table's materialized columns into context form.
func tableValues(t *model.Table) map[string][]value.Value {
	cols := make(map[string][]value.Value, len(t.Columns))
	for name, c := range t.Columns {
		cols[name] = c.Values()
	}
	return cols
}
