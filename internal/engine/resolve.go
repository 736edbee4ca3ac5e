package engine

import (
	"fmt"
	"strings"

	"github.com/gridstack-labs/gridcalc/internal/dag"
	"github.com/gridstack-labs/gridcalc/internal/eval"
	"github.com/gridstack-labs/gridcalc/internal/formula"
	"github.com/gridstack-labs/gridcalc/internal/model"
	"github.com/gridstack-labs/gridcalc/internal/value"
)

// resolve runs the full orchestration: scenario overlay, validation,
// scalar resolution in topological order, then table resolution in
// topological order with per-table column ordering and a row-wise loop.
func (e *Engine) resolve(m *model.Model, scenario string) (*model.Model, error) {
	out := m.Clone()

	if scenario != "" {
		if err := applyScenario(out, scenario); err != nil {
			return nil, err
		}
	}
	if err := validate(out); err != nil {
		return nil, err
	}

	scalarOrder, err := e.scalarOrder(out)
	if err != nil {
		return nil, err
	}
	tableOrder, err := e.tableOrder(out)
	if err != nil {
		return nil, err
	}

	// Context state grows as values resolve. Tables start with their
	// materialized columns; derived columns are added as they compute.
	scalars := make(map[string]value.Value, len(out.Variables))
	tables := make(map[string]map[string][]value.Value, len(out.Tables))
	for name, t := range out.Tables {
		tables[name] = tableValues(t)
	}

	e.logger.Debug("resolving scalars", "count", len(scalarOrder))
	for _, name := range scalarOrder {
		v := out.Variables[name]
		if v.Formula == "" {
			scalars[name] = v.Value
			continue
		}
		expr, err := formula.Parse(v.Formula)
		if err != nil {
			return nil, fmt.Errorf("scalar %q: invalid formula %q: %w", name, v.Formula, err)
		}
		ctx := &eval.Context{Scalars: scalars, Tables: tables, CurrentRow: eval.NoRow}
		val, err := e.evaluator.Eval(expr, ctx)
		if err != nil {
			return nil, fmt.Errorf("scalar %q (formula %q): %w", name, v.Formula, err)
		}
		e.logger.Debug("resolved scalar", "name", name, "value", val.AsText())
		v.Value = val
		v.HasValue = true
		scalars[name] = val
	}

	e.logger.Debug("resolving tables", "count", len(tableOrder))
	for _, name := range tableOrder {
		if err := e.resolveTable(out.Tables[name], scalars, tables); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// applyScenario replaces overridden scalars with the scenario's literal
// values. An override wins over both a literal and a formula.
func applyScenario(m *model.Model, scenario string) error {
	overrides, ok := m.Scenarios[scenario]
	if !ok {
		return fmt.Errorf("unknown scenario %q", scenario)
	}
	for name, v := range overrides {
		variable, ok := m.Variables[name]
		if !ok {
			return eval.Errf(eval.KindUnknownReference,
				"scenario %q overrides unknown scalar %q", scenario, name)
		}
		variable.Value = v
		variable.HasValue = true
		variable.Formula = ""
	}
	return nil
}

func validate(m *model.Model) error {
	for _, name := range m.VariableNames() {
		v := m.Variables[name]
		if !v.HasValue && strings.TrimSpace(v.Formula) == "" {
			return fmt.Errorf("scalar %q has neither a value nor a formula", name)
		}
	}
	for _, name := range m.TableNames() {
		t := m.Tables[name]
		if err := t.Validate(); err != nil {
			return eval.Errf(eval.KindRowCountMismatch, "%s", err)
		}
		for _, col := range t.FormulaNames() {
			if _, exists := t.Columns[col]; exists {
				return fmt.Errorf("table %q: column %q is defined both as data and as a formula", name, col)
			}
		}
	}
	return nil
}

// scalarOrder topologically orders the scalars, failing on cycles.
func (e *Engine) scalarOrder(m *model.Model) ([]string, error) {
	g, err := e.ScalarGraph(m)
	if err != nil {
		return nil, err
	}
	if cycle, found := g.FindCycle(); found {
		return nil, eval.Errf(eval.KindCircularDependency,
			"Circular dependency among scalars: %s", strings.Join(cycle, " -> "))
	}
	return g.TopologicalSort()
}

// tableOrder topologically orders the tables, failing on cycles.
func (e *Engine) tableOrder(m *model.Model) ([]string, error) {
	g, err := e.TableGraph(m)
	if err != nil {
		return nil, err
	}
	if cycle, found := g.FindCycle(); found {
		return nil, eval.Errf(eval.KindCircularDependency,
			"Circular dependency among tables: %s", strings.Join(cycle, " -> "))
	}
	return g.TopologicalSort()
}

// resolveTable computes a table's derived columns row by row and
// materializes them as typed columns. The shared tables map is updated in
// place so later tables and partially-built columns stay visible.
func (e *Engine) resolveTable(t *model.Table, scalars map[string]value.Value, tables map[string]map[string][]value.Value) error {
	if len(t.Formulas) == 0 {
		return nil
	}
	if len(t.Columns) == 0 || t.RowCount() == 0 {
		return fmt.Errorf("table %q is empty; cannot evaluate row formulas", t.Name)
	}

	for _, col := range t.FormulaNames() {
		if isAggregationFormula(t.Formulas[col]) {
			return eval.Errf(eval.KindAggregationInRowContext,
				"aggregation function in row formula for column %q of table %q: %s",
				col, t.Name, t.Formulas[col])
		}
	}

	colOrder, err := columnOrder(t)
	if err != nil {
		return err
	}

	exprs := make(map[string]formula.Expr, len(colOrder))
	for _, col := range colOrder {
		expr, err := formula.Parse(t.Formulas[col])
		if err != nil {
			return fmt.Errorf("table %q, column %q: invalid formula %q: %w", t.Name, col, t.Formulas[col], err)
		}
		exprs[col] = expr
	}

	rowCount := t.RowCount()
	e.logger.Debug("resolving table", "table", t.Name, "rows", rowCount, "derived_columns", len(colOrder))

	results := make(map[string][]value.Value, len(colOrder))
	for _, col := range colOrder {
		results[col] = make([]value.Value, 0, rowCount)
	}

	base := &eval.Context{
		Scalars:      scalars,
		Tables:       tables,
		CurrentTable: t.Name,
		CurrentRow:   eval.NoRow,
		RowCount:     rowCount,
	}
	for row := 0; row < rowCount; row++ {
		ctx := base.WithRow(row)
		for _, col := range colOrder {
			val, err := e.evaluator.Eval(exprs[col], ctx)
			if err != nil {
				return fmt.Errorf("table %q, column %q, row %d: %w", t.Name, col, row, err)
			}
			results[col] = append(results[col], val)
			tables[t.Name][col] = results[col]
		}
	}

	for _, col := range colOrder {
		column, err := model.ColumnFromValues(col, results[col])
		if err != nil {
			return fmt.Errorf("table %q: %w", t.Name, err)
		}
		t.Columns[col] = column
	}
	return nil
}

// columnOrder orders a table's derived columns so formulas referencing
// sibling derived columns compute after them.
func columnOrder(t *model.Table) ([]string, error) {
	g := dag.New()
	for col := range t.Formulas {
		g.AddNode(col)
	}
	for _, col := range t.FormulaNames() {
		idents, columns := extractRefs(t.Formulas[col])
		var deps []string
		for _, id := range idents {
			if _, ok := t.Formulas[id]; ok {
				deps = append(deps, id)
			}
		}
		for _, c := range columns {
			if c.Table != t.Name {
				continue
			}
			if _, ok := t.Formulas[c.Column]; ok {
				deps = append(deps, c.Column)
			}
		}
		for _, dep := range deps {
			if dep == col {
				return nil, eval.Errf(eval.KindCircularDependency,
					"Circular dependency: column %q of table %q references itself", col, t.Name)
			}
			if err := g.AddEdge(dep, col); err != nil {
				return nil, err
			}
		}
	}
	if cycle, found := g.FindCycle(); found {
		return nil, eval.Errf(eval.KindCircularDependency,
			"Circular dependency among columns of table %q: %s", t.Name, strings.Join(cycle, " -> "))
	}
	return g.TopologicalSort()
}
