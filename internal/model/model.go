// Package model defines the calculation model: named scalar variables and
// named tables of homogeneous columns, either holding literal data or
// derived by formulas. The engine consumes a Model and produces a new,
// fully-resolved Model; it never mutates its input.
package model

import (
	"fmt"
	"sort"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// Model is the aggregate of a calculation: scalars, tables, and optional
// scenario overlays (named sets of scalar overrides).
type Model struct {
	Variables map[string]*Variable
	Tables    map[string]*Table
	Scenarios map[string]map[string]value.Value
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		Variables: make(map[string]*Variable),
		Tables:    make(map[string]*Table),
		Scenarios: make(map[string]map[string]value.Value),
	}
}

// VariableNames returns scalar names in sorted order.
func (m *Model) VariableNames() []string {
	names := make([]string, 0, len(m.Variables))
	for n := range m.Variables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TableNames returns table names in sorted order.
func (m *Model) TableNames() []string {
	names := make([]string, 0, len(m.Tables))
	for n := range m.Tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Variable is a single named scalar, defined by a literal value or a
// formula. A variable with neither is rejected at resolution time.
type Variable struct {
	Name     string
	Value    value.Value
	HasValue bool
	Formula  string
}

// LiteralVariable creates a variable with a pre-resolved value.
func LiteralVariable(name string, v value.Value) *Variable {
	return &Variable{Name: name, Value: v, HasValue: true}
}

// FormulaVariable creates a variable defined by a formula.
func FormulaVariable(name, formula string) *Variable {
	return &Variable{Name: name, Formula: formula}
}

// Table is a named collection of columns sharing one row count, plus row
// formulas for columns still to be derived.
type Table struct {
	Name string
	// Columns holds materialized data, literal or previously derived.
	Columns map[string]*Column
	// Formulas maps derived column name to its row formula.
	Formulas map[string]string
}

// NewTable creates an empty table.
func NewTable(name string) *Table {
	return &Table{
		Name:     name,
		Columns:  make(map[string]*Column),
		Formulas: make(map[string]string),
	}
}

// RowCount returns the table's row count, taken from any materialized
// column. An empty table has zero rows.
func (t *Table) RowCount() int {
	for _, c := range t.Columns {
		return c.Len()
	}
	return 0
}

// ColumnNames returns materialized column names in sorted order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for n := range t.Columns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FormulaNames returns derived column names in sorted order.
func (t *Table) FormulaNames() []string {
	names := make([]string, 0, len(t.Formulas))
	for n := range t.Formulas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every materialized column shares the table's row
// count.
func (t *Table) Validate() error {
	expected := t.RowCount()
	for _, name := range t.ColumnNames() {
		if got := t.Columns[name].Len(); got != expected {
			return fmt.Errorf("table %q: column %q has %d rows, expected %d", t.Name, name, got, expected)
		}
	}
	return nil
}

// Clone returns a deep copy of the model. The engine resolves into a clone
// so the caller's model passes through untouched.
func (m *Model) Clone() *Model {
	out := NewModel()
	for name, v := range m.Variables {
		cp := *v
		out.Variables[name] = &cp
	}
	for name, t := range m.Tables {
		out.Tables[name] = t.Clone()
	}
	for name, overrides := range m.Scenarios {
		cp := make(map[string]value.Value, len(overrides))
		for k, v := range overrides {
			cp[k] = v
		}
		out.Scenarios[name] = cp
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := NewTable(t.Name)
	for name, c := range t.Columns {
		out.Columns[name] = c.Clone()
	}
	for name, f := range t.Formulas {
		out.Formulas[name] = f
	}
	return out
}
