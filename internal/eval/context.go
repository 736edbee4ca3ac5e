// Package eval interprets parsed formula trees against a snapshot of
// already-known scalars and table columns. It hosts the expression
// evaluator, the criteria matcher, and the built-in function library.
package eval

import "github.com/gridstack-labs/gridcalc/internal/value"

// NoRow marks a context with no current row: column references resolve to
// whole arrays instead of single elements.
const NoRow = -1

// Context is the read-only view of resolved values used during one
// evaluation call. Contexts are immutable once constructed; WithRow returns
// a shallow copy sharing the underlying maps, which is safe because nothing
// mutates them during evaluation.
type Context struct {
	// Scalars maps scalar name to its resolved value.
	Scalars map[string]value.Value
	// Tables maps table name to column name to the column's values.
	Tables map[string]map[string][]value.Value
	// CurrentTable is the table whose row formulas are being evaluated,
	// or "" outside row-wise evaluation. Bare identifiers resolve against
	// its columns before falling back to scalars.
	CurrentTable string
	// CurrentRow is the row index during row-wise evaluation, or NoRow.
	CurrentRow int
	// RowCount is the row count of CurrentTable, or 0.
	RowCount int
}

// NewContext creates an empty context with no current row.
func NewContext() *Context {
	return &Context{
		Scalars:    make(map[string]value.Value),
		Tables:     make(map[string]map[string][]value.Value),
		CurrentRow: NoRow,
	}
}

// HasRow reports whether the context carries a current row index.
func (c *Context) HasRow() bool {
	return c.CurrentRow != NoRow
}

// WithRow returns a copy of the context positioned at the given row.
func (c *Context) WithRow(row int) *Context {
	cp := *c
	cp.CurrentRow = row
	return &cp
}

// WithoutRow returns a copy of the context with whole-array visibility.
func (c *Context) WithoutRow() *Context {
	cp := *c
	cp.CurrentRow = NoRow
	return &cp
}

// Column returns the values of table.column, if present.
func (c *Context) Column(table, column string) ([]value.Value, bool) {
	cols, ok := c.Tables[table]
	if !ok {
		return nil, false
	}
	vals, ok := cols[column]
	return vals, ok
}
