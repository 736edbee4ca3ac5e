package model

import (
	"fmt"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// ColumnType fixes the element type of a column at creation.
type ColumnType int

const (
	ColumnNumber ColumnType = iota
	ColumnText
	ColumnBoolean
	ColumnDate
)

// String returns a human-readable name for the column type.
func (t ColumnType) String() string {
	switch t {
	case ColumnNumber:
		return "number"
	case ColumnText:
		return "text"
	case ColumnBoolean:
		return "boolean"
	case ColumnDate:
		return "date"
	}
	return "unknown"
}

// Column is a homogeneous sequence of values. Dates are carried as text in
// ISO form; formatting is left to export layers.
type Column struct {
	Name string
	Type ColumnType

	numbers []float64
	texts   []string
	bools   []bool
}

// NumberColumn creates a numeric column.
func NumberColumn(name string, vals []float64) *Column {
	return &Column{Name: name, Type: ColumnNumber, numbers: vals}
}

// TextColumn creates a text column.
func TextColumn(name string, vals []string) *Column {
	return &Column{Name: name, Type: ColumnText, texts: vals}
}

// BooleanColumn creates a boolean column.
func BooleanColumn(name string, vals []bool) *Column {
	return &Column{Name: name, Type: ColumnBoolean, bools: vals}
}

// DateColumn creates a date column from ISO date strings.
func DateColumn(name string, vals []string) *Column {
	return &Column{Name: name, Type: ColumnDate, texts: vals}
}

// ColumnFromValues builds a typed column from evaluated row values. The
// type is inferred from the first value; a later value of a different shape
// is a hard error naming the row, never a silent widening.
func ColumnFromValues(name string, vals []value.Value) (*Column, error) {
	if len(vals) == 0 {
		return TextColumn(name, nil), nil
	}
	switch vals[0].Kind() {
	case value.KindNumber:
		nums := make([]float64, len(vals))
		for i, v := range vals {
			if v.Kind() != value.KindNumber {
				return nil, mixedTypeErr(name, i, ColumnNumber, v)
			}
			nums[i], _ = v.AsNumber()
		}
		return NumberColumn(name, nums), nil
	case value.KindBoolean:
		bools := make([]bool, len(vals))
		for i, v := range vals {
			if v.Kind() != value.KindBoolean {
				return nil, mixedTypeErr(name, i, ColumnBoolean, v)
			}
			bools[i] = v.Bool()
		}
		return BooleanColumn(name, bools), nil
	case value.KindText:
		texts := make([]string, len(vals))
		for i, v := range vals {
			if v.Kind() != value.KindText {
				return nil, mixedTypeErr(name, i, ColumnText, v)
			}
			texts[i] = v.AsText()
		}
		return TextColumn(name, texts), nil
	}
	return nil, fmt.Errorf("column %q: row 0 produced a %s value, expected a number, text, or boolean",
		name, vals[0].Kind())
}

func mixedTypeErr(name string, row int, want ColumnType, got value.Value) error {
	return fmt.Errorf("column %q: row %d produced a %s value in a %s column", name, row, got.Kind(), want)
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Type {
	case ColumnNumber:
		return len(c.numbers)
	case ColumnBoolean:
		return len(c.bools)
	default:
		return len(c.texts)
	}
}

// Value returns the element at row i as a runtime value.
func (c *Column) Value(i int) value.Value {
	switch c.Type {
	case ColumnNumber:
		return value.Number(c.numbers[i])
	case ColumnBoolean:
		return value.Boolean(c.bools[i])
	default:
		return value.Text(c.texts[i])
	}
}

// Values returns the whole column as runtime values.
func (c *Column) Values() []value.Value {
	out := make([]value.Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Numbers returns the numeric backing slice, or nil for other types.
func (c *Column) Numbers() []float64 {
	if c.Type != ColumnNumber {
		return nil
	}
	return c.numbers
}

// Texts returns the text backing slice for text and date columns.
func (c *Column) Texts() []string {
	if c.Type != ColumnText && c.Type != ColumnDate {
		return nil
	}
	return c.texts
}

// Booleans returns the boolean backing slice, or nil for other types.
func (c *Column) Booleans() []bool {
	if c.Type != ColumnBoolean {
		return nil
	}
	return c.bools
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cp := &Column{Name: c.Name, Type: c.Type}
	cp.numbers = append([]float64(nil), c.numbers...)
	cp.texts = append([]string(nil), c.texts...)
	cp.bools = append([]bool(nil), c.bools...)
	return cp
}
