// Package value defines the runtime value model shared by the formula
// evaluator and the calculation engine. Every result a formula can produce
// is one of five shapes: number, text, boolean, array, or null.
package value

import (
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindBoolean
	KindArray
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// Value is a tagged runtime value. The zero value is Null.
type Value struct {
	kind  Kind
	num   float64
	text  string
	b     bool
	items []Value
}

// Null is the absent value.
var Null = Value{}

// Number creates a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text creates a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Boolean creates a boolean value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// Array creates an array value wrapping the given elements.
func Array(items []Value) Value {
	return Value{kind: KindArray, items: items}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Items returns the elements of an array value, or nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Bool returns the underlying boolean. Only meaningful for KindBoolean.
func (v Value) Bool() bool { return v.b }

// AsNumber attempts a numeric coercion. Numbers pass through, booleans map
// to 0/1, and text is parsed if it forms a valid number. Arrays and null
// do not coerce.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBoolean:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsText renders the value as text. This conversion is total: numbers render
// canonically, booleans as TRUE/FALSE, arrays join their elements with a
// comma, and null is the empty string.
func (v Value) AsText() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	case KindBoolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindArray:
		parts := make([]string, len(v.items))
		for i, it := range v.items {
			parts[i] = it.AsText()
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// IsTruthy reports whether the value counts as true in a condition.
// Nonzero numbers are true, booleans are themselves, null and empty arrays
// are false. Text follows spreadsheet convention: empty and "FALSE" are
// false, numeric text is tested as a number, anything else is true.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0
	case KindBoolean:
		return v.b
	case KindText:
		if v.text == "" || strings.EqualFold(v.text, "false") {
			return false
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64); err == nil {
			return n != 0
		}
		return true
	case KindArray:
		return len(v.items) > 0
	default:
		return false
	}
}

// Equal compares two values by kind and content. Arrays compare element-wise.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	case KindBoolean:
		return v.b == o.b
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
