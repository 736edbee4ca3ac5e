// Package formula parses formula text into an expression tree.
// The grammar covers infix arithmetic and comparison operators, function
// calls, qualified table.column references, 0-based array indexing, and
// string/number/boolean literals. A leading "=" is accepted and ignored.
package formula

// Expr is a node of the parsed expression tree.
type Expr interface {
	exprNode()
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// StringLit is a double-quoted string literal.
type StringLit struct {
	Value string
}

// BoolLit is a TRUE or FALSE literal.
type BoolLit struct {
	Value bool
}

// Ident is an unqualified name: a scalar, or a column of the table whose
// formula is being evaluated.
type Ident struct {
	Name string
}

// ColumnRef is a qualified table.column reference.
type ColumnRef struct {
	Table  string
	Column string
}

// IndexExpr is a 0-based array index, e.g. sales.revenue[2].
type IndexExpr struct {
	X     Expr
	Index Expr
}

// UnaryExpr is a prefix operator application.
type UnaryExpr struct {
	Op string
	X  Expr
}

// BinaryExpr is an infix operator application.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// CallExpr is a function call. Name is stored as written; lookup is
// case-insensitive.
type CallExpr struct {
	Name string
	Args []Expr
}

func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*Ident) exprNode()      {}
func (*ColumnRef) exprNode()  {}
func (*IndexExpr) exprNode()  {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
