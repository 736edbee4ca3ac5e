package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses formula text into an expression tree. A leading "=" is
// optional. An empty formula is an error.
func Parse(input string) (Expr, error) {
	text := strings.TrimSpace(input)
	text = strings.TrimPrefix(text, "=")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty formula")
	}

	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokenEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.peek().lit, p.peek().pos)
	}
	return expr, nil
}

type parser struct {
	tokens []token
	pos    int
}

func newParser(input string) (*parser, error) {
	lx := newLexer(input)
	var tokens []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokenEOF {
			break
		}
	}
	return &parser{tokens: tokens}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ tokenType, what string) (token, error) {
	tok := p.peek()
	if tok.typ != typ {
		return token{}, fmt.Errorf("expected %s at position %d, found %q", what, tok.pos, tok.lit)
	}
	return p.advance(), nil
}

// Binding powers, loosest first. "^" is right-associative.
func precedence(op string) int {
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return 1
	case "&":
		return 2
	case "+", "-":
		return 3
	case "*", "/", "%":
		return 4
	case "^":
		return 5
	}
	return 0
}

func (p *parser) parseExpr(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.typ != tokenOperator {
			break
		}
		prec := precedence(tok.lit)
		if prec == 0 || prec < minPrec {
			break
		}
		p.advance()

		nextMin := prec + 1
		if tok.lit == "^" {
			nextMin = prec
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: tok.lit, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.typ == tokenOperator && (tok.lit == "-" || tok.lit == "+") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.lit == "+" {
			return x, nil
		}
		return &UnaryExpr{Op: "-", X: x}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any [index] accesses.
func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenLBracket {
		p.advance()
		idx, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRBracket, "]"); err != nil {
			return nil, err
		}
		x = &IndexExpr{X: x, Index: idx}
	}
	return x, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.typ {
	case tokenNumber:
		p.advance()
		n, err := strconv.ParseFloat(tok.lit, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", tok.lit, tok.pos)
		}
		return &NumberLit{Value: n}, nil

	case tokenString:
		p.advance()
		return &StringLit{Value: tok.lit}, nil

	case tokenLParen:
		p.advance()
		x, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, ")"); err != nil {
			return nil, err
		}
		return x, nil

	case tokenIdent:
		return p.parseName()
	}
	return nil, fmt.Errorf("unexpected %q at position %d", tok.lit, tok.pos)
}

// parseName handles identifiers and everything that can follow one:
// boolean literals, function calls (including dotted names like VAR.S),
// and qualified table.column references.
func (p *parser) parseName() (Expr, error) {
	first, _ := p.expect(tokenIdent, "identifier")

	if p.peek().typ == tokenDot {
		p.advance()
		second, err := p.expect(tokenIdent, "name after '.'")
		if err != nil {
			return nil, err
		}
		// VAR.S(...), STDEV.P(...) and friends are dotted function names.
		if p.peek().typ == tokenLParen {
			return p.parseCall(first.lit + "." + second.lit)
		}
		return &ColumnRef{Table: first.lit, Column: second.lit}, nil
	}

	if p.peek().typ == tokenLParen {
		return p.parseCall(first.lit)
	}

	switch strings.ToUpper(first.lit) {
	case "TRUE":
		return &BoolLit{Value: true}, nil
	case "FALSE":
		return &BoolLit{Value: false}, nil
	}
	return &Ident{Name: first.lit}, nil
}

func (p *parser) parseCall(name string) (Expr, error) {
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	call := &CallExpr{Name: name}
	if p.peek().typ == tokenRParen {
		p.advance()
		return call, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		tok := p.peek()
		if tok.typ == tokenComma {
			p.advance()
			continue
		}
		if tok.typ == tokenRParen {
			p.advance()
			return call, nil
		}
		return nil, fmt.Errorf("expected ',' or ')' at position %d, found %q", tok.pos, tok.lit)
	}
}
