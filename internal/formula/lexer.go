package formula

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenOperator // + - * / ^ % & = <> < <= > >=
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
	tokenDot
)

type token struct {
	typ tokenType
	lit string
	pos int
}

// lexer turns formula text into a token stream. It is a plain scanner with
// one character of lookahead for two-character operators.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c >= '0' && c <= '9' || c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]):
		return l.scanNumber()
	case c == '"':
		return l.scanString()
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{typ: tokenIdent, lit: l.input[start:l.pos], pos: start}, nil
	}

	l.pos++
	switch c {
	case '(':
		return token{typ: tokenLParen, lit: "(", pos: start}, nil
	case ')':
		return token{typ: tokenRParen, lit: ")", pos: start}, nil
	case '[':
		return token{typ: tokenLBracket, lit: "[", pos: start}, nil
	case ']':
		return token{typ: tokenRBracket, lit: "]", pos: start}, nil
	case ',':
		return token{typ: tokenComma, lit: ",", pos: start}, nil
	case '.':
		return token{typ: tokenDot, lit: ".", pos: start}, nil
	case '+', '-', '*', '/', '^', '%', '&', '=':
		return token{typ: tokenOperator, lit: string(c), pos: start}, nil
	case '<':
		if l.pos < len(l.input) && (l.input[l.pos] == '=' || l.input[l.pos] == '>') {
			l.pos++
			return token{typ: tokenOperator, lit: l.input[start:l.pos], pos: start}, nil
		}
		return token{typ: tokenOperator, lit: "<", pos: start}, nil
	case '>':
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return token{typ: tokenOperator, lit: ">=", pos: start}, nil
		}
		return token{typ: tokenOperator, lit: ">", pos: start}, nil
	}

	return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	seenDot := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isDigit(c) {
			l.pos++
			continue
		}
		if c == '.' && !seenDot && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			seenDot = true
			l.pos++
			continue
		}
		break
	}
	// Exponent suffix, e.g. 1.5e-3.
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = mark
		}
	}
	return token{typ: tokenNumber, lit: l.input[start:l.pos], pos: start}, nil
}

func (l *lexer) scanString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '"' {
			// Doubled quote is an escaped quote.
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return token{typ: tokenString, lit: sb.String(), pos: start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated string literal at position %d", start)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
