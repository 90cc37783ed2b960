// Package calc evaluates constrained arithmetic expressions: numeric
// literals, + - * /, unary minus and parentheses. Nothing caller-supplied
// is ever compiled or executed.
package calc

import (
    "fmt"
    "math"
    "strconv"
    "strings"
    "unicode"
)

// Eval parses and evaluates expr with the usual precedence rules.
func Eval(expr string) (float64, error) {
    p := &parser{input: expr}
    p.skipSpaces()
    if p.eof() {
        return 0, fmt.Errorf("empty expression")
    }
    v, err := p.parseExpr()
    if err != nil {
        return 0, err
    }
    p.skipSpaces()
    if !p.eof() {
        return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
    }
    if math.IsInf(v, 0) || math.IsNaN(v) {
        return 0, fmt.Errorf("result is not finite")
    }
    return v, nil
}

type parser struct {
    input string
    pos   int
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (float64, error) {
    v, err := p.parseTerm()
    if err != nil {
        return 0, err
    }
    for {
        p.skipSpaces()
        switch {
        case p.accept('+'):
            rhs, err := p.parseTerm()
            if err != nil {
                return 0, err
            }
            v += rhs
        case p.accept('-'):
            rhs, err := p.parseTerm()
            if err != nil {
                return 0, err
            }
            v -= rhs
        default:
            return v, nil
        }
    }
}

// term := unary (('*'|'/') unary)*
func (p *parser) parseTerm() (float64, error) {
    v, err := p.parseUnary()
    if err != nil {
        return 0, err
    }
    for {
        p.skipSpaces()
        switch {
        case p.accept('*'):
            rhs, err := p.parseUnary()
            if err != nil {
                return 0, err
            }
            v *= rhs
        case p.accept('/'):
            rhs, err := p.parseUnary()
            if err != nil {
                return 0, err
            }
            if rhs == 0 {
                return 0, fmt.Errorf("division by zero")
            }
            v /= rhs
        default:
            return v, nil
        }
    }
}

// unary := '-' unary | primary
func (p *parser) parseUnary() (float64, error) {
    p.skipSpaces()
    if p.accept('-') {
        v, err := p.parseUnary()
        return -v, err
    }
    return p.parsePrimary()
}

// primary := number | '(' expr ')'
func (p *parser) parsePrimary() (float64, error) {
    p.skipSpaces()
    if p.accept('(') {
        v, err := p.parseExpr()
        if err != nil {
            return 0, err
        }
        p.skipSpaces()
        if !p.accept(')') {
            return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
        }
        return v, nil
    }
    return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
    start := p.pos
    for !p.eof() {
        ch := rune(p.input[p.pos])
        if unicode.IsDigit(ch) || ch == '.' {
            p.pos++
            continue
        }
        break
    }
    if p.pos == start {
        if p.eof() {
            return 0, fmt.Errorf("unexpected end of expression")
        }
        return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
    }
    lit := p.input[start:p.pos]
    if strings.Count(lit, ".") > 1 {
        return 0, fmt.Errorf("malformed number %q", lit)
    }
    v, err := strconv.ParseFloat(lit, 64)
    if err != nil {
        return 0, fmt.Errorf("malformed number %q", lit)
    }
    return v, nil
}

func (p *parser) accept(ch byte) bool {
    if !p.eof() && p.input[p.pos] == ch {
        p.pos++
        return true
    }
    return false
}

func (p *parser) skipSpaces() {
    for !p.eof() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
        p.pos++
    }
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }
