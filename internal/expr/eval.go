// Package expr evaluates arithmetic expressions written with engineering
// unit symbols, e.g. "36*ksi" or "240*kgf/cm^2", into a number expressed in
// the base system of a units.Table.
//
// Grammar:
//
//	expr     = term { ("+" | "-") term }
//	term     = unary { ("*" | "/") unary }
//	unary    = ("+" | "-") unary | quantity
//	quantity = power { unit-power }
//	power    = primary [ ("^" | "**") exponent ]
//	exponent = ("+" | "-") exponent | power
//	primary  = number | unit | "(" expr ")"
//
// unit-power is a power whose primary is a unit. A unit written right after
// an operand multiplies it ("5mm", "(2+3) kN") and binds tighter than "*"
// and "/", so "1000 N / 2 cm^2" divides by 2 cm^2. Exponentiation is
// right-associative and binds tighter than a leading minus, so "-2^2" is -4.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

const (
	MaxLength = 512
	maxDepth  = 64
)

// Evaluate computes input against table. On failure the returned error is an
// *Error wrapping one of the package sentinels.
func Evaluate(input string, table units.Table) (float64, error) {
	if len(input) > MaxLength {
		return 0, newError(input, -1, ErrTooLong, fmt.Sprintf("%d bytes, limit %d", len(input), MaxLength))
	}
	if strings.TrimSpace(input) == "" {
		return 0, newError(input, -1, ErrEmpty, "")
	}
	toks, err := tokenize(input, table)
	if err != nil {
		return 0, err
	}
	p := &parser{input: input, toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, p.unexpected(t)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, newError(input, -1, ErrNonFinite, "")
	}
	return v, nil
}

// Evaluator binds a table so callers can pass a single value around.
type Evaluator struct {
	table units.Table
}

func New(table units.Table) *Evaluator { return &Evaluator{table: table} }

func (e *Evaluator) Eval(input string) (float64, error) { return Evaluate(input, e.table) }

func (e *Evaluator) Table() units.Table { return e.table }

// Format renders v so that Evaluate(Format(v)) == v for every finite v.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type parser struct {
	input string
	toks  []token
	pos   int
	depth int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t token) error {
	if t.kind == tokEOF {
		return newError(p.input, t.pos, ErrSyntax, "unexpected end of input")
	}
	return newError(p.input, t.pos, ErrSyntax, fmt.Sprintf("unexpected %s %q", t.kind, t.text))
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left += right
		case tokMinus:
			p.next()
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		t := p.peek()
		switch t.kind {
		case tokStar:
			p.next()
			right, err := p.unary()
			if err != nil {
				return 0, err
			}
			left *= right
		case tokSlash:
			p.next()
			right, err := p.unary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, newError(p.input, t.pos, ErrDivisionByZero, "")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (float64, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		v, err := p.nested(p.unary)
		return -v, err
	case tokPlus:
		p.next()
		return p.nested(p.unary)
	}
	return p.quantity()
}

func (p *parser) quantity() (float64, error) {
	v, err := p.power()
	if err != nil {
		return 0, err
	}
	for p.peek().kind == tokUnit {
		u, err := p.power()
		if err != nil {
			return 0, err
		}
		v *= u
	}
	return v, nil
}

func (p *parser) exponent() (float64, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		v, err := p.nested(p.exponent)
		return -v, err
	case tokPlus:
		p.next()
		return p.nested(p.exponent)
	}
	return p.power()
}

func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	op := p.next()
	exp, err := p.nested(p.exponent)
	if err != nil {
		return 0, err
	}
	if base == 0 && exp < 0 {
		return 0, newError(p.input, op.pos, ErrDivisionByZero, "zero raised to a negative power")
	}
	v := math.Pow(base, exp)
	if math.IsNaN(v) {
		return 0, newError(p.input, op.pos, ErrNonFinite, fmt.Sprintf("%s^%s", Format(base), Format(exp)))
	}
	return v, nil
}

func (p *parser) primary() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNumber, tokUnit:
		return t.value, nil
	case tokLParen:
		v, err := p.nested(p.expr)
		if err != nil {
			return 0, err
		}
		if c := p.next(); c.kind != tokRParen {
			if c.kind == tokEOF {
				return 0, newError(p.input, t.pos, ErrSyntax, "unclosed parenthesis")
			}
			return 0, p.unexpected(c)
		}
		return v, nil
	}
	return 0, p.unexpected(t)
}

func (p *parser) nested(fn func() (float64, error)) (float64, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return 0, newError(p.input, p.peek().pos, ErrSyntax, "expression nested too deeply")
	}
	return fn()
}
