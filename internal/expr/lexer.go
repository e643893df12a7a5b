package expr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokUnit
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow
	tokLParen
	tokRParen
	tokEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokNumber:
		return "number"
	case tokUnit:
		return "unit"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokPow:
		return "'^'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "end of input"
	}
}

type token struct {
	kind  tokenKind
	text  string
	value float64 // numbers carry their literal, units their factor
	pos   int
}

// tokenize reads the whole input. Unit symbols are maximal runs of letters,
// so "mm" is never read as "m" followed by a stray "m".
func tokenize(input string, table units.Table) ([]token, error) {
	var out []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.':
			tok, next, err := lexNumber(input, i)
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			i = next
		case units.IsLetter(c):
			start := i
			for i < len(input) && units.IsLetter(input[i]) {
				i++
			}
			sym := input[start:i]
			f, ok := table.Lookup(sym)
			if !ok {
				return nil, newError(input, start, ErrUnknownUnit, strconv.Quote(sym))
			}
			out = append(out, token{kind: tokUnit, text: sym, value: f, pos: start})
		case c == '*' && i+1 < len(input) && input[i+1] == '*':
			out = append(out, token{kind: tokPow, text: "**", pos: i})
			i += 2
		default:
			kind, ok := singleCharTokens[c]
			if !ok {
				return nil, newError(input, i, ErrUnexpectedChar, fmt.Sprintf("%q", rune(c)))
			}
			out = append(out, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(input)})
	return out, nil
}

var singleCharTokens = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokPow,
	'(': tokLParen,
	')': tokRParen,
}

// lexNumber accepts "12", "12.", ".5", "1.5e-3". An 'e' that is not followed
// by an exponent is left for the unit lexer. Literals beyond float64 range in
// either direction are rejected, so "1e-400" is never read as 0.
func lexNumber(input string, start int) (token, int, error) {
	i := start
	digits := 0
	for i < len(input) && isDigit(input[i]) {
		i++
		digits++
	}
	if i < len(input) && input[i] == '.' {
		i++
		for i < len(input) && isDigit(input[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return token{}, 0, newError(input, start, ErrSyntax, "lone decimal point")
	}
	mantEnd := i
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		if j < len(input) && isDigit(input[j]) {
			for j < len(input) && isDigit(input[j]) {
				j++
			}
			i = j
		}
	}
	text := input[start:i]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return token{}, 0, newError(input, start, ErrNonFinite, fmt.Sprintf("%q is out of range", text))
		}
		return token{}, 0, newError(input, start, ErrSyntax, fmt.Sprintf("bad number %q", text))
	}
	if v == 0 && hasNonZeroDigit(input[start:mantEnd]) {
		return token{}, 0, newError(input, start, ErrNonFinite, fmt.Sprintf("%q is out of range", text))
	}
	return token{kind: tokNumber, text: text, value: v, pos: start}, i, nil
}

func hasNonZeroDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if '1' <= s[i] && s[i] <= '9' {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
