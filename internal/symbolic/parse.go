package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Parse turns boundary text into an expression tree.
//
// The accepted syntax is the usual infix form: `+ - * /`, `**` (or `^`) for
// powers, parentheses, function calls, integer and decimal literals, and the
// constants pi and E. Decimal literals become exact rationals. Unevaluated
// derivatives round-trip through `Derivative(u, x)` and `Derivative(u, (x, n))`.
func Parse(text string) (Expr, error) {
	p := &parser{src: text}
	p.next()
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return e, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInvalid
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPower
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	src string
	pos int
	tok token
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s at position %d", domain.ErrInvalidInput, msg, p.tok.pos)
}

func (p *parser) next() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.src[p.pos]
	switch {
	case c >= '0' && c <= '9', c == '.':
		p.pos++
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		p.tok = token{kind: tokNumber, text: p.src[start:p.pos], pos: start}
	case isIdentStart(rune(c)):
		p.pos++
		for p.pos < len(p.src) && isIdentPart(rune(p.src[p.pos])) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos], pos: start}
	case c == '+':
		p.pos++
		p.tok = token{kind: tokPlus, text: "+", pos: start}
	case c == '-':
		p.pos++
		p.tok = token{kind: tokMinus, text: "-", pos: start}
	case c == '*':
		p.pos++
		if p.pos < len(p.src) && p.src[p.pos] == '*' {
			p.pos++
			p.tok = token{kind: tokPower, text: "**", pos: start}
			return
		}
		p.tok = token{kind: tokStar, text: "*", pos: start}
	case c == '^':
		p.pos++
		p.tok = token{kind: tokPower, text: "^", pos: start}
	case c == '/':
		p.pos++
		p.tok = token{kind: tokSlash, text: "/", pos: start}
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		p.pos++
		p.tok = token{kind: tokComma, text: ",", pos: start}
	default:
		p.pos++
		p.tok = token{kind: tokInvalid, text: string(c), pos: start}
	}
}

func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
func isIdentStart(r rune) bool  { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool   { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op == tokMinus {
			right = Neg(right)
		}
		left = AddOf(left, right)
	}
	return left, nil
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := p.tok.kind
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == tokSlash {
			left = Div(left, right)
		} else {
			left = MulOf(left, right)
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokMinus {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	if p.tok.kind == tokPlus {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokPower {
		p.next()
		// Right associative; the exponent may itself be signed.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) parseAtom() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		text := p.tok.text
		if strings.Count(text, ".") > 1 {
			return nil, p.errorf("malformed number %q", text)
		}
		r, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, p.errorf("malformed number %q", text)
		}
		p.next()
		return NewNum(r), nil

	case tokIdent:
		name := p.tok.text
		p.next()
		if p.tok.kind == tokLParen {
			return p.parseCall(name)
		}
		switch name {
		case NamePi:
			return Pi, nil
		case NameEuler:
			return Euler, nil
		}
		return S(name), nil

	case tokLParen:
		p.next()
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected closing parenthesis, found %q", p.tok.text)
		}
		p.next()
		return e, nil
	}
	if p.tok.kind == tokEOF {
		return nil, p.errorf("unexpected end of expression")
	}
	return nil, p.errorf("unexpected %q", p.tok.text)
}

// Function-name aliases accepted at the parse boundary.
var functionAliases = map[string]string{
	"ln":        "log",
	"abs":       "Abs",
	"ceil":      "ceiling",
	"heaviside": "Heaviside",
}

func (p *parser) parseCall(name string) (Expr, error) {
	if alias, ok := functionAliases[name]; ok {
		name = alias
	}
	if name == "Derivative" {
		return p.parseDerivative()
	}

	p.next() // consume '('
	var args []Expr
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.tok.kind != tokRParen {
		return nil, p.errorf("expected closing parenthesis in call to %s", name)
	}
	p.next()

	if name == "sqrt" {
		if len(args) != 1 {
			return nil, p.errorf("sqrt takes exactly one argument")
		}
		return Sqrt(args[0]), nil
	}
	if !IsKnownFunction(name) {
		return nil, p.errorf("unknown function %q", name)
	}
	if len(args) == 0 {
		return nil, p.errorf("%s requires at least one argument", name)
	}
	return Fn(name, args...), nil
}

// parseDerivative reads Derivative(u, x) or Derivative(u, (x, n)).
func (p *parser) parseDerivative() (Expr, error) {
	p.next() // consume '('
	inner, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokComma {
		return nil, p.errorf("Derivative requires a variable argument")
	}
	p.next()

	variable := ""
	order := 1
	if p.tok.kind == tokLParen {
		p.next()
		if p.tok.kind != tokIdent {
			return nil, p.errorf("expected variable name in Derivative")
		}
		variable = p.tok.text
		p.next()
		if p.tok.kind != tokComma {
			return nil, p.errorf("expected order in Derivative")
		}
		p.next()
		if p.tok.kind != tokNumber {
			return nil, p.errorf("expected numeric order in Derivative")
		}
		n, ok := new(big.Rat).SetString(p.tok.text)
		if !ok || !n.IsInt() {
			return nil, p.errorf("derivative order must be an integer")
		}
		order = int(n.Num().Int64())
		p.next()
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected closing parenthesis in Derivative order")
		}
		p.next()
	} else {
		if p.tok.kind != tokIdent {
			return nil, p.errorf("expected variable name in Derivative")
		}
		variable = p.tok.text
		p.next()
	}

	if p.tok.kind != tokRParen {
		return nil, p.errorf("expected closing parenthesis in Derivative")
	}
	p.next()
	return DerivOf(inner, variable, order), nil
}
