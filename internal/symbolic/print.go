package symbolic

import (
	"fmt"
	"math/big"
	"strings"
)

// Printing precedence levels, loosest first.
const (
	precAdd = iota
	precMul
	precPow
	precAtom
)

// Format returns the canonical text of an expression: the form recorded on
// step nodes and used for fixpoint comparison. Formatting is deterministic
// for structurally equal trees.
func Format(e Expr) string { return printExpr(e, precAdd) }

func (n *Num) String() string  { return Format(n) }
func (s *Sym) String() string  { return Format(s) }
func (a *Add) String() string  { return Format(a) }
func (m *Mul) String() string  { return Format(m) }
func (p *Pow) String() string  { return Format(p) }
func (c *Call) String() string { return Format(c) }
func (d *Deriv) String() string { return Format(d) }

func printExpr(e Expr, ctx int) string {
	switch x := e.(type) {
	case *Num:
		return printNum(x, ctx)
	case *Sym:
		return x.Name
	case *Add:
		return printAdd(x, ctx)
	case *Mul:
		return printMul(x, ctx)
	case *Pow:
		return printPow(x, ctx)
	case *Call:
		return printCall(x)
	case *Deriv:
		if x.Order == 1 {
			return fmt.Sprintf("Derivative(%s, %s)", printExpr(x.Expr, precAdd), x.Variable)
		}
		return fmt.Sprintf("Derivative(%s, (%s, %d))", printExpr(x.Expr, precAdd), x.Variable, x.Order)
	}
	return "<unknown>"
}

func printNum(n *Num, ctx int) string {
	var text string
	if n.val.IsInt() {
		text = n.val.Num().String()
	} else {
		text = n.val.RatString()
	}
	// A negative or fractional literal needs parentheses where a tighter
	// construct would otherwise capture it, e.g. (-2)**x or x**(1/2).
	if ctx >= precPow && (n.IsNegative() || !n.val.IsInt()) {
		return "(" + text + ")"
	}
	return text
}

func printAdd(a *Add, ctx int) string {
	if len(a.Terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.Terms {
		text := printExpr(t, precAdd+1)
		if i == 0 {
			b.WriteString(text)
			continue
		}
		if stripped, neg := strings.CutPrefix(text, "-"); neg {
			b.WriteString(" - ")
			b.WriteString(stripped)
		} else {
			b.WriteString(" + ")
			b.WriteString(text)
		}
	}
	out := b.String()
	if ctx > precAdd {
		return "(" + out + ")"
	}
	return out
}

// printMul renders a product as numerator/denominator, hoisting negative
// exponents below the bar and splitting a fractional coefficient across it,
// so that F(3,2)*x prints as 3*x/2 and Div(u, v) prints as u/v.
func printMul(m *Mul, ctx int) string {
	coeff := new(big.Rat).SetInt64(1)
	var top, bottom []string

	flat := flattenMul(m)
	for _, f := range flat {
		switch x := f.(type) {
		case *Num:
			coeff.Mul(coeff, x.val)
		case *Pow:
			if n, ok := x.Exp.(*Num); ok && n.IsNegative() {
				inv := PowOf(x.Base, numNeg(n))
				bottom = append(bottom, printExpr(simplifyPowShape(inv), precMul+1))
				continue
			}
			top = append(top, printExpr(x, precMul+1))
		default:
			top = append(top, printExpr(f, precMul+1))
		}
	}

	negative := coeff.Sign() < 0
	if negative {
		coeff.Neg(coeff)
	}
	if coeff.Num().Cmp(oneInt) != 0 || len(top) == 0 {
		top = append([]string{coeff.Num().String()}, top...)
	}
	if coeff.Denom().Cmp(oneInt) != 0 {
		bottom = append([]string{coeff.Denom().String()}, bottom...)
	}

	out := strings.Join(top, "*")
	switch {
	case len(bottom) == 1:
		out += "/" + bottom[0]
	case len(bottom) > 1:
		out += "/(" + strings.Join(bottom, "*") + ")"
	}
	if negative {
		out = "-" + out
	}
	if ctx > precMul {
		return "(" + out + ")"
	}
	return out
}

var oneInt = big.NewInt(1)

// simplifyPowShape collapses b**1 to b for printing purposes only.
func simplifyPowShape(p *Pow) Expr {
	if n, ok := p.Exp.(*Num); ok && n.IsOne() {
		return p.Base
	}
	return p
}

func printPow(p *Pow, ctx int) string {
	if n, ok := p.Exp.(*Num); ok {
		if n.val.Cmp(big.NewRat(1, 2)) == 0 {
			return fmt.Sprintf("sqrt(%s)", printExpr(p.Base, precAdd))
		}
		if n.IsNegative() {
			inv := simplifyPowShape(PowOf(p.Base, numNeg(n)))
			out := "1/" + printExpr(inv, precMul+1)
			if ctx > precMul {
				return "(" + out + ")"
			}
			return out
		}
	}
	out := printExpr(p.Base, precPow+1) + "**" + printExpr(p.Exp, precPow+1)
	if ctx > precPow {
		return "(" + out + ")"
	}
	return out
}

func printCall(c *Call) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = printExpr(a, precAdd)
	}
	return c.Fn + "(" + strings.Join(args, ", ") + ")"
}

// flattenMul expands nested products into one factor list, preserving order.
func flattenMul(m *Mul) []Expr {
	out := make([]Expr, 0, len(m.Factors))
	for _, f := range m.Factors {
		if inner, ok := f.(*Mul); ok {
			out = append(out, flattenMul(inner)...)
			continue
		}
		out = append(out, f)
	}
	return out
}

// flattenAdd expands nested sums into one term list, preserving order.
func flattenAdd(a *Add) []Expr {
	out := make([]Expr, 0, len(a.Terms))
	for _, t := range a.Terms {
		if inner, ok := t.(*Add); ok {
			out = append(out, flattenAdd(inner)...)
			continue
		}
		out = append(out, t)
	}
	return out
}
