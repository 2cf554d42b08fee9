// Package symbolic is the algebra backend of the Stepwise engine: an exact
// symbolic expression tree with deterministic simplification and stable
// printing, plus the matrix arithmetic the linear-algebra rules build on.
//
// All numeric work uses math/big.Rat; nothing in this package touches floats
// except when converting decimal literals at the parse boundary.
package symbolic

import (
	"math/big"
	"sort"
	"strings"
)

// Expr is a node in the expression tree. Nodes are immutable; every operation
// returns new trees and shares unchanged subtrees freely.
type Expr interface {
	// String returns the canonical printed form (see print.go).
	String() string
	isExpr()
}

// Num is an exact rational number.
type Num struct{ val *big.Rat }

// N returns the integer n as an expression.
func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F returns the fraction p/q as an expression. q must be non-zero.
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NewNum wraps an existing rational. The value is copied.
func NewNum(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) isExpr() {}

func (n *Num) Rat() *big.Rat    { return new(big.Rat).Set(n.val) }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool   { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }
func (n *Num) IsPositive() bool { return n.val.Sign() > 0 }

// Int64 returns the integer value and whether the number is an int64-sized integer.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
)

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numCmp(a, b *Num) int  { return a.val.Cmp(b.val) }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

// Sym is a symbolic variable or named constant.
type Sym struct{ Name string }

// S returns the symbol with the given name.
func S(name string) *Sym { return &Sym{Name: name} }

func (s *Sym) isExpr() {}

// Reserved constant names. They print as symbols but are never free variables.
const (
	NamePi    = "pi"
	NameEuler = "E"
)

// Pi and Euler are the shared constant symbols.
var (
	Pi    = S(NamePi)
	Euler = S(NameEuler)
)

// IsConstName reports whether name denotes a reserved constant, not a variable.
func IsConstName(name string) bool { return name == NamePi || name == NameEuler }

// Add is a flattened n-ary sum.
type Add struct{ Terms []Expr }

func (a *Add) isExpr() {}

// AddOf builds a sum without simplifying.
func AddOf(terms ...Expr) *Add { return &Add{Terms: terms} }

// Mul is a flattened n-ary product.
type Mul struct{ Factors []Expr }

func (m *Mul) isExpr() {}

// MulOf builds a product without simplifying.
func MulOf(factors ...Expr) *Mul { return &Mul{Factors: factors} }

// Pow is base raised to exponent.
type Pow struct{ Base, Exp Expr }

func (p *Pow) isExpr() {}

// PowOf builds a power without simplifying.
func PowOf(base, exp Expr) *Pow { return &Pow{Base: base, Exp: exp} }

// Neg returns -e as a product with coefficient -1.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Div returns a / b as a product with a reciprocal factor.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Sqrt returns b**(1/2).
func Sqrt(b Expr) Expr { return PowOf(b, F(1, 2)) }

// Call is a named function application.
type Call struct {
	Fn   string
	Args []Expr
}

func (c *Call) isExpr() {}

// Fn builds a function application.
func Fn(name string, args ...Expr) *Call { return &Call{Fn: name, Args: args} }

// Arg returns the single argument of a unary call.
func (c *Call) Arg() Expr { return c.Args[0] }

// Deriv is an unevaluated derivative: the pending marker the differentiation
// rule set rewrites away one step at a time.
type Deriv struct {
	Expr     Expr
	Variable string
	Order    int
}

func (d *Deriv) isExpr() {}

// DerivOf builds an unevaluated derivative node.
func DerivOf(e Expr, variable string, order int) *Deriv {
	return &Deriv{Expr: e, Variable: variable, Order: order}
}

// Function names understood by the parser, printer, and differentiation table.
var knownFunctions = map[string]struct{}{
	"sin": {}, "cos": {}, "tan": {}, "sec": {}, "csc": {}, "cot": {},
	"asin": {}, "acos": {}, "atan": {}, "asec": {}, "acsc": {}, "acot": {},
	"sinh": {}, "cosh": {}, "tanh": {}, "asinh": {}, "acosh": {}, "atanh": {},
	"exp": {}, "log": {}, "erf": {}, "gamma": {}, "polygamma": {},
	"Heaviside": {}, "DiracDelta": {}, "Abs": {}, "sign": {},
	"floor": {}, "ceiling": {}, "sech": {},
}

// IsKnownFunction reports whether the backend understands the function name.
func IsKnownFunction(name string) bool {
	_, ok := knownFunctions[name]
	return ok
}

// KnownFunctions returns the supported function names in sorted order.
func KnownFunctions() []string {
	out := make([]string, 0, len(knownFunctions))
	for name := range knownFunctions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Equal reports structural equality of two trees.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Num:
		y, ok := b.(*Num)
		return ok && numCmp(x, y) == 0
	case *Sym:
		y, ok := b.(*Sym)
		return ok && x.Name == y.Name
	case *Add:
		y, ok := b.(*Add)
		if !ok || len(x.Terms) != len(y.Terms) {
			return false
		}
		for i := range x.Terms {
			if !Equal(x.Terms[i], y.Terms[i]) {
				return false
			}
		}
		return true
	case *Mul:
		y, ok := b.(*Mul)
		if !ok || len(x.Factors) != len(y.Factors) {
			return false
		}
		for i := range x.Factors {
			if !Equal(x.Factors[i], y.Factors[i]) {
				return false
			}
		}
		return true
	case *Pow:
		y, ok := b.(*Pow)
		return ok && Equal(x.Base, y.Base) && Equal(x.Exp, y.Exp)
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Fn != y.Fn || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Deriv:
		y, ok := b.(*Deriv)
		return ok && x.Variable == y.Variable && x.Order == y.Order && Equal(x.Expr, y.Expr)
	}
	return false
}

// exprRank orders node kinds for canonical product/sum layout: numbers first,
// then symbols, powers, calls, derivatives, and composites last.
func exprRank(e Expr) int {
	switch e.(type) {
	case *Num:
		return 0
	case *Sym:
		return 1
	case *Pow:
		return 2
	case *Call:
		return 3
	case *Deriv:
		return 4
	case *Mul:
		return 5
	case *Add:
		return 6
	}
	return 7
}

// sortKey is a total, deterministic ordering key used when canonicalizing.
func sortKey(e Expr) string {
	var b strings.Builder
	b.WriteByte(byte('0' + exprRank(e)))
	b.WriteString(e.String())
	return b.String()
}
