package symbolic

import "sort"

// FreeSymbols returns the free variable names of the tree in sorted order.
// Named constants (pi, E) are not free symbols.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	collectSymbols(e, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, seen map[string]struct{}) {
	switch x := e.(type) {
	case *Num:
	case *Sym:
		if !IsConstName(x.Name) {
			seen[x.Name] = struct{}{}
		}
	case *Add:
		for _, t := range x.Terms {
			collectSymbols(t, seen)
		}
	case *Mul:
		for _, f := range x.Factors {
			collectSymbols(f, seen)
		}
	case *Pow:
		collectSymbols(x.Base, seen)
		collectSymbols(x.Exp, seen)
	case *Call:
		for _, a := range x.Args {
			collectSymbols(a, seen)
		}
	case *Deriv:
		collectSymbols(x.Expr, seen)
		seen[x.Variable] = struct{}{}
	}
}

// ContainsSymbol reports whether the variable occurs free in the tree.
func ContainsSymbol(e Expr, variable string) bool {
	switch x := e.(type) {
	case *Num:
		return false
	case *Sym:
		return x.Name == variable
	case *Add:
		for _, t := range x.Terms {
			if ContainsSymbol(t, variable) {
				return true
			}
		}
		return false
	case *Mul:
		for _, f := range x.Factors {
			if ContainsSymbol(f, variable) {
				return true
			}
		}
		return false
	case *Pow:
		return ContainsSymbol(x.Base, variable) || ContainsSymbol(x.Exp, variable)
	case *Call:
		for _, a := range x.Args {
			if ContainsSymbol(a, variable) {
				return true
			}
		}
		return false
	case *Deriv:
		return x.Variable == variable || ContainsSymbol(x.Expr, variable)
	}
	return false
}

// IsConstantIn reports whether the tree does not depend on the variable.
func IsConstantIn(e Expr, variable string) bool { return !ContainsSymbol(e, variable) }

// HasPending reports whether the tree contains an unevaluated derivative.
func HasPending(e Expr) bool { return FirstPending(e) != nil }

// FirstPending returns the first unevaluated derivative in preorder, or nil.
func FirstPending(e Expr) *Deriv {
	switch x := e.(type) {
	case *Deriv:
		return x
	case *Add:
		for _, t := range x.Terms {
			if d := FirstPending(t); d != nil {
				return d
			}
		}
	case *Mul:
		for _, f := range x.Factors {
			if d := FirstPending(f); d != nil {
				return d
			}
		}
	case *Pow:
		if d := FirstPending(x.Base); d != nil {
			return d
		}
		return FirstPending(x.Exp)
	case *Call:
		for _, a := range x.Args {
			if d := FirstPending(a); d != nil {
				return d
			}
		}
	}
	return nil
}

// ReplaceFirstPending substitutes the first unevaluated derivative (preorder)
// with the replacement tree. Returns the rewritten tree and whether a
// substitution happened.
func ReplaceFirstPending(e Expr, with Expr) (Expr, bool) {
	switch x := e.(type) {
	case *Deriv:
		return with, true
	case *Add:
		for i, t := range x.Terms {
			if nt, ok := ReplaceFirstPending(t, with); ok {
				terms := make([]Expr, len(x.Terms))
				copy(terms, x.Terms)
				terms[i] = nt
				return AddOf(terms...), true
			}
		}
	case *Mul:
		for i, f := range x.Factors {
			if nf, ok := ReplaceFirstPending(f, with); ok {
				factors := make([]Expr, len(x.Factors))
				copy(factors, x.Factors)
				factors[i] = nf
				return MulOf(factors...), true
			}
		}
	case *Pow:
		if nb, ok := ReplaceFirstPending(x.Base, with); ok {
			return PowOf(nb, x.Exp), true
		}
		if ne, ok := ReplaceFirstPending(x.Exp, with); ok {
			return PowOf(x.Base, ne), true
		}
	case *Call:
		for i, a := range x.Args {
			if na, ok := ReplaceFirstPending(a, with); ok {
				args := make([]Expr, len(x.Args))
				copy(args, x.Args)
				args[i] = na
				return Fn(x.Fn, args...), true
			}
		}
	}
	return e, false
}

// Substitute replaces every free occurrence of the variable with the value.
func Substitute(e Expr, variable string, value Expr) Expr {
	switch x := e.(type) {
	case *Num:
		return x
	case *Sym:
		if x.Name == variable {
			return value
		}
		return x
	case *Add:
		terms := make([]Expr, len(x.Terms))
		for i, t := range x.Terms {
			terms[i] = Substitute(t, variable, value)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(x.Factors))
		for i, f := range x.Factors {
			factors[i] = Substitute(f, variable, value)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(Substitute(x.Base, variable, value), Substitute(x.Exp, variable, value))
	case *Call:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = Substitute(a, variable, value)
		}
		return Fn(x.Fn, args...)
	case *Deriv:
		return DerivOf(Substitute(x.Expr, variable, value), x.Variable, x.Order)
	}
	return e
}
