package symbolic

import (
	"math/big"
	"sort"
)

// maxSimplifyPasses bounds the canonicalization fixpoint loop.
const maxSimplifyPasses = 10

// Simplify canonicalizes an expression: constant folding, like-term and
// like-factor collection, identity removal, and deterministic ordering of
// sums and products. It performs no expansion and no trig rewriting, so the
// pedagogical structure rules build (sums of products, chain factors,
// unevaluated derivatives) survives untouched.
func Simplify(e Expr) Expr {
	cur := e
	for i := 0; i < maxSimplifyPasses; i++ {
		next := simplifyOnce(cur)
		if Equal(next, cur) {
			return next
		}
		cur = next
	}
	return cur
}

func simplifyOnce(e Expr) Expr {
	switch x := e.(type) {
	case *Num, *Sym:
		return e
	case *Add:
		return simplifyAdd(x)
	case *Mul:
		return simplifyMul(x)
	case *Pow:
		return simplifyPow(x)
	case *Call:
		return simplifyCall(x)
	case *Deriv:
		return DerivOf(simplifyOnce(x.Expr), x.Variable, x.Order)
	}
	return e
}

// splitCoeff peels the numeric coefficient off a term, returning the
// coefficient and the remaining factor (nil when the term is pure number).
func splitCoeff(e Expr) (*big.Rat, Expr) {
	switch x := e.(type) {
	case *Num:
		return x.Rat(), nil
	case *Mul:
		coeff := new(big.Rat).SetInt64(1)
		var rest []Expr
		for _, f := range flattenMul(x) {
			if n, ok := f.(*Num); ok {
				coeff.Mul(coeff, n.val)
				continue
			}
			rest = append(rest, f)
		}
		switch len(rest) {
		case 0:
			return coeff, nil
		case 1:
			return coeff, rest[0]
		}
		return coeff, MulOf(rest...)
	}
	return new(big.Rat).SetInt64(1), e
}

// totalDegree is a printing-order heuristic: polynomial-ish terms sort by
// descending degree so x**2 + 2*x + 1 keeps its textbook shape.
func totalDegree(e Expr) int {
	switch x := e.(type) {
	case *Sym:
		if IsConstName(x.Name) {
			return 0
		}
		return 1
	case *Pow:
		if n, ok := x.Exp.(*Num); ok {
			if i, ok := n.Int64(); ok && i > 0 {
				return int(i) * totalDegree(x.Base)
			}
		}
		return totalDegree(x.Base)
	case *Mul:
		d := 0
		for _, f := range x.Factors {
			d += totalDegree(f)
		}
		return d
	}
	return 0
}

func simplifyAdd(a *Add) Expr {
	terms := flattenAdd(a)

	order := make([]string, 0, len(terms))
	buckets := make(map[string]*bucket, len(terms))

	constant := new(big.Rat)
	for _, t := range terms {
		t = simplifyOnce(t)
		if inner, ok := t.(*Add); ok {
			// A child simplification may surface a nested sum.
			for _, it := range flattenAdd(inner) {
				coeff, rest := splitCoeff(it)
				addTermTo(buckets, &order, constant, coeff, rest)
			}
			continue
		}
		coeff, rest := splitCoeff(t)
		addTermTo(buckets, &order, constant, coeff, rest)
	}

	rebuilt := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		b := buckets[key]
		if b.coeff.Sign() == 0 {
			continue
		}
		rebuilt = append(rebuilt, rebuildTerm(b.coeff, b.rest))
	}
	sort.SliceStable(rebuilt, func(i, j int) bool {
		_, ri := splitCoeff(rebuilt[i])
		_, rj := splitCoeff(rebuilt[j])
		di, dj := degreeOfRest(ri), degreeOfRest(rj)
		if di != dj {
			return di > dj
		}
		return restKey(ri) < restKey(rj)
	})
	if constant.Sign() != 0 {
		rebuilt = append(rebuilt, NewNum(constant))
	}

	switch len(rebuilt) {
	case 0:
		return N(0)
	case 1:
		return rebuilt[0]
	}
	return AddOf(rebuilt...)
}

func degreeOfRest(rest Expr) int {
	if rest == nil {
		return 0
	}
	return totalDegree(rest)
}

// restKey orders same-degree terms by their printed text so x**2 + 2*x*y +
// y**2 keeps its textbook shape.
func restKey(rest Expr) string {
	if rest == nil {
		return ""
	}
	return Format(rest)
}

func addTermTo(buckets map[string]*bucket, order *[]string, constant *big.Rat, coeff *big.Rat, rest Expr) {
	if rest == nil {
		constant.Add(constant, coeff)
		return
	}
	key := sortKey(rest)
	if b, ok := buckets[key]; ok {
		b.coeff.Add(b.coeff, coeff)
		return
	}
	buckets[key] = &bucket{coeff: coeff, rest: rest}
	*order = append(*order, key)
}

// bucket accumulates the coefficient of one distinct term shape.
type bucket struct {
	coeff *big.Rat
	rest  Expr
}

func rebuildTerm(coeff *big.Rat, rest Expr) Expr {
	if rest == nil {
		return NewNum(coeff)
	}
	if coeff.Cmp(ratOne) == 0 {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return MulOf(append([]Expr{NewNum(coeff)}, m.Factors...)...)
	}
	return MulOf(NewNum(coeff), rest)
}

func simplifyMul(m *Mul) Expr {
	factors := flattenMul(m)

	coeff := new(big.Rat).SetInt64(1)
	type powBucket struct {
		base Expr
		exps []Expr
	}
	order := make([]string, 0, len(factors))
	buckets := make(map[string]*powBucket, len(factors))

	var add func(f Expr)
	add = func(f Expr) {
		switch x := f.(type) {
		case *Num:
			coeff.Mul(coeff, x.val)
		case *Mul:
			for _, inner := range flattenMul(x) {
				add(inner)
			}
		case *Pow:
			key := sortKey(x.Base)
			if b, ok := buckets[key]; ok {
				b.exps = append(b.exps, x.Exp)
				return
			}
			buckets[key] = &powBucket{base: x.Base, exps: []Expr{x.Exp}}
			order = append(order, key)
		default:
			key := sortKey(f)
			if b, ok := buckets[key]; ok {
				b.exps = append(b.exps, N(1))
				return
			}
			buckets[key] = &powBucket{base: f, exps: []Expr{N(1)}}
			order = append(order, key)
		}
	}
	for _, f := range factors {
		add(simplifyOnce(f))
	}

	if coeff.Sign() == 0 {
		return N(0)
	}

	rebuilt := make([]Expr, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		exp := combineExponents(b.exps)
		if n, ok := exp.(*Num); ok {
			if n.IsZero() {
				continue
			}
			if n.IsOne() {
				rebuilt = append(rebuilt, b.base)
				continue
			}
		}
		rebuilt = append(rebuilt, simplifyPow(PowOf(b.base, exp)))
	}
	sort.SliceStable(rebuilt, func(i, j int) bool {
		return sortKey(rebuilt[i]) < sortKey(rebuilt[j])
	})

	if len(rebuilt) == 0 {
		return NewNum(coeff)
	}
	if coeff.Cmp(ratOne) != 0 {
		rebuilt = append([]Expr{NewNum(coeff)}, rebuilt...)
	}
	if len(rebuilt) == 1 {
		return rebuilt[0]
	}
	return MulOf(rebuilt...)
}

func combineExponents(exps []Expr) Expr {
	if len(exps) == 1 {
		return exps[0]
	}
	allNum := true
	sum := new(big.Rat)
	for _, e := range exps {
		n, ok := e.(*Num)
		if !ok {
			allNum = false
			break
		}
		sum.Add(sum, n.val)
	}
	if allNum {
		return NewNum(sum)
	}
	return simplifyOnce(AddOf(exps...))
}

// maxFoldExponent bounds exact integer power evaluation.
const maxFoldExponent = 64

func simplifyPow(p *Pow) Expr {
	base := simplifyOnce(p.Base)
	exp := simplifyOnce(p.Exp)

	if n, ok := exp.(*Num); ok {
		switch {
		case n.IsZero():
			return N(1)
		case n.IsOne():
			return base
		}
		if bn, ok := base.(*Num); ok {
			if folded, ok := foldNumPow(bn, n); ok {
				return folded
			}
		}
		if bn, ok := base.(*Num); ok && bn.IsZero() && n.IsPositive() {
			return N(0)
		}
		if bn, ok := base.(*Num); ok && bn.IsOne() {
			return N(1)
		}
		// (x**a)**b folds only when both exponents are numeric.
		if inner, ok := base.(*Pow); ok {
			if ie, ok := inner.Exp.(*Num); ok {
				return simplifyPow(PowOf(inner.Base, numMul(ie, n)))
			}
		}
	}
	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	return PowOf(base, exp)
}

// foldNumPow evaluates base**exp exactly for integer exponents and exact
// square roots, declining anything that would explode.
func foldNumPow(base, exp *Num) (Expr, bool) {
	if i, ok := exp.Int64(); ok {
		if i < -maxFoldExponent || i > maxFoldExponent {
			return nil, false
		}
		if i < 0 {
			if base.IsZero() {
				return nil, false
			}
			pos := intPowRat(base.val, -i)
			return NewNum(new(big.Rat).Inv(pos)), true
		}
		return NewNum(intPowRat(base.val, i)), true
	}
	if exp.val.Cmp(big.NewRat(1, 2)) == 0 && !base.IsNegative() {
		if root, ok := exactSqrtRat(base.val); ok {
			return NewNum(root), true
		}
	}
	return nil, false
}

func intPowRat(r *big.Rat, n int64) *big.Rat {
	num := new(big.Int).Exp(r.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(r.Denom(), big.NewInt(n), nil)
	return new(big.Rat).SetFrac(num, den)
}

// exactSqrtRat returns the rational square root when both numerator and
// denominator are perfect squares.
func exactSqrtRat(r *big.Rat) (*big.Rat, bool) {
	sqrtNum := new(big.Int).Sqrt(r.Num())
	sqrtDen := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(sqrtNum, sqrtNum).Cmp(r.Num()) != 0 {
		return nil, false
	}
	if new(big.Int).Mul(sqrtDen, sqrtDen).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(sqrtNum, sqrtDen), true
}

func simplifyCall(c *Call) Expr {
	args := make([]Expr, len(c.Args))
	for i, a := range c.Args {
		args[i] = simplifyOnce(a)
	}

	if len(args) == 1 {
		if folded, ok := foldCallAt(c.Fn, args[0]); ok {
			return folded
		}
	}
	return Fn(c.Fn, args...)
}

// foldCallAt evaluates function calls at the exact points the engine needs
// for clean step output. Anything else stays symbolic.
func foldCallAt(fn string, arg Expr) (Expr, bool) {
	if n, ok := arg.(*Num); ok {
		switch fn {
		case "sin", "tan", "sinh", "tanh", "asin", "atan", "asinh", "atanh", "erf":
			if n.IsZero() {
				return N(0), true
			}
		case "cos", "cosh", "sech":
			if n.IsZero() {
				return N(1), true
			}
		case "exp":
			if n.IsZero() {
				return N(1), true
			}
		case "log":
			if n.IsOne() {
				return N(0), true
			}
		case "Abs":
			r := n.Rat()
			if r.Sign() < 0 {
				r.Neg(r)
			}
			return NewNum(r), true
		case "sign":
			return N(int64(n.val.Sign())), true
		case "floor":
			return NewNum(ratFloor(n.val)), true
		case "ceiling":
			return NewNum(ratCeil(n.val)), true
		}
		return nil, false
	}
	if s, ok := arg.(*Sym); ok && fn == "log" && s.Name == NameEuler {
		return N(1), true
	}
	return nil, false
}

func ratFloor(r *big.Rat) *big.Rat {
	if r.IsInt() {
		return new(big.Rat).Set(r)
	}
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if r.Sign() < 0 {
		q.Sub(q, oneInt)
	}
	return new(big.Rat).SetInt(q)
}

func ratCeil(r *big.Rat) *big.Rat {
	if r.IsInt() {
		return new(big.Rat).Set(r)
	}
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if r.Sign() > 0 {
		q.Add(q, oneInt)
	}
	return new(big.Rat).SetInt(q)
}
