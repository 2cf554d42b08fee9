package symbolic

import (
	"math"
	"math/big"
	"sort"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Eigenpair couples one eigenvalue with its algebraic multiplicity and a
// basis for its eigenspace. Vectors are column matrices.
type Eigenpair struct {
	Value        Expr
	Approx       float64
	Multiplicity int
	Vectors      []*Matrix
}

// Eigen computes the real eigenvalues and eigenvectors of a numeric square
// matrix with exact arithmetic: rational roots come from the rational root
// theorem, and a leftover quadratic factor yields exact square-root forms.
func (m *Matrix) Eigen() ([]Eigenpair, error) {
	if !m.IsSquare() {
		return nil, domain.NotSquareErrorf("eigenvalues", m.rows, m.cols)
	}
	rat, ok := m.rational()
	if !ok {
		return nil, domain.InputErrorf("eigenvalues require a numeric matrix")
	}
	coeffs, err := m.charpoly()
	if err != nil {
		return nil, err
	}

	roots, quad, err := solvePoly(coeffs)
	if err != nil {
		return nil, err
	}

	var pairs []Eigenpair
	for _, r := range roots {
		f, _ := r.value.Float64()
		pairs = append(pairs, Eigenpair{
			Value:        NewNum(r.value),
			Approx:       f,
			Multiplicity: r.multiplicity,
			Vectors:      nullspaceVectors(rat, r.value),
		})
	}
	if quad != nil {
		lo, hi, err := quad.roots()
		if err != nil {
			return nil, err
		}
		for _, root := range []quadRoot{lo, hi} {
			pairs = append(pairs, Eigenpair{
				Value:        root.expr,
				Approx:       root.approx,
				Multiplicity: 1,
				Vectors:      m.irrationalVectors(root.expr),
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Approx < pairs[j].Approx })
	return pairs, nil
}

// rational extracts the matrix entries as exact rationals, failing when any
// entry is symbolic.
func (m *Matrix) rational() ([][]*big.Rat, bool) {
	out := make([][]*big.Rat, m.rows)
	for i := range m.data {
		out[i] = make([]*big.Rat, m.cols)
		for j, e := range m.data[i] {
			n, ok := e.(*Num)
			if !ok {
				return nil, false
			}
			out[i][j] = n.Rat()
		}
	}
	return out, true
}

// charpoly returns the coefficients of det(A - x*I) indexed by degree.
func (m *Matrix) charpoly() ([]*big.Rat, error) {
	x := S("lambda")
	data := make([][]Expr, m.rows)
	for i := range data {
		data[i] = make([]Expr, m.cols)
		for j := range data[i] {
			if i == j {
				data[i][j] = Simplify(Sub(m.data[i][j], x))
			} else {
				data[i][j] = m.data[i][j]
			}
		}
	}
	shifted := &Matrix{rows: m.rows, cols: m.cols, data: data}
	// Expansion flattens the determinant into monomials in lambda, so each
	// term below is coeff * lambda**k.
	p := ExpandExpr(shifted.det())

	coeffs := make([]*big.Rat, m.rows+1)
	for i := range coeffs {
		coeffs[i] = new(big.Rat)
	}
	terms := []Expr{p}
	if a, ok := p.(*Add); ok {
		terms = flattenAdd(a)
	}
	for _, t := range terms {
		coeff, rest := splitCoeff(t)
		deg := 0
		switch r := rest.(type) {
		case nil:
		case *Sym:
			deg = 1
		case *Pow:
			n, ok := r.Exp.(*Num)
			if _, sym := r.Base.(*Sym); !ok || !sym {
				return nil, domain.InputErrorf("eigenvalues require a numeric matrix")
			}
			k, _ := n.Int64()
			deg = int(k)
		default:
			return nil, domain.InputErrorf("eigenvalues require a numeric matrix")
		}
		coeffs[deg].Add(coeffs[deg], coeff)
	}
	return coeffs, nil
}

type ratRoot struct {
	value        *big.Rat
	multiplicity int
}

// quadPoly is an unfactored quadratic a*x^2 + b*x + c left after rational
// root extraction.
type quadPoly struct{ a, b, c *big.Rat }

type quadRoot struct {
	expr   Expr
	approx float64
}

// roots solves the quadratic exactly, returning square-root forms for
// irrational real roots.
func (q *quadPoly) roots() (quadRoot, quadRoot, error) {
	disc := new(big.Rat).Mul(q.b, q.b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(q.a, q.c)))
	if disc.Sign() < 0 {
		return quadRoot{}, quadRoot{}, domain.InputErrorf("matrix has complex eigenvalues; only real eigenvalues are supported")
	}
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), q.a)
	negB := new(big.Rat).Neg(q.b)

	df, _ := disc.Float64()
	bf, _ := negB.Float64()
	af, _ := twoA.Float64()
	sq := math.Sqrt(df)

	lo := quadRoot{
		expr:   Simplify(Div(Sub(NewNum(negB), Sqrt(NewNum(disc))), NewNum(twoA))),
		approx: (bf - sq) / af,
	}
	hi := quadRoot{
		expr:   Simplify(Div(AddOf(NewNum(negB), Sqrt(NewNum(disc))), NewNum(twoA))),
		approx: (bf + sq) / af,
	}
	if lo.approx > hi.approx {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

// solvePoly peels rational roots off the polynomial and returns them with
// multiplicities, plus any leftover irreducible quadratic. Higher-degree
// irreducible leftovers are out of reach for exact arithmetic.
func solvePoly(coeffs []*big.Rat) ([]ratRoot, *quadPoly, error) {
	cur := trimPoly(coeffs)
	found := map[string]*ratRoot{}
	var order []string

	record := func(root *big.Rat) {
		key := root.RatString()
		if r, seen := found[key]; seen {
			r.multiplicity++
			return
		}
		found[key] = &ratRoot{value: root, multiplicity: 1}
		order = append(order, key)
	}

	for len(cur) > 2 {
		root, ok := findRationalRoot(cur)
		if !ok {
			break
		}
		record(root)
		cur = deflate(cur, root)
	}

	var quad *quadPoly
	switch len(cur) {
	case 0, 1:
	case 2:
		record(new(big.Rat).Quo(new(big.Rat).Neg(cur[0]), cur[1]))
	case 3:
		quad = &quadPoly{a: cur[2], b: cur[1], c: cur[0]}
	default:
		return nil, nil, domain.InputErrorf("cannot determine exact eigenvalues for this matrix")
	}

	roots := make([]ratRoot, 0, len(order))
	for _, key := range order {
		roots = append(roots, *found[key])
	}
	return roots, quad, nil
}

func trimPoly(coeffs []*big.Rat) []*big.Rat {
	end := len(coeffs)
	for end > 0 && coeffs[end-1].Sign() == 0 {
		end--
	}
	return coeffs[:end]
}

// findRationalRoot scans rational root theorem candidates of an
// integer-scaled copy of the polynomial.
func findRationalRoot(coeffs []*big.Rat) (*big.Rat, bool) {
	if len(coeffs) < 2 {
		return nil, false
	}
	// Zero constant term means zero is a root.
	if coeffs[0].Sign() == 0 {
		return new(big.Rat), true
	}

	// Scale to integer coefficients.
	lcm := big.NewInt(1)
	for _, c := range coeffs {
		g := new(big.Int).GCD(nil, nil, lcm, c.Denom())
		lcm.Div(new(big.Int).Mul(lcm, c.Denom()), g)
	}
	ints := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		scaled := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		ints[i] = new(big.Int).Set(scaled.Num())
	}

	ps := divisors(ints[0])
	qs := divisors(ints[len(ints)-1])
	seen := map[string]struct{}{}
	var candidates []*big.Rat
	for _, p := range ps {
		for _, q := range qs {
			for _, sign := range []int64{1, -1} {
				c := new(big.Rat).SetFrac(new(big.Int).Mul(p, big.NewInt(sign)), q)
				key := c.RatString()
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				candidates = append(candidates, c)
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Cmp(candidates[j]) < 0 })

	for _, c := range candidates {
		if evalPoly(coeffs, c).Sign() == 0 {
			return c, true
		}
	}
	return nil, false
}

func divisors(n *big.Int) []*big.Int {
	abs := new(big.Int).Abs(n)
	if !abs.IsInt64() {
		// Coefficients this large fall back to an empty candidate set.
		return nil
	}
	v := abs.Int64()
	if v == 0 {
		return []*big.Int{big.NewInt(1)}
	}
	var out []*big.Int
	for d := int64(1); d*d <= v; d++ {
		if v%d != 0 {
			continue
		}
		out = append(out, big.NewInt(d))
		if other := v / d; other != d {
			out = append(out, big.NewInt(other))
		}
	}
	return out
}

func evalPoly(coeffs []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, coeffs[i])
	}
	return acc
}

// deflate divides the polynomial by (x - root) with synthetic division.
func deflate(coeffs []*big.Rat, root *big.Rat) []*big.Rat {
	d := len(coeffs) - 1
	out := make([]*big.Rat, d)
	out[d-1] = new(big.Rat).Set(coeffs[d])
	for i := d - 2; i >= 0; i-- {
		out[i] = new(big.Rat).Add(coeffs[i+1], new(big.Rat).Mul(root, out[i+1]))
	}
	return out
}

// nullspaceVectors returns a basis for the kernel of A - lambda*I, one column
// matrix per free variable.
func nullspaceVectors(a [][]*big.Rat, lambda *big.Rat) []*Matrix {
	n := len(a)
	data := make([][]Expr, n)
	for i := range data {
		data[i] = make([]Expr, n)
		for j := range data[i] {
			v := new(big.Rat).Set(a[i][j])
			if i == j {
				v.Sub(v, lambda)
			}
			data[i][j] = NewNum(v)
		}
	}
	shifted := &Matrix{rows: n, cols: n, data: data}
	r, _ := shifted.RREF()

	pivotOfCol := make([]int, n)
	for j := range pivotOfCol {
		pivotOfCol[j] = -1
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !entryIsZero(r.data[i][j]) {
				pivotOfCol[j] = i
				break
			}
		}
	}

	var out []*Matrix
	for free := 0; free < n; free++ {
		if pivotOfCol[free] >= 0 {
			continue
		}
		col := make([][]Expr, n)
		for j := 0; j < n; j++ {
			switch {
			case j == free:
				col[j] = []Expr{N(1)}
			case pivotOfCol[j] >= 0:
				col[j] = []Expr{Simplify(Neg(r.data[pivotOfCol[j]][free]))}
			default:
				col[j] = []Expr{N(0)}
			}
		}
		out = append(out, &Matrix{rows: n, cols: 1, data: col})
	}
	return out
}

// irrationalVectors builds the eigenvector for a square-root form eigenvalue.
// Only the 2x2 closed form is available; larger matrices with irrational
// eigenvalues report the value without a vector.
func (m *Matrix) irrationalVectors(lambda Expr) []*Matrix {
	if m.rows != 2 {
		return nil
	}
	a, b := m.data[0][0], m.data[0][1]
	c, d := m.data[1][0], m.data[1][1]
	if !entryIsZero(b) {
		return []*Matrix{{rows: 2, cols: 1, data: [][]Expr{
			{b},
			{Simplify(Sub(lambda, a))},
		}}}
	}
	if !entryIsZero(c) {
		return []*Matrix{{rows: 2, cols: 1, data: [][]Expr{
			{Simplify(Sub(lambda, d))},
			{c},
		}}}
	}
	return nil
}
