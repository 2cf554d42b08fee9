package symbolic

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Matrix is a dense rectangular matrix of expressions. Numeric entries are
// exact rationals; string entries from the JSON form parse into symbolic
// trees.
type Matrix struct {
	rows, cols int
	data       [][]Expr
}

// NewMatrix builds a matrix from rows of expressions.
func NewMatrix(data [][]Expr) (*Matrix, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, domain.InputErrorf("matrix must have at least one row and one column")
	}
	cols := len(data[0])
	for _, row := range data {
		if len(row) != cols {
			return nil, domain.InputErrorf("matrix rows must all have the same length")
		}
	}
	return &Matrix{rows: len(data), cols: cols, data: data}, nil
}

// Identity returns the n by n identity matrix.
func Identity(n int) *Matrix {
	data := make([][]Expr, n)
	for i := range data {
		data[i] = make([]Expr, n)
		for j := range data[i] {
			if i == j {
				data[i][j] = N(1)
			} else {
				data[i][j] = N(0)
			}
		}
	}
	return &Matrix{rows: n, cols: n, data: data}
}

func (m *Matrix) Rows() int     { return m.rows }
func (m *Matrix) Cols() int     { return m.cols }
func (m *Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) Expr { return m.data[i][j] }

func (m *Matrix) clone() *Matrix {
	data := make([][]Expr, m.rows)
	for i := range data {
		data[i] = make([]Expr, m.cols)
		copy(data[i], m.data[i])
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// ParseMatrix reads a matrix from its JSON array form. Numeric entries stay
// exact; string entries parse as expressions:
//
//	[[1, 2], [3, 4]]
//	[["a", "b"], ["c", "d"]]
//	[[1, "2*a"], [0.5, "b"]]
func ParseMatrix(text string) (*Matrix, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var raw [][]any
	if err := dec.Decode(&raw); err != nil {
		return nil, domain.InputErrorf("could not parse matrix: %s", text)
	}
	if len(raw) == 0 {
		return nil, domain.InputErrorf("could not parse matrix: %s", text)
	}
	data := make([][]Expr, len(raw))
	for i, row := range raw {
		data[i] = make([]Expr, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case json.Number:
				r, ok := new(big.Rat).SetString(v.String())
				if !ok {
					return nil, domain.InputErrorf("could not parse matrix entry %q", v.String())
				}
				data[i][j] = NewNum(r)
			case string:
				e, err := Parse(v)
				if err != nil {
					return nil, err
				}
				data[i][j] = Simplify(e)
			default:
				return nil, domain.InputErrorf("matrix entries must be numbers or expression strings")
			}
		}
	}
	return NewMatrix(data)
}

// Format renders the matrix back to its JSON array form. Integer entries
// print as integers, other rationals as decimal floats, and symbolic entries
// as quoted expression strings.
func (m *Matrix) Format() string {
	rows := make([]json.RawMessage, m.rows)
	for i := range m.data {
		cells := make([]json.RawMessage, m.cols)
		for j, e := range m.data[i] {
			cells[j] = entryJSON(e)
		}
		row, _ := json.Marshal(cells)
		rows[i] = row
	}
	out, _ := json.Marshal(rows)
	return string(out)
}

// EntryValue converts an entry to a JSON-friendly value for structured
// outputs: int64 or float64 for numbers, expression string otherwise.
func EntryValue(e Expr) any {
	if n, ok := e.(*Num); ok {
		if n.IsInteger() {
			if i, ok := n.Int64(); ok {
				return i
			}
		}
		f, _ := n.Rat().Float64()
		return f
	}
	return Format(e)
}

func entryJSON(e Expr) json.RawMessage {
	switch v := EntryValue(e).(type) {
	case int64:
		return json.RawMessage(strconv.FormatInt(v, 10))
	case float64:
		return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		out, _ := json.Marshal(v)
		return out
	}
}

// IsNumeric reports whether every entry is a literal rational, i.e. the
// matrix carries no symbolic entries.
func (m *Matrix) IsNumeric() bool {
	_, ok := m.rational()
	return ok
}

// zero-test for pivoting: only literal numeric zeros count, symbolic entries
// are assumed nonzero as in the generic case.
func entryIsZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

func entryIsOne(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsOne()
}

// Mul multiplies m by other, entry by entry dot products.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, domain.DimensionErrorf(m.rows, m.cols, other.rows, other.cols)
	}
	data := make([][]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		data[i] = make([]Expr, other.cols)
		for j := 0; j < other.cols; j++ {
			terms := make([]Expr, m.cols)
			for k := 0; k < m.cols; k++ {
				terms[k] = MulOf(m.data[i][k], other.data[k][j])
			}
			data[i][j] = Simplify(AddOf(terms...))
		}
	}
	return NewMatrix(data)
}

// Scale multiplies every entry by e.
func (m *Matrix) Scale(e Expr) *Matrix {
	out := m.clone()
	for i := range out.data {
		for j := range out.data[i] {
			out.data[i][j] = Simplify(MulOf(e, out.data[i][j]))
		}
	}
	return out
}

// Transpose returns the transpose.
func (m *Matrix) Transpose() *Matrix {
	data := make([][]Expr, m.cols)
	for i := range data {
		data[i] = make([]Expr, m.rows)
		for j := range data[i] {
			data[i][j] = m.data[j][i]
		}
	}
	return &Matrix{rows: m.cols, cols: m.rows, data: data}
}

// Minor returns the submatrix with row i and column j removed.
func (m *Matrix) Minor(i, j int) *Matrix {
	data := make([][]Expr, 0, m.rows-1)
	for r := 0; r < m.rows; r++ {
		if r == i {
			continue
		}
		row := make([]Expr, 0, m.cols-1)
		for c := 0; c < m.cols; c++ {
			if c == j {
				continue
			}
			row = append(row, m.data[r][c])
		}
		data = append(data, row)
	}
	return &Matrix{rows: m.rows - 1, cols: m.cols - 1, data: data}
}

// Det computes the determinant by cofactor expansion along the first row.
func (m *Matrix) Det() (Expr, error) {
	if !m.IsSquare() {
		return nil, domain.NotSquareErrorf("determinant", m.rows, m.cols)
	}
	return Simplify(m.det()), nil
}

func (m *Matrix) det() Expr {
	switch m.rows {
	case 1:
		return m.data[0][0]
	case 2:
		return Simplify(Sub(
			MulOf(m.data[0][0], m.data[1][1]),
			MulOf(m.data[0][1], m.data[1][0]),
		))
	}
	terms := make([]Expr, m.cols)
	for j := 0; j < m.cols; j++ {
		cof := MulOf(m.data[0][j], m.Minor(0, j).det())
		if j%2 == 1 {
			cof = MulOf(N(-1), cof)
		}
		terms[j] = cof
	}
	return Simplify(AddOf(terms...))
}

// Cofactor returns (-1)^(i+j) times the minor determinant.
func (m *Matrix) Cofactor(i, j int) Expr {
	c := m.Minor(i, j).det()
	if (i+j)%2 == 1 {
		c = Simplify(MulOf(N(-1), c))
	}
	return c
}

// Adjugate returns the transpose of the cofactor matrix.
func (m *Matrix) Adjugate() *Matrix {
	data := make([][]Expr, m.rows)
	for i := range data {
		data[i] = make([]Expr, m.cols)
		for j := range data[i] {
			data[i][j] = m.Cofactor(j, i)
		}
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// Inverse computes the inverse via the adjugate. Fails on singular matrices.
func (m *Matrix) Inverse() (*Matrix, error) {
	if !m.IsSquare() {
		return nil, domain.NotSquareErrorf("matrix inverse", m.rows, m.cols)
	}
	det := Simplify(m.det())
	if entryIsZero(det) {
		return nil, domain.SingularMatrixError()
	}
	return m.Adjugate().Scale(Simplify(Div(N(1), det))), nil
}

// RowOpKind tags a recorded row operation.
type RowOpKind int

const (
	RowSwap RowOpKind = iota
	RowScale
	RowEliminate
)

// RowOp is one recorded row operation from a reduction, with the matrix
// state after it was applied.
type RowOp struct {
	Kind   RowOpKind
	Row    int
	Other  int
	Col    int
	Factor Expr
	After  *Matrix
}

// RREF reduces the matrix to reduced row echelon form with Gauss-Jordan
// elimination, recording every row operation along the way.
func (m *Matrix) RREF() (*Matrix, []RowOp) {
	r := m.clone()
	var ops []RowOp
	current := 0
	for col := 0; col < r.cols && current < r.rows; col++ {
		pivot := -1
		for row := current; row < r.rows; row++ {
			if !entryIsZero(r.data[row][col]) {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			continue
		}
		if pivot != current {
			r.data[current], r.data[pivot] = r.data[pivot], r.data[current]
			ops = append(ops, RowOp{Kind: RowSwap, Row: current, Other: pivot, Col: col, After: r.clone()})
		}
		if !entryIsOne(r.data[current][col]) {
			pv := r.data[current][col]
			for j := 0; j < r.cols; j++ {
				r.data[current][j] = Simplify(Div(r.data[current][j], pv))
			}
			ops = append(ops, RowOp{Kind: RowScale, Row: current, Col: col, Factor: pv, After: r.clone()})
		}
		for row := 0; row < r.rows; row++ {
			if row == current || entryIsZero(r.data[row][col]) {
				continue
			}
			factor := r.data[row][col]
			for j := 0; j < r.cols; j++ {
				r.data[row][j] = Simplify(Sub(r.data[row][j], MulOf(factor, r.data[current][j])))
			}
			ops = append(ops, RowOp{Kind: RowEliminate, Row: row, Other: current, Col: col, Factor: factor, After: r.clone()})
		}
		current++
	}
	return r, ops
}

// LU decomposes the matrix as PA = LU, swapping rows only when a pivot is
// zero.
func (m *Matrix) LU() (p, l, u *Matrix, err error) {
	if !m.IsSquare() {
		return nil, nil, nil, domain.NotSquareErrorf("lu decomposition", m.rows, m.cols)
	}
	n := m.rows
	u = m.clone()
	l = Identity(n)
	p = Identity(n)
	for k := 0; k < n; k++ {
		if entryIsZero(u.data[k][k]) {
			swap := -1
			for row := k + 1; row < n; row++ {
				if !entryIsZero(u.data[row][k]) {
					swap = row
					break
				}
			}
			if swap < 0 {
				continue
			}
			u.data[k], u.data[swap] = u.data[swap], u.data[k]
			p.data[k], p.data[swap] = p.data[swap], p.data[k]
			for j := 0; j < k; j++ {
				l.data[k][j], l.data[swap][j] = l.data[swap][j], l.data[k][j]
			}
		}
		for row := k + 1; row < n; row++ {
			if entryIsZero(u.data[row][k]) {
				continue
			}
			factor := Simplify(Div(u.data[row][k], u.data[k][k]))
			l.data[row][k] = factor
			for j := 0; j < n; j++ {
				u.data[row][j] = Simplify(Sub(u.data[row][j], MulOf(factor, u.data[k][j])))
			}
		}
	}
	return p, l, u, nil
}
