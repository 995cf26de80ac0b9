package operators

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/biswajitcsecu/mfem/utils"
)

// Operator is the composable linear-operator contract. Composite operators
// reference their operands without owning them; whoever constructs a
// composition is responsible for keeping the operands alive for its lifetime.
// Operators carry internal scratch storage and are not safe for concurrent
// Mult calls.
type Operator interface {
	Height() int
	Width() int
	Mult(x, y []float64)          // y = A x
	MultTranspose(x, y []float64) // y = A^T x
}

func checkMult(op Operator, x, y []float64) {
	if len(x) != op.Width() || len(y) != op.Height() {
		panic(fmt.Errorf("operator application mismatch: %dx%d applied to len(x)=%d, len(y)=%d",
			op.Height(), op.Width(), len(x), len(y)))
	}
}

func checkMultTranspose(op Operator, x, y []float64) {
	if len(x) != op.Height() || len(y) != op.Width() {
		panic(fmt.Errorf("transpose application mismatch: %dx%d applied to len(x)=%d, len(y)=%d",
			op.Height(), op.Width(), len(x), len(y)))
	}
}

// Identity is the n x n identity.
type Identity struct {
	N int
}

func NewIdentity(n int) *Identity { return &Identity{N: n} }

func (op *Identity) Height() int { return op.N }
func (op *Identity) Width() int  { return op.N }
func (op *Identity) Mult(x, y []float64) {
	checkMult(op, x, y)
	copy(y, x)
}
func (op *Identity) MultTranspose(x, y []float64) { op.Mult(x, y) }

// Scaled applies c*A.
type Scaled struct {
	A Operator
	C float64
}

func NewScaled(a Operator, c float64) *Scaled { return &Scaled{A: a, C: c} }

func (op *Scaled) Height() int { return op.A.Height() }
func (op *Scaled) Width() int  { return op.A.Width() }
func (op *Scaled) Mult(x, y []float64) {
	op.A.Mult(x, y)
	floats.Scale(op.C, y)
}
func (op *Scaled) MultTranspose(x, y []float64) {
	op.A.MultTranspose(x, y)
	floats.Scale(op.C, y)
}

// Sum applies cA*A(x) + cB*B(x).
type Sum struct {
	A, B   Operator
	CA, CB float64
	work   []float64
	workT  []float64
}

func NewSum(a, b Operator, cA, cB float64) (op *Sum) {
	if a.Height() != b.Height() || a.Width() != b.Width() {
		panic(fmt.Errorf("cannot sum operators of different shape: %dx%d vs %dx%d",
			a.Height(), a.Width(), b.Height(), b.Width()))
	}
	op = &Sum{
		A: a, B: b, CA: cA, CB: cB,
		work:  make([]float64, a.Height()),
		workT: make([]float64, a.Width()),
	}
	return
}

func (op *Sum) Height() int { return op.A.Height() }
func (op *Sum) Width() int  { return op.A.Width() }
func (op *Sum) Mult(x, y []float64) {
	checkMult(op, x, y)
	op.A.Mult(x, y)
	op.B.Mult(x, op.work)
	for i := range y {
		y[i] = op.CA*y[i] + op.CB*op.work[i]
	}
}
func (op *Sum) MultTranspose(x, y []float64) {
	checkMultTranspose(op, x, y)
	op.A.MultTranspose(x, y)
	op.B.MultTranspose(x, op.workT)
	for i := range y {
		y[i] = op.CA*y[i] + op.CB*op.workT[i]
	}
}

// Product applies A(B(x)).
type Product struct {
	A, B Operator
	work []float64
}

func NewProduct(a, b Operator) (op *Product) {
	if a.Width() != b.Height() {
		panic(fmt.Errorf("cannot compose operators: A is %dx%d, B is %dx%d",
			a.Height(), a.Width(), b.Height(), b.Width()))
	}
	op = &Product{A: a, B: b, work: make([]float64, b.Height())}
	return
}

func (op *Product) Height() int { return op.A.Height() }
func (op *Product) Width() int  { return op.B.Width() }
func (op *Product) Mult(x, y []float64) {
	checkMult(op, x, y)
	op.B.Mult(x, op.work)
	op.A.Mult(op.work, y)
}
func (op *Product) MultTranspose(x, y []float64) {
	checkMultTranspose(op, x, y)
	op.A.MultTranspose(x, op.work)
	op.B.MultTranspose(op.work, y)
}

// TripleProduct applies A(B(C(x))).
type TripleProduct struct {
	A, B, C Operator
	w1, w2  []float64
}

func NewTripleProduct(a, b, c Operator) (op *TripleProduct) {
	if b.Width() != c.Height() || a.Width() != b.Height() {
		panic(fmt.Errorf("cannot compose operators: A is %dx%d, B is %dx%d, C is %dx%d",
			a.Height(), a.Width(), b.Height(), b.Width(), c.Height(), c.Width()))
	}
	op = &TripleProduct{
		A: a, B: b, C: c,
		w1: make([]float64, c.Height()),
		w2: make([]float64, b.Height()),
	}
	return
}

func (op *TripleProduct) Height() int { return op.A.Height() }
func (op *TripleProduct) Width() int  { return op.C.Width() }
func (op *TripleProduct) Mult(x, y []float64) {
	checkMult(op, x, y)
	op.C.Mult(x, op.w1)
	op.B.Mult(op.w1, op.w2)
	op.A.Mult(op.w2, y)
}
func (op *TripleProduct) MultTranspose(x, y []float64) {
	checkMultTranspose(op, x, y)
	op.A.MultTranspose(x, op.w2)
	op.B.MultTranspose(op.w2, op.w1)
	op.C.MultTranspose(op.w1, y)
}

// Transpose wraps A as A^T.
type Transpose struct {
	A Operator
}

func NewTranspose(a Operator) *Transpose { return &Transpose{A: a} }

func (op *Transpose) Height() int                  { return op.A.Width() }
func (op *Transpose) Width() int                   { return op.A.Height() }
func (op *Transpose) Mult(x, y []float64)          { op.A.MultTranspose(x, y) }
func (op *Transpose) MultTranspose(x, y []float64) { op.A.Mult(x, y) }

// MatrixOperator wraps an assembled sparse matrix as an operator leaf.
type MatrixOperator struct {
	M utils.CSR
}

func NewMatrixOperator(m utils.CSR) *MatrixOperator { return &MatrixOperator{M: m} }

func (op *MatrixOperator) Height() int { nr, _ := op.M.Dims(); return nr }
func (op *MatrixOperator) Width() int  { _, nc := op.M.Dims(); return nc }
func (op *MatrixOperator) Mult(x, y []float64) {
	op.M.MulVec(x, y)
}
func (op *MatrixOperator) MultTranspose(x, y []float64) {
	op.M.MulVecTranspose(x, y)
}
