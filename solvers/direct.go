package solvers

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/biswajitcsecu/mfem/utils"
)

// ErrSingular reports a failed factorization.
var ErrSingular = errors.New("matrix factorization failed: singular or near-singular matrix")

// condLimit is the condition-number threshold beyond which a factorization
// is rejected as numerically singular.
const condLimit = 1e16

// DirectSolver factors a sparse matrix once and applies its inverse as an
// operator. It stands in for the distributed sparse direct solver: factor at
// construction, solve on every Mult.
type DirectSolver struct {
	lu *mat.LU
	n  int
}

func NewDirectSolver(a utils.CSR) (d *DirectSolver, err error) {
	var (
		nr, nc = a.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("cannot factor a %dx%d matrix: not square", nr, nc)
		return
	}
	lu := &mat.LU{}
	lu.Factorize(a.ToDense().M)
	if cond := lu.Cond(); cond > condLimit {
		err = fmt.Errorf("%w (condition number %g)", ErrSingular, cond)
		return
	}
	d = &DirectSolver{lu: lu, n: nr}
	return
}

func (d *DirectSolver) Height() int { return d.n }
func (d *DirectSolver) Width() int  { return d.n }

// Mult solves A y = x using the stored factorization.
func (d *DirectSolver) Mult(x, y []float64) {
	d.solve(x, y, false)
}

// MultTranspose solves A^T y = x using the stored factorization.
func (d *DirectSolver) MultTranspose(x, y []float64) {
	d.solve(x, y, true)
}

func (d *DirectSolver) solve(x, y []float64, trans bool) {
	if len(x) != d.n || len(y) != d.n {
		panic(fmt.Errorf("direct solve dimension mismatch: n=%d, len(x)=%d, len(y)=%d", d.n, len(x), len(y)))
	}
	var (
		b   = mat.NewVecDense(d.n, x)
		dst = mat.NewVecDense(d.n, y)
	)
	if err := d.lu.SolveVecTo(dst, trans, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			// Ill-conditioning below the construction-time limit is reported
			// by gonum as a warning error; the solution is still usable.
			return
		}
		// The factorization was validated at construction; anything else is
		// a programming error, not a recoverable condition.
		panic(fmt.Errorf("direct solve failed after successful factorization: %w", err))
	}
}
