package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/biswajitcsecu/mfem/operators"
)

// Stats reports the outcome of an iterative solve.
type Stats struct {
	Iterations   int
	ResidualNorm float64
	Converged    bool
}

// GMRES is a restarted, left-preconditioned GMRES solver wrapped as an
// operator: Mult(b, x) computes an approximate solution of A x = b. A
// non-converged solve is not an error; the best iterate is returned and the
// outcome is available in LastStats.
type GMRES struct {
	A Operator // system operator
	M Operator // preconditioner, approximate inverse of A; nil for identity

	RelTol     float64
	MaxIter    int
	RestartLen int
	PrintLevel int

	LastStats Stats
}

// Operator aliases the composable operator contract so callers need not
// import the operators package for type declarations alone.
type Operator = operators.Operator

func NewGMRES(a, m Operator, relTol float64, maxIter, restartLen int) (g *GMRES) {
	if a.Height() != a.Width() {
		panic(fmt.Errorf("GMRES requires a square operator, got %dx%d", a.Height(), a.Width()))
	}
	if m != nil && (m.Height() != a.Height() || m.Width() != a.Width()) {
		panic(fmt.Errorf("preconditioner shape %dx%d does not match operator %dx%d",
			m.Height(), m.Width(), a.Height(), a.Width()))
	}
	if restartLen <= 0 {
		restartLen = 30
	}
	g = &GMRES{
		A:          a,
		M:          m,
		RelTol:     relTol,
		MaxIter:    maxIter,
		RestartLen: restartLen,
	}
	return
}

func (g *GMRES) Height() int { return g.A.Height() }
func (g *GMRES) Width() int  { return g.A.Width() }

// Mult solves A x = b starting from x = 0.
func (g *GMRES) Mult(b, x []float64) {
	for i := range x {
		x[i] = 0
	}
	g.LastStats = g.Solve(b, x)
}

func (g *GMRES) MultTranspose(x, y []float64) {
	panic("GMRES does not support transpose application")
}

// applyPrec computes z = M r, or copies when no preconditioner is set.
func (g *GMRES) applyPrec(r, z []float64) {
	if g.M == nil {
		copy(z, r)
		return
	}
	g.M.Mult(r, z)
}

// Solve runs restarted GMRES cycles, updating x in place from its current
// value, and reports iterations and the final preconditioned residual norm.
func (g *GMRES) Solve(b, x []float64) (stats Stats) {
	var (
		n = g.A.Height()
		m = g.RestartLen
	)
	if len(b) != n || len(x) != n {
		panic(fmt.Errorf("GMRES dimension mismatch: n=%d, len(b)=%d, len(x)=%d", n, len(b), len(x)))
	}
	if n == 0 {
		stats.Converged = true
		return
	}
	var (
		r  = make([]float64, n)
		z  = make([]float64, n)
		w  = make([]float64, n)
		V  = make([][]float64, m+1)
		H  = make([][]float64, m+1) // H[i][j], i row (0..m), j col (0..m-1)
		cs = make([]float64, m)
		sn = make([]float64, m)
		s  = make([]float64, m+1)
	)
	for i := range V {
		V[i] = make([]float64, n)
		H[i] = make([]float64, m)
	}

	// Convergence is measured against the preconditioned right-hand side.
	g.applyPrec(b, z)
	bnorm := floats.Norm(z, 2)
	if bnorm == 0 {
		bnorm = 1
	}

	for {
		// r = M (b - A x)
		g.A.Mult(x, w)
		floats.AddScaledTo(r, b, -1, w)
		g.applyPrec(r, z)
		beta := floats.Norm(z, 2)
		stats.ResidualNorm = beta

		if beta/bnorm < g.RelTol {
			stats.Converged = true
			break
		}
		if stats.Iterations >= g.MaxIter {
			break
		}

		copy(V[0], z)
		floats.Scale(1/beta, V[0])
		for i := range s {
			s[i] = 0
		}
		s[0] = beta

		var k int
		for k = 0; k < m && stats.Iterations < g.MaxIter; k++ {
			stats.Iterations++

			// Arnoldi step with modified Gram-Schmidt.
			g.A.Mult(V[k], w)
			g.applyPrec(w, z)
			for i := 0; i <= k; i++ {
				H[i][k] = floats.Dot(z, V[i])
				floats.AddScaled(z, -H[i][k], V[i])
			}
			H[k+1][k] = floats.Norm(z, 2)
			if H[k+1][k] > 0 {
				copy(V[k+1], z)
				floats.Scale(1/H[k+1][k], V[k+1])
			}

			// Apply stored Givens rotations to the new column.
			for i := 0; i < k; i++ {
				t := cs[i]*H[i][k] + sn[i]*H[i+1][k]
				H[i+1][k] = -sn[i]*H[i][k] + cs[i]*H[i+1][k]
				H[i][k] = t
			}
			cs[k], sn[k] = givens(H[k][k], H[k+1][k])
			H[k][k] = cs[k]*H[k][k] + sn[k]*H[k+1][k]
			H[k+1][k] = 0
			s[k+1] = -sn[k] * s[k]
			s[k] = cs[k] * s[k]

			stats.ResidualNorm = math.Abs(s[k+1])
			if g.PrintLevel > 1 {
				fmt.Printf("   GMRES iteration %4d: residual %.6e\n", stats.Iterations, stats.ResidualNorm)
			}
			if stats.ResidualNorm/bnorm < g.RelTol {
				k++
				break
			}
		}

		// Back substitution for the least-squares coefficients, then update x.
		y := make([]float64, k)
		for i := k - 1; i >= 0; i-- {
			y[i] = s[i]
			for j := i + 1; j < k; j++ {
				y[i] -= H[i][j] * y[j]
			}
			y[i] /= H[i][i]
		}
		for i := 0; i < k; i++ {
			floats.AddScaled(x, y[i], V[i])
		}

		if stats.ResidualNorm/bnorm < g.RelTol {
			stats.Converged = true
			break
		}
		if stats.Iterations >= g.MaxIter {
			break
		}
	}

	if g.PrintLevel > 0 {
		if stats.Converged {
			fmt.Printf("GMRES converged in %d iterations, residual %.6e\n",
				stats.Iterations, stats.ResidualNorm)
		} else {
			fmt.Printf("GMRES reached iteration limit %d without convergence, residual %.6e\n",
				g.MaxIter, stats.ResidualNorm)
		}
	}
	return
}

func givens(a, b float64) (c, s float64) {
	if b == 0 {
		return 1, 0
	}
	if math.Abs(b) > math.Abs(a) {
		t := a / b
		s = 1 / math.Sqrt(1+t*t)
		c = s * t
		return
	}
	t := b / a
	c = 1 / math.Sqrt(1+t*t)
	s = c * t
	return
}
