package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparse(t *testing.T) {
	{ // assembly then application
		d := NewDOK(3, 2)
		d.Set(0, 0, 2)
		d.Accumulate(0, 0, 1) // 3
		d.Set(1, 1, 4)
		d.Set(2, 0, -1)
		A := d.ToCSR()

		y := make([]float64, 3)
		A.MulVec([]float64{1, 2}, y)
		assert.Equal(t, []float64{3, 8, -1}, y)

		x := make([]float64, 2)
		A.MulVecTranspose([]float64{1, 1, 1}, x)
		assert.Equal(t, []float64{2, 4}, x)

		D := A.ToDense()
		assert.Equal(t, 3.0, D.At(0, 0))
		assert.Equal(t, 0.0, D.At(1, 0))
	}
	{ // read-only enforcement
		d := NewDOK(2, 2)
		d.Set(0, 0, 1)
		d.SetReadOnly("locked")
		assert.Panics(t, func() { d.Set(1, 1, 1) })
		assert.Panics(t, func() { d.Accumulate(0, 0, 1) })
	}
	{ // dimension checks
		d := NewDOK(2, 2)
		A := d.ToCSR()
		assert.Panics(t, func() { A.MulVec(make([]float64, 3), make([]float64, 2)) })
	}
}
