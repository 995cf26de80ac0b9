package ddcouple

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biswajitcsecu/mfem/InputParameters"
	"github.com/biswajitcsecu/mfem/fespace"
	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/operators"
	"github.com/biswajitcsecu/mfem/utils"
)

// toDense applies a to the standard basis, column by column.
func toDense(a operators.Operator) (d [][]float64) {
	var (
		x = make([]float64, a.Width())
	)
	d = make([][]float64, a.Height())
	for i := range d {
		d[i] = make([]float64, a.Width())
	}
	for j := 0; j < a.Width(); j++ {
		x[j] = 1
		y := make([]float64, a.Height())
		a.Mult(x, y)
		for i := range y {
			d[i][j] = y[i]
		}
		x[j] = 0
	}
	return
}

func near(a, b float64) (l bool) {
	if math.Abs(a-b) < 1.e-08*(math.Abs(a)+1) {
		l = true
	}
	return
}

// twoBoxes builds the split 2x1x1 box: subdomain attributes 1 and 2 meeting
// at the x=1 plane.
func twoBoxes(t *testing.T) *mesh.Mesh {
	m, err := mesh.NewCartesianHex(2, 1, 1, 0, 2, 0, 1, 0, 1)
	assert.NoError(t, err)
	m.SetAttributesBy(func(c [3]float64) int {
		if c[0] < 1 {
			return 1
		}
		return 2
	})
	return m
}

func TestSetInjection(t *testing.T) {
	{
		s := NewSetInjection(5, utils.Index{4, 0, 2})
		assert.Equal(t, 5, s.Height())
		assert.Equal(t, 3, s.Width())

		y := make([]float64, 5)
		s.Mult([]float64{1, 2, 3}, y)
		assert.Equal(t, []float64{2, 0, 3, 0, 1}, y)

		x := make([]float64, 3)
		s.MultTranspose(y, x)
		assert.Equal(t, []float64{1, 2, 3}, x)

		// scatter(gather(v)) keeps the indexed entries and zeroes the rest
		v := []float64{5, 6, 7, 8, 9}
		g := make([]float64, 3)
		s.MultTranspose(v, g)
		w := make([]float64, 5)
		s.Mult(g, w)
		assert.Equal(t, []float64{5, 0, 7, 0, 9}, w)
	}
	{
		assert.Panics(t, func() { NewSetInjection(2, utils.Index{0, 1, 2}) })
		assert.Panics(t, func() { NewSetInjection(3, utils.Index{0, 3}) })
	}
}

func TestCorrespondence(t *testing.T) {
	var (
		parent = twoBoxes(t)
		faces  = mesh.InterfaceFaces(parent, 1, 2)
	)
	ifm, err := mesh.ExtractInterface(parent, faces)
	assert.NoError(t, err)
	sdm, err := mesh.ExtractSubdomain(parent, 2)
	assert.NoError(t, err)

	{ // edge-space correspondence is complete and injective
		var (
			ifs = fespace.NewSpace(ifm, fespace.NewNedelec(1))
			sds = fespace.NewSpace(sdm, fespace.NewNedelec(1))
		)
		dm, err := InterfaceToSurfaceDofMap(ifs, sds, parent, faces, 2, true, mesh.DefaultVertexTol)
		assert.NoError(t, err)
		assert.Equal(t, 4, dm.Len())
		assert.Equal(t, 4, dm.NumSet())
		seen := make(map[int]bool)
		for i := 0; i < dm.Len(); i++ {
			td, ok := dm.Lookup(i)
			assert.True(t, ok)
			assert.True(t, td >= 0 && td < sds.TrueVSize())
			assert.False(t, seen[td])
			seen[td] = true
		}
	}
	{ // nodal-space correspondence
		var (
			ifs = fespace.NewSpace(ifm, fespace.NewH1(1))
			sds = fespace.NewSpace(sdm, fespace.NewH1(1))
		)
		dm, err := InterfaceToSurfaceDofMap(ifs, sds, parent, faces, 2, true, mesh.DefaultVertexTol)
		assert.NoError(t, err)
		assert.Equal(t, 4, dm.Len())
		assert.Equal(t, 4, dm.NumSet())
	}
	{ // a face index outside the parent mesh is structural
		var (
			ifs = fespace.NewSpace(ifm, fespace.NewNedelec(1))
			sds = fespace.NewSpace(sdm, fespace.NewNedelec(1))
		)
		_, err := InterfaceToSurfaceDofMap(ifs, sds, parent, utils.Index{parent.NumFaces()}, 2,
			true, mesh.DefaultVertexTol)
		assert.True(t, errors.Is(err, ErrStructural))
	}
	{ // a fully known face with no subdomain neighbor is structural
		var (
			ifs = fespace.NewSpace(ifm, fespace.NewNedelec(1))
			sds = fespace.NewSpace(sdm, fespace.NewNedelec(1))
		)
		_, err := InterfaceToSurfaceDofMap(ifs, sds, parent, faces, 7, true, mesh.DefaultVertexTol)
		assert.True(t, errors.Is(err, ErrStructural))
	}
	{ // interior faces shared by two same-attribute elements are not interface faces
		parent, err := mesh.NewCartesianHex(2, 2, 2, 0, 2, 0, 2, 0, 2)
		assert.NoError(t, err)
		parent.SetAttributesBy(func(c [3]float64) int {
			if c[0] < 1 {
				return 1
			}
			return 2
		})
		faces := mesh.InterfaceFaces(parent, 1, 2)
		assert.Equal(t, 4, len(faces))
		ifm, err := mesh.ExtractInterface(parent, faces)
		assert.NoError(t, err)
		sdm, err := mesh.ExtractSubdomain(parent, 2)
		assert.NoError(t, err)
		var (
			ifs = fespace.NewSpace(ifm, fespace.NewNedelec(1))
			sds = fespace.NewSpace(sdm, fespace.NewNedelec(1))
		)
		dm, err := InterfaceToSurfaceDofMap(ifs, sds, parent, faces, 2, true, mesh.DefaultVertexTol)
		assert.NoError(t, err)
		assert.Equal(t, 12, dm.Len())
		assert.Equal(t, 12, dm.NumSet())
	}
	{ // DOFs owned elsewhere stay unset rather than erroring
		var (
			ifs = fespace.NewSpace(ifm, fespace.NewNedelec(1))
			sds = fespace.NewSpace(sdm, fespace.NewNedelec(1))
		)
		dm, err := InterfaceToSurfaceDofMap(ifs, sds, parent, faces, 2, true, mesh.DefaultVertexTol)
		assert.NoError(t, err)
		t0, ok := dm.Lookup(0)
		assert.True(t, ok)

		// with every DOF owned, true and full numbering agree
		sds.MarkUnowned(utils.Index{t0})
		dm, err = InterfaceToSurfaceDofMap(ifs, sds, parent, faces, 2, true, mesh.DefaultVertexTol)
		assert.NoError(t, err)
		assert.Equal(t, 3, dm.NumSet())
		_, ok = dm.Lookup(0)
		assert.False(t, ok)
	}
}

func TestMapInjection(t *testing.T) {
	var (
		parent = twoBoxes(t)
		faces  = mesh.InterfaceFaces(parent, 1, 2)
	)
	ifm, _ := mesh.ExtractInterface(parent, faces)
	sdm, _ := mesh.ExtractSubdomain(parent, 2)
	var (
		ifs = fespace.NewSpace(ifm, fespace.NewNedelec(1))
		sds = fespace.NewSpace(sdm, fespace.NewNedelec(1))
	)
	dm, err := InterfaceToSurfaceDofMap(ifs, sds, parent, faces, 2, true, mesh.DefaultVertexTol)
	assert.NoError(t, err)

	inj := NewMapInjection(ifs, dm)
	assert.Equal(t, sds.TrueVSize(), inj.Height())
	assert.Equal(t, ifs.TrueVSize(), inj.Width())

	var (
		x = []float64{1, 2, 3, 4}
		y = make([]float64, inj.Height())
	)
	inj.Mult(x, y)
	nonzeros := 0
	for _, v := range y {
		if v != 0 {
			nonzeros++
		}
	}
	assert.Equal(t, 4, nonzeros)

	// the transpose gathers the same entries back
	back := make([]float64, inj.Width())
	inj.MultTranspose(y, back)
	assert.Equal(t, x, back)

	// a map shorter than the interface trace is rejected
	assert.Panics(t, func() {
		NewMapInjection(ifs, DofMap{
			entries: make([]int, ifs.VSize()),
			height:  ifs.TrueVSize() - 1,
		})
	})
}

func TestSubdomainAndInterface(t *testing.T) {
	var (
		parent = twoBoxes(t)
		cp     = InputParameters.NewCouplingParameters()
	)
	cp.PrintLevel = 0
	sd1, err := NewSubdomain(parent, 0, 1, cp.Order, fespace.LumpedAssembler{}, cp.K2)
	assert.NoError(t, err)
	sd2, err := NewSubdomain(parent, 1, 2, cp.Order, fespace.LumpedAssembler{}, cp.K2)
	assert.NoError(t, err)
	assert.Equal(t, 12, sd1.ND.TrueVSize())
	assert.Equal(t, sd1.BdrySize(), len(sd1.BdryTdofs))

	ifc, err := NewInterface(parent, sd1, sd2, fespace.LumpedAssembler{}, cp)
	assert.NoError(t, err)
	assert.NotNil(t, ifc)
	assert.Equal(t, [2]int{0, 1}, ifc.SD)
	assert.Equal(t, 4, ifc.ND.TrueVSize())
	assert.Equal(t, 4, ifc.H1.TrueVSize())
	assert.Equal(t, 8, ifc.TraceSize())

	{ // coupling block shape: 2 trace rows against 3 trace columns
		cij := ifc.CreateCij(cp)
		assert.Equal(t, 8, cij.Height())
		assert.Equal(t, 12, cij.Width())

		y := make([]float64, cij.Height())
		cij.Mult(make([]float64, cij.Width()), y)
		for _, v := range y {
			assert.Equal(t, 0.0, v)
		}
	}
	{ // injections for both sides
		for _, sd := range []*Subdomain{sd1, sd2} {
			inj := ifc.MapInjectionFor(sd.Index)
			assert.Equal(t, sd.ND.TrueVSize(), inj.Height())
			assert.Equal(t, ifc.ND.TrueVSize(), inj.Width())
		}
		assert.Panics(t, func() { ifc.MapInjectionFor(5) })
	}
}

func TestDDInterfaceOperator(t *testing.T) {
	var (
		cp = InputParameters.NewCouplingParameters()
	)
	cp.PrintLevel = 0
	cp.RestartLen = 60
	{
		parent, err := mesh.NewCartesianHex(2, 2, 2, 0, 2, 0, 2, 0, 2)
		assert.NoError(t, err)
		parent.SetAttributesBy(func(c [3]float64) int {
			if c[0] < 1 {
				return 1
			}
			return 2
		})
		op, err := NewDDInterfaceOperator(parent, []int{1, 2}, fespace.LumpedAssembler{}, cp)
		assert.NoError(t, err)
		assert.Equal(t, 2, len(op.SDs))
		assert.Equal(t, 1, len(op.IFs))

		ifc := op.IFs[0]
		assert.Equal(t, 12, ifc.ND.TrueVSize())
		assert.Equal(t, 9, ifc.H1.TrueVSize())

		// per-subdomain block: surface DOFs plus the interface trace stack
		offs := op.BlockOffsets()
		assert.Equal(t, 3, len(offs))
		assert.Equal(t, op.SDs[0].BdrySize()+ifc.TraceSize(), offs.BlockSize(0))
		assert.Equal(t, op.SDs[1].BdrySize()+ifc.TraceSize(), offs.BlockSize(1))
		assert.Equal(t, offs.Last(), op.Height())

		{ // zero stays zero
			var (
				x = make([]float64, op.Width())
				y = make([]float64, op.Height())
			)
			op.Mult(x, y)
			for _, v := range y {
				assert.True(t, near(0, v))
			}
		}
		{ // a full application: finite output, converged local solves
			var (
				x   = make([]float64, op.Width())
				y   = make([]float64, op.Height())
				rnd = rand.New(rand.NewSource(7))
			)
			for i := range x {
				x[i] = rnd.Float64() - 0.5
			}
			op.Mult(x, y)
			coupled := false
			for i := range y {
				assert.False(t, math.IsNaN(y[i]) || math.IsInf(y[i], 0))
				if !near(y[i], x[i]) {
					coupled = true
				}
			}
			assert.True(t, coupled)
			for m := range op.SDs {
				assert.True(t, op.LocalStats(m).Converged)
			}
		}
	}
	{ // the two orientations of an interface block mirror each other
		parent, err := mesh.NewCartesianHex(2, 2, 1, 0, 2, 0, 2, 0, 1)
		assert.NoError(t, err)
		parent.SetAttributesBy(func(c [3]float64) int {
			if c[0] < 1 {
				return 1
			}
			return 2
		})
		op, err := NewDDInterfaceOperator(parent, []int{1, 2}, fespace.LumpedAssembler{}, cp)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(op.IFs))
		var (
			c01 = op.createInterfaceOperator(0, 0)
			c10 = op.createInterfaceOperator(0, 1)
		)
		assert.Equal(t, op.BlockOffsets().BlockSize(0), c01.Height())
		assert.Equal(t, op.BlockOffsets().BlockSize(1), c01.Width())
		assert.Equal(t, c01.Height(), c10.Width())
		assert.Equal(t, c01.Width(), c10.Height())
	}
	{ // with the jump terms off, the two orientations are exact transposes
		cps := InputParameters.NewCouplingParameters()
		cps.PrintLevel = 0
		cps.Alpha = 2
		cps.Beta = 0
		cps.Gamma = 0
		op, err := NewDDInterfaceOperator(twoBoxes(t), []int{1, 2}, fespace.LumpedAssembler{}, cps)
		assert.NoError(t, err)
		var (
			c01 = toDense(op.createInterfaceOperator(0, 0))
			c10 = toDense(op.createInterfaceOperator(0, 1))
		)
		for i := range c10 {
			for j := range c10[i] {
				assert.True(t, near(c01[j][i], c10[i][j]))
			}
		}
	}
	{ // with beta and gamma on, the transpose relation survives on the
		// surface and edge-trace blocks; the jump-scaled cross blocks differ
		op, err := NewDDInterfaceOperator(twoBoxes(t), []int{1, 2}, fespace.LumpedAssembler{}, cp)
		assert.NoError(t, err)
		var (
			c01  = toDense(op.createInterfaceOperator(0, 0))
			c10  = toDense(op.createInterfaceOperator(0, 1))
			bdry = op.SDs[0].BdrySize()
			nd   = op.IFs[0].ND.TrueVSize()
		)
		assert.Equal(t, op.SDs[1].BdrySize(), bdry)
		for i := 0; i < bdry; i++ {
			for j := 0; j < bdry; j++ {
				assert.True(t, near(c01[j][i], c10[i][j]))
			}
		}
		for i := bdry; i < bdry+nd; i++ {
			for j := bdry; j < bdry+nd; j++ {
				assert.True(t, near(c01[j][i], c10[i][j]))
			}
		}
		skew := false
		for i := 0; i < bdry; i++ {
			for j := bdry; j < bdry+nd; j++ {
				if !near(c01[j][i], c10[i][j]) {
					skew = true
				}
			}
		}
		assert.True(t, skew)
	}
	{ // two unit cubes sharing one square face
		op, err := NewDDInterfaceOperator(twoBoxes(t), []int{1, 2}, fespace.LumpedAssembler{}, cp)
		assert.NoError(t, err)
		// per cube: all 12 edges lie on its boundary; interface traces 4+4
		assert.Equal(t, 12, op.SDs[0].BdrySize())
		assert.Equal(t, 2*(12+4+4), op.Height())
	}
	{ // a lone subdomain has no interfaces: the operator is the identity
		parent, err := mesh.NewCartesianHex(1, 1, 1, 0, 1, 0, 1, 0, 1)
		assert.NoError(t, err)
		op, err := NewDDInterfaceOperator(parent, []int{1}, fespace.LumpedAssembler{}, cp)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(op.IFs))

		var (
			x = make([]float64, op.Width())
			y = make([]float64, op.Height())
		)
		for i := range x {
			x[i] = float64(i)
		}
		op.Mult(x, y)
		for i := range y {
			assert.True(t, near(x[i], y[i]))
		}
	}
}
