package fespace

import (
	"fmt"
	"math"

	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/utils"
)

// FormAssembler is the surface the external FEM assembly collaborator must
// expose: bilinear and mixed forms assembled over a space's full DOFs.
// FormSystemMatrix / FormMixedSystemMatrix below reduce the result to true
// DOFs, with optional essential-DOF elimination.
type FormAssembler interface {
	// Mass assembles the (vector or scalar) mass form on s.
	Mass(s *Space) utils.DOK
	// CurlCurl assembles the tangential curl-curl stiffness form on s.
	CurlCurl(s *Space) utils.DOK
	// MixedGradient assembles the mixed form pairing gradients of the nodal
	// space h1 against the edge space nd; rows are nd DOFs, columns h1 DOFs.
	MixedGradient(nd, h1 *Space) utils.DOK
}

// FormSystemMatrix reduces a full-DOF square form to true DOFs and applies
// (possibly empty) essential-DOF elimination: eliminated rows and columns
// are zeroed and their diagonal set to one.
func (s *Space) FormSystemMatrix(a utils.DOK, ess utils.Index) utils.CSR {
	var (
		nr, nc = a.Dims()
		nt     = s.TrueVSize()
	)
	if nr != s.VSize() || nc != s.VSize() {
		panic(fmt.Errorf("form size %dx%d does not match full DOF count %d", nr, nc, s.VSize()))
	}
	R := utils.NewDOK(nt, nt)
	a.M.DoNonZero(func(i, j int, v float64) {
		ti, iok := s.TrueDofIndex(i)
		tj, jok := s.TrueDofIndex(j)
		if !iok || !jok {
			return
		}
		if ess.Contains(ti) || ess.Contains(tj) {
			return
		}
		R.Accumulate(ti, tj, v)
	})
	for _, e := range ess {
		R.Set(e, e, 1)
	}
	return R.ToCSR()
}

// FormMixedSystemMatrix reduces a full-DOF mixed form to the true DOFs of
// its row and column spaces.
func FormMixedSystemMatrix(a utils.DOK, rows, cols *Space) utils.CSR {
	var (
		nr, nc = a.Dims()
	)
	if nr != rows.VSize() || nc != cols.VSize() {
		panic(fmt.Errorf("mixed form size %dx%d does not match full DOF counts %dx%d",
			nr, nc, rows.VSize(), cols.VSize()))
	}
	R := utils.NewDOK(rows.TrueVSize(), cols.TrueVSize())
	a.M.DoNonZero(func(i, j int, v float64) {
		ti, iok := rows.TrueDofIndex(i)
		tj, jok := cols.TrueDofIndex(j)
		if !iok || !jok {
			return
		}
		R.Accumulate(ti, tj, v)
	})
	return R.ToCSR()
}

// LumpedAssembler is a graph-calculus stand-in for the excluded FEM
// integrator collaborator: entity-measure lumped mass, incidence-based
// curl-curl and gradient forms. It produces symmetric matrices with the
// right kernel structure for first-order spaces, which is all the coupling
// layer requires of its collaborator.
type LumpedAssembler struct{}

func (LumpedAssembler) Mass(s *Space) utils.DOK {
	var (
		m = s.Mesh
		a = utils.NewDOK(s.VSize(), s.VSize())
	)
	for v := 0; v < m.NumVertices(); v++ {
		for _, d := range s.VertexDofs(v) {
			a.Set(d, d, vertexWeight(m, v))
		}
	}
	for e := 0; e < m.NumEdges(); e++ {
		for _, d := range s.EdgeDofs(e) {
			a.Set(d, d, edgeLength(m, e))
		}
	}
	for f := 0; f < m.NumFaces(); f++ {
		for _, d := range s.FaceDofs(f) {
			a.Set(d, d, faceArea(m, f))
		}
	}
	return a
}

func (LumpedAssembler) CurlCurl(s *Space) utils.DOK {
	var (
		m = s.Mesh
		a = utils.NewDOK(s.VSize(), s.VSize())
	)
	if s.FEC.EdgeDofs == 0 {
		return a
	}
	// Sum of rank-one face terms (1/area) d d^T over the signed perimeter
	// incidence d of each face.
	for f := 0; f < m.NumFaces(); f++ {
		var (
			edges = m.FaceEdgeIndices(f)
			signs = perimeterSigns(m, f)
			w     = 1.0 / faceArea(m, f)
		)
		for i, ei := range edges {
			di := s.EdgeDofs(ei)
			for j, ej := range edges {
				dj := s.EdgeDofs(ej)
				for d := range di {
					a.Accumulate(di[d], dj[d], w*signs[i]*signs[j])
				}
			}
		}
	}
	return a
}

func (LumpedAssembler) MixedGradient(nd, h1 *Space) utils.DOK {
	var (
		m = nd.Mesh
		a = utils.NewDOK(nd.VSize(), h1.VSize())
	)
	if nd.FEC.EdgeDofs == 0 || h1.FEC.VertexDofs == 0 {
		return a
	}
	// Edge-mass-weighted discrete gradient: the gradient of a nodal basis
	// function is +-1 along each incident edge in canonical orientation.
	for e := 0; e < m.NumEdges(); e++ {
		var (
			ev = m.EdgeVertices(e)
			me = edgeLength(m, e)
		)
		for _, d := range nd.EdgeDofs(e) {
			a.Accumulate(d, h1.VertexDofs(ev[1])[0], me)
			a.Accumulate(d, h1.VertexDofs(ev[0])[0], -me)
		}
	}
	return a
}

// perimeterSigns gives the orientation of each face edge relative to the
// face's traversal direction: +1 where the canonical edge (low vertex to
// high vertex) agrees with the perimeter.
func perimeterSigns(m *mesh.Mesh, f int) (signs []float64) {
	fv := m.FaceVertices(f)
	signs = make([]float64, len(fv))
	for i := range fv {
		if fv[i] < fv[(i+1)%len(fv)] {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}
	return
}

func edgeLength(m *mesh.Mesh, e int) float64 {
	var (
		ev   = m.EdgeVertices(e)
		a, b = m.Vertex(ev[0]), m.Vertex(ev[1])
		sum  float64
	)
	for d := 0; d < 3; d++ {
		sum += (a[d] - b[d]) * (a[d] - b[d])
	}
	return math.Sqrt(sum)
}

func faceArea(m *mesh.Mesh, f int) (area float64) {
	fv := m.FaceVertices(f)
	// Fan triangulation from the first vertex; valid for convex faces.
	p0 := m.Vertex(fv[0])
	for i := 1; i < len(fv)-1; i++ {
		area += triangleArea(p0, m.Vertex(fv[i]), m.Vertex(fv[i+1]))
	}
	return
}

func triangleArea(a, b, c [3]float64) float64 {
	var u, v, w [3]float64
	for d := 0; d < 3; d++ {
		u[d] = b[d] - a[d]
		v[d] = c[d] - a[d]
	}
	w[0] = u[1]*v[2] - u[2]*v[1]
	w[1] = u[2]*v[0] - u[0]*v[2]
	w[2] = u[0]*v[1] - u[1]*v[0]
	return 0.5 * math.Sqrt(w[0]*w[0]+w[1]*w[1]+w[2]*w[2])
}

// vertexWeight lumps the measure of the elements incident on a vertex.
func vertexWeight(m *mesh.Mesh, v int) (w float64) {
	for e := 0; e < m.NumElements(); e++ {
		ev := m.ElementVertices(e)
		for _, vv := range ev {
			if vv == v {
				w += elementMeasure(m, e) / float64(len(ev))
				break
			}
		}
	}
	if w == 0 {
		w = 1
	}
	return
}

func elementMeasure(m *mesh.Mesh, e int) float64 {
	ev := m.ElementVertices(e)
	if m.Dim == 2 {
		// The element is a face of itself.
		return faceArea(m, m.ElementFaces(e)[0])
	}
	p0 := m.Vertex(ev[0])
	switch len(ev) {
	case 8:
		// Parallelepiped approximation from the three edges at vertex 0.
		return math.Abs(det3(diff(m.Vertex(ev[1]), p0), diff(m.Vertex(ev[3]), p0), diff(m.Vertex(ev[4]), p0)))
	case 4:
		return math.Abs(det3(diff(m.Vertex(ev[1]), p0), diff(m.Vertex(ev[2]), p0), diff(m.Vertex(ev[3]), p0))) / 6
	}
	panic(fmt.Errorf("unsupported element with %d vertices", len(ev)))
}

func diff(a, b [3]float64) (r [3]float64) {
	for d := 0; d < 3; d++ {
		r[d] = a[d] - b[d]
	}
	return
}

func det3(a, b, c [3]float64) float64 {
	return a[0]*(b[1]*c[2]-b[2]*c[1]) - a[1]*(b[0]*c[2]-b[2]*c[0]) + a[2]*(b[0]*c[1]-b[1]*c[0])
}
