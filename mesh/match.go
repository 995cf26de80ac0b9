package mesh

import (
	"math"
)

// DefaultVertexTol is the coordinate tolerance for geometric coincidence.
const DefaultVertexTol = 1.0e-12

// VerticesCoincide reports whether two points agree to within tol in every
// coordinate.
func VerticesCoincide(a, b [3]float64, tol float64) bool {
	for d := 0; d < 3; d++ {
		if math.Abs(a[d]-b[d]) > tol {
			return false
		}
	}
	return true
}

// vertexSetsCoincide requires every point of a to have a coincident partner
// in b. Coincidence is strict: a size mismatch or a single unmatched point
// is a non-match. There is no nearest-neighbor fallback.
func vertexSetsCoincide(a, b [][3]float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for _, pa := range a {
		found := false
		for _, pb := range b {
			if VerticesCoincide(pa, pb, tol) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FacesCoincide reports whether face of ma and elem of mb occupy the same
// geometric location, comparing their vertex coordinate sets. Valid for
// convex faces only, as vertices are compared as sets.
func FacesCoincide(ma *Mesh, face int, mb *Mesh, elem int, tol float64) bool {
	var (
		fv = ma.FaceVertices(face)
		ev = mb.ElementVertices(elem)
	)
	a := make([][3]float64, len(fv))
	for i, v := range fv {
		a[i] = ma.Vertex(v)
	}
	b := make([][3]float64, len(ev))
	for i, v := range ev {
		b[i] = mb.Vertex(v)
	}
	return vertexSetsCoincide(a, b, tol)
}

// EdgesCoincide reports whether edge ea of ma and edge eb of mb connect
// geometrically coincident endpoints, in either orientation. The second
// return reports whether the matched orientation is reversed.
func EdgesCoincide(ma *Mesh, ea int, mb *Mesh, eb int, tol float64) (match, reversed bool) {
	var (
		av = ma.EdgeVertices(ea)
		bv = mb.EdgeVertices(eb)
	)
	a0, a1 := ma.Vertex(av[0]), ma.Vertex(av[1])
	b0, b1 := mb.Vertex(bv[0]), mb.Vertex(bv[1])
	if VerticesCoincide(a0, b0, tol) && VerticesCoincide(a1, b1, tol) {
		return true, false
	}
	if VerticesCoincide(a0, b1, tol) && VerticesCoincide(a1, b0, tol) {
		return true, true
	}
	return false, false
}
