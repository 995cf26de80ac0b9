package mesh

import (
	"fmt"
	"sort"

	"github.com/biswajitcsecu/mfem/utils"
)

// Mesh is an unstructured mesh with derived face and edge connectivity.
// Dim 3 meshes have volume elements (hexahedra, tetrahedra) with faces as
// separate entities; Dim 2 meshes are surface meshes embedded in 3-space
// whose elements (quadrilaterals, triangles) are their own faces.
type Mesh struct {
	Dim   int
	Verts [][3]float64
	Elems [][]int // element vertex lists
	Attrs []int   // per-element attribute tag

	// Derived connectivity.
	Faces     [][]int  // face vertex lists; for Dim 2 identical to Elems
	ElemFaces [][]int  // element -> face indices
	FaceElems [][]int  // face -> incident elements (1 or 2)
	Edges     [][2]int // edge endpoint vertices, v0 < v1
	ElemEdges [][]int  // element -> edge indices
	FaceEdges [][]int  // face -> edge indices
}

// Local face vertex orderings, outward-oriented, by element vertex count.
var hexFaces = [][]int{
	{0, 3, 2, 1}, {4, 5, 6, 7},
	{0, 1, 5, 4}, {1, 2, 6, 5},
	{2, 3, 7, 6}, {3, 0, 4, 7},
}

var tetFaces = [][]int{
	{1, 2, 3}, {0, 3, 2}, {0, 1, 3}, {0, 2, 1},
}

var hexEdges = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

var tetEdges = [][2]int{
	{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3},
}

func localFaces(nv int) ([][]int, error) {
	switch nv {
	case 8:
		return hexFaces, nil
	case 4:
		return tetFaces, nil
	}
	return nil, fmt.Errorf("unsupported volume element with %d vertices", nv)
}

func localEdges3D(nv int) ([][2]int, error) {
	switch nv {
	case 8:
		return hexEdges, nil
	case 4:
		return tetEdges, nil
	}
	return nil, fmt.Errorf("unsupported volume element with %d vertices", nv)
}

// perimeterEdges returns the local edges of a surface element.
func perimeterEdges(nv int) (edges [][2]int) {
	edges = make([][2]int, nv)
	for i := 0; i < nv; i++ {
		edges[i] = [2]int{i, (i + 1) % nv}
	}
	return
}

// NewMesh builds a mesh and derives its face and edge connectivity. attrs
// may be nil, in which case every element gets attribute 1.
func NewMesh(dim int, verts [][3]float64, elems [][]int, attrs []int) (m *Mesh, err error) {
	if dim != 2 && dim != 3 {
		err = fmt.Errorf("unsupported mesh dimension %d", dim)
		return
	}
	if attrs == nil {
		attrs = make([]int, len(elems))
		for i := range attrs {
			attrs[i] = 1
		}
	}
	if len(attrs) != len(elems) {
		err = fmt.Errorf("attribute count %d does not match element count %d", len(attrs), len(elems))
		return
	}
	m = &Mesh{
		Dim:   dim,
		Verts: verts,
		Elems: elems,
		Attrs: attrs,
	}
	for e, ev := range elems {
		for _, v := range ev {
			if v < 0 || v >= len(verts) {
				return nil, fmt.Errorf("element %d references vertex %d outside [0,%d)", e, v, len(verts))
			}
		}
	}
	if err = m.buildEdges(); err != nil {
		return nil, err
	}
	if err = m.buildFaces(); err != nil {
		return nil, err
	}
	return
}

func canonicalEdge(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (m *Mesh) buildEdges() (err error) {
	var (
		edgeID = make(map[[2]int]int)
	)
	m.ElemEdges = make([][]int, len(m.Elems))
	for e, ev := range m.Elems {
		var local [][2]int
		if m.Dim == 3 {
			if local, err = localEdges3D(len(ev)); err != nil {
				return fmt.Errorf("element %d: %w", e, err)
			}
		} else {
			local = perimeterEdges(len(ev))
		}
		m.ElemEdges[e] = make([]int, len(local))
		for i, le := range local {
			key := canonicalEdge(ev[le[0]], ev[le[1]])
			id, ok := edgeID[key]
			if !ok {
				id = len(m.Edges)
				m.Edges = append(m.Edges, key)
				edgeID[key] = id
			}
			m.ElemEdges[e][i] = id
		}
	}
	return
}

// faceKey is the sorted vertex set of a face, padded with -1.
func faceKey(vts []int) (key [4]int) {
	key = [4]int{-1, -1, -1, -1}
	s := append([]int(nil), vts...)
	sort.Ints(s)
	copy(key[:], s)
	return
}

func (m *Mesh) buildFaces() (err error) {
	if m.Dim == 2 {
		// Surface elements are their own faces.
		m.Faces = m.Elems
		m.ElemFaces = make([][]int, len(m.Elems))
		m.FaceElems = make([][]int, len(m.Elems))
		m.FaceEdges = m.ElemEdges
		for e := range m.Elems {
			m.ElemFaces[e] = []int{e}
			m.FaceElems[e] = []int{e}
		}
		return
	}
	var (
		faceID = make(map[[4]int]int)
	)
	m.ElemFaces = make([][]int, len(m.Elems))
	for e, ev := range m.Elems {
		local, ferr := localFaces(len(ev))
		if ferr != nil {
			return fmt.Errorf("element %d: %w", e, ferr)
		}
		m.ElemFaces[e] = make([]int, len(local))
		for i, lf := range local {
			fv := make([]int, len(lf))
			for j, lv := range lf {
				fv[j] = ev[lv]
			}
			key := faceKey(fv)
			id, ok := faceID[key]
			if !ok {
				id = len(m.Faces)
				m.Faces = append(m.Faces, fv)
				m.FaceElems = append(m.FaceElems, nil)
				faceID[key] = id
			}
			m.ElemFaces[e][i] = id
			m.FaceElems[id] = append(m.FaceElems[id], e)
		}
	}
	// Face edges from the face perimeter against the mesh edge table.
	edgeID := make(map[[2]int]int, len(m.Edges))
	for i, ed := range m.Edges {
		edgeID[ed] = i
	}
	m.FaceEdges = make([][]int, len(m.Faces))
	for f, fv := range m.Faces {
		per := perimeterEdges(len(fv))
		m.FaceEdges[f] = make([]int, len(per))
		for i, le := range per {
			key := canonicalEdge(fv[le[0]], fv[le[1]])
			id, ok := edgeID[key]
			if !ok {
				return fmt.Errorf("face %d edge (%d,%d) not present in mesh edge table", f, key[0], key[1])
			}
			m.FaceEdges[f][i] = id
		}
	}
	return
}

func (m *Mesh) NumVertices() int { return len(m.Verts) }
func (m *Mesh) NumElements() int { return len(m.Elems) }
func (m *Mesh) NumEdges() int    { return len(m.Edges) }
func (m *Mesh) NumFaces() int    { return len(m.Faces) }

func (m *Mesh) Vertex(i int) [3]float64     { return m.Verts[i] }
func (m *Mesh) ElementVertices(e int) []int { return m.Elems[e] }
func (m *Mesh) ElementFaces(e int) []int    { return m.ElemFaces[e] }
func (m *Mesh) ElementEdges(e int) []int    { return m.ElemEdges[e] }
func (m *Mesh) FaceVertices(f int) []int    { return m.Faces[f] }
func (m *Mesh) FaceEdgeIndices(f int) []int { return m.FaceEdges[f] }
func (m *Mesh) EdgeVertices(e int) [2]int   { return m.Edges[e] }
func (m *Mesh) Attribute(e int) int         { return m.Attrs[e] }
func (m *Mesh) SetAttribute(e, attr int)    { m.Attrs[e] = attr }

// BoundaryFaces returns the faces with exactly one incident element.
func (m *Mesh) BoundaryFaces() (bdry utils.Index) {
	for f, fe := range m.FaceElems {
		if len(fe) == 1 {
			bdry = append(bdry, f)
		}
	}
	return
}

// SetAttributesBy assigns each element's attribute from its centroid.
func (m *Mesh) SetAttributesBy(f func(center [3]float64) int) {
	for e, ev := range m.Elems {
		var c [3]float64
		for _, v := range ev {
			for d := 0; d < 3; d++ {
				c[d] += m.Verts[v][d]
			}
		}
		for d := 0; d < 3; d++ {
			c[d] /= float64(len(ev))
		}
		m.Attrs[e] = f(c)
	}
}
