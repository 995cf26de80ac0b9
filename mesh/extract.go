package mesh

import (
	"fmt"

	"github.com/biswajitcsecu/mfem/utils"
)

// ExtractSubdomain builds the subdomain mesh of all elements carrying attr.
// Each extracted element's attribute is set to the 1-based index of its
// parent element, the side channel the DOF correspondence builder relies on.
func ExtractSubdomain(parent *Mesh, attr int) (m *Mesh, err error) {
	var (
		vmap  = make(map[int]int)
		verts [][3]float64
		elems [][]int
		attrs []int
	)
	remap := func(v int) int {
		id, ok := vmap[v]
		if !ok {
			id = len(verts)
			verts = append(verts, parent.Vertex(v))
			vmap[v] = id
		}
		return id
	}
	for e := 0; e < parent.NumElements(); e++ {
		if parent.Attribute(e) != attr {
			continue
		}
		ev := parent.ElementVertices(e)
		nev := make([]int, len(ev))
		for i, v := range ev {
			nev[i] = remap(v)
		}
		elems = append(elems, nev)
		attrs = append(attrs, e+1) // 1 added to keep the attribute positive
	}
	if len(elems) == 0 {
		err = fmt.Errorf("no elements carry attribute %d", attr)
		return
	}
	return NewMesh(parent.Dim, verts, elems, attrs)
}

// InterfaceFaces returns the parent-mesh faces whose two incident elements
// carry the attribute pair (attr0, attr1), in canonical sorted order.
func InterfaceFaces(parent *Mesh, attr0, attr1 int) (faces utils.Index) {
	for f := 0; f < parent.NumFaces(); f++ {
		fe := parent.FaceElems[f]
		if len(fe) != 2 {
			continue
		}
		a, b := parent.Attribute(fe[0]), parent.Attribute(fe[1])
		if (a == attr0 && b == attr1) || (a == attr1 && b == attr0) {
			faces = append(faces, f)
		}
	}
	return faces.Sorted()
}

// ExtractInterface builds the surface mesh whose elements are the given
// parent-mesh faces. The i-th interface element corresponds to the i-th
// entry of the sorted face set, the ordering contract the correspondence
// builder depends on.
func ExtractInterface(parent *Mesh, faces utils.Index) (m *Mesh, err error) {
	if err = faces.Validate(0, parent.NumFaces()); err != nil {
		return nil, fmt.Errorf("interface face set: %w", err)
	}
	var (
		vmap  = make(map[int]int)
		verts [][3]float64
		elems [][]int
	)
	for _, f := range faces.Sorted() {
		fv := parent.FaceVertices(f)
		nev := make([]int, len(fv))
		for i, v := range fv {
			id, ok := vmap[v]
			if !ok {
				id = len(verts)
				verts = append(verts, parent.Vertex(v))
				vmap[v] = id
			}
			nev[i] = id
		}
		elems = append(elems, nev)
	}
	if len(elems) == 0 {
		err = fmt.Errorf("interface face set is empty")
		return
	}
	return NewMesh(2, verts, elems, nil)
}
