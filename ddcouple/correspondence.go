package ddcouple

import (
	"fmt"

	"github.com/biswajitcsecu/mfem/fespace"
	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/utils"
)

// DofMap records, for each full DOF of an interface space, the
// corresponding true DOF of a subdomain surface space. Entries whose
// subdomain DOF is owned by another process are left unset; injection
// operators simply skip them.
type DofMap struct {
	entries []int // -1 where unset
	height  int   // subdomain true DOF count
}

// Len is the interface full DOF count, Height the subdomain true DOF count.
func (d DofMap) Len() int    { return len(d.entries) }
func (d DofMap) Height() int { return d.height }

// Lookup returns the subdomain true DOF for interface full DOF i, or
// ok=false when the entry is unset.
func (d DofMap) Lookup(i int) (tdof int, ok bool) {
	tdof = d.entries[i]
	return tdof, tdof >= 0
}

// NumSet counts the populated entries.
func (d DofMap) NumSet() (n int) {
	for _, t := range d.entries {
		if t >= 0 {
			n++
		}
	}
	return
}

func (d DofMap) assign(ifDof, sdTrue int, strict bool) error {
	if prev := d.entries[ifDof]; prev >= 0 && prev != sdTrue {
		if strict {
			return fmt.Errorf("%w: interface DOF %d maps to both subdomain DOFs %d and %d",
				ErrStructural, ifDof, prev, sdTrue)
		}
		return nil
	}
	d.entries[ifDof] = sdTrue
	return nil
}

// InterfaceToSurfaceDofMap builds the DOF correspondence between an
// interface space and the surface DOFs of one neighboring subdomain space.
//
// faces lists the parent-mesh interface faces in ascending order; element i
// of the interface mesh is the geometric copy of faces[i]. sdAttr selects
// the subdomain's elements in the parent mesh, and the subdomain mesh
// carries the parent element index, one-based, in its attributes.
//
// Interface faces whose subdomain-side neighbor is not locally present are
// skipped: in a distributed run another process owns that element. A face
// whose complete local adjacency excludes the subdomain, or whose geometry
// fails to match, is an error.
func InterfaceToSurfaceDofMap(ifs, sds *fespace.Space, parent *mesh.Mesh,
	faces utils.Index, sdAttr int, strict bool, tol float64) (dm DofMap, err error) {
	var (
		ifm = ifs.Mesh
		sdm = sds.Mesh
	)
	if ifm.NumElements() != len(faces) {
		err = fmt.Errorf("%w: interface mesh has %d elements for %d interface faces",
			ErrStructural, ifm.NumElements(), len(faces))
		return
	}

	// The subdomain-side neighbor of each interface face. Only faces in the
	// interface set participate; interior subdomain faces are legitimately
	// shared by two same-attribute elements.
	inInterface := make(map[int]bool, len(faces))
	for _, f := range faces {
		inInterface[f] = true
	}
	faceToElem := make(map[int]int, len(faces))
	for e := 0; e < parent.NumElements(); e++ {
		if parent.Attribute(e) != sdAttr {
			continue
		}
		for _, f := range parent.ElementFaces(e) {
			if !inInterface[f] {
				continue
			}
			if prev, dup := faceToElem[f]; dup {
				err = fmt.Errorf("%w: parent face %d shared by elements %d and %d of the same subdomain %d",
					ErrStructural, f, prev, e, sdAttr)
				return
			}
			faceToElem[f] = e
		}
	}

	// Invert the subdomain mesh's parent-element side channel.
	parentToSd := make(map[int]int, sdm.NumElements())
	for e := 0; e < sdm.NumElements(); e++ {
		pe := sdm.Attribute(e) - 1
		if pe < 0 || pe >= parent.NumElements() {
			err = fmt.Errorf("%w: subdomain element %d claims parent element %d outside [0,%d)",
				ErrStructural, e, pe, parent.NumElements())
			return
		}
		parentToSd[pe] = e
	}

	dm = DofMap{
		entries: make([]int, ifs.VSize()),
		height:  sds.TrueVSize(),
	}
	for i := range dm.entries {
		dm.entries[i] = -1
	}

	for i, f := range faces {
		if f < 0 || f >= parent.NumFaces() {
			err = fmt.Errorf("%w: interface face %d outside parent face range [0,%d)",
				ErrStructural, f, parent.NumFaces())
			return
		}
		pe, local := faceToElem[f]
		if !local {
			if len(parent.FaceElems[f]) == 2 {
				// Both neighbors are local and neither is ours.
				err = fmt.Errorf("%w: interface face %d has no incident element with attribute %d",
					ErrStructural, f, sdAttr)
				return
			}
			// Neighbor owned by another process.
			continue
		}
		se, known := parentToSd[pe]
		if !known {
			err = fmt.Errorf("%w: parent element %d with attribute %d missing from subdomain mesh",
				ErrStructural, pe, sdAttr)
			return
		}

		sf, ferr := matchElementFace(sdm, se, ifm, i, tol)
		if ferr != nil {
			err = ferr
			return
		}

		if err = mapVertexDofs(dm, ifs, sds, i, sf, strict, tol); err != nil {
			return
		}
		if err = mapEdgeDofs(dm, ifs, sds, i, sf, strict, tol); err != nil {
			return
		}
		if err = mapFaceDofs(dm, ifs, sds, i, sf, strict); err != nil {
			return
		}
	}
	return
}

// matchElementFace finds the face of subdomain element se geometrically
// coincident with interface element ie. Exactly one match is required.
func matchElementFace(sdm *mesh.Mesh, se int, ifm *mesh.Mesh, ie int, tol float64) (sf int, err error) {
	sf = -1
	for _, f := range sdm.ElementFaces(se) {
		if mesh.FacesCoincide(sdm, f, ifm, ie, tol) {
			if sf >= 0 {
				return -1, fmt.Errorf("%w: faces %d and %d of subdomain element %d both coincide with interface element %d",
					ErrStructural, sf, f, se, ie)
			}
			sf = f
		}
	}
	if sf < 0 {
		return -1, fmt.Errorf("%w: no face of subdomain element %d coincides with interface element %d",
			ErrGeometric, se, ie)
	}
	return
}

func mapVertexDofs(dm DofMap, ifs, sds *fespace.Space, ie, sf int, strict bool, tol float64) error {
	if ifs.FEC.VertexDofs == 0 {
		return nil
	}
	var (
		ifm = ifs.Mesh
		sdm = sds.Mesh
		sfv = sdm.FaceVertices(sf)
	)
	for _, iv := range ifm.ElementVertices(ie) {
		sv := -1
		for _, cand := range sfv {
			if mesh.VerticesCoincide(ifm.Vertex(iv), sdm.Vertex(cand), tol) {
				sv = cand
				break
			}
		}
		if sv < 0 {
			return fmt.Errorf("%w: interface vertex %d has no coincident vertex on subdomain face %d",
				ErrGeometric, iv, sf)
		}
		var (
			ifDofs = ifs.VertexDofs(iv)
			sdDofs = sds.VertexDofs(sv)
		)
		for d := range ifDofs {
			if t, owned := sds.TrueDofIndex(sdDofs[d]); owned {
				if err := dm.assign(ifDofs[d], t, strict); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func mapEdgeDofs(dm DofMap, ifs, sds *fespace.Space, ie, sf int, strict bool, tol float64) error {
	if ifs.FEC.EdgeDofs == 0 {
		return nil
	}
	var (
		ifm = ifs.Mesh
		sdm = sds.Mesh
		sfe = sdm.FaceEdgeIndices(sf)
	)
	for _, iedge := range ifm.ElementEdges(ie) {
		var (
			match    = -1
			reversed bool
		)
		for _, cand := range sfe {
			ok, rev := mesh.EdgesCoincide(ifm, iedge, sdm, cand, tol)
			if !ok {
				continue
			}
			if match >= 0 {
				return fmt.Errorf("%w: edges %d and %d of subdomain face %d both coincide with interface edge %d",
					ErrStructural, match, cand, sf, iedge)
			}
			match, reversed = cand, rev
		}
		if match < 0 {
			return fmt.Errorf("%w: interface edge %d has no coincident edge on subdomain face %d",
				ErrGeometric, iedge, sf)
		}
		var (
			ifDofs = ifs.EdgeDofs(iedge)
			sdDofs = sds.EdgeDofs(match)
		)
		for d := range ifDofs {
			sd := d
			if reversed {
				// Edge-interior DOFs run along the edge; a reversed match
				// pairs them end for end.
				sd = len(sdDofs) - 1 - d
			}
			if t, owned := sds.TrueDofIndex(sdDofs[sd]); owned {
				if err := dm.assign(ifDofs[d], t, strict); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func mapFaceDofs(dm DofMap, ifs, sds *fespace.Space, ie, sf int, strict bool) error {
	if ifs.FEC.FaceDofs == 0 {
		return nil
	}
	// Interface elements are their own faces; face-interior DOFs pair up
	// positionally.
	var (
		ifDofs = ifs.FaceDofs(ie)
		sdDofs = sds.FaceDofs(sf)
	)
	for d := range ifDofs {
		if t, owned := sds.TrueDofIndex(sdDofs[d]); owned {
			if err := dm.assign(ifDofs[d], t, strict); err != nil {
				return err
			}
		}
	}
	return nil
}
