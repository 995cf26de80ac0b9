package fespace

import (
	"fmt"

	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/utils"
)

// Space lays a finite-element collection's DOFs over a mesh. Full DOFs are
// numbered vertex block first, then edge block, then face block. In a
// distributed setting a full DOF may be owned by another process; true DOFs
// are the locally owned subset with their own compact numbering.
type Space struct {
	Mesh *mesh.Mesh
	FEC  Collection

	owned      []bool
	fullToTrue []int // -1 where not owned
	trueToFull utils.Index
}

// NewSpace creates a space with every DOF locally owned.
func NewSpace(m *mesh.Mesh, fec Collection) (s *Space) {
	s = &Space{
		Mesh:  m,
		FEC:   fec,
		owned: make([]bool, fec.VertexDofs*m.NumVertices()+fec.EdgeDofs*m.NumEdges()+fec.FaceDofs*m.NumFaces()),
	}
	for i := range s.owned {
		s.owned[i] = true
	}
	s.renumberTrueDofs()
	return
}

// MarkUnowned declares full DOFs as owned elsewhere and renumbers the true
// DOFs. Used to model the distributed ownership split.
func (s *Space) MarkUnowned(fulls utils.Index) {
	for _, f := range fulls {
		s.owned[f] = false
	}
	s.renumberTrueDofs()
}

func (s *Space) renumberTrueDofs() {
	s.fullToTrue = make([]int, len(s.owned))
	s.trueToFull = s.trueToFull[:0]
	for f, own := range s.owned {
		if own {
			s.fullToTrue[f] = len(s.trueToFull)
			s.trueToFull = append(s.trueToFull, f)
		} else {
			s.fullToTrue[f] = -1
		}
	}
}

// VSize is the full DOF count, TrueVSize the locally owned count.
func (s *Space) VSize() int     { return len(s.owned) }
func (s *Space) TrueVSize() int { return len(s.trueToFull) }

// TrueDofIndex returns the true-DOF number of a full DOF, or ok=false when
// the DOF is owned by another process.
func (s *Space) TrueDofIndex(full int) (tdof int, ok bool) {
	tdof = s.fullToTrue[full]
	return tdof, tdof >= 0
}

func (s *Space) edgeBlock() int { return s.FEC.VertexDofs * s.Mesh.NumVertices() }
func (s *Space) faceBlock() int { return s.edgeBlock() + s.FEC.EdgeDofs*s.Mesh.NumEdges() }

// VertexDofs returns the full DOFs attached to a vertex.
func (s *Space) VertexDofs(v int) (dofs utils.Index) {
	dofs = make(utils.Index, s.FEC.VertexDofs)
	for d := range dofs {
		dofs[d] = v*s.FEC.VertexDofs + d
	}
	return
}

// EdgeDofs returns the edge-interior full DOFs of an edge, in the edge's
// canonical orientation.
func (s *Space) EdgeDofs(e int) (dofs utils.Index) {
	dofs = make(utils.Index, s.FEC.EdgeDofs)
	for d := range dofs {
		dofs[d] = s.edgeBlock() + e*s.FEC.EdgeDofs + d
	}
	return
}

// FaceDofs returns the face-interior full DOFs of a face.
func (s *Space) FaceDofs(f int) (dofs utils.Index) {
	dofs = make(utils.Index, s.FEC.FaceDofs)
	for d := range dofs {
		dofs[d] = s.faceBlock() + f*s.FEC.FaceDofs + d
	}
	return
}

// SetFromTrueDofs expands a true-DOF vector into a full-DOF field. Full
// DOFs owned elsewhere are zeroed; their values arrive via the external
// communication layer in a distributed run.
func (s *Space) SetFromTrueDofs(x, full []float64) {
	if len(x) != s.TrueVSize() || len(full) != s.VSize() {
		panic(fmt.Errorf("SetFromTrueDofs size mismatch: true %d/%d, full %d/%d",
			len(x), s.TrueVSize(), len(full), s.VSize()))
	}
	for i := range full {
		full[i] = 0
	}
	for t, f := range s.trueToFull {
		full[f] = x[t]
	}
}

// GetTrueDofs gathers the owned entries of a full-DOF field into a true-DOF
// vector.
func (s *Space) GetTrueDofs(full, x []float64) {
	if len(x) != s.TrueVSize() || len(full) != s.VSize() {
		panic(fmt.Errorf("GetTrueDofs size mismatch: true %d/%d, full %d/%d",
			len(x), s.TrueVSize(), len(full), s.VSize()))
	}
	for t, f := range s.trueToFull {
		x[t] = full[f]
	}
}

// BoundaryTrueDofs returns the true DOFs lying on the mesh boundary, in
// ascending order. DOFs on boundary faces include the DOFs of the face's
// vertices and edges.
func (s *Space) BoundaryTrueDofs() (tdofs utils.Index) {
	var full utils.Index
	for _, f := range s.Mesh.BoundaryFaces() {
		for _, v := range s.Mesh.FaceVertices(f) {
			full = append(full, s.VertexDofs(v)...)
		}
		for _, e := range s.Mesh.FaceEdgeIndices(f) {
			full = append(full, s.EdgeDofs(e)...)
		}
		full = append(full, s.FaceDofs(f)...)
	}
	for _, fd := range full {
		if t, ok := s.TrueDofIndex(fd); ok {
			tdofs = append(tdofs, t)
		}
	}
	return tdofs.Sorted()
}
