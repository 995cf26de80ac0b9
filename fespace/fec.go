package fespace

// GeometryType identifies the mesh entity a DOF lives on.
type GeometryType uint8

const (
	Point GeometryType = iota
	Segment
	Face
)

// Collection describes how many DOFs a finite-element family places on each
// entity type. The coupling layer needs only these counts; the basis
// functions themselves live with the external assembly collaborator.
type Collection struct {
	Name string

	VertexDofs int
	EdgeDofs   int
	FaceDofs   int
}

func (c Collection) DofForGeometry(g GeometryType) int {
	switch g {
	case Point:
		return c.VertexDofs
	case Segment:
		return c.EdgeDofs
	case Face:
		return c.FaceDofs
	}
	return 0
}

// NewNedelec is the tangentially-continuous edge-element family used for
// the volume and edge-trace unknowns.
func NewNedelec(order int) Collection {
	return Collection{
		Name:       "Nedelec",
		VertexDofs: 0,
		EdgeDofs:   order,
		FaceDofs:   2 * order * (order - 1),
	}
}

// NewH1 is the nodal family used for the potential-trace unknown.
func NewH1(order int) Collection {
	return Collection{
		Name:       "H1",
		VertexDofs: 1,
		EdgeDofs:   order - 1,
		FaceDofs:   (order - 1) * (order - 1),
	}
}
