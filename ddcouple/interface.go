package ddcouple

import (
	"fmt"

	"github.com/biswajitcsecu/mfem/InputParameters"
	"github.com/biswajitcsecu/mfem/fespace"
	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/operators"
	"github.com/biswajitcsecu/mfem/utils"
)

// Interface is the coupling surface between two subdomains: the extracted
// surface mesh, the edge and nodal trace spaces on it, their assembled
// forms, and the DOF correspondences onto both neighboring subdomains.
type Interface struct {
	SD    [2]int      // neighboring subdomain indices, SD[0] < SD[1]
	Mesh  *mesh.Mesh  // surface mesh, one element per interface face
	Faces utils.Index // parent-mesh faces, ascending

	ND, H1 *fespace.Space

	NDMass     utils.CSR
	NDCurlCurl utils.CSR
	H1Mass     utils.CSR
	NDH1Grad   utils.CSR

	mapInj [2]*MapInjection // edge-trace true DOFs onto each subdomain
}

// NewInterface extracts the coupling surface between the subdomains sd0 and
// sd1, assembles its trace forms and builds the DOF correspondences for
// both sides. Returns nil without error when the two subdomains share no
// face: a distributed run sees only the interfaces its subdomains touch.
func NewInterface(parent *mesh.Mesh, sd0, sd1 *Subdomain, asm fespace.FormAssembler,
	cp *InputParameters.CouplingParameters) (ifc *Interface, err error) {
	faces := mesh.InterfaceFaces(parent, sd0.Attr, sd1.Attr)
	if len(faces) == 0 {
		return nil, nil
	}
	ifm, err := mesh.ExtractInterface(parent, faces)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	ifc = &Interface{
		Mesh:  ifm,
		Faces: faces,
		ND:    fespace.NewSpace(ifm, fespace.NewNedelec(cp.Order)),
		H1:    fespace.NewSpace(ifm, fespace.NewH1(cp.Order)),
	}
	ifc.NDMass = ifc.ND.FormSystemMatrix(asm.Mass(ifc.ND), nil)
	ifc.NDCurlCurl = ifc.ND.FormSystemMatrix(asm.CurlCurl(ifc.ND), nil)
	ifc.H1Mass = ifc.H1.FormSystemMatrix(asm.Mass(ifc.H1), nil)
	ifc.NDH1Grad = fespace.FormMixedSystemMatrix(asm.MixedGradient(ifc.ND, ifc.H1), ifc.ND, ifc.H1)

	for k, sd := range [2]*Subdomain{sd0, sd1} {
		ifc.SD[k] = sd.Index
		dm, derr := InterfaceToSurfaceDofMap(ifc.ND, sd.ND, parent, faces, sd.Attr,
			cp.StrictDofMatch, cp.VertexTol)
		if derr != nil {
			return nil, fmt.Errorf("interface (%d,%d) side %d: %w", sd0.Attr, sd1.Attr, k, derr)
		}
		ifc.mapInj[k] = NewMapInjection(ifc.ND, dm)
	}
	return
}

// side returns the local side index of subdomain sd on this interface.
func (ifc *Interface) side(sd int) int {
	if ifc.SD[0] == sd {
		return 0
	}
	if ifc.SD[1] == sd {
		return 1
	}
	panic(fmt.Errorf("subdomain %d is not a neighbor of interface (%d,%d)", sd, ifc.SD[0], ifc.SD[1]))
}

// MapInjectionFor returns the edge-trace injection onto subdomain sd.
func (ifc *Interface) MapInjectionFor(sd int) *MapInjection {
	return ifc.mapInj[ifc.side(sd)]
}

// TraceSize is the interface's contribution to a neighboring subdomain's
// block layout: edge-trace plus nodal-trace true DOFs.
func (ifc *Interface) TraceSize() int {
	return ifc.ND.TrueVSize() + ifc.H1.TrueVSize()
}

// CreateCij builds the interface coupling block relating the trace
// unknowns of one side to the full trace stack of the other: two row
// blocks (tangential field, tangential curl) against three column blocks
// (tangential field, tangential curl, nodal potential).
func (ifc *Interface) CreateCij(cp *InputParameters.CouplingParameters) (b *operators.BlockOperator) {
	var (
		ifND = ifc.ND.TrueVSize()
		ifH1 = ifc.H1.TrueVSize()
		mass = operators.NewMatrixOperator(ifc.NDMass)
		cc   = operators.NewMatrixOperator(ifc.NDCurlCurl)
		grad = operators.NewMatrixOperator(ifc.NDH1Grad)
	)
	rows := operators.NewOffsetsBuilder().Append(ifND).Append(ifND).Build()
	cols := operators.NewOffsetsBuilder().Append(ifND).Append(ifND).Append(ifH1).Build()
	b = operators.NewBlockOperator(rows, cols)

	b.SetBlock(0, 0, operators.NewSum(mass, cc, cp.Alpha, cp.Beta))
	b.SetBlock(0, 1, mass, -1.0)
	b.SetBlock(0, 2, grad, -cp.Gamma)
	b.SetBlock(1, 0, operators.NewSum(mass, cc, -1.0, -cp.Beta/cp.Alpha))
	b.SetBlock(1, 1, mass, 1.0/cp.Alpha)
	b.SetBlock(1, 2, grad, cp.Gamma/cp.Alpha)
	return
}
