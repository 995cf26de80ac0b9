package ddcouple

import (
	"fmt"

	"github.com/biswajitcsecu/mfem/fespace"
	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/utils"
)

// Subdomain is one piece of the non-overlapping decomposition: its
// extracted mesh, edge space, surface true DOFs, and assembled volume
// operator curlcurl - k^2 mass.
type Subdomain struct {
	Index int // position in the decomposition
	Attr  int // parent-mesh attribute selecting this subdomain

	Mesh *mesh.Mesh
	ND   *fespace.Space

	BdryTdofs utils.Index
	A         utils.CSR // volume operator on true DOFs

	setInj *SetInjection
}

// NewSubdomain extracts the elements carrying attr from the parent mesh
// and assembles the subdomain's volume operator.
func NewSubdomain(parent *mesh.Mesh, index, attr, order int, asm fespace.FormAssembler,
	k2 float64) (sd *Subdomain, err error) {
	sdm, err := mesh.ExtractSubdomain(parent, attr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	sd = &Subdomain{
		Index: index,
		Attr:  attr,
		Mesh:  sdm,
		ND:    fespace.NewSpace(sdm, fespace.NewNedelec(order)),
	}
	sd.BdryTdofs = sd.ND.BoundaryTrueDofs()

	// A = curlcurl - k^2 mass, combined before true-DOF reduction.
	a := asm.CurlCurl(sd.ND)
	asm.Mass(sd.ND).M.DoNonZero(func(i, j int, v float64) {
		a.Accumulate(i, j, -k2*v)
	})
	sd.A = sd.ND.FormSystemMatrix(a, nil)

	sd.setInj = NewSetInjection(sd.ND.TrueVSize(), sd.BdryTdofs)
	return
}

// BdrySize is the number of surface true DOFs, the subdomain's share of the
// global trace vector.
func (sd *Subdomain) BdrySize() int { return len(sd.BdryTdofs) }

// SetInjectionOp scatters surface true-DOF vectors into the subdomain's
// full true-DOF space.
func (sd *Subdomain) SetInjectionOp() *SetInjection { return sd.setInj }
