package ddcouple

import (
	"fmt"

	"github.com/biswajitcsecu/mfem/InputParameters"
	"github.com/biswajitcsecu/mfem/fespace"
	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/operators"
	"github.com/biswajitcsecu/mfem/solvers"
)

// DDInterfaceOperator couples the subdomains of a non-overlapping
// decomposition through their interface trace unknowns. Its vector space
// stacks, per subdomain, the surface true DOFs followed by the trace DOFs
// of every interface the subdomain touches; Mult applies
//
//	I + invAsd * C
//
// where C gathers the interface coupling blocks and invAsd the local
// subdomain solves.
type DDInterfaceOperator struct {
	Params *InputParameters.CouplingParameters
	Parent *mesh.Mesh

	SDs []*Subdomain
	IFs []*Interface

	sdIfs  [][]int // per subdomain, interface indices in block order
	layout operators.Offsets

	localOps []*operators.BlockOperator
	localInv []*solvers.GMRES

	interfaceOp *operators.BlockOperator
	subdomainOp *operators.BlockOperator
	globalOp    operators.Operator
}

// NewDDInterfaceOperator builds the full coupling operator over the
// subdomains selected by attrs in the parent mesh. Subdomain pairs that
// share no face simply get no interface.
func NewDDInterfaceOperator(parent *mesh.Mesh, attrs []int, asm fespace.FormAssembler,
	cp *InputParameters.CouplingParameters) (op *DDInterfaceOperator, err error) {
	op = &DDInterfaceOperator{
		Params: cp,
		Parent: parent,
		sdIfs:  make([][]int, len(attrs)),
	}
	for m, attr := range attrs {
		sd, serr := NewSubdomain(parent, m, attr, cp.Order, asm, cp.K2)
		if serr != nil {
			return nil, fmt.Errorf("subdomain %d: %w", attr, serr)
		}
		op.SDs = append(op.SDs, sd)
	}
	for i := 0; i < len(op.SDs); i++ {
		for j := i + 1; j < len(op.SDs); j++ {
			ifc, ierr := NewInterface(parent, op.SDs[i], op.SDs[j], asm, cp)
			if ierr != nil {
				return nil, ierr
			}
			if ifc == nil {
				continue
			}
			ili := len(op.IFs)
			op.IFs = append(op.IFs, ifc)
			op.sdIfs[i] = append(op.sdIfs[i], ili)
			op.sdIfs[j] = append(op.sdIfs[j], ili)
		}
	}

	lb := operators.NewOffsetsBuilder()
	for m := range op.SDs {
		lb.Append(op.SDs[m].BdrySize() + op.traceSize(m))
	}
	op.layout = lb.Build()

	if err = op.buildLocalSolvers(); err != nil {
		return nil, err
	}
	op.buildGlobal()
	return
}

// traceSize is subdomain m's total interface trace DOF count.
func (op *DDInterfaceOperator) traceSize(m int) (n int) {
	for _, ili := range op.sdIfs[m] {
		n += op.IFs[ili].TraceSize()
	}
	return
}

// traceOffset is the position of interface ili within subdomain m's trace
// stack.
func (op *DDInterfaceOperator) traceOffset(m, ili int) (n int) {
	for _, i := range op.sdIfs[m] {
		if i == ili {
			return
		}
		n += op.IFs[i].TraceSize()
	}
	panic(fmt.Errorf("interface %d is not registered with subdomain %d", ili, m))
}

// BlockOffsets exposes the global per-subdomain partition.
func (op *DDInterfaceOperator) BlockOffsets() operators.Offsets { return op.layout }

func (op *DDInterfaceOperator) Height() int { return op.layout.Last() }
func (op *DDInterfaceOperator) Width() int  { return op.layout.Last() }

func (op *DDInterfaceOperator) Mult(x, y []float64) {
	op.globalOp.Mult(x, y)
}

func (op *DDInterfaceOperator) MultTranspose(x, y []float64) {
	op.globalOp.MultTranspose(x, y)
}

// LocalStats reports the outcome of subdomain m's most recent local solve.
func (op *DDInterfaceOperator) LocalStats(m int) solvers.Stats {
	return op.localInv[m].LastStats
}

// localOffsets lays out subdomain m's local operator: the subdomain's own
// true DOFs, then per interface its edge-trace and nodal-trace blocks.
func (op *DDInterfaceOperator) localOffsets(m int) operators.Offsets {
	b := operators.NewOffsetsBuilder().Append(op.SDs[m].ND.TrueVSize())
	for _, ili := range op.sdIfs[m] {
		b.Append(op.IFs[ili].ND.TrueVSize()).Append(op.IFs[ili].H1.TrueVSize())
	}
	return b.Build()
}

// createSubdomainOperator assembles subdomain m's local coupled system:
// the volume operator bordered by the trace equations of each interface.
func (op *DDInterfaceOperator) createSubdomainOperator(m int) (b *operators.BlockOperator) {
	var (
		cp = op.Params
		sd = op.SDs[m]
	)
	b = operators.NewSquareBlockOperator(op.localOffsets(m))
	b.SetBlock(0, 0, operators.NewMatrixOperator(sd.A))
	for i, ili := range op.sdIfs[m] {
		var (
			ifc    = op.IFs[ili]
			mapInj = ifc.MapInjectionFor(m)
			mass   = operators.NewMatrixOperator(ifc.NDMass)
			cc     = operators.NewMatrixOperator(ifc.NDCurlCurl)
			grad   = operators.NewMatrixOperator(ifc.NDH1Grad)
			h1m    = operators.NewMatrixOperator(ifc.H1Mass)
		)
		b.SetBlock(0, 2*i+2, operators.NewProduct(mapInj, grad), -cp.Gamma)
		b.SetBlock(2*i+1, 0, operators.NewProduct(
			operators.NewSum(mass, cc, 1.0, cp.Beta/cp.Alpha),
			operators.NewTranspose(mapInj)))
		b.SetBlock(2*i+1, 2*i+1, mass, 1.0/cp.Alpha)
		b.SetBlock(2*i+1, 2*i+2, grad, cp.Gamma/cp.Alpha)
		b.SetBlock(2*i+2, 2*i+1, operators.NewTranspose(grad))
		b.SetBlock(2*i+2, 2*i+2, h1m)
	}
	return
}

// createSubdomainPreconditioner factors the diagonal blocks of subdomain
// m's local system.
func (op *DDInterfaceOperator) createSubdomainPreconditioner(m int) (p *operators.BlockDiagonal, err error) {
	var (
		cp = op.Params
		sd = op.SDs[m]
	)
	p = operators.NewBlockDiagonal(op.localOffsets(m))
	d0, err := solvers.NewDirectSolver(sd.A)
	if err != nil {
		return nil, fmt.Errorf("%w: subdomain %d volume operator: %v", ErrExternalSolver, sd.Attr, err)
	}
	p.SetDiagonalBlock(0, d0)
	for i, ili := range op.sdIfs[m] {
		ifc := op.IFs[ili]
		dm, merr := solvers.NewDirectSolver(ifc.NDMass)
		if merr != nil {
			return nil, fmt.Errorf("%w: interface (%d,%d) edge mass: %v",
				ErrExternalSolver, ifc.SD[0], ifc.SD[1], merr)
		}
		p.SetDiagonalBlock(2*i+1, operators.NewScaled(dm, cp.Alpha))
		dh, herr := solvers.NewDirectSolver(ifc.H1Mass)
		if herr != nil {
			return nil, fmt.Errorf("%w: interface (%d,%d) nodal mass: %v",
				ErrExternalSolver, ifc.SD[0], ifc.SD[1], herr)
		}
		p.SetDiagonalBlock(2*i+2, dh)
	}
	return
}

func (op *DDInterfaceOperator) buildLocalSolvers() (err error) {
	var (
		cp = op.Params
	)
	op.localOps = make([]*operators.BlockOperator, len(op.SDs))
	op.localInv = make([]*solvers.GMRES, len(op.SDs))
	for m := range op.SDs {
		op.localOps[m] = op.createSubdomainOperator(m)
		p, perr := op.createSubdomainPreconditioner(m)
		if perr != nil {
			return perr
		}
		g := solvers.NewGMRES(op.localOps[m], p, cp.RelTol, cp.MaxIterations, cp.RestartLen)
		// Local solves only report at elevated verbosity.
		g.PrintLevel = cp.PrintLevel - 1
		op.localInv[m] = g
	}
	return
}

// createInterfaceOperator builds the global coupling block carrying
// interface ili's trace equations from one neighboring subdomain's block
// into the other's. orientation 1 swaps the roles of the two sides.
func (op *DDInterfaceOperator) createInterfaceOperator(ili, orientation int) operators.Operator {
	var (
		ifc    = op.IFs[ili]
		s0, s1 = ifc.SD[0], ifc.SD[1]
	)
	if orientation == 1 {
		s0, s1 = s1, s0
	}
	var (
		sd0, sd1 = op.SDs[s0], op.SDs[s1]
		ifND     = ifc.ND.TrueVSize()
		ifH1     = ifc.H1.TrueVSize()
		sd0os    = op.traceOffset(s0, ili)
		sd1os    = op.traceOffset(s1, ili)
	)
	cij := ifc.CreateCij(op.Params)

	// Carry the trace unknowns between interface and subdomain numberings.
	left := operators.NewBlockOperator(
		operators.NewOffsetsBuilder().Append(sd0.BdrySize()).Append(ifND).Build(),
		operators.NewOffsetsBuilder().Append(ifND).Append(ifND).Build())
	left.SetBlock(0, 0, operators.NewProduct(
		operators.NewTranspose(sd0.SetInjectionOp()), ifc.MapInjectionFor(s0)))
	left.SetBlock(1, 1, operators.NewIdentity(ifND))

	right := operators.NewBlockOperator(
		operators.NewOffsetsBuilder().Append(ifND).Append(ifND+ifH1).Build(),
		operators.NewOffsetsBuilder().Append(sd1.BdrySize()).Append(ifND+ifH1).Build())
	right.SetBlock(0, 0, operators.NewProduct(
		operators.NewTranspose(ifc.MapInjectionFor(s1)), sd1.SetInjectionOp()))
	right.SetBlock(1, 1, operators.NewIdentity(ifND+ifH1))

	cijS := operators.NewTripleProduct(left, cij, right)

	// Place the interface's slots within each subdomain's trace stack.
	var (
		sd0osComp = op.traceSize(s0) - sd0os - ifND
		sd1osComp = op.traceSize(s1) - sd1os - (ifND + ifH1)
	)
	injLeft := operators.NewBlockOperator(
		operators.NewOffsetsBuilder().
			Append(sd0.BdrySize()).Append(sd0os).Append(ifND).Append(sd0osComp).Build(),
		operators.NewOffsetsBuilder().Append(sd0.BdrySize()).Append(ifND).Build())
	injLeft.SetBlock(0, 0, operators.NewIdentity(sd0.BdrySize()))
	injLeft.SetBlock(2, 1, operators.NewIdentity(ifND))

	injRight := operators.NewBlockOperator(
		operators.NewOffsetsBuilder().Append(sd1.BdrySize()).Append(ifND+ifH1).Build(),
		operators.NewOffsetsBuilder().
			Append(sd1.BdrySize()).Append(sd1os).Append(ifND+ifH1).Append(sd1osComp).Build())
	injRight.SetBlock(0, 0, operators.NewIdentity(sd1.BdrySize()))
	injRight.SetBlock(1, 2, operators.NewIdentity(ifND+ifH1))

	return operators.NewTripleProduct(injLeft, cijS, injRight)
}

// buildGlobal composes the global operator: interface coupling blocks,
// locally-solved diagonal blocks, and the identity shift.
func (op *DDInterfaceOperator) buildGlobal() {
	op.interfaceOp = operators.NewSquareBlockOperator(op.layout)
	for ili, ifc := range op.IFs {
		op.interfaceOp.SetBlock(ifc.SD[0], ifc.SD[1], op.createInterfaceOperator(ili, 0))
		op.interfaceOp.SetBlock(ifc.SD[1], ifc.SD[0], op.createInterfaceOperator(ili, 1))
	}

	op.subdomainOp = operators.NewSquareBlockOperator(op.layout)
	for m, sd := range op.SDs {
		inj := operators.NewBlockOperator(
			operators.NewOffsetsBuilder().Append(sd.ND.TrueVSize()).Append(op.traceSize(m)).Build(),
			operators.NewOffsetsBuilder().Append(sd.BdrySize()).Append(op.traceSize(m)).Build())
		inj.SetBlock(0, 0, sd.SetInjectionOp())
		inj.SetBlock(1, 1, operators.NewIdentity(op.traceSize(m)))
		op.subdomainOp.SetBlock(m, m, operators.NewTripleProduct(
			operators.NewTranspose(inj), op.localInv[m], inj))
	}

	op.globalOp = operators.NewSum(
		operators.NewProduct(op.subdomainOp, op.interfaceOp),
		operators.NewIdentity(op.layout.Last()), 1.0, 1.0)
}
