package ddcouple

import (
	"fmt"

	"github.com/biswajitcsecu/mfem/fespace"
	"github.com/biswajitcsecu/mfem/utils"
)

// SetInjection scatters a compact vector into a taller one along an ordered
// index set: y[ids[k]] = x[k], with every other entry of y zero. Its
// transpose gathers the same entries back out.
type SetInjection struct {
	height int
	ids    utils.Index
}

func NewSetInjection(height int, ids utils.Index) (s *SetInjection) {
	if height < len(ids) {
		panic(fmt.Errorf("injection height %d below index set size %d", height, len(ids)))
	}
	if err := ids.Validate(0, height); err != nil {
		panic(err)
	}
	s = &SetInjection{
		height: height,
		ids:    ids,
	}
	return
}

func (s *SetInjection) Height() int { return s.height }
func (s *SetInjection) Width() int  { return len(s.ids) }

func (s *SetInjection) Mult(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	for k, id := range s.ids {
		y[id] = x[k]
	}
}

func (s *SetInjection) MultTranspose(x, y []float64) {
	for k, id := range s.ids {
		y[k] = x[id]
	}
}

// MapInjection carries interface true-DOF vectors onto subdomain true-DOF
// vectors through a DofMap. The forward direction expands to the interface
// space's full DOFs first, so mapped entries owned by other processes
// contribute nothing here, matching the distributed ownership split.
type MapInjection struct {
	ifs  *fespace.Space
	dm   DofMap
	full []float64 // scratch, interface full DOFs
}

func NewMapInjection(ifs *fespace.Space, dm DofMap) (m *MapInjection) {
	if dm.Len() != ifs.VSize() {
		panic(fmt.Errorf("DOF map length %d does not match interface full DOF count %d",
			dm.Len(), ifs.VSize()))
	}
	if dm.Height() < ifs.TrueVSize() {
		panic(fmt.Errorf("injection height %d below interface true DOF count %d",
			dm.Height(), ifs.TrueVSize()))
	}
	m = &MapInjection{
		ifs:  ifs,
		dm:   dm,
		full: make([]float64, ifs.VSize()),
	}
	return
}

func (m *MapInjection) Height() int { return m.dm.Height() }
func (m *MapInjection) Width() int  { return m.ifs.TrueVSize() }

func (m *MapInjection) Mult(x, y []float64) {
	m.ifs.SetFromTrueDofs(x, m.full)
	for i := range y {
		y[i] = 0
	}
	for i := range m.full {
		if t, ok := m.dm.Lookup(i); ok {
			y[t] = m.full[i]
		}
	}
}

func (m *MapInjection) MultTranspose(x, y []float64) {
	for i := range m.full {
		if t, ok := m.dm.Lookup(i); ok {
			m.full[i] = x[t]
		} else {
			m.full[i] = 0
		}
	}
	m.ifs.GetTrueDofs(m.full, y)
}
