package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biswajitcsecu/mfem/utils"
)

func TestCartesianHex(t *testing.T) {
	{
		m, err := NewCartesianHex(2, 1, 1, 0, 2, 0, 1, 0, 1)
		assert.NoError(t, err)
		assert.Equal(t, 12, m.NumVertices())
		assert.Equal(t, 2, m.NumElements())
		assert.Equal(t, 11, m.NumFaces()) // 2*6 minus the shared face
		assert.Equal(t, 20, m.NumEdges()) // 2*12 minus the 4 shared

		bdry := m.BoundaryFaces()
		assert.Equal(t, 10, len(bdry))

		// every face perimeter resolves in the edge table
		for f := 0; f < m.NumFaces(); f++ {
			assert.Equal(t, len(m.FaceVertices(f)), len(m.FaceEdgeIndices(f)))
		}
	}
	{
		_, err := NewCartesianHex(0, 1, 1, 0, 1, 0, 1, 0, 1)
		assert.Error(t, err)
	}
}

func TestSubdomainExtraction(t *testing.T) {
	m, err := NewCartesianHex(2, 1, 1, 0, 2, 0, 1, 0, 1)
	assert.NoError(t, err)
	m.SetAttributesBy(func(c [3]float64) int {
		if c[0] < 1 {
			return 1
		}
		return 2
	})
	assert.Equal(t, 1, m.Attribute(0))
	assert.Equal(t, 2, m.Attribute(1))

	{
		sd, err := ExtractSubdomain(m, 1)
		assert.NoError(t, err)
		assert.Equal(t, 1, sd.NumElements())
		assert.Equal(t, 8, sd.NumVertices())
		// side channel: parent element index, one-based
		assert.Equal(t, 1, sd.Attribute(0))
	}
	{
		_, err := ExtractSubdomain(m, 7)
		assert.Error(t, err)
	}
	{
		faces := InterfaceFaces(m, 1, 2)
		assert.Equal(t, 1, len(faces))
		assert.Equal(t, 2, len(m.FaceElems[faces[0]]))

		ifm, err := ExtractInterface(m, faces)
		assert.NoError(t, err)
		assert.Equal(t, 2, ifm.Dim)
		assert.Equal(t, 1, ifm.NumElements())
		assert.Equal(t, 4, ifm.NumVertices())
		assert.Equal(t, 4, ifm.NumEdges())

		// the interface element sits at x=1
		for _, v := range ifm.ElementVertices(0) {
			assert.Equal(t, 1.0, ifm.Vertex(v)[0])
		}
	}
	{
		_, err := ExtractInterface(m, utils.Index{m.NumFaces()})
		assert.Error(t, err)
	}
}

func TestCoincidence(t *testing.T) {
	m, _ := NewCartesianHex(2, 1, 1, 0, 2, 0, 1, 0, 1)
	m.SetAttributesBy(func(c [3]float64) int {
		if c[0] < 1 {
			return 1
		}
		return 2
	})
	var (
		faces  = InterfaceFaces(m, 1, 2)
		ifm, _ = ExtractInterface(m, faces)
		sd, _  = ExtractSubdomain(m, 2)
	)
	{ // exactly one face of the neighboring element matches the interface
		matches := 0
		for _, f := range sd.ElementFaces(0) {
			if FacesCoincide(sd, f, ifm, 0, DefaultVertexTol) {
				matches++
			}
		}
		assert.Equal(t, 1, matches)
	}
	{ // every interface edge matches exactly one subdomain edge
		for _, ie := range ifm.ElementEdges(0) {
			matches := 0
			for e := 0; e < sd.NumEdges(); e++ {
				if ok, _ := EdgesCoincide(ifm, ie, sd, e, DefaultVertexTol); ok {
					matches++
				}
			}
			assert.Equal(t, 1, matches)
		}
	}
	{
		assert.True(t, VerticesCoincide([3]float64{1, 0, 0}, [3]float64{1, 0, 1.e-13}, DefaultVertexTol))
		assert.False(t, VerticesCoincide([3]float64{1, 0, 0}, [3]float64{1, 0, 1.e-11}, DefaultVertexTol))
	}
}

func TestFaceCoincidencePermutation(t *testing.T) {
	quad := func(verts [][3]float64) *Mesh {
		m, err := NewMesh(2, verts, [][]int{{0, 1, 2, 3}}, nil)
		assert.NoError(t, err)
		return m
	}
	var (
		a = quad([][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
		// same square, rotated vertex order
		b = quad([][3]float64{{1, 1, 0}, {0, 1, 0}, {0, 0, 0}, {1, 0, 0}})
		// one coordinate off by more than the tolerance
		c = quad([][3]float64{{0, 0, 1.e-9}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	)
	assert.True(t, FacesCoincide(a, 0, b, 0, DefaultVertexTol))
	assert.False(t, FacesCoincide(a, 0, c, 0, DefaultVertexTol))
}
