package mesh

import (
	"fmt"
)

// NewCartesianHex builds an nx x ny x nz hexahedral mesh of the box
// [x0,x1] x [y0,y1] x [z0,z1]. All elements get attribute 1.
func NewCartesianHex(nx, ny, nz int, x0, x1, y0, y1, z0, z1 float64) (m *Mesh, err error) {
	if nx < 1 || ny < 1 || nz < 1 {
		err = fmt.Errorf("invalid cartesian dimensions: %dx%dx%d", nx, ny, nz)
		return
	}
	var (
		nvx, nvy, nvz = nx + 1, ny + 1, nz + 1
		verts         = make([][3]float64, nvx*nvy*nvz)
		elems         = make([][]int, 0, nx*ny*nz)
	)
	vid := func(i, j, k int) int { return i + nvx*(j+nvy*k) }
	for k := 0; k < nvz; k++ {
		for j := 0; j < nvy; j++ {
			for i := 0; i < nvx; i++ {
				verts[vid(i, j, k)] = [3]float64{
					x0 + (x1-x0)*float64(i)/float64(nx),
					y0 + (y1-y0)*float64(j)/float64(ny),
					z0 + (z1-z0)*float64(k)/float64(nz),
				}
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				elems = append(elems, []int{
					vid(i, j, k), vid(i+1, j, k), vid(i+1, j+1, k), vid(i, j+1, k),
					vid(i, j, k+1), vid(i+1, j, k+1), vid(i+1, j+1, k+1), vid(i, j+1, k+1),
				})
			}
		}
	}
	return NewMesh(3, verts, elems, nil)
}
