/*
Copyright © 2026 the OMIX authors.
This file is part of OMIX.

OMIX is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

OMIX is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with OMIX.  If not, see <http://www.gnu.org/licenses/>.
*/

package omix

import (
	"math"

	"github.com/ctessum/sparse"
)

// Mesh holds the topology and geometry of an unstructured polygonal
// ocean mesh. Cells and edges are 0-indexed. Index NCells of the cell
// dimension is a ghost cell: a sentinel slot that boundary edges refer to
// instead of a real neighbor. Field arrays sized over cells must include
// the ghost slot and hold it at zero, which makes boundary edges behave
// as a zero-Dirichlet condition without special-case logic in the
// operators.
//
// A Mesh is read-only during operator calls; OMIX never mutates one after
// construction.
type Mesh struct {
	NCells      int // number of (real) cells
	NEdges      int // number of edges
	NVertLevels int // number of vertical levels

	// EdgesOnCell[c] lists the edges incident to cell c in order around
	// the cell. Its length is the degree of the cell.
	EdgesOnCell [][]int

	// EdgeSignOnCell[c][i] is the orientation (±1) of edge
	// EdgesOnCell[c][i] relative to cell c's outward normal: -1 when c is
	// the edge's first neighbor, +1 when it is the second.
	EdgeSignOnCell [][]float64

	AreaCell []float64 // cell area [m²]

	// MaxLevelCell[c] is the number of active vertical levels in the
	// water column at cell c; levels k < MaxLevelCell[c] are wet.
	MaxLevelCell []int

	// CellsOnEdge[e] gives the two cells adjoining edge e. Boundary edges
	// use the ghost index (NCells) for the missing neighbor.
	CellsOnEdge [][2]int

	DcEdge []float64 // distance between the two adjoining cell centers [m]
	DvEdge []float64 // length of the edge itself [m]

	// MaxLevelEdgeTop[e] is the number of levels at which edge e is wet:
	// the minimum of the two adjoining columns' depths.
	MaxLevelEdgeTop []int

	// MeshScalingDel4[e] is a dimensionless local-resolution factor
	// applied to the biharmonic diffusivity at edge e.
	MeshScalingDel4 []float64

	// EdgeMask has shape [NVertLevels, NEdges] and is 1 where an edge is
	// part of the active water column at a level and 0 elsewhere.
	EdgeMask *sparse.DenseArray
}

// Ghost returns the cell index used as the ghost (boundary sentinel) slot.
func (m *Mesh) Ghost() int { return m.NCells }

// ComputeEdgeSigns fills EdgeSignOnCell from the CellsOnEdge orientation:
// an edge's positive normal points from its first neighbor to its second,
// so the sign is -1 for the first neighbor and +1 for the second.
func (m *Mesh) ComputeEdgeSigns() {
	m.EdgeSignOnCell = make([][]float64, m.NCells)
	for c := 0; c < m.NCells; c++ {
		m.EdgeSignOnCell[c] = make([]float64, len(m.EdgesOnCell[c]))
		for i, e := range m.EdgesOnCell[c] {
			if m.CellsOnEdge[e][0] == c {
				m.EdgeSignOnCell[c][i] = -1
			} else {
				m.EdgeSignOnCell[c][i] = 1
			}
		}
	}
}

// ComputeEdgeDepths derives MaxLevelEdgeTop and EdgeMask from
// MaxLevelCell. An edge is wet at the levels where both adjoining columns
// are wet. A ghost neighbor imposes no constraint, so boundary edges stay
// as wet as their one real column; with ghost field values held at zero
// they then act as a zero-Dirichlet open boundary.
func (m *Mesh) ComputeEdgeDepths() {
	m.MaxLevelEdgeTop = make([]int, m.NEdges)
	for e := 0; e < m.NEdges; e++ {
		kmax := m.NVertLevels
		constrained := false
		for _, c := range m.CellsOnEdge[e] {
			if c == m.Ghost() {
				continue
			}
			constrained = true
			if m.MaxLevelCell[c] < kmax {
				kmax = m.MaxLevelCell[c]
			}
		}
		if !constrained {
			kmax = 0
		}
		m.MaxLevelEdgeTop[e] = kmax
	}
	m.EdgeMask = sparse.ZerosDense(m.NVertLevels, m.NEdges)
	for e := 0; e < m.NEdges; e++ {
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			m.EdgeMask.Set(1, k, e)
		}
	}
}

// ComputeMeshScaling fills MeshScalingDel4 with (dcEdge/refWidth)^power,
// so that coarse regions of a variable-resolution mesh receive more
// damping than fine ones. Power 3 is the usual biharmonic convention.
// A refWidth <= 0 disables scaling (all factors 1).
func (m *Mesh) ComputeMeshScaling(refWidth float64, power float64) {
	m.MeshScalingDel4 = make([]float64, m.NEdges)
	for e := 0; e < m.NEdges; e++ {
		if refWidth <= 0 {
			m.MeshScalingDel4[e] = 1
		} else {
			m.MeshScalingDel4[e] = math.Pow(m.DcEdge[e]/refWidth, power)
		}
	}
}

// derive fills in all quantities computable from the primary mesh fields.
func (m *Mesh) derive() {
	m.ComputeEdgeSigns()
	m.ComputeEdgeDepths()
	if m.MeshScalingDel4 == nil {
		m.ComputeMeshScaling(0, 3)
	}
}

// HexTestMesh returns a unit test mesh: one hexagonal cell (index 0)
// surrounded by 6 neighbor cells, one spoke edge per neighbor, unit areas
// and distances, and a single vertical level. The neighbors have no edges
// between each other, so the center cell is the only one with a full
// stencil.
func HexTestMesh() *Mesh {
	const n = 6
	m := &Mesh{
		NCells:      n + 1,
		NEdges:      n,
		NVertLevels: 1,
	}
	m.EdgesOnCell = make([][]int, m.NCells)
	m.CellsOnEdge = make([][2]int, n)
	m.EdgesOnCell[0] = make([]int, n)
	for e := 0; e < n; e++ {
		m.EdgesOnCell[0][e] = e
		m.EdgesOnCell[e+1] = []int{e}
		m.CellsOnEdge[e] = [2]int{0, e + 1}
	}
	m.AreaCell = make([]float64, m.NCells)
	m.MaxLevelCell = make([]int, m.NCells)
	for c := range m.AreaCell {
		m.AreaCell[c] = 1
		m.MaxLevelCell[c] = 1
	}
	m.DcEdge = make([]float64, n)
	m.DvEdge = make([]float64, n)
	for e := 0; e < n; e++ {
		m.DcEdge[e] = 1
		m.DvEdge[e] = 1
	}
	m.derive()
	return m
}

// hexDirs are the six neighbor offsets of a hexagonal tiling in axial
// coordinates, in order around a cell. Direction d+3 is the reverse of
// direction d.
var hexDirs = [6][2]int{{1, 0}, {0, 1}, {-1, 1}, {-1, 0}, {0, -1}, {1, -1}}

// PeriodicHexMesh returns a doubly periodic (toroidal) tiling of nx×ny
// regular hexagonal cells with nLevels vertical levels, unit distance
// between adjacent cell centers, and no boundary edges. Because the mesh
// is closed, area-weighted sums of divergence quantities over it vanish
// exactly, which the conservation tests rely on.
func PeriodicHexMesh(nx, ny, nLevels int) *Mesh {
	nc := nx * ny
	m := &Mesh{
		NCells:      nc,
		NEdges:      3 * nc,
		NVertLevels: nLevels,
	}
	wrap := func(i, j int) int {
		i = ((i % nx) + nx) % nx
		j = ((j % ny) + ny) % ny
		return j*nx + i
	}
	// Each cell owns the edges in its first three directions; the other
	// three are owned by the respective neighbors.
	m.EdgesOnCell = make([][]int, nc)
	m.CellsOnEdge = make([][2]int, m.NEdges)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			c := j*nx + i
			m.EdgesOnCell[c] = make([]int, 6)
			for d := 0; d < 3; d++ {
				e := 3*c + d
				m.EdgesOnCell[c][d] = e
				m.CellsOnEdge[e] = [2]int{c, wrap(i+hexDirs[d][0], j+hexDirs[d][1])}
			}
			for d := 3; d < 6; d++ {
				n := wrap(i+hexDirs[d][0], j+hexDirs[d][1])
				m.EdgesOnCell[c][d] = 3*n + d - 3
			}
		}
	}
	// Regular hexagons with unit center-to-center spacing.
	hexArea := math.Sqrt(3) / 2
	hexSide := 1 / math.Sqrt(3)
	m.AreaCell = make([]float64, nc)
	m.MaxLevelCell = make([]int, nc)
	for c := 0; c < nc; c++ {
		m.AreaCell[c] = hexArea
		m.MaxLevelCell[c] = nLevels
	}
	m.DcEdge = make([]float64, m.NEdges)
	m.DvEdge = make([]float64, m.NEdges)
	for e := 0; e < m.NEdges; e++ {
		m.DcEdge[e] = 1
		m.DvEdge[e] = hexSide
	}
	m.derive()
	return m
}
