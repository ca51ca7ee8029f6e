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
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// Ocean mesh files use the common unstructured-mesh NetCDF layout:
// connectivity variables are 1-based with 0 marking a missing neighbor,
// and per-cell edge lists are padded out to a fixed maxEdges width.
// ReadMesh converts that layout to the 0-based ragged in-memory form,
// mapping missing neighbors to the ghost cell index, and derives the
// quantities the mixing operators need (edge signs, edge depths and
// masks, and mesh scaling factors).
func ReadMesh(ff *cdf.File) (*Mesh, error) {
	nEdgesOnCell, err := readIntVar(ff, "nEdgesOnCell")
	if err != nil {
		return nil, err
	}
	edgesOnCell, err := readIntVar(ff, "edgesOnCell")
	if err != nil {
		return nil, err
	}
	cellsOnEdge, err := readIntVar(ff, "cellsOnEdge")
	if err != nil {
		return nil, err
	}
	maxLevelCell, err := readIntVar(ff, "maxLevelCell")
	if err != nil {
		return nil, err
	}
	areaCell, err := readFloatVar(ff, "areaCell")
	if err != nil {
		return nil, err
	}
	dcEdge, err := readFloatVar(ff, "dcEdge")
	if err != nil {
		return nil, err
	}
	dvEdge, err := readFloatVar(ff, "dvEdge")
	if err != nil {
		return nil, err
	}

	m := &Mesh{
		NCells:       len(areaCell),
		NEdges:       len(dcEdge),
		AreaCell:     areaCell,
		DcEdge:       dcEdge,
		DvEdge:       dvEdge,
		MaxLevelCell: maxLevelCell,
	}
	// The vertical extent comes from the nVertLevels dimension when the
	// file carries it; a column can be shallower than the grid, so the
	// deepest column is only a lower bound and is used as a fallback.
	for _, kmax := range maxLevelCell {
		if kmax > m.NVertLevels {
			m.NVertLevels = kmax
		}
	}
	names := ff.Header.Dimensions("")
	lengths := ff.Header.Lengths("")
	for i, name := range names {
		if name != "nVertLevels" || lengths[i] <= 0 {
			continue
		}
		if lengths[i] < m.NVertLevels {
			return nil, fmt.Errorf("omix: reading mesh: nVertLevels %d is less than the deepest maxLevelCell %d",
				lengths[i], m.NVertLevels)
		}
		m.NVertLevels = lengths[i]
	}

	if len(edgesOnCell)%m.NCells != 0 {
		return nil, fmt.Errorf("omix: reading mesh: edgesOnCell length %d is not a multiple of nCells %d",
			len(edgesOnCell), m.NCells)
	}
	maxEdges := len(edgesOnCell) / m.NCells
	m.EdgesOnCell = make([][]int, m.NCells)
	for c := 0; c < m.NCells; c++ {
		deg := nEdgesOnCell[c]
		if deg > maxEdges {
			return nil, fmt.Errorf("omix: reading mesh: cell %d has degree %d > maxEdges %d",
				c, deg, maxEdges)
		}
		m.EdgesOnCell[c] = make([]int, deg)
		for i := 0; i < deg; i++ {
			m.EdgesOnCell[c][i] = edgesOnCell[c*maxEdges+i] - 1
		}
	}

	if len(cellsOnEdge) != 2*m.NEdges {
		return nil, fmt.Errorf("omix: reading mesh: cellsOnEdge length %d does not match 2×nEdges %d",
			len(cellsOnEdge), 2*m.NEdges)
	}
	m.CellsOnEdge = make([][2]int, m.NEdges)
	for e := 0; e < m.NEdges; e++ {
		for j := 0; j < 2; j++ {
			c := cellsOnEdge[e*2+j]
			if c == 0 { // missing neighbor: boundary edge
				m.CellsOnEdge[e][j] = m.Ghost()
			} else {
				m.CellsOnEdge[e][j] = c - 1
			}
		}
	}

	m.derive()
	return m, nil
}

// ReadMeshFile opens the NetCDF mesh file at path and reads the mesh
// from it.
func ReadMeshFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("omix: opening mesh file: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("omix: reading mesh file header: %v", err)
	}
	return ReadMesh(ff)
}

// readIntVar reads an integer variable out of netcdf file ff,
// flattened to one dimension.
func readIntVar(ff *cdf.File, name string) ([]int, error) {
	buf, err := readVar(ff, name)
	if err != nil {
		return nil, err
	}
	switch b := buf.(type) {
	case []int32:
		out := make([]int, len(b))
		for i, v := range b {
			out[i] = int(v)
		}
		return out, nil
	case []int16:
		out := make([]int, len(b))
		for i, v := range b {
			out[i] = int(v)
		}
		return out, nil
	case []int8:
		out := make([]int, len(b))
		for i, v := range b {
			out[i] = int(v)
		}
		return out, nil
	case []uint8:
		out := make([]int, len(b))
		for i, v := range b {
			out[i] = int(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("omix: mesh variable %s is not integer-typed", name)
	}
}

// readFloatVar reads a floating-point variable out of netcdf file ff,
// flattened to one dimension.
func readFloatVar(ff *cdf.File, name string) ([]float64, error) {
	buf, err := readVar(ff, name)
	if err != nil {
		return nil, err
	}
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("omix: mesh variable %s is not float-typed", name)
	}
}

func readVar(ff *cdf.File, name string) (interface{}, error) {
	dims := ff.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("omix: mesh variable %s not in file", name)
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	// The end corner is one past the last index; with the exact corner a
	// full read of a fixed variable reports io.EOF.
	begin := make([]int, len(dims))
	end := make([]int, len(dims))
	end[0] = dims[0]
	r := ff.Reader(name, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("omix: reading mesh variable %s: %v", name, err)
	}
	return buf, nil
}
