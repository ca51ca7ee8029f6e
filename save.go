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

	"github.com/ctessum/cdf"
)

// WriteMesh writes mesh m to rw as a NetCDF file in the standard
// unstructured-mesh layout read by ReadMesh: 1-based connectivity with 0
// as the missing-neighbor sentinel and fixed-width padded edge lists.
func WriteMesh(rw cdf.ReaderWriterAt, m *Mesh) error {
	maxEdges := 0
	for _, edges := range m.EdgesOnCell {
		if len(edges) > maxEdges {
			maxEdges = len(edges)
		}
	}

	h := cdf.NewHeader(
		[]string{"nCells", "nEdges", "nVertLevels", "maxEdges", "TWO"},
		[]int{m.NCells, m.NEdges, m.NVertLevels, maxEdges, 2})
	h.AddVariable("nEdgesOnCell", []string{"nCells"}, []int32{0})
	h.AddVariable("edgesOnCell", []string{"nCells", "maxEdges"}, []int32{0})
	h.AddVariable("cellsOnEdge", []string{"nEdges", "TWO"}, []int32{0})
	h.AddVariable("maxLevelCell", []string{"nCells"}, []int32{0})
	h.AddVariable("areaCell", []string{"nCells"}, []float64{0})
	h.AddAttribute("areaCell", "units", "m2")
	h.AddVariable("dcEdge", []string{"nEdges"}, []float64{0})
	h.AddAttribute("dcEdge", "units", "m")
	h.AddVariable("dvEdge", []string{"nEdges"}, []float64{0})
	h.AddAttribute("dvEdge", "units", "m")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("omix: creating mesh file: %v", err)
	}
	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("omix: creating mesh file: %v", err)
	}

	nEdgesOnCell := make([]int32, m.NCells)
	edgesOnCell := make([]int32, m.NCells*maxEdges)
	for c, edges := range m.EdgesOnCell {
		nEdgesOnCell[c] = int32(len(edges))
		for i, e := range edges {
			edgesOnCell[c*maxEdges+i] = int32(e + 1)
		}
	}
	cellsOnEdge := make([]int32, 2*m.NEdges)
	for e, cells := range m.CellsOnEdge {
		for j, c := range cells {
			if c == m.Ghost() {
				cellsOnEdge[e*2+j] = 0
			} else {
				cellsOnEdge[e*2+j] = int32(c + 1)
			}
		}
	}
	maxLevelCell := make([]int32, m.NCells)
	for c, kmax := range m.MaxLevelCell {
		maxLevelCell[c] = int32(kmax)
	}

	// The end corner is one past the last index; with the exact corner a
	// full write of a fixed variable reports io.EOF.
	for _, v := range []struct {
		name       string
		data       interface{}
		begin, end []int
	}{
		{"nEdgesOnCell", nEdgesOnCell, []int{0}, []int{m.NCells}},
		{"edgesOnCell", edgesOnCell, []int{0, 0}, []int{m.NCells, 0}},
		{"cellsOnEdge", cellsOnEdge, []int{0, 0}, []int{m.NEdges, 0}},
		{"maxLevelCell", maxLevelCell, []int{0}, []int{m.NCells}},
		{"areaCell", m.AreaCell, []int{0}, []int{m.NCells}},
		{"dcEdge", m.DcEdge, []int{0}, []int{m.NEdges}},
		{"dvEdge", m.DvEdge, []int{0}, []int{m.NEdges}},
	} {
		w := f.Writer(v.name, v.begin, v.end)
		if _, err := w.Write(v.data); err != nil {
			return fmt.Errorf("omix: writing mesh variable %s: %v", v.name, err)
		}
	}
	return nil
}

// SaveResults writes the model's tracer and tendency fields to rw as a
// NetCDF file, dropping the ghost slot from the tracer arrays.
func (m *Model) SaveResults(rw cdf.ReaderWriterAt) error {
	g := m.Mesh
	nt, nk := m.Tracers.Shape[0], m.Tracers.Shape[1]
	ncg := m.Tracers.Shape[2]

	h := cdf.NewHeader(
		[]string{"nTracers", "nVertLevels", "nCells"},
		[]int{nt, nk, g.NCells})
	h.AddVariable("tracers", []string{"nTracers", "nVertLevels", "nCells"}, []float64{0})
	h.AddAttribute("tracers", "description", "tracer concentrations at cell centers")
	h.AddVariable("tend", []string{"nTracers", "nVertLevels", "nCells"}, []float64{0})
	h.AddAttribute("tend", "description", "horizontal mixing tendency")
	h.AddAttribute("tend", "units", "tracer units s-1")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("omix: creating results file: %v", err)
	}
	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("omix: creating results file: %v", err)
	}

	tracers := make([]float64, nt*nk*g.NCells)
	for t := 0; t < nt; t++ {
		for k := 0; k < nk; k++ {
			copy(tracers[(t*nk+k)*g.NCells:(t*nk+k+1)*g.NCells],
				m.Tracers.Elements[(t*nk+k)*ncg:(t*nk+k)*ncg+g.NCells])
		}
	}
	begin, end := []int{0, 0, 0}, []int{nt, 0, 0}
	w := f.Writer("tracers", begin, end)
	if _, err := w.Write(tracers); err != nil {
		return fmt.Errorf("omix: writing results variable tracers: %v", err)
	}
	w = f.Writer("tend", begin, end)
	if _, err := w.Write(m.Tend.Elements); err != nil {
		return fmt.Errorf("omix: writing results variable tend: %v", err)
	}
	return nil
}
