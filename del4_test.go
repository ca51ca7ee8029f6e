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
	"testing"

	"github.com/ctessum/sparse"
)

const testTolerance = 1e-10

func TestNewDel4(t *testing.T) {
	tests := []struct {
		coef    float64
		use     bool
		enabled bool
		kappa   float64
	}{
		{coef: 5, use: true, enabled: true, kappa: 5},
		{coef: 5, use: false, enabled: false, kappa: 5},
		{coef: 0, use: true, enabled: false, kappa: 0},
		{coef: -1, use: true, enabled: false, kappa: 0},
		{coef: -1, use: false, enabled: false, kappa: 0},
	}
	for _, tt := range tests {
		d := NewDel4(tt.coef, tt.use)
		if d.Enabled != tt.enabled {
			t.Errorf("NewDel4(%g, %v): Enabled = %v, want %v",
				tt.coef, tt.use, d.Enabled, tt.enabled)
		}
		if d.Kappa != tt.kappa {
			t.Errorf("NewDel4(%g, %v): Kappa = %g, want %g",
				tt.coef, tt.use, d.Kappa, tt.kappa)
		}
	}
}

// hexFields returns unit-thickness and zero-tracer fields sized for m,
// with a single tracer.
func hexFields(m *Mesh) (thickness, tracers, tend *sparse.DenseArray) {
	thickness = sparse.ZerosDense(m.NVertLevels, m.NEdges)
	for e := 0; e < m.NEdges; e++ {
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			thickness.Set(1, k, e)
		}
	}
	tracers = sparse.ZerosDense(1, m.NVertLevels, m.NCells+1)
	tend = sparse.ZerosDense(1, m.NVertLevels, m.NCells)
	return
}

// TestTendencyHex checks the operator against hand-computed values on the
// hexagonal test mesh: a unit anomaly in one neighbor cell must drain, so
// its tendency is exactly -2κ, with +7κ in the center and -1κ in each of
// the remaining five neighbors.
func TestTendencyHex(t *testing.T) {
	const kappa = 1.0
	m := HexTestMesh()
	thickness, tracers, tend := hexFields(m)
	tracers.Set(1, 0, 0, 1)

	d := NewDel4(kappa, true)
	if err := d.Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}

	want := []float64{7, -2, -1, -1, -1, -1, -1}
	for c, w := range want {
		if got := tend.Get(0, 0, c); got != w*kappa {
			t.Errorf("cell %d: tendency = %g, want %g", c, got, w*kappa)
		}
	}
}

func TestTendencyDisabled(t *testing.T) {
	m := HexTestMesh()
	thickness, tracers, tend := hexFields(m)
	tracers.Set(1, 0, 0, 1)
	for i := range tend.Elements {
		tend.Elements[i] = float64(i) + 0.5
	}
	before := append([]float64(nil), tend.Elements...)

	d := NewDel4(5, false)
	if err := d.Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}
	for i, v := range tend.Elements {
		if v != before[i] {
			t.Fatalf("disabled mixer modified tend[%d]: %g != %g", i, v, before[i])
		}
	}
}

// TestTendencyAccumulates checks that Tendency adds to tend instead of
// overwriting it: two identical calls must produce exactly twice the
// contribution of one.
func TestTendencyAccumulates(t *testing.T) {
	m := HexTestMesh()
	thickness, tracers, tend := hexFields(m)
	tracers.Set(1, 0, 0, 3)

	d := NewDel4(2, true)
	if err := d.Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}
	once := append([]float64(nil), tend.Elements...)
	if err := d.Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}
	for i, v := range tend.Elements {
		if v != 2*once[i] {
			t.Errorf("tend[%d] after second call = %g, want %g", i, v, 2*once[i])
		}
	}
}

// TestTendencyLinearInKappa checks that the tendency scales linearly with
// the diffusivity and with the layer thickness; the thickness weight
// enters the first pass only, so uniform doubling of the thickness
// doubles the result once, not twice.
func TestTendencyLinearInKappa(t *testing.T) {
	m := HexTestMesh()
	thickness, tracers, tend := hexFields(m)
	tracers.Set(1, 0, 0, 1)

	if err := NewDel4(1, true).Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}
	base := append([]float64(nil), tend.Elements...)

	tend2 := sparse.ZerosDense(tend.Shape...)
	if err := NewDel4(3, true).Tendency(m, thickness, tracers, tend2); err != nil {
		t.Fatal(err)
	}
	for i := range tend2.Elements {
		if absDifferent(tend2.Elements[i], 3*base[i], testTolerance) {
			t.Errorf("kappa scaling: tend[%d] = %g, want %g", i, tend2.Elements[i], 3*base[i])
		}
	}

	for i := range thickness.Elements {
		thickness.Elements[i] *= 2
	}
	tend3 := sparse.ZerosDense(tend.Shape...)
	if err := NewDel4(1, true).Tendency(m, thickness, tracers, tend3); err != nil {
		t.Fatal(err)
	}
	for i := range tend3.Elements {
		if absDifferent(tend3.Elements[i], 2*base[i], testTolerance) {
			t.Errorf("thickness scaling: tend[%d] = %g, want %g", i, tend3.Elements[i], 2*base[i])
		}
	}
}

// TestTendencyConservation checks the finite-volume telescoping property
// on a closed (doubly periodic) mesh: every interior flux appears once
// with each sign, so area-weighted sums of both the intermediate
// Laplacian and the final tendency must vanish for every tracer and
// level.
func TestTendencyConservation(t *testing.T) {
	m := PeriodicHexMesh(5, 4, 3)
	const nTracers = 2
	thickness := sparse.ZerosDense(m.NVertLevels, m.NEdges)
	for e := 0; e < m.NEdges; e++ {
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			thickness.Set(1+0.1*float64(k), k, e)
		}
	}
	tracers := sparse.ZerosDense(nTracers, m.NVertLevels, m.NCells+1)
	for tr := 0; tr < nTracers; tr++ {
		for k := 0; k < m.NVertLevels; k++ {
			for c := 0; c < m.NCells; c++ {
				tracers.Set(math.Sin(float64(3*tr+2*k+c)), tr, k, c)
			}
		}
	}
	tend := sparse.ZerosDense(nTracers, m.NVertLevels, m.NCells)

	delsq := delsqTracer(m, thickness, tracers)
	d := NewDel4(0.7, true)
	if err := d.Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}

	for tr := 0; tr < nTracers; tr++ {
		for k := 0; k < m.NVertLevels; k++ {
			var sumDelsq, sumTend float64
			for c := 0; c < m.NCells; c++ {
				sumDelsq += m.AreaCell[c] * delsq.Get(tr, k, c)
				sumTend += m.AreaCell[c] * tend.Get(tr, k, c)
			}
			if absDifferent(sumDelsq, 0, testTolerance) {
				t.Errorf("tracer %d level %d: area-weighted Laplacian sum = %g, want 0", tr, k, sumDelsq)
			}
			if absDifferent(sumTend, 0, testTolerance) {
				t.Errorf("tracer %d level %d: area-weighted tendency sum = %g, want 0", tr, k, sumTend)
			}
		}
	}
}

// TestTendencyConstantField checks that a spatially uniform tracer
// produces an exactly zero tendency on a closed mesh: every edge
// difference vanishes before any rounding can occur.
func TestTendencyConstantField(t *testing.T) {
	m := PeriodicHexMesh(4, 3, 2)
	thickness, tracers, tend := hexFields(m)
	for k := 0; k < m.NVertLevels; k++ {
		for c := 0; c < m.NCells; c++ {
			tracers.Set(3.5, 0, k, c)
		}
	}
	for i := range tend.Elements {
		tend.Elements[i] = float64(i)
	}
	before := append([]float64(nil), tend.Elements...)

	if err := NewDel4(2, true).Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}
	for i, v := range tend.Elements {
		if v != before[i] {
			t.Errorf("constant field changed tend[%d]: %g != %g", i, v, before[i])
		}
	}
}

// TestTendencyEdgeMask checks that a zeroed mask entry removes the edge
// from both passes. On the hexagonal mesh, masking the only edge that
// touches the anomaly leaves every intermediate Laplacian value zero, so
// the whole tendency vanishes.
func TestTendencyEdgeMask(t *testing.T) {
	m := HexTestMesh()
	thickness, tracers, tend := hexFields(m)
	tracers.Set(1, 0, 0, 1)
	// DenseArray.Set ignores zero values, so clear the mask through
	// Elements.
	m.EdgeMask.Elements[m.EdgeMask.Index1d(0, 0)] = 0

	if err := NewDel4(1, true).Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}
	for i, v := range tend.Elements {
		if v != 0 {
			t.Errorf("tend[%d] = %g, want 0 with anomaly edge masked", i, v)
		}
	}
}

// TestTendencyMaskLevelIsolation checks that masking an edge at one level
// leaves the other levels bit-for-bit unchanged.
func TestTendencyMaskLevelIsolation(t *testing.T) {
	full := PeriodicHexMesh(4, 3, 2)
	masked := PeriodicHexMesh(4, 3, 2)
	masked.EdgeMask.Elements[masked.EdgeMask.Index1d(0, 5)] = 0

	run := func(m *Mesh) *sparse.DenseArray {
		thickness, tracers, tend := hexFields(m)
		for k := 0; k < m.NVertLevels; k++ {
			for c := 0; c < m.NCells; c++ {
				tracers.Set(math.Cos(float64(k+2*c)), 0, k, c)
			}
		}
		if err := NewDel4(1, true).Tendency(m, thickness, tracers, tend); err != nil {
			t.Fatal(err)
		}
		return tend
	}
	tendFull := run(full)
	tendMasked := run(masked)

	var changed bool
	for c := 0; c < full.NCells; c++ {
		if tendMasked.Get(0, 1, c) != tendFull.Get(0, 1, c) {
			t.Errorf("cell %d: masking level 0 changed level 1: %g != %g",
				c, tendMasked.Get(0, 1, c), tendFull.Get(0, 1, c))
		}
		if tendMasked.Get(0, 0, c) != tendFull.Get(0, 0, c) {
			changed = true
		}
	}
	if !changed {
		t.Error("masking an edge had no effect at its own level")
	}
}

// TestTendencyBoundary checks the ghost-cell treatment on a mesh whose
// single cell has only a boundary edge. With the ghost slot at zero the
// edge behaves as a zero-Dirichlet boundary: the tendency is finite and
// drains the cell toward the boundary value, -κ times the cell value for
// unit geometry.
func TestTendencyBoundary(t *testing.T) {
	m := &Mesh{
		NCells:       1,
		NEdges:       1,
		NVertLevels:  1,
		EdgesOnCell:  [][]int{{0}},
		AreaCell:     []float64{1},
		MaxLevelCell: []int{1},
		CellsOnEdge:  [][2]int{{0, 1}},
		DcEdge:       []float64{1},
		DvEdge:       []float64{1},
	}
	m.derive()
	if m.MaxLevelEdgeTop[0] != 1 {
		t.Fatalf("boundary edge depth = %d, want 1", m.MaxLevelEdgeTop[0])
	}

	const kappa, v = 2.0, 3.0
	thickness, tracers, tend := hexFields(m)
	tracers.Set(v, 0, 0, 0)
	if err := NewDel4(kappa, true).Tendency(m, thickness, tracers, tend); err != nil {
		t.Fatal(err)
	}
	got := tend.Get(0, 0, 0)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("boundary tendency is not finite: %g", got)
	}
	if absDifferent(got, -kappa*v, testTolerance) {
		t.Errorf("boundary tendency = %g, want %g", got, -kappa*v)
	}
	if tracers.Get(0, 0, m.Ghost()) != 0 {
		t.Error("ghost slot was modified")
	}
}

func absDifferent(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance {
		return true
	}
	return false
}
