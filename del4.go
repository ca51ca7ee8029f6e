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

import "github.com/ctessum/sparse"

// Del4 computes the horizontal biharmonic (double-Laplacian) mixing
// tendency for tracers. It holds the resolved configuration of the scheme
// and is immutable after creation, so a single instance can be shared by
// any number of sequential tendency calls.
type Del4 struct {
	// Enabled reports whether the scheme contributes anything; when
	// false, Tendency is a no-op.
	Enabled bool

	// Kappa is the biharmonic eddy diffusivity [m⁴/s].
	Kappa float64
}

// NewDel4 resolves the two external configuration values for the scheme:
// the diffusivity coefficient and the use flag. A non-positive
// coefficient disables the scheme regardless of the flag, and the flag
// can only disable a positive coefficient, never enable a non-positive
// one. All input values are accepted; there are no error conditions.
func NewDel4(coef float64, use bool) *Del4 {
	d := new(Del4)
	if coef > 0 {
		d.Enabled = true
		d.Kappa = coef
	}
	d.Enabled = d.Enabled && use
	return d
}

// Tendency adds the biharmonic mixing contribution for every tracer,
// level, and cell to tend, which accumulates tendencies across mixing
// terms and is never overwritten. If the scheme is disabled, tend is left
// untouched.
//
// tracers must have shape [nTracers, nVertLevels, NCells+1], with the
// ghost slot (index NCells) held at zero; layerThicknessEdge has
// shape [nVertLevels, NEdges]; tend has shape
// [nTracers, nVertLevels, NCells].
//
// The operator applies a finite-volume divergence-of-gradient twice. The
// first pass computes the thickness-weighted discrete Laplacian of the
// raw tracer field into a buffer private to this call; the second pass
// takes the discrete Laplacian of that buffer, with the diffusivity and
// the local mesh-resolution factor folded into the edge weight and no
// second thickness factor. Edge orientation signs make the flux
// independent of which neighbor the mesh lists first on an edge.
//
// The error return is reserved: under well-formed inputs it is always
// nil. Degenerate meshes (non-positive cell areas or center distances)
// are not detected and yield NaN or Inf in tend rather than an error.
func (d *Del4) Tendency(m *Mesh, layerThicknessEdge, tracers, tend *sparse.DenseArray) error {
	if !d.Enabled {
		return nil
	}
	nt := tracers.Shape[0]
	nk := tracers.Shape[1]
	ncg := tracers.Shape[2] // cell dimension including the ghost slot

	delsq := delsqTracer(m, layerThicknessEdge, tracers)

	// Pass 2: div-grad of the pass-1 result, accumulated into tend with
	// the opposite sign to pass 1, which gives the operator its damping
	// sense. The thickness weighting is already carried by delsq and is
	// not reapplied.
	for c := 0; c < m.NCells; c++ {
		invArea := 1 / m.AreaCell[c]
		for i, e := range m.EdgesOnCell[c] {
			sign := m.EdgeSignOnCell[c][i]
			w := m.MeshScalingDel4[e] * m.DvEdge[e] * d.Kappa / m.DcEdge[e]
			c1 := m.CellsOnEdge[e][0]
			c2 := m.CellsOnEdge[e][1]
			for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
				if m.EdgeMask.Get(k, e) == 0 {
					continue
				}
				for t := 0; t < nt; t++ {
					flux := w * (delsq.Elements[(t*nk+k)*ncg+c2] -
						delsq.Elements[(t*nk+k)*ncg+c1])
					tend.Elements[(t*nk+k)*m.NCells+c] += sign * flux * invArea
				}
			}
		}
	}
	return nil
}

// delsqTracer computes the thickness-weighted discrete Laplacian of the
// tracers, the first of the two div-grad passes. Flux across an edge is
// proportional to the tracer difference between the two neighboring cell
// centers, scaled by the edge-length-to-distance ratio; the signed
// per-cell sum divided by cell area is the discrete Laplacian. The result
// carries the same ghost slot as tracers, held at zero.
func delsqTracer(m *Mesh, layerThicknessEdge, tracers *sparse.DenseArray) *sparse.DenseArray {
	nt := tracers.Shape[0]
	nk := tracers.Shape[1]
	ncg := tracers.Shape[2]

	delsq := sparse.ZerosDense(nt, nk, ncg)
	for c := 0; c < m.NCells; c++ {
		invArea := 1 / m.AreaCell[c]
		for i, e := range m.EdgesOnCell[c] {
			sign := m.EdgeSignOnCell[c][i]
			w := m.DvEdge[e] / m.DcEdge[e]
			c1 := m.CellsOnEdge[e][0]
			c2 := m.CellsOnEdge[e][1]
			for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
				if m.EdgeMask.Get(k, e) == 0 {
					continue
				}
				h := layerThicknessEdge.Get(k, e)
				for t := 0; t < nt; t++ {
					flux := w * h * (tracers.Elements[(t*nk+k)*ncg+c2] -
						tracers.Elements[(t*nk+k)*ncg+c1])
					delsq.Elements[(t*nk+k)*ncg+c] -= sign * flux * invArea
				}
			}
		}
	}
	return delsq
}
