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

// Package omix computes horizontal mixing tendencies for ocean tracer
// fields on unstructured, polygonal C-grid meshes. Scalar tracers live at
// cell centers and fluxes cross cell edges; the central operator is a
// biharmonic (∇⁴) diffusion stencil that damps grid-scale tracer noise
// while leaving larger-scale gradients comparatively undisturbed.
package omix

// Version gives the version of this software.
const Version = "0.1.0"
