// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"math"
	"math/cmplx"

	"github.com/aerostruct/spatialbeam/fem"
)

// cstepH is the imaginary perturbation magnitude for complex-step
// differentiation of the stress recovery
const cstepH = 1e-30

// VonMises recovers the combined axial/torsion stress at both ends of each
// element from the solved displacements. Axial strains and the twist rate are
// measured in the element's local frame; the bending contribution uses the
// tube radius as the extreme fiber distance. The result is nele×2 (root end,
// tip end).
func VonMises(nodes [][]float64, r []float64, disp [][]float64, e, g float64) (vm [][]float64, err error) {
	nele := len(nodes) - 1
	vm = make([][]float64, nele)
	for ie := 0; ie < nele; ie++ {

		l, T, err := fem.Frame(nodes[ie], nodes[ie+1])
		if err != nil {
			if de, ok := err.(*fem.DegenerateError); ok {
				de.Elem = ie
			}
			return nil, err
		}

		// local end displacements and rotations
		u0 := rotate(T, disp[ie][:3])
		r0 := rotate(T, disp[ie][3:])
		u1 := rotate(T, disp[ie+1][:3])
		r1 := rotate(T, disp[ie+1][3:])

		// bending curvature magnitude and twist rate
		tmp := math.Sqrt((r1[1]-r0[1])*(r1[1]-r0[1]) + (r1[2]-r0[2])*(r1[2]-r0[2]))
		sxx0 := e*(u1[0]-u0[0])/l + e*r[ie]/l*tmp
		sxx1 := e*(u0[0]-u1[0])/l + e*r[ie]/l*tmp
		sxt := g * r[ie] * (r1[0] - r0[0]) / l

		vm[ie] = []float64{
			math.Sqrt(sxx0*sxx0 + sxt*sxt),
			math.Sqrt(sxx1*sxx1 + sxt*sxt),
		}
	}
	return
}

// vonMisesC mirrors VonMises on complex numbers for complex-step sensitivities
func vonMisesC(nodes [][]complex128, r []complex128, disp [][]complex128, e, g float64) (vm [][]complex128, err error) {
	nele := len(nodes) - 1
	vm = make([][]complex128, nele)
	ec := complex(e, 0)
	gc := complex(g, 0)
	for ie := 0; ie < nele; ie++ {

		l, T, err := fem.FrameC(nodes[ie], nodes[ie+1])
		if err != nil {
			if de, ok := err.(*fem.DegenerateError); ok {
				de.Elem = ie
			}
			return nil, err
		}

		u0 := rotateC(T, disp[ie][:3])
		r0 := rotateC(T, disp[ie][3:])
		u1 := rotateC(T, disp[ie+1][:3])
		r1 := rotateC(T, disp[ie+1][3:])

		tmp := cmplx.Sqrt((r1[1]-r0[1])*(r1[1]-r0[1]) + (r1[2]-r0[2])*(r1[2]-r0[2]))
		sxx0 := ec*(u1[0]-u0[0])/l + ec*r[ie]/l*tmp
		sxx1 := ec*(u0[0]-u1[0])/l + ec*r[ie]/l*tmp
		sxt := gc * r[ie] * (r1[0] - r0[0]) / l

		vm[ie] = []complex128{
			cmplx.Sqrt(sxx0*sxx0 + sxt*sxt),
			cmplx.Sqrt(sxx1*sxx1 + sxt*sxt),
		}
	}
	return
}

// DVonMisesDDisp computes the Jacobian of the flattened stresses (row 2·ie+end)
// with respect to the flattened nodal displacements (column 6·node+dof) by
// complex-stepping each displacement entry
func DVonMisesDDisp(nodes [][]float64, r []float64, disp [][]float64, e, g float64) (jac [][]float64, err error) {
	nele := len(nodes) - 1
	nodesC := toC2(nodes)
	rC := toC1(r)
	dispC := toC2(disp)
	jac = alloc2(2*nele, 6*len(disp))
	for i := range disp {
		for d := 0; d < 6; d++ {
			dispC[i][d] += complex(0, cstepH)
			vm, err := vonMisesC(nodesC, rC, dispC, e, g)
			if err != nil {
				return nil, err
			}
			dispC[i][d] = complex(disp[i][d], 0)
			for ie := 0; ie < nele; ie++ {
				jac[2*ie][6*i+d] = imag(vm[ie][0]) / cstepH
				jac[2*ie+1][6*i+d] = imag(vm[ie][1]) / cstepH
			}
		}
	}
	return
}

// DVonMisesDR computes the Jacobian of the flattened stresses with respect to
// the element radii
func DVonMisesDR(nodes [][]float64, r []float64, disp [][]float64, e, g float64) (jac [][]float64, err error) {
	nele := len(nodes) - 1
	nodesC := toC2(nodes)
	rC := toC1(r)
	dispC := toC2(disp)
	jac = alloc2(2*nele, nele)
	for j := 0; j < nele; j++ {
		rC[j] += complex(0, cstepH)
		vm, err := vonMisesC(nodesC, rC, dispC, e, g)
		if err != nil {
			return nil, err
		}
		rC[j] = complex(r[j], 0)
		for ie := 0; ie < nele; ie++ {
			jac[2*ie][j] = imag(vm[ie][0]) / cstepH
			jac[2*ie+1][j] = imag(vm[ie][1]) / cstepH
		}
	}
	return
}

// DVonMisesDNodes computes the Jacobian of the flattened stresses with respect
// to the flattened nodal positions (column 3·node+comp), displacements held
// fixed
func DVonMisesDNodes(nodes [][]float64, r []float64, disp [][]float64, e, g float64) (jac [][]float64, err error) {
	nele := len(nodes) - 1
	nodesC := toC2(nodes)
	rC := toC1(r)
	dispC := toC2(disp)
	jac = alloc2(2*nele, 3*len(nodes))
	for i := range nodes {
		for k := 0; k < 3; k++ {
			nodesC[i][k] += complex(0, cstepH)
			vm, err := vonMisesC(nodesC, rC, dispC, e, g)
			if err != nil {
				return nil, err
			}
			nodesC[i][k] = complex(nodes[i][k], 0)
			for ie := 0; ie < nele; ie++ {
				jac[2*ie][3*i+k] = imag(vm[ie][0]) / cstepH
				jac[2*ie+1][3*i+k] = imag(vm[ie][1]) / cstepH
			}
		}
	}
	return
}

// rotate applies the 3×3 frame to a 3-vector
func rotate(T [][]float64, v []float64) []float64 {
	return []float64{
		T[0][0]*v[0] + T[0][1]*v[1] + T[0][2]*v[2],
		T[1][0]*v[0] + T[1][1]*v[1] + T[1][2]*v[2],
		T[2][0]*v[0] + T[2][1]*v[1] + T[2][2]*v[2],
	}
}

func rotateC(T [][]complex128, v []complex128) []complex128 {
	return []complex128{
		T[0][0]*v[0] + T[0][1]*v[1] + T[0][2]*v[2],
		T[1][0]*v[0] + T[1][1]*v[1] + T[1][2]*v[2],
		T[2][0]*v[0] + T[2][1]*v[1] + T[2][2]*v[2],
	}
}

func toC1(a []float64) (b []complex128) {
	b = make([]complex128, len(a))
	for i, v := range a {
		b[i] = complex(v, 0)
	}
	return
}

func toC2(a [][]float64) (b [][]complex128) {
	b = make([][]complex128, len(a))
	for i, row := range a {
		b[i] = toC1(row)
	}
	return
}

func alloc2(m, n int) (a [][]float64) {
	a = make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, n)
	}
	return
}
