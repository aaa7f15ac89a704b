// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math/cmplx"

	"github.com/cpmech/gosl/chk"

	"github.com/aerostruct/spatialbeam/tube"
)

// cstepH is the imaginary perturbation magnitude for complex-step
// differentiation. At this size the step introduces no subtractive
// cancellation, so the derivative is exact to machine precision.
const cstepH = 1e-30

// SectionComp selects one section property as differentiation variable
type SectionComp int

const (
	SecA SectionComp = iota
	SecIy
	SecIz
	SecJ
)

// FrameC mirrors Frame on complex numbers. The norm is sqrt(Σv²) (not the
// modulus) so that a small imaginary perturbation propagates as a derivative.
func FrameC(p0, p1 []complex128) (l complex128, T [][]complex128, err error) {
	dx := []complex128{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	l = cmplx.Sqrt(dx[0]*dx[0] + dx[1]*dx[1] + dx[2]*dx[2])
	if real(l) < geomTol {
		err = &DegenerateError{Elem: -1, Msg: "zero-length element"}
		return
	}
	xloc := []complex128{dx[0] / l, dx[1] / l, dx[2] / l}
	c := crossC(xloc, []complex128{1, 0, 0})
	cn := cmplx.Sqrt(c[0]*c[0] + c[1]*c[1] + c[2]*c[2])
	if real(cn) < geomTol {
		err = &DegenerateError{Elem: -1, Msg: "beam axis parallel to global reference direction"}
		return
	}
	yloc := []complex128{c[0] / cn, c[1] / cn, c[2] / cn}
	zloc := crossC(xloc, yloc)
	T = [][]complex128{xloc, yloc, zloc}
	return
}

// crossC computes the 3-D cross product a × b on complex numbers
func crossC(a, b []complex128) []complex128 {
	return []complex128{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// dResidual computes y = Im(K(x+ih)·u)/h over the structural DOFs, where the
// complex inputs carry a single imaginary perturbation of magnitude h. The
// Lagrange rows do not depend on any input and contribute nothing. This must
// stay in lockstep with the real assembly path in Assemble.
func (o *Context) dResidual(nodesC [][]complex128, av, iyv, izv, jv []complex128, u []float64, h float64, y []float64) error {
	for i := range y {
		y[i] = 0
	}
	nele := o.Nnodes - 1
	for ie := 0; ie < nele; ie++ {

		// local frame
		l, T, err := FrameC(nodesC[ie], nodesC[ie+1])
		if err != nil {
			if de, ok := err.(*DegenerateError); ok {
				de.Elem = ie
			}
			return err
		}

		// stiffness scalings
		eal := complex(o.E, 0) * av[ie] / l
		gjl := complex(o.G, 0) * jv[ie] / l
		l3 := l * l * l
		eiyl := complex(o.E, 0) * iyv[ie] / l3
		eizl := complex(o.E, 0) * izv[ie] / l3

		// v = Tel·u_elem (element DOFs are contiguous)
		var ue, v, w, z [12]complex128
		for k := 0; k < 12; k++ {
			ue[k] = complex(u[6*ie+k], 0)
		}
		for blk := 0; blk < 4; blk++ {
			for a := 0; a < 3; a++ {
				var s complex128
				for b := 0; b < 3; b++ {
					s += T[a][b] * ue[3*blk+b]
				}
				v[3*blk+a] = s
			}
		}

		// w = Kl·v from the four templates
		for a := 0; a < 2; a++ {
			var sa, st complex128
			for b := 0; b < 2; b++ {
				f := complex(const2[2*a+b], 0)
				sa += f * v[dofsAxial[b]]
				st += f * v[dofsTorsion[b]]
			}
			w[dofsAxial[a]] += eal * sa
			w[dofsTorsion[a]] += gjl * st
		}
		for a := 0; a < 4; a++ {
			var sy, sz complex128
			for b := 0; b < 4; b++ {
				fy := complex(constY[4*a+b], 0)
				fz := complex(constZ[4*a+b], 0)
				if b%2 == 1 {
					fy *= l
					fz *= l
				}
				sy += fy * v[dofsBendY[b]]
				sz += fz * v[dofsBendZ[b]]
			}
			if a%2 == 1 {
				sy *= l
				sz *= l
			}
			w[dofsBendY[a]] += eiyl * sy
			w[dofsBendZ[a]] += eizl * sz
		}

		// z = Telᵀ·w, accumulate imaginary part
		for blk := 0; blk < 4; blk++ {
			for a := 0; a < 3; a++ {
				var s complex128
				for b := 0; b < 3; b++ {
					s += T[b][a] * w[3*blk+b]
				}
				z[3*blk+a] = s
			}
		}
		for k := 0; k < 12; k++ {
			y[6*ie+k] += imag(z[k]) / h
		}
	}
	return nil
}

// chainSolve turns a residual derivative y = (∂K/∂x)·u into a displacement
// derivative du = −K⁻¹·y using the cached factorization
func (o *Context) chainSolve(y []float64) (ddisp [][]float64, err error) {
	for i := range y {
		y[i] = -y[i]
	}
	dx := make([]float64, o.size)
	if err = o.Solve(dx, y); err != nil {
		return
	}
	return Disp(dx, o.Nnodes), nil
}

// DDispDSection computes ∂disp/∂x where x is one section property (A, Iy, Iz
// or J) of one element, by complex-stepping the residual at the current
// response and reusing the cached factorization. SolveResponse must have been
// called on the current assembly.
func (o *Context) DDispDSection(nodes [][]float64, sec *tube.Properties, comp SectionComp, ielem int) (ddisp [][]float64, err error) {
	if o.dispAug == nil {
		return nil, chk.Err("no response available: call SolveResponse first")
	}
	nodesC := toComplexMat(nodes)
	av := toComplexVec(sec.A)
	iyv := toComplexVec(sec.Iy)
	izv := toComplexVec(sec.Iz)
	jv := toComplexVec(sec.J)
	switch comp {
	case SecA:
		av[ielem] += complex(0, cstepH)
	case SecIy:
		iyv[ielem] += complex(0, cstepH)
	case SecIz:
		izv[ielem] += complex(0, cstepH)
	case SecJ:
		jv[ielem] += complex(0, cstepH)
	default:
		return nil, chk.Err("unknown section component %d", comp)
	}
	y := make([]float64, o.size)
	if err = o.dResidual(nodesC, av, iyv, izv, jv, o.dispAug, cstepH, y); err != nil {
		return
	}
	return o.chainSolve(y)
}

// DDispDSectionDir computes the directional derivative of disp along a
// simultaneous perturbation (da, diy, diz, dj) of all section properties.
// The complex step is linear in the perturbation, so one residual evaluation
// and one solve give the exact directional derivative. This is the chain-rule
// building block for design variables that move several section properties at
// once, like the tube radius and thickness.
func (o *Context) DDispDSectionDir(nodes [][]float64, sec *tube.Properties, da, diy, diz, dj []float64) (ddisp [][]float64, err error) {
	if o.dispAug == nil {
		return nil, chk.Err("no response available: call SolveResponse first")
	}
	nodesC := toComplexMat(nodes)
	av := toComplexVec(sec.A)
	iyv := toComplexVec(sec.Iy)
	izv := toComplexVec(sec.Iz)
	jv := toComplexVec(sec.J)
	for ie := range av {
		av[ie] += complex(0, cstepH*da[ie])
		iyv[ie] += complex(0, cstepH*diy[ie])
		izv[ie] += complex(0, cstepH*diz[ie])
		jv[ie] += complex(0, cstepH*dj[ie])
	}
	y := make([]float64, o.size)
	if err = o.dResidual(nodesC, av, iyv, izv, jv, o.dispAug, cstepH, y); err != nil {
		return
	}
	return o.chainSolve(y)
}

// DDispDNode computes ∂disp/∂nodes[inode][icomp] by the same complex-step
// chain as DDispDSection
func (o *Context) DDispDNode(nodes [][]float64, sec *tube.Properties, inode, icomp int) (ddisp [][]float64, err error) {
	if o.dispAug == nil {
		return nil, chk.Err("no response available: call SolveResponse first")
	}
	nodesC := toComplexMat(nodes)
	nodesC[inode][icomp] += complex(0, cstepH)
	av := toComplexVec(sec.A)
	iyv := toComplexVec(sec.Iy)
	izv := toComplexVec(sec.Iz)
	jv := toComplexVec(sec.J)
	y := make([]float64, o.size)
	if err = o.dResidual(nodesC, av, iyv, izv, jv, o.dispAug, cstepH, y); err != nil {
		return
	}
	return o.chainSolve(y)
}

func toComplexVec(a []float64) (b []complex128) {
	b = make([]complex128, len(a))
	for i, v := range a {
		b[i] = complex(v, 0)
	}
	return
}

func toComplexMat(a [][]float64) (b [][]complex128) {
	b = make([][]complex128, len(a))
	for i, row := range a {
		b[i] = toComplexVec(row)
	}
	return
}
