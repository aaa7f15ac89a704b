// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fem assembles and solves the augmented linear system of a 1-D
// spatial (3-D displacement) beam discretization of a lifting surface.
// Displacement constraints are enforced with Lagrange multipliers: the
// augmented matrix has the form
//
//	┌       ┐ ┌   ┐   ┌   ┐
//	│ K  Aᵀ │ │ u │   │ f │
//	│ A  0  │ │ λ │ = │ 0 │
//	└       ┘ └   ┘   └   ┘
//
// where A holds one symmetric unit entry per constrained DOF. One Context
// owns all working buffers of one analysis instance and must not be shared
// across concurrent analyses.
package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"

	"github.com/aerostruct/spatialbeam/tube"
)

// SingularError indicates that the factorization of the augmented matrix
// failed or is too ill-conditioned to trust, typically because the constraint
// set does not remove all six rigid-body modes
type SingularError struct {
	Cond float64 // condition number estimate from the factorization
}

func (e *SingularError) Error() string {
	return io.Sf("singular system: constraints do not remove all rigid-body modes (cond=%g)", e.Cond)
}

// Context holds the augmented stiffness matrix, load vector and cached
// factorization of one beam model. All buffers are recomputed from scratch on
// every Assemble call; the factorization survives until the next Assemble.
type Context struct {

	// problem definition (fixed at construction)
	Nnodes int   // number of structural nodes
	Cons   []int // indices of fully constrained nodes
	E      float64
	G      float64

	// derived
	size int // 6·Nnodes + 6·len(Cons)

	// working buffers (owned)
	mtx *mat.Dense
	rhs []float64

	// cached factorization and last response
	lu         mat.LU
	assembled  bool
	factorized bool
	dispAug    []float64

	// element scratchpad
	kl  *mat.Dense
	tel *mat.Dense
	tmp *mat.Dense
	res *mat.Dense
}

// NewContext allocates the working buffers for a beam model with nnodes
// nodes, the given constrained nodes and material constants E (Young) and
// G (shear)
func NewContext(nnodes int, cons []int, e, g float64) (o *Context) {
	o = new(Context)
	o.Nnodes = nnodes
	o.Cons = make([]int, len(cons))
	copy(o.Cons, cons)
	o.E, o.G = e, g
	o.size = 6*nnodes + 6*len(cons)
	o.mtx = mat.NewDense(o.size, o.size, nil)
	o.rhs = make([]float64, o.size)
	o.kl = mat.NewDense(12, 12, nil)
	o.tel = mat.NewDense(12, 12, nil)
	o.tmp = mat.NewDense(12, 12, nil)
	o.res = mat.NewDense(12, 12, nil)
	return
}

// Size returns the dimension of the augmented system
func (o *Context) Size() int { return o.size }

// Assemble builds the augmented stiffness matrix and load vector from nodal
// positions, section properties (one entry per element) and nodal loads
// (n×6: three forces and three moments per node). Any cached factorization
// and response become invalid.
func (o *Context) Assemble(nodes [][]float64, sec *tube.Properties, loads [][]float64) (err error) {

	// check
	chk.IntAssert(len(nodes), o.Nnodes)
	chk.IntAssert(len(sec.A), o.Nnodes-1)
	chk.IntAssert(len(loads), o.Nnodes)

	// invalidate cache
	o.assembled = false
	o.factorized = false
	o.dispAug = nil

	// element loop
	o.mtx.Zero()
	nele := o.Nnodes - 1
	for ie := 0; ie < nele; ie++ {

		// local frame
		l, T, err := Frame(nodes[ie], nodes[ie+1])
		if err != nil {
			if de, ok := err.(*DegenerateError); ok {
				de.Elem = ie
			}
			return err
		}

		// local stiffness, rotated to global: res = Telᵀ · Kl · Tel
		localStiffness(o.kl, l, o.E*sec.A[ie], o.G*sec.J[ie], o.E*sec.Iy[ie], o.E*sec.Iz[ie])
		blockDiag(o.tel, T)
		o.tmp.Mul(o.kl, o.tel)
		o.res.Mul(o.tel.T(), o.tmp)

		// scatter: element DOFs are contiguous since element ie joins nodes ie, ie+1
		for a := 0; a < 12; a++ {
			ga := 6*ie + a
			for b := 0; b < 12; b++ {
				gb := 6*ie + b
				o.mtx.Set(ga, gb, o.mtx.At(ga, gb)+o.res.At(a, b))
			}
		}
	}

	// Lagrange rows/columns: u_k = 0 for each DOF of each constrained node
	for ic, n := range o.Cons {
		for k := 0; k < 6; k++ {
			i1 := 6*o.Nnodes + 6*ic + k
			i2 := 6*n + k
			o.mtx.Set(i1, i2, 1)
			o.mtx.Set(i2, i1, 1)
		}
	}

	// load vector: external loads in the structural rows, zero elsewhere
	for i := range o.rhs {
		o.rhs[i] = 0
	}
	for i := 0; i < o.Nnodes; i++ {
		for d := 0; d < 6; d++ {
			o.rhs[6*i+d] = loads[i][d]
		}
	}

	o.assembled = true
	return
}

// Factorize computes and caches the LU factorization of the augmented matrix.
// A singular or hopelessly ill-conditioned matrix yields a SingularError:
// this is a modeling defect (missing constraints), not a numerical accident.
func (o *Context) Factorize() error {
	if !o.assembled {
		return chk.Err("nothing to factorize: call Assemble first")
	}
	o.lu.Factorize(o.mtx)
	if c := o.lu.Cond(); math.IsInf(c, 1) || c > mat.ConditionTolerance {
		return &SingularError{Cond: c}
	}
	o.factorized = true
	return nil
}

// Solve solves mtx·x = b against the cached factorization. It fails if the
// factorization is absent or stale (Assemble was called after Factorize).
func (o *Context) Solve(x, b []float64) error {
	return o.solve(x, b, false)
}

// SolveTransposed solves mtxᵀ·x = b against the cached factorization,
// as required by reverse-mode sensitivity propagation
func (o *Context) SolveTransposed(x, b []float64) error {
	return o.solve(x, b, true)
}

func (o *Context) solve(x, b []float64, trans bool) error {
	if !o.factorized {
		return chk.Err("factorization is not available or is stale: call Factorize after Assemble")
	}
	chk.IntAssert(len(x), o.size)
	chk.IntAssert(len(b), o.size)
	var xv mat.VecDense
	if err := o.lu.SolveVecTo(&xv, trans, mat.NewVecDense(o.size, b)); err != nil {
		if c, ok := err.(mat.Condition); ok {
			return &SingularError{Cond: float64(c)}
		}
		return err
	}
	for i := 0; i < o.size; i++ {
		x[i] = xv.AtVec(i)
	}
	return nil
}

// SolveResponse factorizes (if needed) and solves for the augmented
// displacement/multiplier vector under the assembled loads. The solution is
// kept for the complex-step sensitivity routines.
func (o *Context) SolveResponse() (dispAug []float64, err error) {
	if !o.assembled {
		return nil, chk.Err("nothing to solve: call Assemble first")
	}
	if !o.factorized {
		if err = o.Factorize(); err != nil {
			return
		}
	}
	dispAug = make([]float64, o.size)
	if err = o.Solve(dispAug, o.rhs); err != nil {
		return nil, err
	}
	o.dispAug = dispAug
	return
}

// Disp extracts the physical nodal displacements (n×6: three translations and
// three rotations per node) from an augmented solution vector
func Disp(dispAug []float64, nnodes int) (disp [][]float64) {
	disp = make([][]float64, nnodes)
	for i := 0; i < nnodes; i++ {
		disp[i] = make([]float64, 6)
		copy(disp[i], dispAug[6*i:6*i+6])
	}
	return
}

// DDispDLoad computes the Jacobian column ∂disp/∂loads[node][dof] by solving
// against the cached factorization (one back-substitution, no explicit
// inverse)
func (o *Context) DDispDLoad(node, dof int) (ddisp [][]float64, err error) {
	b := make([]float64, o.size)
	b[6*node+dof] = 1
	x := make([]float64, o.size)
	if err = o.Solve(x, b); err != nil {
		return
	}
	return Disp(x, o.Nnodes), nil
}
