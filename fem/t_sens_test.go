// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/aerostruct/spatialbeam/tube"
)

// flatten packs an n×6 displacement table into a single vector
func flatten(disp [][]float64) (f []float64) {
	f = make([]float64, 6*len(disp))
	for i := range disp {
		copy(f[6*i:6*i+6], disp[i])
	}
	return
}

func Test_sens01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sens01. ∂disp/∂loads vs finite differences")

	nnodes := 3
	nodes, sec, loads := cantilever(nnodes, 10.0)
	loads[1][0] = 1.0
	loads[2][2] = 2.0
	loads[2][4] = 0.5

	ctx := NewContext(nnodes, []int{0}, 100.0, 50.0)
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if _, err := ctx.SolveResponse(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}

	// analytic Jacobian, one back-substitution per column
	ndof := 6 * nnodes
	dana := make([][]float64, ndof)
	for i := range dana {
		dana[i] = make([]float64, ndof)
	}
	for node := 0; node < nnodes; node++ {
		for dof := 0; dof < 6; dof++ {
			col, err := ctx.DDispDLoad(node, dof)
			if err != nil {
				tst.Errorf("%v\n", err)
				return
			}
			fc := flatten(col)
			for i := 0; i < ndof; i++ {
				dana[i][6*node+dof] = fc[i]
			}
		}
	}

	// central differences of the full solve; linear, so h is uncritical
	xat := flatten(loads)
	ctx2 := NewContext(nnodes, []int{0}, 100.0, 50.0)
	chk.DerivVecVec(tst, "∂disp/∂f", 1e-10, dana, xat, 1e-1, chk.Verbose, func(f, x []float64) {
		lmod := make([][]float64, nnodes)
		for i := 0; i < nnodes; i++ {
			lmod[i] = x[6*i : 6*i+6]
		}
		if err := ctx2.Assemble(nodes, sec, lmod); err != nil {
			tst.Fatalf("%v\n", err)
		}
		dispAug, err := ctx2.SolveResponse()
		if err != nil {
			tst.Fatalf("%v\n", err)
		}
		copy(f, flatten(Disp(dispAug, nnodes)))
	})
}

func Test_sens02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sens02. ∂disp/∂A via complex step vs finite differences")

	nnodes := 3
	nodes, sec, loads := cantilever(nnodes, 10.0)
	loads[2][1] = 4.0
	loads[2][2] = 2.0

	ctx := NewContext(nnodes, []int{0}, 100.0, 50.0)
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if _, err := ctx.SolveResponse(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}

	nele := nnodes - 1
	ndof := 6 * nnodes
	dana := make([][]float64, ndof)
	for i := range dana {
		dana[i] = make([]float64, nele)
	}
	for ie := 0; ie < nele; ie++ {
		col, err := ctx.DDispDSection(nodes, sec, SecA, ie)
		if err != nil {
			tst.Errorf("%v\n", err)
			return
		}
		fc := flatten(col)
		for i := 0; i < ndof; i++ {
			dana[i][ie] = fc[i]
		}
	}

	xat := make([]float64, nele)
	copy(xat, sec.A)
	ctx2 := NewContext(nnodes, []int{0}, 100.0, 50.0)
	chk.DerivVecVec(tst, "∂disp/∂A", 1e-6, dana, xat, 1e-4, chk.Verbose, func(f, x []float64) {
		smod := &tube.Properties{A: x, Iy: sec.Iy, Iz: sec.Iz, J: sec.J}
		if err := ctx2.Assemble(nodes, smod, loads); err != nil {
			tst.Fatalf("%v\n", err)
		}
		dispAug, err := ctx2.SolveResponse()
		if err != nil {
			tst.Fatalf("%v\n", err)
		}
		copy(f, flatten(Disp(dispAug, nnodes)))
	})

	// the directional derivative along a pure-A direction must match the
	// per-component one, and must be linear in the direction
	da := make([]float64, nele)
	zero := make([]float64, nele)
	da[1] = 1.0
	dir, err := ctx.DDispDSectionDir(nodes, sec, da, zero, zero, zero)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	one, err := ctx.DDispDSection(nodes, sec, SecA, 1)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	chk.Array(tst, "dir vs comp", 1e-12, flatten(dir), flatten(one))
}

func Test_sens03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sens03. ∂disp/∂nodes via complex step vs finite differences")

	nnodes := 3
	nodes, sec, loads := cantilever(nnodes, 10.0)
	loads[2][2] = 2.0
	loads[1][4] = 1.0

	ctx := NewContext(nnodes, []int{0}, 100.0, 50.0)
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if _, err := ctx.SolveResponse(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}

	ndof := 6 * nnodes
	ncoo := 3 * nnodes
	dana := make([][]float64, ndof)
	for i := range dana {
		dana[i] = make([]float64, ncoo)
	}
	for inode := 0; inode < nnodes; inode++ {
		for ic := 0; ic < 3; ic++ {
			col, err := ctx.DDispDNode(nodes, sec, inode, ic)
			if err != nil {
				tst.Errorf("%v\n", err)
				return
			}
			fc := flatten(col)
			for i := 0; i < ndof; i++ {
				dana[i][3*inode+ic] = fc[i]
			}
		}
	}

	xat := make([]float64, ncoo)
	for i := 0; i < nnodes; i++ {
		copy(xat[3*i:3*i+3], nodes[i])
	}
	ctx2 := NewContext(nnodes, []int{0}, 100.0, 50.0)
	chk.DerivVecVec(tst, "∂disp/∂P", 1e-6, dana, xat, 1e-4, chk.Verbose, func(f, x []float64) {
		nmod := make([][]float64, nnodes)
		for i := 0; i < nnodes; i++ {
			nmod[i] = x[3*i : 3*i+3]
		}
		if err := ctx2.Assemble(nmod, sec, loads); err != nil {
			tst.Fatalf("%v\n", err)
		}
		dispAug, err := ctx2.SolveResponse()
		if err != nil {
			tst.Fatalf("%v\n", err)
		}
		copy(f, flatten(Disp(dispAug, nnodes)))
	})
}
