// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/aerostruct/spatialbeam/ana"
	"github.com/aerostruct/spatialbeam/tube"
)

// cantilever builds a uniform cantilever along the global y-axis, clamped at
// node 0, with zero loads
func cantilever(nnodes int, length float64) (nodes [][]float64, sec *tube.Properties, loads [][]float64) {
	Y := utl.LinSpace(0, length, nnodes)
	nodes = make([][]float64, nnodes)
	loads = make([][]float64, nnodes)
	for i := 0; i < nnodes; i++ {
		nodes[i] = []float64{0, Y[i], 0}
		loads[i] = make([]float64, 6)
	}
	nele := nnodes - 1
	r := make([]float64, nele)
	t := make([]float64, nele)
	for i := 0; i < nele; i++ {
		r[i] = 1.0
		t[i] = 0.4
	}
	sec = tube.Calc(r, t)
	return
}

func Test_fem01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("fem01. zero load, zero displacement")

	nodes, sec, loads := cantilever(5, 10.0)
	ctx := NewContext(5, []int{0}, 100.0, 50.0)
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	dispAug, err := ctx.SolveResponse()
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	disp := Disp(dispAug, 5)
	for i := range disp {
		chk.Array(tst, "disp", 1e-14, disp[i], []float64{0, 0, 0, 0, 0, 0})
	}
}

func Test_fem02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("fem02. cantilever vs closed form")

	e, g, l := 100.0, 50.0, 10.0
	nnodes := 5
	nodes, sec, loads := cantilever(nnodes, l)
	beam := &ana.CantileverBeam{L: l, E: e, G: g, A: sec.A[0], I: sec.Iz[0], J: sec.J[0]}

	// transverse tip force in global z (local bending-z plane)
	fz := 2.0
	loads[nnodes-1][2] = fz
	ctx := NewContext(nnodes, []int{0}, e, g)
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	dispAug, err := ctx.SolveResponse()
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	disp := Disp(dispAug, nnodes)
	tip := disp[nnodes-1]
	chk.AnaNum(tst, "uz tip", 1e-10, tip[2], beam.TipDeflection(fz), chk.Verbose)
	chk.AnaNum(tst, "θx tip", 1e-10, tip[3], beam.TipRotation(fz), chk.Verbose)

	// clamped node stays put
	chk.Array(tst, "disp root", 1e-12, disp[0], []float64{0, 0, 0, 0, 0, 0})

	// transverse tip force in global x (the other bending plane)
	loads[nnodes-1][2] = 0
	loads[nnodes-1][0] = fz
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if dispAug, err = ctx.SolveResponse(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	tip = Disp(dispAug, nnodes)[nnodes-1]
	chk.AnaNum(tst, "ux tip", 1e-10, tip[0], beam.TipDeflection(fz), chk.Verbose)

	// tip torque about the beam axis
	mt := 3.0
	loads[nnodes-1][0] = 0
	loads[nnodes-1][4] = mt
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if dispAug, err = ctx.SolveResponse(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	tip = Disp(dispAug, nnodes)[nnodes-1]
	chk.AnaNum(tst, "θy tip", 1e-10, tip[4], beam.TipTwist(mt), chk.Verbose)

	// axial tip force
	fn := 4.0
	loads[nnodes-1][4] = 0
	loads[nnodes-1][1] = fn
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if dispAug, err = ctx.SolveResponse(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	tip = Disp(dispAug, nnodes)[nnodes-1]
	chk.AnaNum(tst, "uy tip", 1e-10, tip[1], beam.TipStretch(fn), chk.Verbose)
}

func Test_fem03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("fem03. unconstrained system is singular")

	nodes, sec, loads := cantilever(4, 10.0)
	ctx := NewContext(4, nil, 100.0, 50.0)
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	err := ctx.Factorize()
	if err == nil {
		tst.Errorf("expected singular system without constraints\n")
		return
	}
	var se *SingularError
	if !errors.As(err, &se) {
		tst.Errorf("expected SingularError, got %v\n", err)
	}
}

func Test_fem04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("fem04. factorization cache guards")

	nodes, sec, loads := cantilever(3, 10.0)
	ctx := NewContext(3, []int{0}, 100.0, 50.0)

	// solving before assembly+factorization must fail
	x := make([]float64, ctx.Size())
	b := make([]float64, ctx.Size())
	if err := ctx.Solve(x, b); err == nil {
		tst.Errorf("expected error for solve without factorization\n")
		return
	}

	// a new assembly invalidates the cached factorization
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if err := ctx.Factorize(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if err := ctx.Solve(x, b); err == nil {
		tst.Errorf("expected error for stale factorization\n")
	}
}

func Test_fem05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("fem05. transposed solve on symmetric system")

	nodes, sec, loads := cantilever(4, 10.0)
	loads[3][2] = 2.0
	ctx := NewContext(4, []int{0}, 100.0, 50.0)
	if err := ctx.Assemble(nodes, sec, loads); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if err := ctx.Factorize(); err != nil {
		tst.Errorf("%v\n", err)
		return
	}

	// the augmented matrix is symmetric, so both solves must agree
	b := make([]float64, ctx.Size())
	for i := range b {
		b[i] = float64(i%7) - 3.0
	}
	x1 := make([]float64, ctx.Size())
	x2 := make([]float64, ctx.Size())
	if err := ctx.Solve(x1, b); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if err := ctx.SolveTransposed(x2, b); err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	chk.Array(tst, "x vs xᵀ", 1e-9, x1, x2)
}
