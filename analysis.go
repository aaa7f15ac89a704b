// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spatialbeam models a lifting surface as a 1-D spatial beam with
// tube cross-sections and computes the structural responses and sensitivities
// needed by a gradient-based aerostructural optimizer: nodal displacements,
// strain energy, weight, combined stresses and an aggregated failure margin.
package spatialbeam

import (
	"github.com/cpmech/gosl/chk"

	"github.com/aerostruct/spatialbeam/fem"
	"github.com/aerostruct/spatialbeam/out"
	"github.com/aerostruct/spatialbeam/tube"
)

// Input defines one beam model of a lifting surface. The structural nodes are
// placed at the FemOrigin chordwise fraction between the leading and trailing
// edge meshes; R and T give the tube radius and wall thickness per element.
type Input struct {

	// geometry
	LeadMesh  [][]float64 // leading edge nodes (n×3)
	TrailMesh [][]float64 // trailing edge nodes (n×3)
	FemOrigin float64     // chordwise fraction of the spar; default 0.35

	// section design variables (one per element)
	R []float64 // tube radius
	T []float64 // tube wall thickness

	// constraints and material
	Cons       []int   // fully constrained nodes
	E          float64 // Young's modulus
	G          float64 // shear modulus
	Rho        float64 // material density
	SigmaAllow float64 // allowable stress
	KSRho      float64 // failure aggregation parameter; default 100

	// external loads (n×6: three forces and three moments per node)
	Loads [][]float64
}

// Results holds the outputs of one analysis pass
type Results struct {
	Nodes    [][]float64 // structural node positions (n×3)
	Disp     [][]float64 // nodal displacements (n×6)
	Energy   float64     // strain energy
	Weight   float64     // structural weight
	VonMises [][]float64 // combined stress per element end (nele×2)
	Failure  float64     // aggregated failure margin; ≤ 0 means feasible
}

// Analysis owns the working buffers of one beam model. It is single-owner:
// one Analysis per lifting surface, never shared across concurrent calls.
type Analysis struct {
	in    *Input
	nodes [][]float64
	sec   *tube.Properties
	ctx   *fem.Context
	res   *Results
}

// NewAnalysis validates the input, applies defaults and allocates the working
// buffers. The input struct is kept by reference and must not be mutated
// while the Analysis is in use.
func NewAnalysis(in *Input) (o *Analysis, err error) {
	n := len(in.LeadMesh)
	if n < 2 {
		return nil, chk.Err("need at least two mesh nodes, got %d", n)
	}
	chk.IntAssert(len(in.TrailMesh), n)
	chk.IntAssert(len(in.R), n-1)
	chk.IntAssert(len(in.T), n-1)
	chk.IntAssert(len(in.Loads), n)
	for i, rv := range in.R {
		if tv := in.T[i]; tv <= 0 || tv >= rv {
			return nil, chk.Err("element %d: thickness %g outside (0, r=%g)", i, tv, rv)
		}
	}
	if in.FemOrigin == 0 {
		in.FemOrigin = 0.35
	}
	if in.KSRho == 0 {
		in.KSRho = 100.0
	}
	o = new(Analysis)
	o.in = in
	o.nodes = fem.BlendedNodes(in.LeadMesh, in.TrailMesh, in.FemOrigin)
	o.ctx = fem.NewContext(n, in.Cons, in.E, in.G)
	return
}

// Run performs one full synchronous pass: section properties, assembly,
// factorization, response solve, and all downstream outputs. The cached
// factorization and response stay available for the sensitivity accessors
// until the next Run.
func (o *Analysis) Run() (res *Results, err error) {
	o.res = nil
	o.sec = tube.Calc(o.in.R, o.in.T)
	if err = o.ctx.Assemble(o.nodes, o.sec, o.in.Loads); err != nil {
		return
	}
	dispAug, err := o.ctx.SolveResponse()
	if err != nil {
		return
	}
	disp := fem.Disp(dispAug, len(o.nodes))
	vm, err := out.VonMises(o.nodes, o.in.R, disp, o.in.E, o.in.G)
	if err != nil {
		return
	}
	res = &Results{
		Nodes:    o.nodes,
		Disp:     disp,
		Energy:   out.Energy(disp, o.in.Loads),
		Weight:   out.Weight(o.nodes, o.sec.A, o.in.Rho),
		VonMises: vm,
		Failure:  out.KS(vm, o.in.SigmaAllow, o.in.KSRho),
	}
	o.res = res
	return
}

// Nodes returns the structural node positions
func (o *Analysis) Nodes() [][]float64 { return o.nodes }

// Section returns the tube section properties of the last Run
func (o *Analysis) Section() *tube.Properties { return o.sec }
