// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tube computes geometric properties of hollow circular (tube)
// cross-sections and their derivatives with respect to the design variables.
package tube

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Properties holds the section properties of tube elements
type Properties struct {
	A  []float64 // [nele] cross-sectional area
	Iy []float64 // [nele] second moment of area about local y-axis
	Iz []float64 // [nele] second moment of area about local z-axis
	J  []float64 // [nele] torsion constant
}

// Calc computes section properties from outer radius r and wall thickness t,
// one entry per element. The mid-wall convention is used: the inner and outer
// radii are r∓t/2. Inputs with t > r produce nonphysical (negative) values;
// validation is a caller responsibility.
func Calc(r, t []float64) (o *Properties) {
	chk.IntAssert(len(t), len(r))
	nele := len(r)
	o = &Properties{
		A:  make([]float64, nele),
		Iy: make([]float64, nele),
		Iz: make([]float64, nele),
		J:  make([]float64, nele),
	}
	for i := 0; i < nele; i++ {
		r1 := r[i] - t[i]/2.0
		r2 := r[i] + t[i]/2.0
		r1s, r2s := r1*r1, r2*r2
		o.A[i] = math.Pi * (r2s - r1s)
		o.Iy[i] = math.Pi * (r2s*r2s - r1s*r1s) / 4.0
		o.Iz[i] = o.Iy[i]
		o.J[i] = math.Pi * (r2s*r2s - r1s*r1s) / 2.0
	}
	return
}

// Sensitivities holds the Jacobians of section properties with respect to r
// and t. All Jacobians are diagonal: property i depends on r[i], t[i] only.
type Sensitivities struct {
	DADr  []float64 // [nele] ∂A/∂r
	DADt  []float64 // [nele] ∂A/∂t
	DIyDr []float64 // [nele] ∂Iy/∂r
	DIyDt []float64 // [nele] ∂Iy/∂t
	DIzDr []float64 // [nele] ∂Iz/∂r
	DIzDt []float64 // [nele] ∂Iz/∂t
	DJDr  []float64 // [nele] ∂J/∂r
	DJDt  []float64 // [nele] ∂J/∂t
}

// Derivs computes closed-form derivatives of all section properties
func Derivs(r, t []float64) (o *Sensitivities) {
	chk.IntAssert(len(t), len(r))
	nele := len(r)
	o = &Sensitivities{
		DADr:  make([]float64, nele),
		DADt:  make([]float64, nele),
		DIyDr: make([]float64, nele),
		DIyDt: make([]float64, nele),
		DIzDr: make([]float64, nele),
		DIzDt: make([]float64, nele),
		DJDr:  make([]float64, nele),
		DJDt:  make([]float64, nele),
	}
	for i := 0; i < nele; i++ {
		r1 := r[i] - t[i]/2.0
		r2 := r[i] + t[i]/2.0
		r1c := r1 * r1 * r1
		r2c := r2 * r2 * r2
		o.DADr[i] = 2.0 * math.Pi * (r2 - r1)
		o.DADt[i] = math.Pi * (r2 + r1)
		o.DIyDr[i] = math.Pi * (r2c - r1c)
		o.DIyDt[i] = math.Pi * (r2c + r1c) / 2.0
		o.DIzDr[i] = o.DIyDr[i]
		o.DIzDt[i] = o.DIyDt[i]
		o.DJDr[i] = 2.0 * math.Pi * (r2c - r1c)
		o.DJDt[i] = math.Pi * (r2c + r1c)
	}
	return
}
