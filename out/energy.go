// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package out derives the scalar and per-element quantities consumed by the
// outer optimizer from the solved displacement field: strain energy,
// structural weight, combined axial/torsion stresses and the aggregated
// failure constraint.
package out

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/floats"
)

// Energy computes the strain energy Σ disp·loads over all nodal DOFs
func Energy(disp, loads [][]float64) (e float64) {
	chk.IntAssert(len(loads), len(disp))
	for i := range disp {
		e += floats.Dot(disp[i], loads[i])
	}
	return
}

// EnergyDerivs computes ∂E/∂disp = loads and ∂E/∂loads = disp
func EnergyDerivs(disp, loads [][]float64) (dDisp, dLoads [][]float64) {
	dDisp = make([][]float64, len(disp))
	dLoads = make([][]float64, len(disp))
	for i := range disp {
		dDisp[i] = make([]float64, 6)
		dLoads[i] = make([]float64, 6)
		copy(dDisp[i], loads[i])
		copy(dLoads[i], disp[i])
	}
	return
}
