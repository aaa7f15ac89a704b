// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import "math"

// Gravity is the standard gravitational acceleration [m/s²]
const Gravity = 9.81

// Weight computes the structural weight ρ·g·Σ A[i]·L[i] over all elements,
// with element lengths taken from the nodal positions
func Weight(nodes [][]float64, area []float64, rho float64) (w float64) {
	for i := range area {
		w += area[i] * dist(nodes[i], nodes[i+1])
	}
	return rho * Gravity * w
}

// WeightDerivs computes ∂W/∂A (per element) and ∂W/∂nodes (n×3)
func WeightDerivs(nodes [][]float64, area []float64, rho float64) (dArea []float64, dNodes [][]float64) {
	dArea = make([]float64, len(area))
	dNodes = make([][]float64, len(nodes))
	for i := range dNodes {
		dNodes[i] = make([]float64, 3)
	}
	for i := range area {
		l := dist(nodes[i], nodes[i+1])
		dArea[i] = rho * Gravity * l
		for k := 0; k < 3; k++ {
			// dL/dP1 = (P1-P0)/L, dL/dP0 = -(P1-P0)/L
			g := rho * Gravity * area[i] * (nodes[i+1][k] - nodes[i][k]) / l
			dNodes[i+1][k] += g
			dNodes[i][k] -= g
		}
	}
	return
}

func dist(p0, p1 []float64) float64 {
	dx := p1[0] - p0[0]
	dy := p1[1] - p0[1]
	dz := p1[2] - p0[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
