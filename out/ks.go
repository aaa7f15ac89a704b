// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import "math"

// KS aggregates the stress margins m_j = vm_j − sigma into a single smooth
// conservative maximum with the Kreisselmeier-Steinhauser function
//
//	KS = m_max + ln(Σ exp(ρ·(m_j − m_max))) / ρ
//
// KS ≥ max(m) always, and KS → max(m) as rho → ∞. A negative result means no
// element end exceeds the allowable stress.
func KS(vm [][]float64, sigma, rho float64) float64 {
	fmax := math.Inf(-1)
	for _, row := range vm {
		for _, v := range row {
			if m := v - sigma; m > fmax {
				fmax = m
			}
		}
	}
	var sum float64
	for _, row := range vm {
		for _, v := range row {
			sum += math.Exp(rho * (v - sigma - fmax))
		}
	}
	return fmax + math.Log(sum)/rho
}

// KSDerivs computes the closed-form gradient of KS. The weights
//
//	w_j = exp(ρ·(m_j − m_max)) / Σ exp(ρ·(m_k − m_max))
//
// sum to one, so ∂KS/∂vm_j = w_j (returned with the vm layout, row 2·ie+end
// flattened) and ∂KS/∂sigma = −1. Ties at the maximum split the weight mass
// between the tied entries.
func KSDerivs(vm [][]float64, sigma, rho float64) (dVm []float64, dSigma float64) {
	fmax := math.Inf(-1)
	for _, row := range vm {
		for _, v := range row {
			if m := v - sigma; m > fmax {
				fmax = m
			}
		}
	}
	dVm = make([]float64, 2*len(vm))
	var sum float64
	for ie, row := range vm {
		for end, v := range row {
			w := math.Exp(rho * (v - sigma - fmax))
			dVm[2*ie+end] = w
			sum += w
		}
	}
	for j := range dVm {
		dVm[j] /= sum
	}
	dSigma = -1
	return
}
