// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "gonum.org/v1/gonum/mat"

// Local stiffness templates of the 3-D Euler-Bernoulli beam. The 12×12 local
// block is the sum of four independent sub-blocks scattered onto disjoint DOF
// groups: axial (EA/L), torsion (GJ/L) and two bending planes (EI/L³), the
// latter with extra L factors on the rotational rows/columns.
var (
	const2 = []float64{
		1, -1,
		-1, 1,
	}
	constY = []float64{
		12, -6, -12, -6,
		-6, 4, 6, 2,
		-12, 6, 12, 6,
		-6, 2, 6, 4,
	}
	constZ = []float64{
		12, 6, -12, 6,
		6, 4, -6, 2,
		-12, -6, 12, -6,
		6, 2, -6, 4,
	}

	// local DOF groups: {u0x,u1x}, {θ0x,θ1x}, {u0z,θ0y,u1z,θ1y}, {u0y,θ0z,u1y,θ1z}
	dofsAxial   = []int{0, 6}
	dofsTorsion = []int{3, 9}
	dofsBendY   = []int{2, 4, 8, 10}
	dofsBendZ   = []int{1, 5, 7, 11}
)

// localStiffness fills the 12×12 local stiffness block for one element
func localStiffness(kl *mat.Dense, l, ea, gj, eiy, eiz float64) {
	kl.Zero()
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			v := const2[2*a+b]
			kl.Set(dofsAxial[a], dofsAxial[b], v*ea/l)
			kl.Set(dofsTorsion[a], dofsTorsion[b], v*gj/l)
		}
	}
	l3 := l * l * l
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			sy := constY[4*a+b] * eiy / l3
			sz := constZ[4*a+b] * eiz / l3
			if a%2 == 1 {
				sy *= l
				sz *= l
			}
			if b%2 == 1 {
				sy *= l
				sz *= l
			}
			kl.Set(dofsBendY[a], dofsBendY[b], sy)
			kl.Set(dofsBendZ[a], dofsBendZ[b], sz)
		}
	}
}

// blockDiag fills the 12×12 transformation with four copies of the 3×3 frame
func blockDiag(tel *mat.Dense, T [][]float64) {
	tel.Zero()
	for k := 0; k < 4; k++ {
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				tel.Set(3*k+a, 3*k+b, T[a][b])
			}
		}
	}
}
