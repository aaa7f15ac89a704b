// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ana provides closed-form solutions used to verify the beam solver
package ana

// CantileverBeam holds the data of a uniform cantilever beam clamped at one
// end and loaded at the free tip
type CantileverBeam struct {
	L float64 // length
	E float64 // Young's modulus
	G float64 // shear modulus
	A float64 // cross-section area
	I float64 // second moment of area in the loaded plane
	J float64 // torsion constant
}

// TipDeflection returns the transverse tip displacement under a transverse
// tip force F: F·L³/(3·E·I)
func (o *CantileverBeam) TipDeflection(f float64) float64 {
	return f * o.L * o.L * o.L / (3.0 * o.E * o.I)
}

// TipRotation returns the tip cross-section rotation under a transverse tip
// force F: F·L²/(2·E·I)
func (o *CantileverBeam) TipRotation(f float64) float64 {
	return f * o.L * o.L / (2.0 * o.E * o.I)
}

// TipTwist returns the tip twist angle under a tip torque T: T·L/(G·J)
func (o *CantileverBeam) TipTwist(t float64) float64 {
	return t * o.L / (o.G * o.J)
}

// TipStretch returns the axial tip displacement under an axial tip force N:
// N·L/(E·A)
func (o *CantileverBeam) TipStretch(n float64) float64 {
	return n * o.L / (o.E * o.A)
}
