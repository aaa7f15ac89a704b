// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatialbeam

import (
	"github.com/cpmech/gosl/chk"

	"github.com/aerostruct/spatialbeam/out"
	"github.com/aerostruct/spatialbeam/tube"
)

// The sensitivity accessors chain the per-package derivatives through the
// factorization cached by Run. Closed forms are used where the algebra is
// simple (sections, energy, weight, aggregation weights); the
// geometry-to-stiffness and stress chains use complex-step building blocks
// from fem and out. No accessor ever forms an explicit matrix inverse.

func (o *Analysis) ready() error {
	if o.res == nil {
		return chk.Err("no results available: call Run first")
	}
	return nil
}

// DDispDLoad computes ∂disp/∂Loads[node][dof] (n×6) with one
// back-substitution against the cached factorization
func (o *Analysis) DDispDLoad(node, dof int) ([][]float64, error) {
	if err := o.ready(); err != nil {
		return nil, err
	}
	return o.ctx.DDispDLoad(node, dof)
}

// DDispDR computes ∂disp/∂R[ielem] (n×6), chaining the closed-form section
// derivatives through the complex-step stiffness directional derivative
func (o *Analysis) DDispDR(ielem int) ([][]float64, error) {
	if err := o.ready(); err != nil {
		return nil, err
	}
	da, diy, diz, dj := o.sectionDir(ielem, true)
	return o.ctx.DDispDSectionDir(o.nodes, o.sec, da, diy, diz, dj)
}

// DDispDT computes ∂disp/∂T[ielem] (n×6)
func (o *Analysis) DDispDT(ielem int) ([][]float64, error) {
	if err := o.ready(); err != nil {
		return nil, err
	}
	da, diy, diz, dj := o.sectionDir(ielem, false)
	return o.ctx.DDispDSectionDir(o.nodes, o.sec, da, diy, diz, dj)
}

// sectionDir builds the section perturbation direction of one radius (wrtR)
// or thickness design variable
func (o *Analysis) sectionDir(ielem int, wrtR bool) (da, diy, diz, dj []float64) {
	nele := len(o.in.R)
	da = make([]float64, nele)
	diy = make([]float64, nele)
	diz = make([]float64, nele)
	dj = make([]float64, nele)
	d := tube.Derivs(o.in.R, o.in.T)
	if wrtR {
		da[ielem] = d.DADr[ielem]
		diy[ielem] = d.DIyDr[ielem]
		diz[ielem] = d.DIzDr[ielem]
		dj[ielem] = d.DJDr[ielem]
	} else {
		da[ielem] = d.DADt[ielem]
		diy[ielem] = d.DIyDt[ielem]
		diz[ielem] = d.DIzDt[ielem]
		dj[ielem] = d.DJDt[ielem]
	}
	return
}

// DDispDMesh computes ∂disp/∂LeadMesh[inode][icomp] and
// ∂disp/∂TrailMesh[inode][icomp] (each n×6). The node blend is linear, so
// both are scalings of the structural-node sensitivity.
func (o *Analysis) DDispDMesh(inode, icomp int) (dLead, dTrail [][]float64, err error) {
	if err = o.ready(); err != nil {
		return
	}
	base, err := o.ctx.DDispDNode(o.nodes, o.sec, inode, icomp)
	if err != nil {
		return
	}
	w := o.in.FemOrigin
	dLead = scale2(base, 1.0-w)
	dTrail = scale2(base, w)
	return
}

// DEnergyDLoads computes ∂Energy/∂Loads (n×6). Energy is u·f with u itself
// depending on f, so the gradient is u plus a transposed solve of the load
// vector; for the symmetric augmented system the two terms coincide.
func (o *Analysis) DEnergyDLoads() (dLoads [][]float64, err error) {
	if err = o.ready(); err != nil {
		return
	}
	n := len(o.nodes)
	b := make([]float64, o.ctx.Size())
	for i := 0; i < n; i++ {
		for d := 0; d < 6; d++ {
			b[6*i+d] = o.in.Loads[i][d]
		}
	}
	x := make([]float64, o.ctx.Size())
	if err = o.ctx.SolveTransposed(x, b); err != nil {
		return
	}
	dLoads = make([][]float64, n)
	for i := 0; i < n; i++ {
		dLoads[i] = make([]float64, 6)
		for d := 0; d < 6; d++ {
			dLoads[i][d] = o.res.Disp[i][d] + x[6*i+d]
		}
	}
	return
}

// DWeightDR computes ∂Weight/∂R (one entry per element, diagonal chain
// through the section area)
func (o *Analysis) DWeightDR() ([]float64, error) {
	return o.dWeightSection(true)
}

// DWeightDT computes ∂Weight/∂T
func (o *Analysis) DWeightDT() ([]float64, error) {
	return o.dWeightSection(false)
}

func (o *Analysis) dWeightSection(wrtR bool) (dw []float64, err error) {
	if err = o.ready(); err != nil {
		return
	}
	dArea, _ := out.WeightDerivs(o.nodes, o.sec.A, o.in.Rho)
	d := tube.Derivs(o.in.R, o.in.T)
	dw = make([]float64, len(dArea))
	for ie := range dw {
		if wrtR {
			dw[ie] = dArea[ie] * d.DADr[ie]
		} else {
			dw[ie] = dArea[ie] * d.DADt[ie]
		}
	}
	return
}

// DWeightDMesh computes ∂Weight/∂LeadMesh and ∂Weight/∂TrailMesh (each n×3)
// through the element lengths and the node blend
func (o *Analysis) DWeightDMesh() (dLead, dTrail [][]float64, err error) {
	if err = o.ready(); err != nil {
		return
	}
	_, dNodes := out.WeightDerivs(o.nodes, o.sec.A, o.in.Rho)
	w := o.in.FemOrigin
	dLead = scale2(dNodes, 1.0-w)
	dTrail = scale2(dNodes, w)
	return
}

// DFailureDLoads computes ∂Failure/∂Loads (n×6) in reverse mode: the
// aggregation weights are pulled back through the stress-displacement
// Jacobian, then through the stiffness by one transposed solve
func (o *Analysis) DFailureDLoads() (dLoads [][]float64, err error) {
	if err = o.ready(); err != nil {
		return
	}
	g, err := o.failureDispGrad()
	if err != nil {
		return
	}
	n := len(o.nodes)
	b := make([]float64, o.ctx.Size())
	copy(b, g)
	x := make([]float64, o.ctx.Size())
	if err = o.ctx.SolveTransposed(x, b); err != nil {
		return
	}
	dLoads = make([][]float64, n)
	for i := 0; i < n; i++ {
		dLoads[i] = make([]float64, 6)
		copy(dLoads[i], x[6*i:6*i+6])
	}
	return
}

// DFailureDR computes ∂Failure/∂R: the direct dependence of the stress
// recovery on the radius plus the indirect path through the stiffness
func (o *Analysis) DFailureDR() (dr []float64, err error) {
	if err = o.ready(); err != nil {
		return
	}
	kw, _ := out.KSDerivs(o.res.VonMises, o.in.SigmaAllow, o.in.KSRho)
	jr, err := out.DVonMisesDR(o.nodes, o.in.R, o.res.Disp, o.in.E, o.in.G)
	if err != nil {
		return
	}
	g, err := o.failureDispGrad()
	if err != nil {
		return
	}
	nele := len(o.in.R)
	dr = make([]float64, nele)
	for ie := 0; ie < nele; ie++ {
		for m := range kw {
			dr[ie] += kw[m] * jr[m][ie]
		}
		da, diy, diz, dj := o.sectionDir(ie, true)
		ddisp, err := o.ctx.DDispDSectionDir(o.nodes, o.sec, da, diy, diz, dj)
		if err != nil {
			return nil, err
		}
		dr[ie] += dotDisp(g, ddisp)
	}
	return
}

// DFailureDT computes ∂Failure/∂T; the thickness acts on the stresses only
// through the stiffness
func (o *Analysis) DFailureDT() (dt []float64, err error) {
	if err = o.ready(); err != nil {
		return
	}
	g, err := o.failureDispGrad()
	if err != nil {
		return
	}
	nele := len(o.in.T)
	dt = make([]float64, nele)
	for ie := 0; ie < nele; ie++ {
		da, diy, diz, dj := o.sectionDir(ie, false)
		ddisp, err := o.ctx.DDispDSectionDir(o.nodes, o.sec, da, diy, diz, dj)
		if err != nil {
			return nil, err
		}
		dt[ie] = dotDisp(g, ddisp)
	}
	return
}

// DFailureDSigma computes ∂Failure/∂SigmaAllow, which is −1 exactly since
// every margin shifts with the allowable
func (o *Analysis) DFailureDSigma() (float64, error) {
	if err := o.ready(); err != nil {
		return 0, err
	}
	_, dSigma := out.KSDerivs(o.res.VonMises, o.in.SigmaAllow, o.in.KSRho)
	return dSigma, nil
}

// failureDispGrad computes ∂Failure/∂disp flattened over the structural DOFs:
// the aggregation weights contracted with the stress-displacement Jacobian
func (o *Analysis) failureDispGrad() (g []float64, err error) {
	kw, _ := out.KSDerivs(o.res.VonMises, o.in.SigmaAllow, o.in.KSRho)
	jd, err := out.DVonMisesDDisp(o.nodes, o.in.R, o.res.Disp, o.in.E, o.in.G)
	if err != nil {
		return
	}
	g = make([]float64, 6*len(o.nodes))
	for m := range kw {
		for c := range g {
			g[c] += kw[m] * jd[m][c]
		}
	}
	return
}

func dotDisp(g []float64, disp [][]float64) (s float64) {
	for i := range disp {
		for d := 0; d < 6; d++ {
			s += g[6*i+d] * disp[i][d]
		}
	}
	return
}

func scale2(a [][]float64, f float64) (b [][]float64) {
	b = make([][]float64, len(a))
	for i := range a {
		b[i] = make([]float64, len(a[i]))
		for j := range a[i] {
			b[i][j] = f * a[i][j]
		}
	}
	return
}
