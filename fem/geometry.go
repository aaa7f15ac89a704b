// Copyright 2026 The Spatialbeam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/io"
)

// xgl is the global reference direction used to orient element frames
var xgl = []float64{1, 0, 0}

// geomTol is the tolerance below which a length is considered zero
const geomTol = 1e-12

// DegenerateError indicates an element whose geometry does not admit a local
// frame: zero length, or axis parallel to the global reference direction
type DegenerateError struct {
	Elem int // element index; -1 when not yet known
	Msg  string
}

func (e *DegenerateError) Error() string {
	return io.Sf("degenerate element %d: %s", e.Elem, e.Msg)
}

// BlendedNodes places the structural nodes at a fixed chordwise fraction w
// between the leading and trailing edge meshes: (1−w)·lead + w·trail
func BlendedNodes(lead, trail [][]float64, w float64) (nodes [][]float64) {
	nodes = make([][]float64, len(lead))
	for i := range lead {
		nodes[i] = make([]float64, 3)
		for k := 0; k < 3; k++ {
			nodes[i][k] = (1.0-w)*lead[i][k] + w*trail[i][k]
		}
	}
	return
}

// Frame computes the length and local orthonormal frame of the element from
// p0 to p1. The rows of T are x_loc (along the axis), y_loc (normal to the
// axis and the global reference direction) and z_loc.
func Frame(p0, p1 []float64) (l float64, T [][]float64, err error) {
	dx := []float64{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	l = math.Sqrt(dx[0]*dx[0] + dx[1]*dx[1] + dx[2]*dx[2])
	if l < geomTol {
		err = &DegenerateError{Elem: -1, Msg: "zero-length element"}
		return
	}
	xloc := []float64{dx[0] / l, dx[1] / l, dx[2] / l}
	c := cross(xloc, xgl)
	cn := math.Sqrt(c[0]*c[0] + c[1]*c[1] + c[2]*c[2])
	if cn < geomTol {
		err = &DegenerateError{Elem: -1, Msg: "beam axis parallel to global reference direction"}
		return
	}
	yloc := []float64{c[0] / cn, c[1] / cn, c[2] / cn}
	zloc := cross(xloc, yloc)
	T = [][]float64{xloc, yloc, zloc}
	return
}

// cross computes the 3-D cross product a × b
func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
