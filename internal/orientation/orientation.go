// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Matrix34 is a row-major 3x4 rigid transform as reported by the tracking
// runtime: a 3x3 rotation block followed by a translation column.
type Matrix34 [3][4]float64

// Identity34 is the identity transform (no rotation, origin position).
var Identity34 = Matrix34{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
}

// Quaternion is a rotation in (w, x, y, z) order.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IdentityQuaternion is the zero rotation.
var IdentityQuaternion = Quaternion{W: 1}

// Number converts q to a gonum quaternion.
func (q Quaternion) Number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// Norm returns the Euclidean norm of q. It is 1 for any quaternion derived
// from a proper rotation block.
func (q Quaternion) Norm() float64 {
	return quat.Abs(q.Number())
}

// PositionOf extracts the translation column of m. No validation is done.
func PositionOf(m Matrix34) r3.Vec {
	return r3.Vec{X: m[0][3], Y: m[1][3], Z: m[2][3]}
}

// OrientationOf converts the rotation block of m into a unit quaternion.
//
// Magnitudes come from the trace and diagonal terms; the signs of x, y and z
// are copied from the antisymmetric off-diagonal differences. The result is
// only meaningful when the rotation block is orthonormal: for anything else
// it may be non-unit or all zero.
func OrientationOf(m Matrix34) Quaternion {
	q := Quaternion{
		W: math.Sqrt(math.Max(0, 1+m[0][0]+m[1][1]+m[2][2])) / 2,
		X: math.Sqrt(math.Max(0, 1+m[0][0]-m[1][1]-m[2][2])) / 2,
		Y: math.Sqrt(math.Max(0, 1-m[0][0]+m[1][1]-m[2][2])) / 2,
		Z: math.Sqrt(math.Max(0, 1-m[0][0]-m[1][1]+m[2][2])) / 2,
	}
	q.X = math.Copysign(q.X, m[2][1]-m[1][2])
	q.Y = math.Copysign(q.Y, m[0][2]-m[2][0])
	q.Z = math.Copysign(q.Z, m[1][0]-m[0][1])
	return q
}
