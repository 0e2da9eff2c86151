// SPDX-License-Identifier: MIT
// Package direction turns caller-supplied steering scalars into the unit
// vector the binaural renderer expects. The coordinate system is right
// handed: +X right, +Y up, +Z forward.
package direction

import "math"

// Vector is a 3D direction relative to the listener.
type Vector struct {
	X, Y, Z float32
}

// Forward is the direction straight ahead of the listener. It is returned
// whenever the input cannot be normalized.
var Forward = Vector{X: 0, Y: 0, Z: 1}

// Resolve builds (x, y, 1) and normalizes it. The fixed unit forward offset
// places a source in front of the listener unless steered otherwise.
//
// Resolve is total: non-finite inputs never panic and resolve to Forward.
func Resolve(x, y float32) Vector {
	fx, fy, fz := float64(x), float64(y), 1.0
	length := math.Sqrt(fx*fx + fy*fy + fz*fz)
	if !(length > 0) {
		return Forward
	}

	v := Vector{
		X: float32(fx / length),
		Y: float32(fy / length),
		Z: float32(fz / length),
	}
	if !v.finite() {
		return Forward
	}
	return v
}

// Magnitude returns the Euclidean length of v.
func (v Vector) Magnitude() float32 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return float32(math.Sqrt(x*x + y*y + z*z))
}

// Azimuth returns the horizontal angle in degrees, 0 straight ahead and
// positive to the right, in (-180, 180].
func (v Vector) Azimuth() float64 {
	return math.Atan2(float64(v.X), float64(v.Z)) * 180 / math.Pi
}

// Elevation returns the vertical angle in degrees, positive upwards.
func (v Vector) Elevation() float64 {
	y := float64(v.Y)
	if m := float64(v.Magnitude()); m > 0 {
		y /= m
	}
	return math.Asin(math.Max(-1, math.Min(1, y))) * 180 / math.Pi
}

func (v Vector) finite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
