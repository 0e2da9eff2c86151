// SPDX-License-Identifier: MIT
/*
Package hrtf implements a reference binaural renderer.

A Dataset holds head-related impulse responses (HRIRs) synthesized from a
spherical head model: each ear receives the source with a Woodworth
interaural time difference and a one-pole/one-zero head-shadow filter.
Responses are cached on a 5 degree azimuth/elevation grid.

An Effect renders fixed-size mono frames into interleaved stereo frames by
overlap-add FFT convolution with the left and right HRIRs. The convolution
tail is carried from frame to frame, so consecutive frames of one stream
join without clicks.

Thread Safety:
- Dataset is safe for concurrent use (its grid cache is locked)
- Effect holds per-stream filter state and is not
*/
package hrtf

import (
	"errors"

	"binaural/internal/direction"
)

// Interpolation selects how responses between grid points are obtained.
type Interpolation int

const (
	// Nearest snaps the direction to the closest grid point.
	Nearest Interpolation = iota
	// Bilinear blends the four grid points surrounding the direction.
	Bilinear
)

// String returns the configuration name of the interpolation mode.
func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	default:
		return "unknown"
	}
}

// ParseInterpolation converts a configuration name to an Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch name {
	case "nearest", "":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	default:
		return Nearest, errors.New("hrtf: unknown interpolation '" + name + "'")
	}
}

// Params configures one Apply call.
type Params struct {
	Direction     direction.Vector // Source direction, unit length.
	Interpolation Interpolation    // Grid interpolation mode.
	SpatialBlend  float32          // 0 = dry mono on both ears, 1 = fully spatialized.
}

var (
	ErrSampleRate   = errors.New("hrtf: sample rate must be positive")
	ErrFrameSize    = errors.New("hrtf: frame has wrong size")
	ErrSpatialBlend = errors.New("hrtf: spatial blend must be within [0, 1]")
	ErrClosed       = errors.New("hrtf: use of closed resource")
	ErrHeadRadius   = errors.New("hrtf: head radius must be positive")
	ErrForeignHRTF  = errors.New("hrtf: dataset was not loaded by this backend")
)
