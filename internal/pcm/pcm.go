// SPDX-License-Identifier: MIT
// Package pcm converts between normalized float samples in [-1, 1] and
// 16-bit signed PCM. Both directions are total: out-of-range floats saturate
// instead of wrapping.
package pcm

// Scale is the symmetric full-scale value used in both directions. Using
// 32767 rather than 32768 keeps round trips centred; -32768 is outside the
// codec's range and decodes to slightly below -1.
const Scale = 32767

// FloatToInt16 clamps s to [-1, 1], scales by Scale in float32 and truncates
// toward zero.
// NaN encodes as silence.
func FloatToInt16(s float32) int16 {
	if s != s {
		return 0
	}
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}

	return int16(s * Scale)
}

// Int16ToFloat maps v to v/Scale.
func Int16ToFloat(v int16) float32 {
	return float32(v) / Scale
}

// Encode converts min(len(dst), len(src)) float samples into dst and returns
// the number converted.
func Encode(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = FloatToInt16(src[i])
	}
	return n
}

// Decode converts min(len(dst), len(src)) PCM samples into dst and returns
// the number converted.
func Decode(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Int16ToFloat(src[i])
	}
	return n
}
