// SPDX-License-Identifier: MIT
/*
Package frame splits arbitrary-length sample sequences into fixed-size,
non-overlapping frames.

Both processing paths of the engine work on frames of exactly FrameSize
samples per channel. Callers hand in audio of any length, so the last
frame is usually partial and must be zero-padded before it reaches an
engine. The helpers here keep that rule in one place:

	n := frame.Count(len(in), size)     // ceil(len/size)
	buf := frame.Pad(in, size)          // zero-extended, or in itself
	for i, w := range frame.Windows(buf, size) {
		// w is buf[i*size : (i+1)*size]
	}
*/
package frame

import "iter"

// Count returns the number of frames of the given size needed to hold length
// samples, i.e. ceil(length/size). A length <= 0 yields zero frames.
//
// size must be positive. It is a configuration-time invariant, so a bad
// value panics instead of being reported per call.
func Count(length, size int) int {
	if size <= 0 {
		panic("frame: size must be positive")
	}
	if length <= 0 {
		return 0
	}
	return (length + size - 1) / size
}

// Pad returns samples extended with zeros up to the next multiple of width.
// When len(samples) already is a multiple of width the input slice itself is
// returned and nothing is copied.
func Pad[T any](samples []T, width int) []T {
	n := Count(len(samples), width)
	if len(samples)%width == 0 {
		return samples
	}
	padded := make([]T, n*width)
	copy(padded, samples)
	return padded
}

// Extend allocates a zeroed buffer of total elements and copies samples into
// its prefix. Samples beyond total are dropped.
func Extend[T any](samples []T, total int) []T {
	buf := make([]T, total)
	copy(buf, samples)
	return buf
}

// Windows yields consecutive non-overlapping windows of width elements over
// buf together with their index. A trailing partial window is never yielded;
// pad the buffer first when the tail matters.
func Windows[T any](buf []T, width int) iter.Seq2[int, []T] {
	if width <= 0 {
		panic("frame: width must be positive")
	}
	return func(yield func(int, []T) bool) {
		for i := 0; (i+1)*width <= len(buf); i++ {
			if !yield(i, buf[i*width:(i+1)*width:(i+1)*width]) {
				return
			}
		}
	}
}
