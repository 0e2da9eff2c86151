// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-two helpers for FFT and buffer sizing.

Design Principles:
- Zero Allocations: All operations use stack memory only
- Predictable Performance: O(1) constant time operations
- Real-Time Safe: No locks, syscalls, or blocking operations

Usage:

	// Size an FFT for linear convolution of a frame with a filter
	fftSize := bitint.NextPowerOfTwo(frameSize + taps - 1)

	// Verify FFT window size is valid
	isValid := bitint.IsPowerOfTwo(fftSize)

----------------------------------------------------------------------

What this code does:

	NextPowerOfTwo returns the next power of 2 greater than or
	equal to size. For powers of 2, it returns the same value.

	The subtraction (size-1) is critical: bits.Len of an exact
	power of two is one past its highest bit, so without it
	8 (binary 1000) would become 1<<4 = 16. With it, 7 (0111)
	has length 3 and 1<<3 = 8 is preserved.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
//
// Examples:
//
//	Input  Output  Explanation
//	4      4      Already power of 2 (preserved)
//	5      8      Next power after 5
//	0      1      Handle zero case
//	-1     1      Handle negative case
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation.
// The expression (n & (n-1)) == 0 works because:
//   - Powers of 2 have exactly one bit set
//   - Subtracting 1 from a power of 2 sets all lower bits
//   - AND operation will be 0 only for powers of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
