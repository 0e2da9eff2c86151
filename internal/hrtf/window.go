// SPDX-License-Identifier: MIT
package hrtf

import (
	"fmt"
	"strings"

	applog "binaural/internal/log"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the window whose falling half tapers the HRIR tail.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("hrtf: unknown window function name: '%s'", name)
	}
}

// taper returns the falling half of the selected window, n coefficients long,
// starting at 1 and decaying towards 0.
func taper(n int, windowType WindowFunc) []float64 {
	full := make([]float64, 2*n)
	for i := range full {
		full[i] = 1.0
	}

	switch windowType {
	case BartlettHann:
		window.BartlettHann(full)
	case Blackman:
		window.Blackman(full)
	case BlackmanNuttall:
		window.BlackmanNuttall(full)
	case Hann:
		window.Hann(full)
	case Hamming:
		window.Hamming(full)
	case Lanczos:
		window.Lanczos(full)
	case Nuttall:
		window.Nuttall(full)
	default:
		applog.Warnf("HRTF: Unknown window function type %d, defaulting to Hann", windowType)
		window.Hann(full)
	}

	return full[n:]
}
