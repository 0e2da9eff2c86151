// SPDX-License-Identifier: MIT
package hrtf

import (
	"math"

	"binaural/internal/direction"
	applog "binaural/internal/log"
	"binaural/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Effect renders mono frames to interleaved stereo through a Dataset.
type Effect struct {
	dataset   *Dataset
	frameSize int
	taps      int
	fftSize   int
	fft       *fourier.FFT

	// Filter spectra for the last direction applied.
	filters    [2][]complex128
	filterDir  direction.Vector
	filterMode Interpolation
	hasFilter  bool

	seq     []float64    // Zero-padded input frame, then per-ear time output.
	inSpec  []complex128 // Spectrum of the current input frame.
	work    []complex128 // Per-ear product spectrum.
	overlap [2][]float64 // Convolution tails carried into the next frame.

	closed bool
}

// NewEffect prepares an effect that accepts frames of exactly frameSize
// samples.
func NewEffect(d *Dataset, frameSize int) (*Effect, error) {
	if d == nil {
		return nil, ErrClosed
	}
	if frameSize <= 0 {
		return nil, ErrFrameSize
	}

	taps := d.Taps()
	fftSize := bitint.NextPowerOfTwo(frameSize + taps - 1)
	bins := fftSize/2 + 1

	e := &Effect{
		dataset:   d,
		frameSize: frameSize,
		taps:      taps,
		fftSize:   fftSize,
		fft:       fourier.NewFFT(fftSize),
		filters:   [2][]complex128{make([]complex128, bins), make([]complex128, bins)},
		seq:       make([]float64, fftSize),
		inSpec:    make([]complex128, bins),
		work:      make([]complex128, bins),
		overlap:   [2][]float64{make([]float64, taps-1), make([]float64, taps-1)},
	}

	applog.Debugf("HRTF: Effect created (FrameSize: %d, Taps: %d, FFTSize: %d)", frameSize, taps, fftSize)

	return e, nil
}

// FrameSize returns the number of mono samples Apply expects.
func (e *Effect) FrameSize() int { return e.frameSize }

// Apply renders one mono frame into out as interleaved L/R samples. out must
// hold at least 2*FrameSize samples. A direction that is not finite and
// non-zero is treated as straight ahead.
func (e *Effect) Apply(in []float32, p Params, out []float32) error {
	if e.closed {
		return ErrClosed
	}
	if len(in) != e.frameSize || len(out) < 2*e.frameSize {
		return ErrFrameSize
	}
	if !(p.SpatialBlend >= 0 && p.SpatialBlend <= 1) {
		return ErrSpatialBlend
	}

	dir := p.Direction
	if !usable(dir) {
		dir = direction.Forward
	}
	if err := e.updateFilters(dir, p.Interpolation); err != nil {
		return err
	}

	clear(e.seq)
	for i, s := range in {
		e.seq[i] = float64(s)
	}
	e.fft.Coefficients(e.inSpec, e.seq)

	wet := float64(p.SpatialBlend)
	dry := 1 - wet
	scale := 1 / float64(e.fftSize)

	for ear := range 2 {
		for k, c := range e.inSpec {
			e.work[k] = c * e.filters[ear][k]
		}
		e.fft.Sequence(e.seq, e.work)

		tail := e.overlap[ear]
		for i := range e.seq[:e.frameSize+len(tail)] {
			e.seq[i] *= scale
		}
		for i, v := range tail {
			e.seq[i] += v
		}

		for i := range e.frameSize {
			out[2*i+ear] = float32(wet*e.seq[i] + dry*float64(in[i]))
		}
		copy(tail, e.seq[e.frameSize:e.frameSize+len(tail)])
	}

	return nil
}

// Reset clears the convolution tails so the next frame starts a new stream.
func (e *Effect) Reset() {
	clear(e.overlap[0])
	clear(e.overlap[1])
}

// Close releases the effect. The dataset is not closed.
func (e *Effect) Close() error {
	e.closed = true
	e.hasFilter = false
	return nil
}

func (e *Effect) updateFilters(dir direction.Vector, mode Interpolation) error {
	if e.hasFilter && dir == e.filterDir && mode == e.filterMode {
		return nil
	}

	responses, err := e.dataset.Responses(dir, mode)
	if err != nil {
		return err
	}

	for ear, h := range responses {
		clear(e.seq)
		copy(e.seq, h)
		e.fft.Coefficients(e.filters[ear], e.seq)
	}

	e.filterDir = dir
	e.filterMode = mode
	e.hasFilter = true
	return nil
}

func usable(v direction.Vector) bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.Magnitude() > 0
}
