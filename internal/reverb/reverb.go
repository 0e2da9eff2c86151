// SPDX-License-Identifier: MIT
/*
Package reverb implements a stereo Schroeder/Moorer reverberator in the
Freeverb layout: eight parallel damped comb filters feed four series
allpass diffusers per channel, with the right channel's delay lines
detuned by a fixed spread.

Signal flow per sample:

	in  = (inL + inR) * fixedGain
	wL  = allpass4(sum(combL(in)))
	wR  = allpass4(sum(combR(in)))
	outL = wL*wet1 + wR*wet2 + inL*dry
	outR = wR*wet1 + wL*wet2 + inR*dry

Delay line lengths are tuned for 44.1 kHz and scaled to the sample rate.
A Reverb keeps its filter memory between Process calls so a stream can be
fed frame by frame. It is not safe for concurrent use.
*/
package reverb

import (
	"errors"
	"math"

	applog "binaural/internal/log"
)

const (
	numCombs     = 8
	numAllpasses = 4

	fixedGain       = 0.015
	scaleWet        = 3
	scaleDry        = 2
	scaleDamp       = 0.4
	scaleRoom       = 0.28
	offsetRoom      = 0.7
	stereoSpread    = 23
	allpassFeedback = 0.5

	tuningRate = 44100
	decayDB    = 80
)

// Delay line lengths in samples at tuningRate.
var (
	combTuning    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [numAllpasses]int{556, 441, 341, 225}
)

var (
	ErrSampleRate = errors.New("reverb: sample rate must be positive")
	ErrBufferSize = errors.New("reverb: buffers must hold the same even number of samples")
)

// Parameters are the user-facing room controls, each within [0, 1].
type Parameters struct {
	RoomSize float32
	Damping  float32
	WetLevel float32
	DryLevel float32
	Width    float32
}

// DefaultParameters is a small, bright room mixed mostly dry.
var DefaultParameters = Parameters{
	RoomSize: 0.10,
	Damping:  1.00,
	WetLevel: 0.09,
	DryLevel: 0.30,
	Width:    1.00,
}

// Clamp returns p with every field limited to [0, 1]. NaN becomes 0.
func (p Parameters) Clamp() Parameters {
	return Parameters{
		RoomSize: unit(p.RoomSize),
		Damping:  unit(p.Damping),
		WetLevel: unit(p.WetLevel),
		DryLevel: unit(p.DryLevel),
		Width:    unit(p.Width),
	}
}

// Finite reports whether every field is a finite number.
func (p Parameters) Finite() bool {
	for _, v := range [...]float32{p.RoomSize, p.Damping, p.WetLevel, p.DryLevel, p.Width} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func unit(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}

// Reverb is a stereo reverberator for one sample rate.
type Reverb struct {
	sampleRate int
	params     Parameters

	combL, combR       [numCombs]*comb
	allpassL, allpassR [numAllpasses]*allpass

	wet1, wet2, dry float32
}

// New creates a reverb for sampleRate with DefaultParameters applied.
func New(sampleRate int) (*Reverb, error) {
	if sampleRate <= 0 {
		return nil, ErrSampleRate
	}

	scale := float64(sampleRate) / tuningRate
	scaled := func(n int) int {
		return max(1, int(math.Round(float64(n)*scale)))
	}

	r := &Reverb{sampleRate: sampleRate}
	for i, n := range combTuning {
		r.combL[i] = newComb(scaled(n))
		r.combR[i] = newComb(scaled(n + stereoSpread))
	}
	for i, n := range allpassTuning {
		r.allpassL[i] = newAllpass(scaled(n))
		r.allpassR[i] = newAllpass(scaled(n + stereoSpread))
	}
	r.SetParameters(DefaultParameters)

	applog.Debugf("Reverb: Created (SampleRate: %d Hz, DecayFrames: %d)", sampleRate, r.DecayFrames())

	return r, nil
}

// SampleRate returns the rate the delay lines were tuned for.
func (r *Reverb) SampleRate() int { return r.sampleRate }

// Parameters returns the current (clamped) room controls.
func (r *Reverb) Parameters() Parameters { return r.params }

// SetParameters clamps p to [0, 1] and applies it from the next sample on.
func (r *Reverb) SetParameters(p Parameters) {
	p = p.Clamp()
	r.params = p

	wet := p.WetLevel * scaleWet
	r.wet1 = wet * (p.Width/2 + 0.5)
	r.wet2 = wet * ((1 - p.Width) / 2)
	r.dry = p.DryLevel * scaleDry

	feedback := r.feedback()
	damp := p.Damping * scaleDamp
	for i := range numCombs {
		r.combL[i].feedback = feedback
		r.combR[i].feedback = feedback
		r.combL[i].setDamp(damp)
		r.combR[i].setDamp(damp)
	}
}

func (r *Reverb) feedback() float32 {
	return r.params.RoomSize*scaleRoom + offsetRoom
}

// DecayFrames returns the number of sample frames the longest comb needs to
// decay by 80 dB once its input falls silent.
func (r *Reverb) DecayFrames() int {
	fb := float64(r.feedback())
	if fb <= 0 {
		return 0
	}
	if fb >= 1 {
		// Never decays; bounded so callers can still size a tail.
		fb = math.Nextafter(1, 0)
	}

	passes := decayDB / (-20 * math.Log10(fb))
	longest := len(r.combR[numCombs-1].buf)
	return int(math.Ceil(passes * float64(longest)))
}

// Process runs interleaved stereo samples from in into out. Both slices must
// have the same even length. in and out may alias.
func (r *Reverb) Process(in, out []float32) error {
	if len(in) != len(out) || len(in)%2 != 0 {
		return ErrBufferSize
	}

	for i := 0; i < len(in); i += 2 {
		inL, inR := in[i], in[i+1]
		mono := (inL + inR) * fixedGain

		var wL, wR float32
		for c := range numCombs {
			wL += r.combL[c].process(mono)
			wR += r.combR[c].process(mono)
		}
		for a := range numAllpasses {
			wL = r.allpassL[a].process(wL)
			wR = r.allpassR[a].process(wR)
		}

		out[i] = wL*r.wet1 + wR*r.wet2 + inL*r.dry
		out[i+1] = wR*r.wet1 + wL*r.wet2 + inR*r.dry
	}

	return nil
}

// Reset silences all delay lines.
func (r *Reverb) Reset() {
	for i := range numCombs {
		r.combL[i].reset()
		r.combR[i].reset()
	}
	for i := range numAllpasses {
		r.allpassL[i].reset()
		r.allpassR[i].reset()
	}
}

// Close releases the delay lines. The Reverb must not be used afterwards.
func (r *Reverb) Close() error {
	r.Reset()
	return nil
}
