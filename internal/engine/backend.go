// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"

	"binaural/internal/hrtf"
	"binaural/internal/reverb"
)

// Backend creates the processing context the engine acquires everything
// else from.
type Backend interface {
	NewContext(Settings) (Context, error)
}

// Context owns the capabilities created for one set of Settings.
type Context interface {
	LoadHRTF() (HRTF, error)
	NewBinauralEffect(HRTF) (BinauralEffect, error)
	NewReverb() (Reverb, error)
	Close() error
}

// HRTF is an opaque, loaded set of head-related transfer functions.
type HRTF interface {
	Close() error
}

// BinauralEffect renders one mono frame of FrameSize samples into an
// interleaved stereo frame of 2*FrameSize samples. Filter state carries
// over between calls.
type BinauralEffect interface {
	Apply(in []float32, p hrtf.Params, out []float32) error
	Close() error
}

// Reverb processes interleaved stereo frames in place of a room. Its state
// persists across calls.
type Reverb interface {
	Process(in, out []float32) error
	DecayFrames() int
	SetParameters(reverb.Parameters)
	Close() error
}

// DefaultBackend returns the reference backend: a spherical-head HRTF
// renderer and a comb/allpass reverb. opts configure the HRTF dataset.
func DefaultBackend(opts ...hrtf.Option) Backend {
	return referenceBackend{opts: opts}
}

type referenceBackend struct {
	opts []hrtf.Option
}

func (b referenceBackend) NewContext(s Settings) (Context, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &referenceContext{settings: s, opts: b.opts}, nil
}

type referenceContext struct {
	settings Settings
	opts     []hrtf.Option
}

func (c *referenceContext) LoadHRTF() (HRTF, error) {
	d, err := hrtf.LoadDataset(c.settings.SampleRate, c.opts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *referenceContext) NewBinauralEffect(h HRTF) (BinauralEffect, error) {
	d, ok := h.(*hrtf.Dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %T", hrtf.ErrForeignHRTF, h)
	}
	e, err := hrtf.NewEffect(d, c.settings.FrameSize)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (c *referenceContext) NewReverb() (Reverb, error) {
	r, err := reverb.New(c.settings.SampleRate)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c *referenceContext) Close() error { return nil }
