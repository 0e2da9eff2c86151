// SPDX-License-Identifier: MIT
/*
Package engine drives a binaural renderer and a reverb over audio of
arbitrary length.

The backend capabilities work on fixed frames of Settings.FrameSize
samples per channel. The engine chunks caller input into such frames,
zero-pads the last one, runs every frame through the capability in order
and encodes the float result as interleaved 16-bit stereo PCM.

Lifecycle:

	Uninitialized --Initialize--> Initialized --Close--> Uninitialized

Initialize acquires, in order, a backend context, an HRTF, a binaural
effect bound to that HRTF, the stereo scratch buffer and, best effort,
a reverb. Close releases them in reverse order. Both are idempotent.

Thread Safety:
  - An Engine is not safe for concurrent use. Scratch buffers and reverb
    state are shared by every call, so callers must serialize access.
  - Outputs are independent of the engine once returned.
*/
package engine

import (
	"errors"
	"fmt"
	"sync"

	"binaural/internal/frame"
	"binaural/internal/hrtf"
	applog "binaural/internal/log"
	"binaural/internal/reverb"
)

// Settings are fixed for the lifetime of an initialized engine.
type Settings struct {
	SampleRate    int                // Hz, > 0
	FrameSize     int                // Samples per channel per frame, > 0
	Interpolation hrtf.Interpolation // HRTF grid interpolation, Nearest by default
}

// Validate reports ErrInvalidSettings for a non-positive rate or frame size.
func (s Settings) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidSettings, s.SampleRate)
	}
	if s.FrameSize <= 0 {
		return fmt.Errorf("%w: frame size %d", ErrInvalidSettings, s.FrameSize)
	}
	return nil
}

// Engine owns the backend resources and the scratch buffers shared by the
// spatialization and reverb pipelines.
type Engine struct {
	backend Backend

	settings    Settings
	initialized bool

	ctx     Context
	hrtf    HRTF
	effect  BinauralEffect
	scratch []float32 // Interleaved stereo output of one HRTF frame.

	reverb    Reverb
	reverbIn  []float32
	reverbOut []float32

	releases []release
	outputs  sync.Pool // *[]int16
}

type release struct {
	name string
	fn   func() error
}

// New returns an uninitialized engine. A nil backend selects DefaultBackend.
func New(backend Backend) *Engine {
	if backend == nil {
		backend = DefaultBackend()
	}
	return &Engine{backend: backend}
}

// Initialized reports whether Initialize has succeeded and Close has not
// been called since.
func (e *Engine) Initialized() bool { return e.initialized }

// ReverbAvailable reports whether the reverb was acquired.
func (e *Engine) ReverbAvailable() bool { return e.initialized && e.reverb != nil }

// Settings returns the settings the engine was initialized with.
func (e *Engine) Settings() Settings { return e.settings }

// Initialize acquires every backend resource. It is a no-op when the engine
// is already initialized; differing settings are then ignored.
//
// A reverb that cannot be created leaves the engine initialized with
// ReverbAvailable() == false.
func (e *Engine) Initialize(s Settings) error {
	if e.initialized {
		if s != e.settings {
			applog.Warnf("Engine: Already initialized with %+v, ignoring %+v", e.settings, s)
		}
		return nil
	}

	if err := s.Validate(); err != nil {
		return err
	}

	if err := e.acquire(s); err != nil {
		if rerr := e.unwind(); rerr != nil {
			applog.Errorf("Engine: Release after failed initialization: %v", rerr)
		}
		return err
	}

	e.settings = s
	e.initialized = true

	applog.Infof("Engine: Initialized (SampleRate: %d Hz, FrameSize: %d, Interpolation: %s, Reverb: %t)",
		s.SampleRate, s.FrameSize, s.Interpolation, e.reverb != nil)

	return nil
}

func (e *Engine) acquire(s Settings) error {
	ctx, err := e.backend.NewContext(s)
	if err != nil {
		return fmt.Errorf("%w: create context: %w", ErrEngineFailure, err)
	}
	e.ctx = ctx
	e.push("context", ctx.Close)

	h, err := ctx.LoadHRTF()
	if err != nil {
		return fmt.Errorf("%w: load HRTF: %w", ErrEngineFailure, err)
	}
	e.hrtf = h
	e.push("hrtf", h.Close)

	effect, err := ctx.NewBinauralEffect(h)
	if err != nil {
		return fmt.Errorf("%w: create binaural effect: %w", ErrEngineFailure, err)
	}
	e.effect = effect
	e.push("binaural effect", effect.Close)

	e.scratch = make([]float32, 2*s.FrameSize)
	e.push("scratch", func() error {
		e.scratch = nil
		return nil
	})

	rv, err := ctx.NewReverb()
	if err != nil {
		applog.Warnf("Engine: Reverb unavailable: %v", err)
		return nil
	}
	e.reverb = rv
	e.reverbIn = make([]float32, 2*s.FrameSize)
	e.reverbOut = make([]float32, 2*s.FrameSize)
	e.push("reverb", func() error {
		e.reverbIn, e.reverbOut = nil, nil
		return rv.Close()
	})

	return nil
}

func (e *Engine) push(name string, fn func() error) {
	e.releases = append(e.releases, release{name: name, fn: fn})
}

// unwind runs every pending release in reverse acquisition order.
func (e *Engine) unwind() error {
	var errs []error
	for i := len(e.releases) - 1; i >= 0; i-- {
		r := e.releases[i]
		if err := r.fn(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", r.name, err))
		}
	}

	e.releases = nil
	e.ctx, e.hrtf, e.effect, e.reverb = nil, nil, nil, nil
	return errors.Join(errs...)
}

// Close releases all resources in reverse acquisition order and returns the
// engine to the uninitialized state. Closing an uninitialized engine is a
// no-op. Every release runs even if an earlier one fails.
func (e *Engine) Close() error {
	if !e.initialized {
		return nil
	}

	err := e.unwind()
	e.initialized = false
	e.settings = Settings{}

	applog.Infof("Engine: Closed")

	return err
}

// SetReverbParameters applies p, clamped to [0, 1], from the next
// ApplyReverb call on.
func (e *Engine) SetReverbParameters(p reverb.Parameters) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if e.reverb == nil {
		return ErrReverbUnavailable
	}
	if !p.Finite() {
		return fmt.Errorf("%w: reverb parameters %+v", ErrInvalidArgument, p)
	}

	e.reverb.SetParameters(p.Clamp())
	return nil
}

// TailFrames returns how many extra frames ApplyReverb appends so the
// reverb can decay. It is 0 when the reverb is unavailable.
func (e *Engine) TailFrames() int {
	if !e.ReverbAvailable() {
		return 0
	}
	return frame.Count(e.reverb.DecayFrames(), e.settings.FrameSize)
}
