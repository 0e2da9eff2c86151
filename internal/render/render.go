// SPDX-License-Identifier: MIT
// Package render runs the player chain over an engine: volume, binaural
// spatialization and an optional reverb. A Renderer serializes access to its
// engine, so one Renderer may be shared by the CLI, the network server and
// any number of goroutines.
package render

import (
	"slices"
	"sync"

	"binaural/internal/direction"
	"binaural/internal/engine"
	applog "binaural/internal/log"
	"binaural/internal/reverb"
)

// SpatialBoost is the extra gain Boost adds on top of Volume to make up for
// the level lost to binaural rendering.
const SpatialBoost = 0.25

// Options control the chain applied to every clip.
type Options struct {
	Volume  float32           // Linear gain applied before spatialization, [0, 1].
	Boost   bool              // Add SpatialBoost to Volume, so the gain reaches 1.25.
	Reverb  bool              // Run the spatialized signal through the reverb.
	Display direction.Display // Maps screen positions to direction scalars.
}

// Renderer owns an initialized engine.
type Renderer struct {
	mu   sync.Mutex
	eng  *engine.Engine
	opts Options
}

// New wraps eng, which must already be initialized.
func New(eng *engine.Engine, opts Options) *Renderer {
	opts.Volume = clampUnit(opts.Volume)
	return &Renderer{eng: eng, opts: opts}
}

// Settings returns the engine settings.
func (r *Renderer) Settings() engine.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eng.Settings()
}

// SetReverbEnabled toggles the reverb stage.
func (r *Renderer) SetReverbEnabled(enabled bool) {
	r.mu.Lock()
	r.opts.Reverb = enabled
	r.mu.Unlock()
}

// SetVolume sets the pre-spatialization gain, clamped to [0, 1].
func (r *Renderer) SetVolume(v float32) {
	r.mu.Lock()
	r.opts.Volume = clampUnit(v)
	r.mu.Unlock()
}

// SetReverbParameters forwards p to the engine.
func (r *Renderer) SetReverbParameters(p reverb.Parameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eng.SetReverbParameters(p)
}

// Render spatializes mono at (x, y) and returns interleaved stereo PCM that
// the caller owns. When the reverb fails the dry spatialized signal is
// returned instead.
func (r *Renderer) Render(mono []float32, x, y float32) ([]int16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in := mono
	if gain := r.gain(); gain != 1 {
		in = make([]float32, len(mono))
		for i, s := range mono {
			in[i] = s * gain
		}
	}

	dry, err := r.eng.Spatialize(in, x, y)
	if err != nil {
		return nil, err
	}
	defer dry.Release()

	if !r.opts.Reverb || !r.eng.ReverbAvailable() || dry.Len() == 0 {
		return slices.Clone(dry.Samples()), nil
	}

	wet, err := r.eng.ApplyReverb(dry.Samples())
	if err != nil {
		applog.Warnf("Render: Reverb failed, using dry signal: %v", err)
		return slices.Clone(dry.Samples()), nil
	}
	defer wet.Release()

	return slices.Clone(wet.Samples()), nil
}

// RenderAt renders mono for an object centred at (cx, cy) on a screen of the
// given size.
func (r *Renderer) RenderAt(mono []float32, cx, cy, screenWidth, screenHeight float64) ([]int16, error) {
	x, y := r.opts.Display.Coordinates(cx, cy, screenWidth, screenHeight)
	return r.Render(mono, x, y)
}

// gain is the linear factor applied to the input. Callers hold r.mu.
func (r *Renderer) gain() float32 {
	if r.opts.Boost {
		return r.opts.Volume + SpatialBoost
	}
	return r.opts.Volume
}

func clampUnit(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}
