// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"

	"binaural/internal/direction"
	"binaural/internal/frame"
	"binaural/internal/hrtf"
	"binaural/internal/pcm"
)

// Spatialize renders mono input as a static source steered by (x, y) and
// returns ceil(len(input)/FrameSize)*FrameSize*2 interleaved samples. Empty
// input yields a nil Output and no error.
//
// If the binaural effect fails on any frame, nothing is returned and the
// error wraps ErrEngineFailure. Effect state keeps whatever the completed
// frames left in it.
func (e *Engine) Spatialize(input []float32, x, y float32) (*Output, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}

	size := e.settings.FrameSize
	frames := frame.Count(len(input), size)
	if frames == 0 {
		return nil, nil
	}

	padded := frame.Pad(input, size)
	params := hrtf.Params{
		Direction:     direction.Resolve(x, y),
		Interpolation: e.settings.Interpolation,
		SpatialBlend:  1,
	}

	out := e.newOutput(frames * size * 2)
	samples := out.Samples()
	for i, mono := range frame.Windows(padded, size) {
		if err := e.effect.Apply(mono, params, e.scratch); err != nil {
			out.Release()
			return nil, fmt.Errorf("%w: spatialize frame %d: %w", ErrEngineFailure, i, err)
		}
		pcm.Encode(samples[i*size*2:(i+1)*size*2], e.scratch)
	}

	return out, nil
}
