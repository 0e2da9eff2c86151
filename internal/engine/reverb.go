// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"

	"binaural/internal/frame"
	"binaural/internal/pcm"
)

// ApplyReverb runs interleaved stereo PCM through the reverb and returns
// (frames+TailFrames())*FrameSize*2 samples, where frames covers the input
// rounded up to whole frames. The tail is fed with silence so the decay is
// not cut off. An odd trailing sample counts as a half-filled stereo pair.
// Empty input yields a nil Output and no error.
//
// Reverb state persists across calls until Close.
func (e *Engine) ApplyReverb(input []int16) (*Output, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	if e.reverb == nil {
		return nil, ErrReverbUnavailable
	}

	size := e.settings.FrameSize
	frames := frame.Count(frame.Count(len(input), 2), size)
	if frames == 0 {
		return nil, nil
	}

	total := frames + e.TailFrames()
	padded := frame.Extend(input, total*size*2)

	out := e.newOutput(total * size * 2)
	samples := out.Samples()
	for i, stereo := range frame.Windows(padded, size*2) {
		pcm.Decode(e.reverbIn, stereo)
		if err := e.reverb.Process(e.reverbIn, e.reverbOut); err != nil {
			out.Release()
			return nil, fmt.Errorf("%w: reverb frame %d: %w", ErrEngineFailure, i, err)
		}
		pcm.Encode(samples[i*size*2:(i+1)*size*2], e.reverbOut)
	}

	return out, nil
}
