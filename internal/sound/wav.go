// SPDX-License-Identifier: MIT
package sound

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DecodeWAV decodes integer PCM WAV data. 8-bit samples are unsigned and
// centred on 128; wider samples are signed and scaled by 2^(bits-1).
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("sound: decode WAV: %w", err)
	}

	bits := int(d.BitDepth)
	var scale func(int) float32
	switch bits {
	case 8:
		scale = func(v int) float32 { return float32(v-128) / 128 }
	case 16, 24, 32:
		full := float32(int64(1) << (bits - 1))
		scale = func(v int) float32 { return float32(v) / full }
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bits)
	}

	channels := int(d.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}

	return &Clip{
		Samples:    firstChannel(buf.Data, channels, scale),
		SampleRate: int(d.SampleRate),
	}, nil
}

// WriteWAV encodes interleaved 16-bit stereo samples as a WAV stream.
func WriteWAV(w io.WriteSeeker, sampleRate int, stereo []int16) error {
	if sampleRate <= 0 {
		return errors.New("sound: sample rate must be positive")
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)

	data := make([]int, len(stereo))
	for i, s := range stereo {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("sound: encode WAV: %w", err)
	}
	return enc.Close()
}

// SaveWAV writes stereo to a new file at path.
func SaveWAV(path string, sampleRate int, stereo []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteWAV(f, sampleRate, stereo); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
