// SPDX-License-Identifier: MIT
package sound

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// DecodeMP3 decodes an MP3 stream. go-mp3 always yields 16-bit little
// endian stereo, so the left channel is kept.
func DecodeMP3(r io.Reader) (*Clip, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("sound: decode MP3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("sound: decode MP3: %w", err)
	}

	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	return &Clip{
		Samples:    firstChannel(pcm, 2, func(v int16) float32 { return float32(v) / 32768 }),
		SampleRate: dec.SampleRate(),
	}, nil
}

// DecodeOgg decodes an Ogg Vorbis stream.
func DecodeOgg(r io.Reader) (*Clip, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("sound: decode Ogg Vorbis: %w", err)
	}

	channels := max(dec.Channels(), 1)
	chunk := make([]float32, 4096*channels)
	var all []float32
	for {
		n, err := dec.Read(chunk)
		all = append(all, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sound: decode Ogg Vorbis: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return &Clip{
		Samples:    firstChannel(all, channels, func(v float32) float32 { return v }),
		SampleRate: dec.SampleRate(),
	}, nil
}
