// SPDX-License-Identifier: MIT
/*
Package sound loads audio files as mono float32 clips and writes rendered
stereo PCM back to WAV.

Supported inputs are WAV (8, 16, 24 and 32-bit integer PCM), MP3 and Ogg
Vorbis. Multi-channel input is reduced to its first channel; a sound
theme clip is a mono event sound, and the spatializer positions it.
*/
package sound

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	applog "binaural/internal/log"
)

var (
	ErrUnsupportedFormat = errors.New("sound: unsupported audio format")
	ErrNoAudio           = errors.New("sound: file contains no audio")
)

// Format identifies a container/codec pair.
type Format string

const (
	WAV Format = "wav"
	MP3 Format = "mp3"
	Ogg Format = "ogg"
)

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return WAV, nil
	case ".mp3":
		return MP3, nil
	case ".ogg", ".oga":
		return Ogg, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Clip is a decoded mono sound.
type Clip struct {
	Samples    []float32 // Normalized to [-1, 1].
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Load decodes the file at path, choosing the decoder by extension.
func Load(path string) (*Clip, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	clip, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("sound: load %s: %w", path, err)
	}

	applog.Debugf("Sound: Loaded %s (Format: %s, SampleRate: %d Hz, Samples: %d)",
		path, format, clip.SampleRate, len(clip.Samples))

	return clip, nil
}

// Decode reads a whole stream of the given format.
func Decode(r io.ReadSeeker, format Format) (*Clip, error) {
	var (
		clip *Clip
		err  error
	)
	switch format {
	case WAV:
		clip, err = DecodeWAV(r)
	case MP3:
		clip, err = DecodeMP3(r)
	case Ogg:
		clip, err = DecodeOgg(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(clip.Samples) == 0 {
		return nil, ErrNoAudio
	}
	return clip, nil
}

// firstChannel copies every channels-th sample starting at 0, scaled.
func firstChannel[T int | int16 | float32](data []T, channels int, scale func(T) float32) []float32 {
	channels = max(channels, 1)
	mono := make([]float32, len(data)/channels)
	for i := range mono {
		mono[i] = scale(data[i*channels])
	}
	return mono
}
