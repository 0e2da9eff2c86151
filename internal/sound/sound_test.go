// SPDX-License-Identifier: MIT
package sound

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"click.wav", WAV, true},
		{"/themes/Focus.WAV", WAV, true},
		{"music.mp3", MP3, true},
		{"tone.ogg", Ogg, true},
		{"notes.flac", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("FormatOf(%q) = (%q, %v), want %q", tt.path, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("FormatOf(%q) error = %v, want %v", tt.path, err, ErrUnsupportedFormat)
		}
	}
}

func TestWAVRoundTripKeepsLeftChannel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	stereo := []int16{0, 1, 16384, -16384, -32768, 32767, 32767, 0}
	if err := SaveWAV(path, 48000, stereo); err != nil {
		t.Fatalf("SaveWAV: %v", err)
	}

	clip, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if clip.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", clip.SampleRate)
	}

	want := []float32{0, 0.5, -1, 32767.0 / 32768}
	if len(clip.Samples) != len(want) {
		t.Fatalf("len(Samples) = %d, want %d", len(clip.Samples), len(want))
	}
	for i := range want {
		if math.Abs(float64(clip.Samples[i]-want[i])) > 1e-6 {
			t.Errorf("Samples[%d] = %v, want %v", i, clip.Samples[i], want[i])
		}
	}
	if d := clip.Duration(); math.Abs(d-4.0/48000) > 1e-12 {
		t.Errorf("Duration = %v", d)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	garbage := bytes.Repeat([]byte("not audio "), 64)
	for _, f := range []Format{WAV, MP3, Ogg} {
		if _, err := Decode(bytes.NewReader(garbage), f); err == nil {
			t.Errorf("Decode(%s) accepted garbage", f)
		}
	}

	if _, err := DecodeWAV(bytes.NewReader(garbage)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DecodeWAV error = %v, want %v", err, ErrUnsupportedFormat)
	}
	if _, err := Decode(bytes.NewReader(garbage), "aiff"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode(aiff) error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load error = %v, want %v", err, os.ErrNotExist)
	}
}

func TestFirstChannel(t *testing.T) {
	t.Parallel()

	got := firstChannel([]int{1, 2, 3, 4, 5, 6, 7}, 3, func(v int) float32 { return float32(v) })
	want := []float32{1, 4}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("firstChannel = %v, want %v", got, want)
	}
}
