// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"testing"
)

func TestNewPlayer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  PlayerConfig
	}{
		{"zero sample rate", PlayerConfig{DeviceID: -1, SampleRate: 0, FramesPerBuffer: 256}},
		{"negative frames", PlayerConfig{DeviceID: -1, SampleRate: 44100, FramesPerBuffer: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlayer(tt.cfg)
			if !errors.Is(err, ErrPlayerConfig) {
				t.Errorf("NewPlayer() error = %v, want %v", err, ErrPlayerConfig)
			}
			if p != nil {
				t.Error("NewPlayer() returned a player on error")
			}
		})
	}
}

func TestPlayer_ClosedPlayer(t *testing.T) {
	p := &Player{buffer: make([]int16, 4)}
	if err := p.Close(); err != nil {
		t.Errorf("Close() on unopened player = %v", err)
	}
	if err := p.Play(context.Background(), []int16{1, 2}); !errors.Is(err, ErrPlayerClosed) {
		t.Errorf("Play() after Close = %v, want %v", err, ErrPlayerClosed)
	}
}

func TestPlayer_DefaultDevice(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping hardware playback in short mode")
	}
	setupPortAudio(t)

	p, err := NewPlayer(PlayerConfig{DeviceID: -1, SampleRate: 44100, FramesPerBuffer: 256})
	if err != nil {
		t.Skipf("No usable output device: %v", err)
	}
	defer p.Close()

	if p.Latency() <= 0 {
		t.Errorf("Latency() = %v, want > 0", p.Latency())
	}

	// A short burst of silence with a partial final frame.
	if err := p.Play(context.Background(), make([]int16, 2*256*3+10)); err != nil {
		t.Errorf("Play() = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Play(ctx, make([]int16, 2*256)); !errors.Is(err, context.Canceled) {
		t.Errorf("Play() with cancelled context = %v, want %v", err, context.Canceled)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}
