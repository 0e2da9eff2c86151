// SPDX-License-Identifier: MIT
/*
Package audio plays rendered binaural audio through PortAudio.

The renderer produces whole interleaved stereo buffers, so playback uses a
blocking output stream: each frame is copied into the stream's buffer and
written synchronously. The stream buffer is allocated once per Player.

Thread Safety:
- A Player serves one Play call at a time
- Initialize/Terminate bracket all PortAudio use
*/
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"binaural/internal/frame"
	applog "binaural/internal/log"

	"github.com/gordonklaus/portaudio"
)

// channels is the interleaved output layout (left, right).
const channels = 2

var (
	// ErrPlayerClosed is returned by Play after Close.
	ErrPlayerClosed = errors.New("audio: player closed")
	// ErrPlayerConfig is wrapped by NewPlayer for unusable stream settings.
	ErrPlayerConfig = errors.New("audio: invalid player configuration")
)

// PlayerConfig describes the output stream.
type PlayerConfig struct {
	DeviceID        int  // PortAudio device index, -1 for the default device.
	SampleRate      int  // Hz, must match the rendering engine.
	FramesPerBuffer int  // Samples per channel written per stream call.
	LowLatency      bool // Use the device's low output latency.
}

func (c PlayerConfig) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrPlayerConfig, c.SampleRate)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: frames per buffer %d", ErrPlayerConfig, c.FramesPerBuffer)
	}
	return nil
}

// Player owns an open blocking output stream.
type Player struct {
	mu      sync.Mutex
	config  PlayerConfig
	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream
	buffer  []int16 // FramesPerBuffer * channels, bound to the stream
}

// NewPlayer opens and starts an output stream. PortAudio must be initialized.
func NewPlayer(cfg PlayerConfig) (*Player, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	device, err := OutputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	p := &Player{
		config: cfg,
		device: device,
		buffer: make([]int16, cfg.FramesPerBuffer*channels),
	}
	if cfg.LowLatency {
		p.latency = device.DefaultLowOutputLatency
	} else {
		p.latency = device.DefaultHighOutputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0, // No input device
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: channels,
			Device:   device,
			Latency:  p.latency,
		},
		FramesPerBuffer: cfg.FramesPerBuffer,
		SampleRate:      float64(cfg.SampleRate),
	}

	stream, err := portaudio.OpenStream(params, p.buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start output stream: %w", err)
	}
	p.stream = stream

	applog.Infof("Player: Output stream started (Device: %s, Rate: %d, Frames: %d, Latency: %s)",
		device.Name, cfg.SampleRate, cfg.FramesPerBuffer, p.latency)

	return p, nil
}

// Play writes interleaved stereo samples to the device and blocks until the
// last frame has been queued or ctx is done. A partial final frame is padded
// with silence.
func (p *Player) Play(ctx context.Context, stereo []int16) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrPlayerClosed
	}

	width := len(p.buffer)
	for i, w := range frame.Windows(frame.Pad(stereo, width), width) {
		if err := ctx.Err(); err != nil {
			applog.Debugf("Player: Stopped after %d frames", i)
			return err
		}
		copy(p.buffer, w)
		if err := p.stream.Write(); err != nil {
			if errors.Is(err, portaudio.OutputUnderflowed) {
				applog.Warnf("Player: Output underflow (Frame: %d)", i)
				continue
			}
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
	}
	return nil
}

// Latency reports the output latency the stream was opened with.
func (p *Player) Latency() time.Duration {
	return p.latency
}

// Close stops and closes the stream. It is safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	stream := p.stream
	p.stream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return err
	}
	return stream.Close()
}
