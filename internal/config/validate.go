// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"binaural/internal/hrtf"
	applog "binaural/internal/log"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid value")

// Validate checks every field against its limits and reports all problems.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		fail("log_level %q", c.LogLevel)
	}

	// Audio Validation
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		fail("audio.sample_rate %d outside [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FrameSize < 1 || c.Audio.FrameSize > MaxFrameSize {
		fail("audio.frame_size %d outside [1, %d]", c.Audio.FrameSize, MaxFrameSize)
	}
	if c.Audio.OutputDevice < MinDeviceID {
		fail("audio.output_device %d below %d", c.Audio.OutputDevice, MinDeviceID)
	}

	// HRTF Validation
	if _, err := hrtf.ParseInterpolation(strings.ToLower(c.HRTF.Interpolation)); err != nil {
		fail("hrtf.interpolation %q", c.HRTF.Interpolation)
	}
	if _, err := hrtf.ParseWindowFunc(c.HRTF.Window); err != nil {
		fail("hrtf.window %q", c.HRTF.Window)
	}
	if !(c.HRTF.HeadRadius > 0) || math.IsInf(c.HRTF.HeadRadius, 0) {
		fail("hrtf.head_radius %v must be positive", c.HRTF.HeadRadius)
	}
	if !(c.HRTF.Volume >= 0) || math.IsInf(c.HRTF.Volume, 0) {
		fail("hrtf.volume %v must be non-negative", c.HRTF.Volume)
	}

	// Reverb Validation
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"reverb.room_size", c.Reverb.RoomSize},
		{"reverb.damping", c.Reverb.Damping},
		{"reverb.wet_level", c.Reverb.WetLevel},
		{"reverb.dry_level", c.Reverb.DryLevel},
		{"reverb.width", c.Reverb.Width},
		{"render.volume", c.Render.Volume},
	} {
		if !(f.v >= 0 && f.v <= 1) {
			fail("%s %v outside [0, 1]", f.name, f.v)
		}
	}

	// Display Validation
	if !(c.Render.Display.Width > 0) {
		fail("render.display.width %v must be positive", c.Render.Display.Width)
	}
	if !(c.Render.Display.HeightMagnitude > 0) {
		fail("render.display.height_magnitude %v must be positive", c.Render.Display.HeightMagnitude)
	}

	// Transport Validation
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			fail("transport.udp_target_address must be set when UDP is enabled")
		} else if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			fail("transport.udp_target_address %q appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
	}

	return errors.Join(errs...)
}
