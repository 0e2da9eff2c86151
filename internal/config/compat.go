// SPDX-License-Identifier: MIT
package config

import (
	"strings"

	"binaural/internal/direction"
	"binaural/internal/engine"
	"binaural/internal/hrtf"
	applog "binaural/internal/log"
	"binaural/internal/render"
	"binaural/internal/reverb"
)

// Level returns the effective log level; Debug forces LevelDebug.
func (c *Config) Level() applog.LogLevel {
	if c.Debug {
		return applog.LevelDebug
	}
	level, _ := applog.ParseLevel(c.LogLevel)
	return level
}

// EngineSettings returns the engine settings. Call Validate first; unknown
// interpolation names fall back to nearest.
func (c *Config) EngineSettings() engine.Settings {
	interp, _ := hrtf.ParseInterpolation(strings.ToLower(c.HRTF.Interpolation))
	return engine.Settings{
		SampleRate:    c.Audio.SampleRate,
		FrameSize:     c.Audio.FrameSize,
		Interpolation: interp,
	}
}

// HRTFOptions returns the dataset options for the reference backend.
func (c *Config) HRTFOptions() []hrtf.Option {
	window, _ := hrtf.ParseWindowFunc(c.HRTF.Window)
	return []hrtf.Option{
		hrtf.WithHeadRadius(c.HRTF.HeadRadius),
		hrtf.WithVolume(c.HRTF.Volume),
		hrtf.WithWindow(window),
	}
}

// ReverbParameters returns the room controls.
func (c *Config) ReverbParameters() reverb.Parameters {
	return reverb.Parameters{
		RoomSize: c.Reverb.RoomSize,
		Damping:  c.Reverb.Damping,
		WetLevel: c.Reverb.WetLevel,
		DryLevel: c.Reverb.DryLevel,
		Width:    c.Reverb.Width,
	}
}

// Display returns the screen-to-direction mapping.
func (c *Config) Display() direction.Display {
	return direction.Display{
		Width:           c.Render.Display.Width,
		HeightMin:       c.Render.Display.HeightMin,
		HeightMagnitude: c.Render.Display.HeightMagnitude,
	}
}

// RenderOptions returns the player chain options.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Volume:  c.Render.Volume,
		Boost:   c.Render.Boost,
		Reverb:  c.Reverb.Enabled,
		Display: c.Display(),
	}
}
