// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"binaural/internal/audio"
	"binaural/internal/config"
	"binaural/internal/engine"
	applog "binaural/internal/log"
	"binaural/internal/render"
	"binaural/internal/sound"
	"binaural/internal/transport"
	"binaural/internal/transport/udp"
	"binaural/internal/tui"
)

// Execute runs the parsed command against cfg until it completes or ctx is
// done. Human-readable output goes to stdout.
func Execute(ctx context.Context, o *Options, cfg *config.Config, stdout io.Writer) error {
	switch o.Command {
	case CommandRender:
		return runRender(ctx, o, cfg, stdout)
	case CommandPlay:
		return runPlay(ctx, o, cfg)
	case CommandServe:
		return runServe(ctx, cfg)
	case CommandDevices:
		return runDevices(o, cfg, stdout)
	case "":
		return nil
	default:
		return fmt.Errorf("unknown command %q", o.Command)
	}
}

// newRenderer initializes an engine at sampleRate and wraps it in a renderer.
// The returned close function releases the engine.
func newRenderer(cfg *config.Config, sampleRate int) (*render.Renderer, func(), error) {
	settings := cfg.EngineSettings()
	settings.SampleRate = sampleRate

	eng := engine.New(engine.DefaultBackend(cfg.HRTFOptions()...))
	if err := eng.Initialize(settings); err != nil {
		return nil, nil, err
	}
	if eng.ReverbAvailable() {
		if err := eng.SetReverbParameters(cfg.ReverbParameters()); err != nil {
			applog.Warnf("CLI: Keeping default reverb parameters: %v", err)
		}
	} else if cfg.Reverb.Enabled {
		applog.Warnf("CLI: Reverb unavailable, rendering dry")
	}

	closeEngine := func() {
		if err := eng.Close(); err != nil {
			applog.Errorf("CLI: Error closing engine: %v", err)
		}
	}
	return render.New(eng, cfg.RenderOptions()), closeEngine, nil
}

// loadAndRender decodes the input and renders it at its own sample rate.
func loadAndRender(o *Options, cfg *config.Config) ([]int16, int, error) {
	clip, err := sound.Load(o.Input)
	if err != nil {
		return nil, 0, err
	}
	applog.Infof("CLI: Loaded %s (Rate: %d, Duration: %.2fs)", o.Input, clip.SampleRate, clip.Duration())
	if clip.SampleRate != cfg.Audio.SampleRate && o.Changed("sample-rate") {
		applog.Warnf("CLI: Rendering at the input rate %d Hz, not %d Hz", clip.SampleRate, cfg.Audio.SampleRate)
	}

	r, closeEngine, err := newRenderer(cfg, clip.SampleRate)
	if err != nil {
		return nil, 0, err
	}
	defer closeEngine()

	var pcm []int16
	if p := o.Position; p.UsesScreen() {
		pcm, err = r.RenderAt(clip.Samples, p.ScreenX, p.ScreenY, p.ScreenWidth, p.ScreenHeight)
	} else {
		pcm, err = r.Render(clip.Samples, p.X, p.Y)
	}
	if err != nil {
		return nil, 0, err
	}
	return pcm, clip.SampleRate, nil
}

func runRender(ctx context.Context, o *Options, cfg *config.Config, stdout io.Writer) error {
	pcm, rate, err := loadAndRender(o, cfg)
	if err != nil {
		return err
	}

	if o.Output != "" {
		if err := sound.SaveWAV(o.Output, rate, pcm); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Rendered %d frames to %s\n", len(pcm)/2, o.Output)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		defer sender.Close()

		streamer, err := udp.NewStreamer(sender, rate, cfg.Audio.FrameSize)
		if err != nil {
			return err
		}
		n, err := streamer.Stream(ctx, pcm)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Streamed %d packets to %s\n", n, cfg.Transport.UDPTargetAddress)
	}
	return nil
}

func runPlay(ctx context.Context, o *Options, cfg *config.Config) error {
	pcm, rate, err := loadAndRender(o, cfg)
	if err != nil {
		return err
	}

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	deviceID := cfg.Audio.OutputDevice
	if o.Pick {
		sel, err := tui.SelectOutputDevice(rate)
		if err != nil {
			return err
		}
		if sel.SampleRate != rate {
			applog.Warnf("CLI: Playing at the input rate %d Hz, not the selected %d Hz", rate, sel.SampleRate)
		}
		deviceID = sel.DeviceID
	}

	player, err := audio.NewPlayer(audio.PlayerConfig{
		DeviceID:        deviceID,
		SampleRate:      rate,
		FramesPerBuffer: cfg.Audio.FrameSize,
		LowLatency:      o.LowLatency,
	})
	if err != nil {
		return err
	}
	defer player.Close()

	if err := player.Play(ctx, pcm); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	r, closeEngine, err := newRenderer(cfg, cfg.Audio.SampleRate)
	if err != nil {
		return err
	}
	defer closeEngine()

	return transport.NewServer(cfg.Transport.WSAddress, r).ListenAndServe(ctx)
}

func runDevices(o *Options, cfg *config.Config, stdout io.Writer) error {
	if o.TUI {
		sel, err := tui.SelectOutputDevice(cfg.Audio.SampleRate)
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Selected [%d] %s at %d Hz. Play through it with --device %d.\n",
			sel.DeviceID, sel.DeviceName, sel.SampleRate, sel.DeviceID)
		return nil
	}

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	return audio.ListDevices(stdout)
}
