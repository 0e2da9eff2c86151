// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"binaural/internal/config"
	"binaural/pkg/build"

	"github.com/spf13/cobra"
)

// Commands understood by Execute.
const (
	CommandRender  = "render"
	CommandPlay    = "play"
	CommandServe   = "serve"
	CommandDevices = "devices"
)

// Position places the source either by direction scalars or by the centre of
// an on-screen object. The screen form wins when a screen size is given.
type Position struct {
	X, Y         float32
	ScreenX      float64
	ScreenY      float64
	ScreenWidth  float64
	ScreenHeight float64
}

// UsesScreen reports whether the screen form was requested.
func (p Position) UsesScreen() bool {
	return p.ScreenWidth > 0 && p.ScreenHeight > 0
}

// Options holds the parsed command line.
type Options struct {
	Command    string
	ConfigPath string
	LogLevel   string
	SampleRate int
	FrameSize  int

	// render and play
	Input      string
	Output     string
	Position   Position
	NoReverb   bool
	Volume     float32
	Boost      bool
	UDPAddress string

	// play and devices
	DeviceID   int
	Pick       bool
	LowLatency bool
	TUI        bool

	// serve
	Addr string

	changed func(name string) bool
}

// Changed reports whether the named flag was given on the command line.
func (o *Options) Changed(name string) bool {
	return o.changed != nil && o.changed(name)
}

// Apply overlays the flags that were set onto cfg and validates the result.
func (o *Options) Apply(cfg *config.Config) error {
	if o.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if o.Changed("sample-rate") {
		cfg.Audio.SampleRate = o.SampleRate
	}
	if o.Changed("frame-size") {
		cfg.Audio.FrameSize = o.FrameSize
	}
	if o.Changed("volume") {
		cfg.Render.Volume = o.Volume
	}
	if o.Boost {
		cfg.Render.Boost = true
	}
	if o.NoReverb {
		cfg.Reverb.Enabled = false
	}
	if o.Changed("device") {
		cfg.Audio.OutputDevice = o.DeviceID
	}
	if o.Changed("addr") {
		cfg.Transport.WSAddress = o.Addr
	}
	if o.Changed("udp") {
		cfg.Transport.UDPEnabled = true
		cfg.Transport.UDPTargetAddress = o.UDPAddress
	}
	return cfg.Validate()
}

// ParseArgs parses args (without the program name) into Options. Help and
// --version return Options with an empty Command.
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetInfo()
	options := &Options{
		DeviceID: config.DefaultOutputDevice,
		Volume:   config.DefaultVolume,
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Shared Configuration
	rootCmd.PersistentFlags().StringVarP(&options.ConfigPath, "config", "c", "",
		"Path to a YAML config file (default ./"+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&options.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVarP(&options.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Engine sample rate for serve, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&options.FrameSize, "frame-size", "b", config.DefaultFrameSize,
		"Samples per channel in each engine frame")

	// selected records the command and which flags were set.
	selected := func(name string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			options.Command = name
			options.changed = func(flag string) bool { return cmd.Flags().Changed(flag) }
			if len(args) > 0 {
				options.Input = args[0]
			}
			return nil
		}
	}

	// Render command
	renderCmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render a WAV, MP3 or Ogg file to binaural stereo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := selected(CommandRender)(cmd, args); err != nil {
				return err
			}
			if options.Output == "" && options.UDPAddress == "" {
				options.Output = DefaultOutputPath(args[0])
			}
			return nil
		},
	}
	addChainFlags(renderCmd, options)
	renderCmd.Flags().StringVarP(&options.Output, "output", "o", "",
		"Output WAV file (default <input>.binaural.wav)")
	renderCmd.Flags().StringVar(&options.UDPAddress, "udp", "",
		"Also stream the rendered PCM to this host:port")
	rootCmd.AddCommand(renderCmd)

	// Play command
	playCmd := &cobra.Command{
		Use:   "play <input>",
		Short: "Render a file and play it on an output device",
		Args:  cobra.ExactArgs(1),
		RunE:  selected(CommandPlay),
	}
	addChainFlags(playCmd, options)
	playCmd.Flags().IntVarP(&options.DeviceID, "device", "d", config.DefaultOutputDevice,
		"Output device ID. Use the 'devices' command to see available devices.")
	playCmd.Flags().BoolVar(&options.Pick, "pick", false,
		"Choose the output device interactively")
	playCmd.Flags().BoolVarP(&options.LowLatency, "low-latency", "l", false,
		"Open the stream with the device's low output latency")
	rootCmd.AddCommand(playCmd)

	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve render requests over WebSocket",
		Args:  cobra.NoArgs,
		RunE:  selected(CommandServe),
	}
	serveCmd.Flags().StringVar(&options.Addr, "addr", config.DefaultWSAddress,
		"Listen address")
	rootCmd.AddCommand(serveCmd)

	// Devices command
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available output devices",
		Args:  cobra.NoArgs,
		RunE:  selected(CommandDevices),
	}
	devicesCmd.Flags().BoolVar(&options.TUI, "tui", false,
		"Browse devices in an interactive picker")
	rootCmd.AddCommand(devicesCmd)

	// Execute the CLI; a nil slice would make cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	if options.Command == CommandRender || options.Command == CommandPlay {
		if err := options.validatePosition(); err != nil {
			return nil, err
		}
	}

	return options, nil
}

// addChainFlags registers the positioning and chain flags shared by render
// and play.
func addChainFlags(cmd *cobra.Command, options *Options) {
	f := cmd.Flags()
	f.Float32VarP(&options.Position.X, "x", "x", 0,
		"Horizontal steering in degrees, -90 (left) to 90 (right)")
	f.Float32VarP(&options.Position.Y, "y", "y", 0,
		"Vertical steering in degrees, -90 (down) to 90 (up)")
	f.Float64Var(&options.Position.ScreenX, "screen-x", 0, "Object centre X in pixels")
	f.Float64Var(&options.Position.ScreenY, "screen-y", 0, "Object centre Y in pixels")
	f.Float64Var(&options.Position.ScreenWidth, "screen-width", 0, "Screen width in pixels")
	f.Float64Var(&options.Position.ScreenHeight, "screen-height", 0, "Screen height in pixels")
	f.BoolVar(&options.NoReverb, "no-reverb", false, "Skip the reverb stage")
	f.Float32Var(&options.Volume, "volume", config.DefaultVolume, "Gain applied before spatialization, 0 to 1")
	f.BoolVar(&options.Boost, "boost", false, "Add 0.25 to the volume to offset binaural level loss")
}

func (o *Options) validatePosition() error {
	p := o.Position
	screen := o.Changed("screen-width") || o.Changed("screen-height")
	if screen && !p.UsesScreen() {
		return fmt.Errorf("--screen-width and --screen-height must both be positive")
	}
	if screen && (o.Changed("x") || o.Changed("y")) {
		return fmt.Errorf("use either -x/-y or the --screen-* flags, not both")
	}
	return nil
}

// DefaultOutputPath derives the rendered file name from the input path.
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".binaural.wav"
}
