// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	applog "binaural/internal/log"

	"gopkg.in/yaml.v3"
)

// Core configuration constants that define the boundaries and defaults
// for the renderer.
const (
	DefaultSampleRate   = 44100 // CD-quality audio
	DefaultFrameSize    = 1024  // Samples per channel per engine frame
	DefaultOutputDevice = MinDeviceID
	DefaultLogLevel     = "info"
	DefaultVolume       = 1.0
	DefaultConfigFile   = "config.yaml"

	DefaultWSAddress        = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxFrameSize  = 8192   // Maximum samples per frame
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Force debug logging.
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Audio     AudioConfig     `yaml:"audio"`     // Engine and playback settings.
	HRTF      HRTFConfig      `yaml:"hrtf"`      // Reference binaural renderer settings.
	Reverb    ReverbConfig    `yaml:"reverb"`    // Reverb stage settings.
	Render    RenderConfig    `yaml:"render"`    // Player chain settings.
	Transport TransportConfig `yaml:"transport"` // Network output settings.
}

// AudioConfig holds settings shared by the engine and the output device.
type AudioConfig struct {
	SampleRate   int `yaml:"sample_rate"`   // Sample rate in Hz (e.g., 44100, 48000).
	FrameSize    int `yaml:"frame_size"`    // Samples per channel per engine frame.
	OutputDevice int `yaml:"output_device"` // PortAudio device index for playback (-1 for default).
}

// HRTFConfig selects how head-related responses are synthesized and looked up.
type HRTFConfig struct {
	Interpolation string  `yaml:"interpolation"` // "nearest" or "bilinear".
	Window        string  `yaml:"window"`        // Window tapering each response tail (e.g., "Hann").
	HeadRadius    float64 `yaml:"head_radius"`   // Modelled head radius in metres.
	Volume        float64 `yaml:"volume"`        // Gain applied to every response.
}

// ReverbConfig holds the room controls, each within [0, 1].
type ReverbConfig struct {
	Enabled  bool    `yaml:"enabled"`
	RoomSize float32 `yaml:"room_size"`
	Damping  float32 `yaml:"damping"`
	WetLevel float32 `yaml:"wet_level"`
	DryLevel float32 `yaml:"dry_level"`
	Width    float32 `yaml:"width"`
}

// RenderConfig holds the player chain settings.
type RenderConfig struct {
	Volume  float32       `yaml:"volume"`  // Pre-spatialization gain, [0, 1].
	Boost   bool          `yaml:"boost"`   // Add render.SpatialBoost on top of volume.
	Display DisplayConfig `yaml:"display"` // Screen-to-direction mapping.
}

// DisplayConfig describes the virtual audio display in degrees.
type DisplayConfig struct {
	Width           float64 `yaml:"width"`
	HeightMin       float64 `yaml:"height_min"`
	HeightMagnitude float64 `yaml:"height_magnitude"`
}

// TransportConfig holds settings related to sending rendered audio over the network.
type TransportConfig struct {
	WSAddress        string `yaml:"ws_address"`         // Listen address of the WebSocket render server.
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Stream rendered PCM over UDP.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			SampleRate:   DefaultSampleRate,
			FrameSize:    DefaultFrameSize,
			OutputDevice: DefaultOutputDevice,
		},
		HRTF: HRTFConfig{
			Interpolation: "nearest",
			Window:        "Hann",
			HeadRadius:    0.0875,
			Volume:        1.0,
		},
		Reverb: ReverbConfig{
			Enabled:  true,
			RoomSize: 0.10,
			Damping:  1.00,
			WetLevel: 0.09,
			DryLevel: 0.30,
			Width:    1.00,
		},
		Render: RenderConfig{
			Volume: DefaultVolume,
			Display: DisplayConfig{
				Width:           180,
				HeightMin:       -40,
				HeightMagnitude: 50,
			},
		},
		Transport: TransportConfig{
			WSAddress:        DefaultWSAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it looks for DefaultConfigFile in the working directory. If no file is found, it uses
// built-in defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	applog.Debugf("Config: Loaded %s", path)

	return cfg, nil
}

// applyEnvOverrides applies ENV_* variables on top of the file or defaults.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Debugf("Config: Overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Debugf("Config: Overriding log_level from env: %s", val)
	}

	// ENV_{SAMPLE_RATE,FRAME_SIZE}
	// These are engine settings.
	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Audio.SampleRate = iVal
			applog.Debugf("Config: Overriding audio.sample_rate from env: %d", iVal)
		}
	}
	if val, ok := os.LookupEnv("ENV_FRAME_SIZE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Audio.FrameSize = iVal
			applog.Debugf("Config: Overriding audio.frame_size from env: %d", iVal)
		}
	}

	// ENV_REVERB_ENABLED
	if val, ok := os.LookupEnv("ENV_REVERB_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Reverb.Enabled = bVal
			applog.Debugf("Config: Overriding reverb.enabled from env: %v", bVal)
		}
	}

	// ENV_{WS,UDP}_...
	// These are specific to the transport layer.
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WSAddress = val
		applog.Debugf("Config: Overriding transport.ws_address from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Debugf("Config: Overriding transport.udp_target_address from env: %s", val)
	}
}
