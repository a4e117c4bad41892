package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// ApplicationConfig is the top-level renderer configuration, loaded from TOML.
type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	LogLevel    string `toml:"log_level"`

	Renderer RendererConfig `toml:"renderer"`
}

// RendererConfig configures the WebGPU backend.
type RendererConfig struct {
	// "vsync", "mailbox" or "immediate".
	PresentMode string `toml:"present_mode"`
	// 1 disables multisampling; 4 is the portable maximum.
	SampleCount uint32 `toml:"sample_count"`
	// "high-performance" or "low-power".
	PowerPreference string `toml:"power_preference"`
	// Bound on the adapter/device negotiation, e.g. "5s".
	DeviceTimeout string `toml:"device_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *ApplicationConfig {
	return &ApplicationConfig{
		Name:        "Prism",
		StartWidth:  800,
		StartHeight: 600,
		LogLevel:    "debug",
		Renderer: RendererConfig{
			PresentMode:     "vsync",
			SampleCount:     1,
			PowerPreference: "high-performance",
			DeviceTimeout:   "5s",
		},
	}
}

// Load reads and validates a TOML configuration file. Missing fields fall
// back to the defaults.
func Load(path string) (*ApplicationConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if _, err := c.Renderer.ParsePresentMode(); err != nil {
		return err
	}
	switch c.Renderer.SampleCount {
	case 1, 2, 4:
	default:
		return fmt.Errorf("unsupported sample count %d", c.Renderer.SampleCount)
	}
	if _, err := c.Renderer.ParseDeviceTimeout(); err != nil {
		return err
	}
	return nil
}

// ParsePresentMode maps the config string onto the abstract present mode.
func (rc *RendererConfig) ParsePresentMode() (metadata.PresentMode, error) {
	switch rc.PresentMode {
	case "", "vsync":
		return metadata.PresentModeFIFO, nil
	case "mailbox":
		return metadata.PresentModeMailbox, nil
	case "immediate":
		return metadata.PresentModeImmediate, nil
	default:
		return metadata.PresentModeFIFO, fmt.Errorf("unknown present mode %q", rc.PresentMode)
	}
}

// ParseDeviceTimeout returns the bound on device negotiation.
func (rc *RendererConfig) ParseDeviceTimeout() (time.Duration, error) {
	if rc.DeviceTimeout == "" {
		return 5 * time.Second, nil
	}
	return time.ParseDuration(rc.DeviceTimeout)
}
