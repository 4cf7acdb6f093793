package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all daemon configuration.
type Config struct {
	DeviceName string        `yaml:"device_name"` // BLE advertised name
	Output     OutputConfig  `yaml:"output"`
	Wiggler    WigglerConfig `yaml:"wiggler"`
	Button     ButtonConfig  `yaml:"button"`
	LED        LEDConfig     `yaml:"led"`
	USB        USBConfig     `yaml:"usb"`
	LogLevel   string        `yaml:"log_level"`
}

// OutputConfig selects and parameterizes the HID output backend.
type OutputConfig struct {
	Backend     string `yaml:"backend"`      // "gadget" or "desktop"
	KeyboardDev string `yaml:"keyboard_dev"` // gadget keyboard function
	MouseDev    string `yaml:"mouse_dev"`    // gadget mouse function
	ConsumerDev string `yaml:"consumer_dev"` // gadget consumer function
}

// WigglerConfig holds wiggler scheduler settings.
type WigglerConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ButtonConfig holds the physical-toggle key combo. An empty key list
// disables the listener.
type ButtonConfig struct {
	Keys []string `yaml:"keys"`
}

// LEDConfig holds the status LED location. An empty sysfs_dir selects
// the logging sink.
type LEDConfig struct {
	SysfsDir string `yaml:"sysfs_dir"`
}

// USBConfig holds the control-endpoint watcher location. An empty
// ep0_path disables passive host-OS probing (desktop development).
type USBConfig struct {
	Ep0Path string `yaml:"ep0_path"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "blewig")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values for a gadget
// deployment.
func Default() *Config {
	return &Config{
		DeviceName: "blewig",
		Output: OutputConfig{
			Backend:     "gadget",
			KeyboardDev: "/dev/hidg0",
			MouseDev:    "/dev/hidg1",
			ConsumerDev: "/dev/hidg2",
		},
		Wiggler: WigglerConfig{
			IntervalMs: 30000,
		},
		Button: ButtonConfig{
			Keys: []string{"ctrl", "shift", "w"},
		},
		USB: USBConfig{
			Ep0Path: "/dev/ffs-blewig/ep0",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes a commented default config to the default path if
// none exists yet. Returns the written path, or "" when a config file is
// already present.
func WriteDefault() (string, error) {
	dir := DefaultConfigDir()
	if dir == "" {
		return "", fmt.Errorf("cannot determine config directory")
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	body, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}
	content := append([]byte("# blewig configuration\n"), body...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.DeviceName == "" {
		return fmt.Errorf("device_name must not be empty")
	}

	switch c.Output.Backend {
	case "gadget":
		if c.Output.KeyboardDev == "" || c.Output.MouseDev == "" || c.Output.ConsumerDev == "" {
			return fmt.Errorf("output backend \"gadget\" requires keyboard_dev, mouse_dev and consumer_dev")
		}
	case "desktop":
	default:
		return fmt.Errorf("output.backend must be \"gadget\" or \"desktop\", got %q", c.Output.Backend)
	}

	if c.Wiggler.IntervalMs < 0 {
		return fmt.Errorf("wiggler.interval_ms must be >= 0")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
