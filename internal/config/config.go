// Package config loads the focus configuration file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fentz26/focus/internal/perspective"
	"github.com/fentz26/focus/internal/recompute"
	"gopkg.in/yaml.v3"
)

// DefaultListen is the address the daemon binds when none is configured.
const DefaultListen = "127.0.0.1:7477"

// Config is the top-level configuration stored in ~/.focus/config.yaml.
type Config struct {
	Daemon    DaemonConfig     `yaml:"daemon"`
	Recompute recompute.Config `yaml:"recompute"`
	TUI       TUIConfig        `yaml:"tui"`
}

// DaemonConfig configures the HTTP daemon.
type DaemonConfig struct {
	// Listen is the host:port the API binds to.
	Listen string `yaml:"listen"`
	// DB is the path of the SQLite database.
	DB string `yaml:"db"`
}

// TUIConfig configures the terminal UI.
type TUIConfig struct {
	// DefaultPerspective is selected when the TUI opens.
	DefaultPerspective string `yaml:"default_perspective"`
	// Refresh is how often the TUI polls the daemon.
	Refresh time.Duration `yaml:"refresh"`
}

// Dir returns the focus home directory, ~/.focus.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focus"
	}
	return filepath.Join(home, ".focus")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			Listen: DefaultListen,
			DB:     filepath.Join(Dir(), "focus.db"),
		},
		Recompute: *recompute.DefaultConfig(),
		TUI: TUIConfig{
			DefaultPerspective: perspective.BuiltInPrefix + "inbox",
			Refresh:            5 * time.Second,
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.Daemon.DB = expandHome(cfg.Daemon.DB)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromHome loads configuration from ~/.focus/config.yaml.
func LoadFromHome() (*Config, error) {
	return Load(Path())
}

// Save writes configuration to a YAML file, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Daemon.Listen); err != nil {
		return fmt.Errorf("daemon.listen %q: %w", c.Daemon.Listen, err)
	}
	if c.Daemon.DB == "" {
		return fmt.Errorf("daemon.db must be set")
	}
	if err := c.Recompute.Validate(); err != nil {
		return fmt.Errorf("recompute: %w", err)
	}
	if c.TUI.DefaultPerspective == "" {
		return fmt.Errorf("tui.default_perspective must be set")
	}
	if c.TUI.Refresh < time.Second {
		return fmt.Errorf("tui.refresh must be at least 1s")
	}
	return nil
}

// APIAddr returns the base URL clients use to reach the daemon.
func (c *Config) APIAddr() string {
	return "http://" + c.Daemon.Listen
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
