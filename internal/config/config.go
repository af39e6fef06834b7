// Package config provides configuration loading and defaults for exitd.
//
// Configuration is an optional TOML file. Every key has a default, so an
// absent file or an empty one yields [DefaultConfig]. Command-line flags are
// applied on top by the caller.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/exitd/internal/logger"
	"tools.zach/dev/exitd/internal/paths"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level daemon configuration.
type Config struct {
	// Listener holds the exit socket settings.
	Listener ListenerConfig `toml:"listener"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// ListenerConfig holds the exit socket settings.
type ListenerConfig struct {
	// SocketPath is the Unix domain socket the listener binds.
	SocketPath string `toml:"socket_path"`
	// SocketMode is the octal permission string applied to the socket after
	// bind (e.g. "0600"). Empty keeps the umask-derived mode.
	SocketMode string `toml:"socket_mode"`
	// MaxBodyBytes bounds the /exit request body.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File is the log file path. Empty logs to stderr.
	File string `toml:"file"`
	// MaxSizeMB is the log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is how many rotated log files are kept.
	MaxBackups int `toml:"max_backups"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Listener: ListenerConfig{
			SocketPath:   paths.DefaultSocketPath,
			SocketMode:   "0600",
			MaxBodyBytes: 64 << 10,
		},
		Log: LogConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ///////////////////////////////////////////////
// Loading
// ///////////////////////////////////////////////

// Load reads the TOML file at path over the defaults. An empty path or a
// missing file returns [DefaultConfig]. Unknown keys are logged and ignored.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("ignoring unknown config key", "key", key.String(), "file", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listener.SocketPath) == "" {
		return fmt.Errorf("listener.socket_path must not be empty")
	}
	if _, err := c.Listener.Mode(); err != nil {
		return err
	}
	if c.Listener.MaxBodyBytes <= 0 {
		return fmt.Errorf("listener.max_body_bytes must be > 0, got %d", c.Listener.MaxBodyBytes)
	}

	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be >= 0, got %d", c.Log.MaxBackups)
	}
	return nil
}

// Mode parses SocketMode as octal permission bits. An empty string yields 0,
// meaning the socket keeps its default mode.
func (l ListenerConfig) Mode() (os.FileMode, error) {
	if l.SocketMode == "" {
		return 0, nil
	}
	bits, err := strconv.ParseUint(l.SocketMode, 8, 32)
	if err != nil || bits > 0o777 {
		return 0, fmt.Errorf("invalid listener.socket_mode %q: must be octal permission bits such as \"0600\"", l.SocketMode)
	}
	return os.FileMode(bits), nil
}

// LoggerOptions maps the log section onto [logger.Options].
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      logger.ParseLevel(c.Log.Level),
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}
