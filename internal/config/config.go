// Package config loads things-mcp configuration from a JSON file with
// environment overrides. Everything has a working default; the config file
// is optional.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
)

// Environment variables recognized by the loader.
const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "THINGS_MCP_CONFIG"

	// EnvAppPath overrides the Things application bundle path.
	EnvAppPath = "THINGS_MCP_APP_PATH"

	// EnvLogLevel overrides the log level.
	EnvLogLevel = "THINGS_MCP_LOG_LEVEL"
)

// DefaultAppPath is where Things 3 installs on macOS.
const DefaultAppPath = "/Applications/Things3.app"

// Config holds all things-mcp configuration.
type Config struct {
	// AuthToken is the Things URL-scheme auth token. The token passed in
	// a tool call wins over this; the THINGS_AUTH_TOKEN environment
	// variable is the fallback.
	AuthToken string `json:"auth_token,omitempty"`

	// AppPath is the Things application bundle, checked at startup.
	AppPath string `json:"app_path,omitempty"`

	// LaunchTimeoutSeconds bounds one URL-handler invocation.
	LaunchTimeoutSeconds int `json:"launch_timeout_seconds,omitempty"`

	// ScriptTimeoutSeconds bounds one osascript invocation.
	ScriptTimeoutSeconds int `json:"script_timeout_seconds,omitempty"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `json:"log_level,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppPath:              DefaultAppPath,
		LaunchTimeoutSeconds: 10,
		ScriptTimeoutSeconds: 30,
		LogLevel:             "info",
	}
}

// Load reads the config file and applies environment overrides. A missing
// file is not an error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func configPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "things-mcp", "config.json"), nil
}

func (c *Config) applyEnv() {
	if p := os.Getenv(EnvAppPath); p != "" {
		c.AppPath = p
	}
	if l := os.Getenv(EnvLogLevel); l != "" {
		c.LogLevel = l
	}
}

// LaunchTimeout returns the URL-handler timeout as a duration.
func (c *Config) LaunchTimeout() time.Duration {
	return time.Duration(c.LaunchTimeoutSeconds) * time.Second
}

// ScriptTimeout returns the osascript timeout as a duration.
func (c *Config) ScriptTimeout() time.Duration {
	return time.Duration(c.ScriptTimeoutSeconds) * time.Second
}

// ZapLevel parses LogLevel into a zap level. An unrecognized level is a
// configuration error, not a silent fallback.
func (c *Config) ZapLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
