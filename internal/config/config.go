// Package config provides configuration management for Playlint.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with PL_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml, ~/.playlint/config.yaml, /etc/playlint/config.yaml)
//  3. .env files
//  4. Environment variables (PL_ prefix)
//
// # Usage Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
//
// # Environment Variables
//
// Environment variables override all other configuration sources.
// Use PL_ prefix and underscores for nested keys:
//   - PL_SERVER_PORT=8080
//   - PL_LINT_TIMEOUT=90s
//   - PL_GOVERNOR_CAPACITY=20
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for Playlint.
type Config struct {
	// Server contains HTTP server configuration, shared by the lint API
	// and the tool-protocol server
	Server ServerConfig `mapstructure:"server"`

	// Lint contains the external ansible-lint invocation settings
	Lint LintConfig `mapstructure:"lint"`

	// Governor contains the concurrency admission settings
	Governor GovernorConfig `mapstructure:"governor"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging"`

	// Security contains CORS and rate limiting settings
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the lint API listen port (default: 8080)
	Port int `mapstructure:"port"`

	// ToolPort is the tool-protocol server listen port (default: 8090)
	ToolPort int `mapstructure:"tool_port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging and verbose error details
	Debug bool `mapstructure:"debug"`
}

// LintConfig contains settings for the wrapped ansible-lint binary.
type LintConfig struct {
	// Command is the lint binary name or path (default: ansible-lint)
	Command string `mapstructure:"command"`

	// Timeout is the per-invocation deadline (default: 60s)
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxUploadBytes is the upload size ceiling (default: 1 MiB)
	MaxUploadBytes int `mapstructure:"max_upload_bytes"`
}

// GovernorConfig contains concurrency admission settings.
type GovernorConfig struct {
	// Capacity is the number of simultaneous lint subprocesses allowed
	// (default: 10)
	Capacity int `mapstructure:"capacity"`

	// Wait determines whether saturated requests queue for a permit
	// (true) or fail fast with an overload error (false)
	Wait bool `mapstructure:"wait"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`
}

// SecurityConfig contains security and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PL_ prefix)
//  2. .env file
//  3. Configuration file
//  4. Default values
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.playlint")
		v.AddConfigPath("/etc/playlint")
	}

	if err := v.ReadInConfig(); err != nil {
		// If config file was explicitly specified, fail on any error other
		// than the file being absent; for auto-discovery only fail on
		// errors other than ConfigFileNotFoundError.
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("PL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.tool_port", 8090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)

	v.SetDefault("lint.command", "ansible-lint")
	v.SetDefault("lint.timeout", "60s")
	v.SetDefault("lint.max_upload_bytes", 1024*1024)

	v.SetDefault("governor.capacity", 10)
	v.SetDefault("governor.wait", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Server.ToolPort < 1 || cfg.Server.ToolPort > 65535 {
		return fmt.Errorf("invalid tool server port: %d", cfg.Server.ToolPort)
	}

	if cfg.Lint.Command == "" {
		return fmt.Errorf("lint command is required")
	}

	if cfg.Lint.Timeout <= 0 {
		return fmt.Errorf("lint timeout must be positive")
	}

	if cfg.Governor.Capacity < 1 {
		return fmt.Errorf("governor capacity must be at least 1")
	}

	return nil
}

// Get returns the last loaded configuration.
func Get() *Config {
	return cfg
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
