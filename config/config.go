// Package config loads service configuration from an optional .env file, an
// optional YAML file and the environment, in that order of increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024

// Config is the complete service configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Gemini GeminiConfig `koanf:"gemini"`
	Unidoc UnidocConfig `koanf:"unidoc"`
	Inbox  InboxConfig  `koanf:"inbox"`
	Export ExportConfig `koanf:"export"`
	Log    LogConfig    `koanf:"log"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// Mode is the gin mode: debug, release or test.
	Mode            string        `koanf:"mode"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// ExtractPerMinute caps extraction calls per client. Negative disables
	// the cap.
	ExtractPerMinute int `koanf:"extract_per_minute"`
	ExtractBurst     int `koanf:"extract_burst"`
}

type GeminiConfig struct {
	// APIKey is the fallback credential for requests that carry none.
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type UnidocConfig struct {
	LicenseKey string `koanf:"license_key"`
}

// InboxConfig points at the directory watched for transcripts. Empty
// disables the inbox.
type InboxConfig struct {
	Path string `koanf:"path"`
}

// ExportConfig points at the directory markdown exports are saved to.
// Empty disables saving.
type ExportConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var sections = map[string]bool{
	"server": true,
	"gemini": true,
	"unidoc": true,
	"inbox":  true,
	"export": true,
	"log":    true,
}

// Load reads configuration. configPath may be empty.
//
// Environment variables map to keys by splitting on the first underscore:
//
//	GEMINI_API_KEY     -> gemini.api_key
//	SERVER_PORT        -> server.port
//	UNIDOC_LICENSE_KEY -> unidoc.license_key
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")

	if configPath != "" {
		info, err := os.Stat(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s is larger than %d bytes", configPath, maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps SECTION_FIELD_NAME to section.field_name and drops variables
// outside the known sections.
func envKey(s string) string {
	parts := strings.SplitN(strings.ToLower(s), "_", 2)
	if len(parts) != 2 || !sections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.ExtractPerMinute == 0 {
		cfg.Server.ExtractPerMinute = 30
	}
	if cfg.Server.ExtractBurst == 0 {
		cfg.Server.ExtractBurst = 5
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = 2 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Gemini.Timeout < 0 {
		return errors.New("gemini.timeout must not be negative")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
