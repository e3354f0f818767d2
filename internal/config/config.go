// Package config loads persona-agent configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. AGENT_GENERATOR_MODEL.
const EnvPrefix = "AGENT"

// Config is the complete application configuration.
type Config struct {
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Identity  IdentityConfig  `mapstructure:"identity" yaml:"identity"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// GeneratorConfig selects and tunes the text-generation backend.
type GeneratorConfig struct {
	// Provider is one of: ollama, openai, anthropic, none.
	Provider   string `mapstructure:"provider" yaml:"provider"`
	Model      string `mapstructure:"model" yaml:"model"`
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	// MaxTokens is the base completion budget before emotional scaling.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// IdentityConfig locates the identity document and bounds its evolution.
type IdentityConfig struct {
	Path              string `mapstructure:"path" yaml:"path"`
	ChangelogPath     string `mapstructure:"changelog_path" yaml:"changelog_path"`
	MinLength         int    `mapstructure:"min_length" yaml:"min_length"`
	MaxLength         int    `mapstructure:"max_length" yaml:"max_length"`
	MinOriginalLength int    `mapstructure:"min_original_length" yaml:"min_original_length"`
}

// LoggingConfig controls log level and destination. An empty File logs to stderr.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Provider:   "ollama",
			Model:      "llama3.2",
			Endpoint:   "http://localhost:11434",
			TimeoutSec: 60,
			MaxTokens:  80,
		},
		Store: StoreConfig{
			Path: "agent_state.db",
		},
		Identity: IdentityConfig{
			Path:          "agent/identity_core.txt",
			ChangelogPath: "logs/changes.log",
			MinLength:     100,
			MaxLength:     1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromPath reads the config file at path, writing the defaults there
// first if it does not exist. Environment variables override file values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Default().SaveToPath(path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Identity.Path = expandPath(cfg.Identity.Path)
	cfg.Identity.ChangelogPath = expandPath(cfg.Identity.ChangelogPath)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	return &cfg, nil
}

// SaveToPath writes the configuration as YAML, creating parent directories.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the agent cannot run with.
func (c *Config) Validate() error {
	validProviders := map[string]bool{"ollama": true, "openai": true, "anthropic": true, "none": true}
	if !validProviders[c.Generator.Provider] {
		return fmt.Errorf("invalid generator.provider %q, must be one of: ollama, openai, anthropic, none", c.Generator.Provider)
	}
	if c.Generator.MaxTokens <= 0 {
		return fmt.Errorf("generator.max_tokens must be positive")
	}
	if c.Generator.TimeoutSec < 0 {
		return fmt.Errorf("generator.timeout_sec cannot be negative")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path cannot be empty")
	}
	if c.Identity.Path == "" {
		return fmt.Errorf("identity.path cannot be empty")
	}
	if c.Identity.ChangelogPath == "" {
		return fmt.Errorf("identity.changelog_path cannot be empty")
	}
	if c.Identity.MinLength < 0 || c.Identity.MaxLength < c.Identity.MinLength {
		return fmt.Errorf("identity length bounds [%d, %d] are invalid", c.Identity.MinLength, c.Identity.MaxLength)
	}
	if c.Identity.MinOriginalLength < 0 {
		return fmt.Errorf("identity.min_original_length cannot be negative")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("generator.provider", d.Generator.Provider)
	v.SetDefault("generator.model", d.Generator.Model)
	v.SetDefault("generator.endpoint", d.Generator.Endpoint)
	v.SetDefault("generator.api_key", d.Generator.APIKey)
	v.SetDefault("generator.timeout_sec", d.Generator.TimeoutSec)
	v.SetDefault("generator.max_tokens", d.Generator.MaxTokens)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("identity.path", d.Identity.Path)
	v.SetDefault("identity.changelog_path", d.Identity.ChangelogPath)
	v.SetDefault("identity.min_length", d.Identity.MinLength)
	v.SetDefault("identity.max_length", d.Identity.MaxLength)
	v.SetDefault("identity.min_original_length", d.Identity.MinOriginalLength)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
