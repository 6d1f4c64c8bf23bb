// Package config handles configuration loading and validation for intentmesh.
// It supports an optional YAML file, XDG config paths and environment
// variables prefixed with INTENTMESH_.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (INTENTMESH_DISPATCH_TIMEOUT=5s).
const EnvPrefix = "INTENTMESH"

// Config holds all configuration for intentmesh.
type Config struct {
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	Domains  []DomainConfig `mapstructure:"domains" yaml:"domains,omitempty" validate:"dive"`
	Weather  WeatherConfig  `mapstructure:"weather" yaml:"weather"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Model    ModelConfig    `mapstructure:"model" yaml:"model"`
}

// DispatchConfig holds dispatcher settings.
type DispatchConfig struct {
	Mode           string        `mapstructure:"mode" yaml:"mode" validate:"oneof=sequential parallel"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
	MaxConcurrency int           `mapstructure:"max_concurrency" yaml:"max_concurrency" validate:"gte=0"`
}

// RegistryConfig holds capability registry settings.
type RegistryConfig struct {
	StrictDuplicates bool `mapstructure:"strict_duplicates" yaml:"strict_duplicates"`
}

// DomainConfig overrides a built-in domain or declares a new one.
type DomainConfig struct {
	// Name is the domain tag, e.g. "math" or "shipping".
	Name string `mapstructure:"name" yaml:"name" validate:"required,domain"`
	// Label replaces the aggregator label.
	Label string `mapstructure:"label" yaml:"label,omitempty"`
	// Triggers and Patterns replace the built-in rule vocabulary when set.
	Triggers []string `mapstructure:"triggers" yaml:"triggers,omitempty" validate:"dive,required"`
	Patterns []string `mapstructure:"patterns" yaml:"patterns,omitempty" validate:"dive,required"`
	// Reply registers a template answer for the domain ({{.query}} is the request).
	Reply string `mapstructure:"reply" yaml:"reply,omitempty"`
	// Disabled removes a built-in domain.
	Disabled bool `mapstructure:"disabled" yaml:"disabled,omitempty"`
}

// WeatherConfig holds weather handler settings.
type WeatherConfig struct {
	DefaultLocation string `mapstructure:"default_location" yaml:"default_location" validate:"required"`
	DefaultReport   string `mapstructure:"default_report" yaml:"default_report" validate:"required"`
	// Table adds or replaces reports keyed by city.
	Table map[string]string `mapstructure:"table" yaml:"table,omitempty"`
	// SQLitePath stores the table in SQLite instead of memory.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path,omitempty"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

// ModelConfig selects the language model runtime.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider" validate:"oneof=none openai anthropic mock"`
	Name        string  `mapstructure:"name" yaml:"name,omitempty"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	// MaxCalls caps model calls over the runtime's lifetime, 0 is unlimited.
	MaxCalls int `mapstructure:"max_calls" yaml:"max_calls,omitempty" validate:"gte=0"`
	// Classify lets the model pick domains; keyword rules remain the fallback.
	Classify       bool   `mapstructure:"classify" yaml:"classify" validate:"excluded_if=Provider none"`
	ResearchPrompt string `mapstructure:"research_prompt" yaml:"research_prompt,omitempty"`
}

// Load loads configuration from path, or when path is empty from
// ./intentmesh.yaml or $XDG_CONFIG_HOME/intentmesh/intentmesh.yaml if present.
// Precedence (highest to lowest):
// 1. Environment variables (INTENTMESH_*)
// 2. Config file
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	} else {
		v.SetConfigName("intentmesh")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(userConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Model.APIKey = os.ExpandEnv(cfg.Model.APIKey)
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = os.Getenv(providerKeyEnv[cfg.Model.Provider])
	}
	cfg.Weather.SQLitePath = os.ExpandEnv(cfg.Weather.SQLitePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// providerKeyEnv names the conventional API key variable of each provider.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("dispatch.mode", d.Dispatch.Mode)
	v.SetDefault("dispatch.timeout", d.Dispatch.Timeout.String())
	v.SetDefault("dispatch.max_concurrency", d.Dispatch.MaxConcurrency)

	v.SetDefault("registry.strict_duplicates", d.Registry.StrictDuplicates)

	v.SetDefault("weather.default_location", d.Weather.DefaultLocation)
	v.SetDefault("weather.default_report", d.Weather.DefaultReport)
	v.SetDefault("weather.sqlite_path", "")

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("model.provider", d.Model.Provider)
	v.SetDefault("model.name", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.temperature", d.Model.Temperature)
	v.SetDefault("model.max_calls", 0)
	v.SetDefault("model.classify", d.Model.Classify)
	v.SetDefault("model.research_prompt", "")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Dispatch: DispatchConfig{
			Mode:    "sequential",
			Timeout: 10 * time.Second,
		},
		Weather: WeatherConfig{
			DefaultLocation: "default location",
			DefaultReport:   "Temperature: 25°C, Partly cloudy (default)",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Model: ModelConfig{
			Provider:    "none",
			Temperature: 0.2,
		},
	}
}

var domainNameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// validDomain validates that a domain tag is a lower-case slug.
func validDomain(fl validator.FieldLevel) bool {
	return domainNameRe.MatchString(fl.Field().String())
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("domain", validDomain); err != nil {
		return fmt.Errorf("register domain validation: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := map[string]bool{}
	for _, d := range c.Domains {
		if seen[d.Name] {
			return fmt.Errorf("invalid config: domain %q declared twice", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Redacted returns a copy safe for display, with secrets masked.
func (c Config) Redacted() Config {
	if c.Model.APIKey != "" {
		c.Model.APIKey = "********"
	}
	return c
}

// UserConfigPath returns the path of the per-user config file.
func UserConfigPath() string {
	return filepath.Join(userConfigDir(), "intentmesh.yaml")
}

// userConfigDir returns the XDG config directory for intentmesh.
func userConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "intentmesh")
	}

	// Fall back to ~/.config/intentmesh
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "intentmesh")
	}
	return filepath.Join(home, ".config", "intentmesh")
}
