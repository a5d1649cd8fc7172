package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
)

// EnvVar names the environment variable that points at the config file
const EnvVar = "LCC_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Input    InputConfig    `toml:"input" yaml:"input"`
	Defaults DefaultsConfig `toml:"defaults" yaml:"defaults"`
	HTTP     HTTPConfig     `toml:"http" yaml:"http"`
	GRPC     GRPCConfig     `toml:"grpc" yaml:"grpc"`
	Sweep    SweepConfig    `toml:"sweep" yaml:"sweep"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// InputConfig controls how entered quantities are parsed
type InputConfig struct {
	// Strict rejects malformed numbers. When false they count as empty.
	Strict bool `toml:"strict" yaml:"strict"`
}

// DefaultsConfig holds the initial selections used when a request leaves
// mode or target units unset
type DefaultsConfig struct {
	Mode          string `toml:"mode" yaml:"mode"`
	ImpedanceUnit string `toml:"impedance_unit" yaml:"impedance_unit"`
	ReactanceUnit string `toml:"reactance_unit" yaml:"reactance_unit"`
	FrequencyUnit string `toml:"frequency_unit" yaml:"frequency_unit"`
}

// HTTPConfig holds the HTTP API server settings
type HTTPConfig struct {
	Host            string   `toml:"host" yaml:"host"`
	Port            int      `toml:"port" yaml:"port"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// GRPCConfig holds the gRPC server settings
type GRPCConfig struct {
	Host           string `toml:"host" yaml:"host"`
	Port           int    `toml:"port" yaml:"port"`
	MaxMessageSize int    `toml:"max_message_size" yaml:"max_message_size"`
}

// SweepConfig holds frequency sweep defaults
type SweepConfig struct {
	Points int    `toml:"points" yaml:"points"`
	Scale  string `toml:"scale" yaml:"scale"`
}

// CacheConfig holds the result cache used by the servers
type CacheConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	MaxItems int      `toml:"max_items" yaml:"max_items"`
	TTL      Duration `toml:"ttl" yaml:"ttl"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{
		Input: InputConfig{Strict: true},
		Cache: CacheConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file; the format follows
// the file extension. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, mdwerror.New("config file not found").
			WithCode(mdwerror.CodeMissingConfig).
			WithDetail("path", path).
			WithOperation("config.Load")
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to read config").
			WithCode(mdwerror.CodeConfigError).
			WithDetail("path", path)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		var e *mdwerror.Error
		if errors.As(err, &e) {
			e.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".toml", ".yaml" or
// ".yml") over the defaults.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, mdwerror.New("unsupported config format").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("extension", ext).
			WithOperation("config.Parse")
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Parse")
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in string fields
	cfg.expandEnvVars()

	return cfg, nil
}

// SearchPaths returns the locations LoadFromEnv probes, in order
func SearchPaths() []string {
	paths := []string{"./configs/config.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lcc", "config.toml"))
	}
	return paths
}

// LoadFromEnv loads the file named by LCC_CONFIG. Without it the search
// paths are tried, and when none exists the defaults are returned.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "lcc"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Defaults
	if c.Defaults.Mode == "" {
		c.Defaults.Mode = formula.Series.String()
	}
	if c.Defaults.ImpedanceUnit == "" {
		c.Defaults.ImpedanceUnit = "Ω"
	}
	if c.Defaults.ReactanceUnit == "" {
		c.Defaults.ReactanceUnit = "Ω"
	}
	if c.Defaults.FrequencyUnit == "" {
		c.Defaults.FrequencyUnit = "Hz"
	}

	// HTTP
	if c.HTTP.Host == "" {
		c.HTTP.Host = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeout.Duration == 0 {
		c.HTTP.ReadTimeout.Duration = 30 * time.Second
	}
	if c.HTTP.WriteTimeout.Duration == 0 {
		c.HTTP.WriteTimeout.Duration = 30 * time.Second
	}
	if c.HTTP.ShutdownTimeout.Duration == 0 {
		c.HTTP.ShutdownTimeout.Duration = 10 * time.Second
	}

	// gRPC
	if c.GRPC.Host == "" {
		c.GRPC.Host = "0.0.0.0"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9090
	}
	if c.GRPC.MaxMessageSize == 0 {
		c.GRPC.MaxMessageSize = 4 * 1024 * 1024
	}

	// Sweep
	if c.Sweep.Points == 0 {
		c.Sweep.Points = 50
	}
	if c.Sweep.Scale == "" {
		c.Sweep.Scale = "log"
	}

	// Cache
	if c.Cache.MaxItems == 0 {
		c.Cache.MaxItems = 1024
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.Name = os.ExpandEnv(c.General.Name)
	c.HTTP.Host = os.ExpandEnv(c.HTTP.Host)
	c.GRPC.Host = os.ExpandEnv(c.GRPC.Host)
}

// Validate checks levels, formats, mode and unit labels. All problems are
// reported in one error coded INVALID_CONFIG.
func (c *Config) Validate() error {
	var problems []string

	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("general.log_level: %v", err))
	}
	if _, err := mdwlog.ParseFormat(c.General.LogFormat); err != nil {
		problems = append(problems, fmt.Sprintf("general.log_format: %v", err))
	}
	if _, err := formula.ParseMode(c.Defaults.Mode); err != nil {
		problems = append(problems, fmt.Sprintf("defaults.mode: unknown mode %q", c.Defaults.Mode))
	}

	unitChecks := []struct {
		key   string
		kind  units.Kind
		label string
	}{
		{"defaults.impedance_unit", units.Resistance, c.Defaults.ImpedanceUnit},
		{"defaults.reactance_unit", units.Resistance, c.Defaults.ReactanceUnit},
		{"defaults.frequency_unit", units.Frequency, c.Defaults.FrequencyUnit},
	}
	for _, check := range unitChecks {
		if _, err := units.Exponent(check.kind, units.Normalize(check.label)); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %q is not a %s unit", check.key, check.label, check.kind))
		}
	}

	for _, port := range []struct {
		key   string
		value int
	}{{"http.port", c.HTTP.Port}, {"grpc.port", c.GRPC.Port}} {
		if port.value < 1 || port.value > 65535 {
			problems = append(problems, fmt.Sprintf("%s: %d out of range", port.key, port.value))
		}
	}
	if c.GRPC.MaxMessageSize < 0 {
		problems = append(problems, "grpc.max_message_size: must not be negative")
	}
	if c.Sweep.Points < 2 {
		problems = append(problems, fmt.Sprintf("sweep.points: need at least 2, got %d", c.Sweep.Points))
	}
	if c.Sweep.Scale != "linear" && c.Sweep.Scale != "log" {
		problems = append(problems, fmt.Sprintf("sweep.scale: %q is neither linear nor log", c.Sweep.Scale))
	}

	if c.Cache.MaxItems < 0 {
		problems = append(problems, "cache.max_items: must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		problems = append(problems, "cache.ttl: must not be negative")
	}

	if len(problems) == 0 {
		return nil
	}
	return mdwerror.New("invalid configuration: "+strings.Join(problems, "; ")).
		WithCode(mdwerror.CodeInvalidConfig).
		WithDetail("problems", problems).
		WithOperation("config.Validate")
}

// HTTPAddress returns host:port of the HTTP server
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// GRPCAddress returns host:port of the gRPC server
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}

// ParsedMode returns the configured default mode
func (c *Config) ParsedMode() (formula.Mode, error) {
	return formula.ParseMode(c.Defaults.Mode)
}
