package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	d := Duration{5 * time.Minute}
	result, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(result) != "5m0s" {
		t.Errorf("MarshalText() = %v, want 5m0s", string(result))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.General.Name != "lcc" {
		t.Errorf("General.Name = %v, want lcc", cfg.General.Name)
	}
	if cfg.General.LogLevel != "info" || cfg.General.LogFormat != "text" {
		t.Errorf("General = %+v", cfg.General)
	}
	if !cfg.Input.Strict {
		t.Error("Input.Strict should default to true")
	}
	if cfg.Defaults.Mode != "series" || cfg.Defaults.ImpedanceUnit != "Ω" || cfg.Defaults.FrequencyUnit != "Hz" {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
	if cfg.HTTPAddress() != "0.0.0.0:8080" {
		t.Errorf("HTTPAddress() = %v", cfg.HTTPAddress())
	}
	if cfg.GRPCAddress() != "0.0.0.0:9090" {
		t.Errorf("GRPCAddress() = %v", cfg.GRPCAddress())
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 10*time.Second {
		t.Errorf("HTTP.ShutdownTimeout = %v", cfg.HTTP.ShutdownTimeout.Duration)
	}
	if cfg.Sweep.Points != 50 || cfg.Sweep.Scale != "log" {
		t.Errorf("Sweep = %+v", cfg.Sweep)
	}
	if !cfg.Cache.Enabled || cfg.Cache.MaxItems != 1024 || cfg.Cache.TTL.Duration != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
	if mode, err := cfg.ParsedMode(); err != nil || mode != formula.Series {
		t.Errorf("ParsedMode() = %v, %v", mode, err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if !mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		t.Errorf("Load() error = %v, want MISSING_CONFIG", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	configContent := `
[general]
name = "bench"
log_level = "debug"

[input]
strict = false

[defaults]
mode = "parallel"
impedance_unit = "kΩ"

[http]
port = 9999
host = "127.0.0.1"
read_timeout = "5s"

[cache]
enabled = false
ttl = "30s"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Name != "bench" || cfg.General.LogLevel != "debug" {
		t.Errorf("General = %+v", cfg.General)
	}
	if cfg.Input.Strict {
		t.Error("Input.Strict = true, want false")
	}
	if cfg.Defaults.Mode != "parallel" || cfg.Defaults.ImpedanceUnit != "kΩ" {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
	if cfg.HTTPAddress() != "127.0.0.1:9999" {
		t.Errorf("HTTPAddress() = %v", cfg.HTTPAddress())
	}
	if cfg.HTTP.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("HTTP.ReadTimeout = %v", cfg.HTTP.ReadTimeout.Duration)
	}

	// Check defaults were applied for missing values
	if cfg.HTTP.WriteTimeout.Duration != 30*time.Second {
		t.Errorf("HTTP.WriteTimeout = %v, want 30s (default)", cfg.HTTP.WriteTimeout.Duration)
	}
	if cfg.Defaults.FrequencyUnit != "Hz" {
		t.Errorf("Defaults.FrequencyUnit = %v, want Hz (default)", cfg.Defaults.FrequencyUnit)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTL.Duration != 30*time.Second || cfg.Cache.MaxItems != 1024 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
general:
  log_format: json
grpc:
  port: 7070
http:
  shutdown_timeout: 2s
sweep:
  points: 11
  scale: linear
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.LogFormat != "json" {
		t.Errorf("General.LogFormat = %v", cfg.General.LogFormat)
	}
	if cfg.GRPC.Port != 7070 {
		t.Errorf("GRPC.Port = %v", cfg.GRPC.Port)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 2*time.Second {
		t.Errorf("HTTP.ShutdownTimeout = %v", cfg.HTTP.ShutdownTimeout.Duration)
	}
	if cfg.Sweep.Points != 11 || cfg.Sweep.Scale != "linear" {
		t.Errorf("Sweep = %+v", cfg.Sweep)
	}
	if !cfg.Input.Strict {
		t.Error("Input.Strict should keep its default")
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("name = 1"), ".ini"); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("unsupported extension error = %v", err)
	}
	if _, err := Parse([]byte("[general\nname="), ".toml"); !mdwerror.HasCode(err, mdwerror.CodeConfigError) {
		t.Errorf("malformed TOML error = %v", err)
	}
	if _, err := Parse([]byte("http:\n  read_timeout: soon\n"), ".yml"); !mdwerror.HasCode(err, mdwerror.CodeConfigError) {
		t.Errorf("bad duration error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.General.LogLevel = "loud" }},
		{"log format", func(c *Config) { c.General.LogFormat = "xml" }},
		{"mode", func(c *Config) { c.Defaults.Mode = "diagonal" }},
		{"impedance unit", func(c *Config) { c.Defaults.ImpedanceUnit = "Hz" }},
		{"frequency unit", func(c *Config) { c.Defaults.FrequencyUnit = "THz" }},
		{"http port", func(c *Config) { c.HTTP.Port = 70000 }},
		{"sweep points", func(c *Config) { c.Sweep.Points = 1 }},
		{"sweep scale", func(c *Config) { c.Sweep.Scale = "cubic" }},
		{"cache size", func(c *Config) { c.Cache.MaxItems = -1 }},
		{"cache ttl", func(c *Config) { c.Cache.TTL.Duration = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}

	cfg := Default()
	cfg.Defaults.ReactanceUnit = "kohm"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() rejected an alias: %v", err)
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("LCC_TEST_HOST", "10.0.0.7")

	cfg := Default()
	cfg.HTTP.Host = "$LCC_TEST_HOST"
	cfg.expandEnvVars()

	if cfg.HTTP.Host != "10.0.0.7" {
		t.Errorf("HTTP.Host = %v, want 10.0.0.7", cfg.HTTP.Host)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "lcc.toml")
	if err := os.WriteFile(configPath, []byte("[sweep]\npoints = 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVar, configPath)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Sweep.Points != 7 {
		t.Errorf("Sweep.Points = %v, want 7", cfg.Sweep.Points)
	}
}

func TestLoadFromEnv_NoConfigFound(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("HOME", t.TempDir())

	// Change to a temp directory without config files
	originalWd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(originalWd)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.Name != "lcc" {
		t.Errorf("LoadFromEnv() should fall back to defaults, got %+v", cfg.General)
	}
}
