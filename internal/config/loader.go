package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ollamaui/internal/common/fsutil"
	"ollamaui/internal/ollama"
	"ollamaui/internal/query"
)

const (
	// HostEnv is the variable the Ollama tooling itself honours for the server URL.
	HostEnv = "OLLAMA_HOST"
	// EnvPrefix marks variables that override individual config keys.
	EnvPrefix = "OLLAMAUI_"
)

// Config holds runtime parameters for the service.
type Config struct {
	Addr                  string   `json:"addr" yaml:"addr" toml:"addr" koanf:"addr"`
	OllamaHost            string   `json:"ollama_host" yaml:"ollama_host" toml:"ollama_host" koanf:"ollama_host"`
	Models                []string `json:"models" yaml:"models" toml:"models" koanf:"models"`
	DefaultTemperature    float64  `json:"default_temperature" yaml:"default_temperature" toml:"default_temperature" koanf:"default_temperature"`
	DefaultTopP           float64  `json:"default_top_p" yaml:"default_top_p" toml:"default_top_p" koanf:"default_top_p"`
	RequestTimeoutSeconds int64    `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
	LogLevel              string   `json:"log_level" yaml:"log_level" toml:"log_level" koanf:"log_level"`
	LogFormat             string   `json:"log_format" yaml:"log_format" toml:"log_format" koanf:"log_format"`
	CORSEnabled           bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" koanf:"cors_enabled"`
	CORSOrigins           []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" koanf:"cors_origins"`
	MaxBodyBytes          int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" koanf:"max_body_bytes"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Addr:               ":8501",
		OllamaHost:         ollama.DefaultHost,
		Models:             append([]string(nil), query.DefaultModels...),
		DefaultTemperature: query.DefaultTemperature,
		DefaultTopP:        query.DefaultTopP,
		LogLevel:           "info",
		LogFormat:          "console",
		MaxBodyBytes:       1 << 20,
	}
}

// Load reads a configuration file based on its extension on top of Default.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" || !fsutil.IsRegularFile(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays OLLAMA_HOST and then OLLAMAUI_* variables onto cfg.
// List keys take comma-separated values.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(HostEnv)); v != "" {
		cfg.OllamaHost = v
	}
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return fmt.Errorf("loading env overrides: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("unmarshalling env overrides: %w", err)
	}
	if k.Exists("models") {
		cfg.Models = SplitCSV(k.String("models"))
	}
	if k.Exists("cors_origins") {
		cfg.CORSOrigins = SplitCSV(k.String("cors_origins"))
	}
	return nil
}

// Resolve builds the effective configuration: defaults, optional file,
// .env, then environment. Flags are applied by the caller afterwards.
func Resolve(path, dotenvPath string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if err := LoadDotEnv(dotenvPath); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise produce an unusable panel.
func (c Config) Validate() error {
	var errs []error
	if len(c.Models) == 0 {
		errs = append(errs, errors.New("models must list at least one model"))
	}
	for _, m := range c.Models {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, errors.New("models must not contain empty names"))
			break
		}
	}
	if c.DefaultTemperature < 0 || c.DefaultTemperature > 1 {
		errs = append(errs, fmt.Errorf("default_temperature %v outside [0,1]", c.DefaultTemperature))
	}
	if c.DefaultTopP < 0 || c.DefaultTopP > 1 {
		errs = append(errs, fmt.Errorf("default_top_p %v outside [0,1]", c.DefaultTopP))
	}
	if c.RequestTimeoutSeconds < 0 {
		errs = append(errs, errors.New("request_timeout_seconds must be non-negative"))
	}
	return errors.Join(errs...)
}

// Panel derives the configuration controls from c.
func (c Config) Panel() query.Panel {
	return query.Panel{
		Host:        c.OllamaHost,
		Models:      append([]string(nil), c.Models...),
		Temperature: query.Snap(c.DefaultTemperature, query.DefaultTemperature),
		TopP:        query.Snap(c.DefaultTopP, query.DefaultTopP),
	}
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
