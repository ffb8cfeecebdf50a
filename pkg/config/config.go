// Package config loads check settings from a TOML or YAML file and from
// NAGKIT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/threshold"
)

// Environment variables that override file settings.
const (
	EnvTimeout   = "NAGKIT_TIMEOUT"
	EnvVerbose   = "NAGKIT_VERBOSE"
	EnvMaxLength = "NAGKIT_MAX_LENGTH"
)

// Config holds run settings and per-context thresholds. Zero numeric fields
// mean "not set".
type Config struct {
	Timeout   int             `toml:"timeout" yaml:"timeout"`
	Verbose   int             `toml:"verbose" yaml:"verbose"`
	MaxLength int             `toml:"max_length" yaml:"max_length"`
	Contexts  []ContextConfig `toml:"contexts" yaml:"contexts"`
}

// ContextConfig describes a scalar context.
type ContextConfig struct {
	Name     string            `toml:"name" yaml:"name"`
	Warning  string            `toml:"warning" yaml:"warning"`
	Critical string            `toml:"critical" yaml:"critical"`
	Format   string            `toml:"format" yaml:"format"`
	Messages map[string]string `toml:"messages" yaml:"messages"`
}

// Load reads a config file. The format follows the extension: .toml, or
// .yaml/.yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every context has a name and valid ranges.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, cc := range c.Contexts {
		if cc.Name == "" {
			return fmt.Errorf("context %d: name is required", i+1)
		}
		if seen[cc.Name] {
			return fmt.Errorf("context %s: defined twice", cc.Name)
		}
		seen[cc.Name] = true
		if _, err := cc.Threshold(); err != nil {
			return fmt.Errorf("context %s: %w", cc.Name, err)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// ApplyEnv overrides settings from the process environment and, if envFile
// is not empty, from that .env file. Values in the file win.
func (c *Config) ApplyEnv(envFile string) error {
	vars := map[string]string{}
	for _, k := range []string{EnvTimeout, EnvVerbose, EnvMaxLength} {
		if v, ok := os.LookupEnv(k); ok {
			vars[k] = v
		}
	}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("cannot read env file: %w", err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for key, dst := range map[string]*int{
		EnvTimeout:   &c.Timeout,
		EnvVerbose:   &c.Verbose,
		EnvMaxLength: &c.MaxLength,
	} {
		v, ok := vars[key]
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// Context returns the named context config.
func (c *Config) Context(name string) (ContextConfig, bool) {
	for _, cc := range c.Contexts {
		if cc.Name == name {
			return cc, true
		}
	}
	return ContextConfig{}, false
}

// Threshold parses the warning and critical specs.
func (cc ContextConfig) Threshold() (threshold.Threshold, error) {
	return threshold.New(cc.Warning, cc.Critical)
}

// Build creates the scalar context described by cc.
func (cc ContextConfig) Build() (*check.ScalarContext, error) {
	th, err := cc.Threshold()
	if err != nil {
		return nil, fmt.Errorf("context %s: %w", cc.Name, err)
	}
	ctx, err := check.NewScalarContext(cc.Name, th, cc.Format)
	if err != nil {
		return nil, err
	}
	if len(cc.Messages) > 0 {
		ctx.WithMessages(threshold.Messages(cc.Messages))
	}
	return ctx, nil
}
