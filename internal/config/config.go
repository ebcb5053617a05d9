// Package config loads goscribe settings from defaults, goscribe.toml, .env
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	. "github.com/roelfdiedericks/goscribe/internal/logging"
	"github.com/roelfdiedericks/goscribe/internal/paths"
	"github.com/roelfdiedericks/goscribe/internal/stt"
)

// Environment variables consulted by Load.
const (
	EnvAssemblyAIKey     = "ASSEMBLYAI_API_KEY"
	EnvAssemblyAIBaseURL = "ASSEMBLYAI_BASE_URL"
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvOpenAIBaseURL     = "OPENAI_BASE_URL"
	EnvProvider          = "GOSCRIBE_PROVIDER"
)

// Config represents the merged goscribe configuration.
// API keys are never read from the config file, only from the environment.
type Config struct {
	Provider   string           `toml:"provider"` // "assemblyai", "openai"
	Sidecar    *bool            `toml:"sidecar"`  // write <output>.response next to the transcript
	AssemblyAI AssemblyAIConfig `toml:"assemblyai"`
	OpenAI     OpenAIConfig     `toml:"openai"`
}

type AssemblyAIConfig struct {
	APIKey       string        `toml:"-"`
	BaseURL      string        `toml:"base_url"`
	PollInterval time.Duration `toml:"poll_interval"`
	Timeout      time.Duration `toml:"timeout"` // 0 = wait forever
}

type OpenAIConfig struct {
	APIKey  string `toml:"-"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// ConfigError reports a missing or invalid setting. It is raised before any
// network activity.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Key + " " + e.Reason
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	Path   string              // explicit config file; empty = paths.ConfigPath()
	DotEnv string              // .env file; empty = ".env"
	Getenv func(string) string // defaults to os.Getenv
}

// Defaults returns the built-in configuration. Sidecar stays nil so a file
// value of false survives the merge; nil means enabled.
func Defaults() Config {
	return Config{
		Provider: "assemblyai",
		AssemblyAI: AssemblyAIConfig{
			BaseURL:      stt.DefaultAssemblyAIBaseURL,
			PollInterval: stt.DefaultPollInterval,
		},
		OpenAI: OpenAIConfig{
			Model: stt.DefaultOpenAIModel,
		},
	}
}

// Load builds the configuration from defaults, the TOML file, the .env file
// and the process environment. The process environment wins over .env.
func Load(opts LoadOptions) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var fileCfg Config
	path := opts.Path
	if path == "" {
		found, err := paths.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path != "" {
		expanded, err := paths.ExpandTilde(path)
		if err != nil {
			return nil, err
		}
		if _, err := toml.DecodeFile(expanded, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", expanded, err)
		}
		L_debug("config: loaded file", "path", expanded)
	}

	cfg := Defaults()
	if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	env, err := readDotEnv(opts.DotEnv)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return env[key]
	}

	cfg.AssemblyAI.APIKey = lookup(EnvAssemblyAIKey)
	cfg.OpenAI.APIKey = lookup(EnvOpenAIKey)
	if v := lookup(EnvAssemblyAIBaseURL); v != "" {
		cfg.AssemblyAI.BaseURL = v
	}
	if v := lookup(EnvOpenAIBaseURL); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := lookup(EnvProvider); v != "" {
		cfg.Provider = v
	}

	return &cfg, nil
}

// readDotEnv reads KEY=value pairs without touching the process environment.
// A missing file is not an error.
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		path = ".env"
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	L_debug("config: loaded env file", "path", path, "keys", len(env))
	return env, nil
}

// SidecarEnabled reports whether the raw response sidecar should be written.
func (c *Config) SidecarEnabled() bool {
	return c.Sidecar == nil || *c.Sidecar
}

// Validate checks that the selected provider is known and has a credential.
func (c *Config) Validate() error {
	switch c.Provider {
	case "assemblyai":
		if c.AssemblyAI.APIKey == "" {
			return &ConfigError{Key: EnvAssemblyAIKey, Reason: "is not set"}
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return &ConfigError{Key: EnvOpenAIKey, Reason: "is not set"}
		}
	default:
		return &ConfigError{Key: "provider", Reason: fmt.Sprintf("%q is not supported (use assemblyai or openai)", c.Provider)}
	}
	return nil
}

// STT returns the provider configuration for the stt package.
func (c *Config) STT() stt.Config {
	return stt.Config{
		Provider: c.Provider,
		AssemblyAI: stt.AssemblyAIConfig{
			APIKey:       c.AssemblyAI.APIKey,
			BaseURL:      c.AssemblyAI.BaseURL,
			PollInterval: c.AssemblyAI.PollInterval,
			Timeout:      c.AssemblyAI.Timeout,
		},
		OpenAI: stt.OpenAIConfig{
			APIKey:  c.OpenAI.APIKey,
			BaseURL: c.OpenAI.BaseURL,
			Model:   c.OpenAI.Model,
		},
	}
}
