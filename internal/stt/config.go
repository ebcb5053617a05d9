package stt

import (
	"fmt"
	"time"
)

// Defaults for the AssemblyAI v2 API.
const (
	DefaultAssemblyAIBaseURL = "https://api.assemblyai.com"
	DefaultPollInterval      = 3 * time.Second
	DefaultOpenAIModel       = "whisper-1"
)

// Config holds STT configuration.
type Config struct {
	Provider   string           // "assemblyai", "openai"
	AssemblyAI AssemblyAIConfig // AssemblyAI async transcripts
	OpenAI     OpenAIConfig     // OpenAI Whisper API
}

// AssemblyAIConfig holds AssemblyAI configuration.
type AssemblyAIConfig struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	Timeout      time.Duration // ceiling on the poll loop, 0 = none
}

// OpenAIConfig holds OpenAI Whisper configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty = go-openai default
	Model   string // "whisper-1"
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "assemblyai":
		return NewAssemblyAIProvider(cfg.AssemblyAI)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("stt: unknown provider: %s", cfg.Provider)
	}
}
