package stt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	. "github.com/roelfdiedericks/goscribe/internal/logging"
	"github.com/roelfdiedericks/goscribe/internal/media"
)

// OpenAIProvider implements STT using OpenAI's Whisper API.
// The endpoint is synchronous and has no speaker labels.
type OpenAIProvider struct {
	config OpenAIConfig
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI Whisper STT provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	L_debug("stt: openai provider initialized", "model", model, "baseURL", clientCfg.BaseURL)

	return &OpenAIProvider{
		config: OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: clientCfg.BaseURL,
			Model:   model,
		},
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Transcribe sends a local audio file to OpenAI's transcription endpoint.
func (o *OpenAIProvider) Transcribe(ctx context.Context, source string, opts Options) (*Transcript, error) {
	if media.IsRemote(source) {
		return nil, fmt.Errorf("openai: remote audio URLs are not supported, download %s first", source)
	}
	if opts.Diarisation || opts.hasExpectedSpeakers() {
		L_warn("stt: openai does not label speakers, writing plain text")
	}

	req := openai.AudioRequest{
		Model:    o.config.Model,
		FilePath: source,
		Format:   openai.AudioResponseFormatJSON,
	}
	if opts.hasLanguage() {
		req.Language = opts.Language
	}

	L_info("stt: openai transcribing", "file", source, "model", o.config.Model)

	resp, err := o.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, transcribeError(err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal openai response: %w", err)
	}

	L_debug("stt: openai transcription complete", "length", len(resp.Text))

	return &Transcript{
		Status:   StatusCompleted,
		Text:     resp.Text,
		Language: resp.Language,
		Raw:      raw,
	}, nil
}

// transcribeError maps go-openai failures onto TransportError.
func transcribeError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{Op: "transcribe", StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &TransportError{Op: "transcribe", StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &TransportError{Op: "transcribe", Err: err}
}

// Name returns the provider name.
func (o *OpenAIProvider) Name() string {
	return "openai"
}

// Close releases any resources (none for HTTP client).
func (o *OpenAIProvider) Close() error {
	return nil
}
