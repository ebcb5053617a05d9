package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	. "github.com/roelfdiedericks/goscribe/internal/logging"
	"github.com/roelfdiedericks/goscribe/internal/media"
)

// AssemblyAIProvider implements STT using AssemblyAI's asynchronous v2
// transcript API: upload, submit, then poll until the job is terminal.
type AssemblyAIProvider struct {
	config AssemblyAIConfig
	client *http.Client
}

// NewAssemblyAIProvider creates a new AssemblyAI STT provider.
func NewAssemblyAIProvider(cfg AssemblyAIConfig) (*AssemblyAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assemblyai API key not configured")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAssemblyAIBaseURL
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	L_debug("stt: assemblyai provider initialized", "baseURL", baseURL, "pollInterval", interval, "timeout", cfg.Timeout)

	return &AssemblyAIProvider{
		config: AssemblyAIConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      baseURL,
			PollInterval: interval,
			Timeout:      cfg.Timeout,
		},
		client: &http.Client{},
	}, nil
}

// Transcribe uploads (if needed), submits and waits for a transcript.
func (a *AssemblyAIProvider) Transcribe(ctx context.Context, source string, opts Options) (*Transcript, error) {
	audioURL, err := a.Upload(ctx, source)
	if err != nil {
		return nil, err
	}

	id, err := a.Submit(ctx, audioURL, opts)
	if err != nil {
		return nil, err
	}

	return a.Wait(ctx, id)
}

// Upload returns a URL the service can fetch. http(s) sources are returned
// unchanged; local files are sent to /v2/upload as raw bytes.
func (a *AssemblyAIProvider) Upload(ctx context.Context, source string) (string, error) {
	if media.IsRemote(source) {
		L_debug("stt: using remote audio as-is", "url", source)
		return source, nil
	}

	file, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat audio file: %w", err)
	}

	if mimeType, err := media.DetectMimeType(source); err != nil {
		L_debug("stt: could not detect audio type", "file", source, "error", err)
	} else if !media.IsAudio(mimeType) {
		L_warn("stt: input does not look like audio, uploading anyway", "file", source, "mime", mimeType)
	} else {
		L_debug("stt: detected audio type", "file", source, "mime", mimeType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v2/upload", file)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	L_info("stt: uploading audio", "file", source, "bytes", info.Size())

	body, err := a.do(req, "upload")
	if err != nil {
		return "", err
	}

	uploadURL := gjson.GetBytes(body, "upload_url").String()
	if uploadURL == "" {
		return "", &ProtocolError{Op: "upload", Detail: "response has no upload_url"}
	}

	L_debug("stt: upload complete", "uploadURL", uploadURL)
	return uploadURL, nil
}

// transcriptRequest is the POST /v2/transcript body. Unset options are
// omitted; the service treats absence as "use default".
type transcriptRequest struct {
	AudioURL         string `json:"audio_url"`
	SpeakerLabels    bool   `json:"speaker_labels"`
	LanguageCode     string `json:"language_code,omitempty"`
	SpeakersExpected *int   `json:"speakers_expected,omitempty"`
}

func newTranscriptRequest(audioURL string, opts Options) transcriptRequest {
	r := transcriptRequest{
		AudioURL:      audioURL,
		SpeakerLabels: opts.Diarisation,
	}
	if opts.hasLanguage() {
		r.LanguageCode = opts.Language
	}
	if opts.hasExpectedSpeakers() {
		n := opts.ExpectedSpeakers
		r.SpeakersExpected = &n
	}
	return r
}

// Submit creates a transcription job and returns its id.
func (a *AssemblyAIProvider) Submit(ctx context.Context, audioURL string, opts Options) (string, error) {
	payload, err := json.Marshal(newTranscriptRequest(audioURL, opts))
	if err != nil {
		return "", fmt.Errorf("marshal transcript request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	L_debug("stt: submitting transcript", "body", string(payload))

	body, err := a.do(req, "submit")
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return "", &ProtocolError{Op: "submit", Detail: "response has no id"}
	}

	L_info("stt: transcript submitted", "id", id, "diarisation", opts.Diarisation)
	return id, nil
}

// Wait polls the job at a fixed interval until it is completed or failed.
// With a Timeout configured the loop gives up with ErrTimeout.
func (a *AssemblyAIProvider) Wait(ctx context.Context, id string) (*Transcript, error) {
	pollCtx := ctx
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	endpoint := a.config.BaseURL + "/v2/transcript/" + url.PathEscape(id)
	start := time.Now()

	for attempt := 1; ; attempt++ {
		t, err := a.poll(pollCtx, endpoint, id)
		if err != nil {
			return nil, a.timeoutOr(ctx, pollCtx, id, err)
		}

		if t.Status.Terminal() {
			if t.Status == StatusError {
				msg := gjson.GetBytes(t.Raw, "error").String()
				L_debug("stt: transcript failed", "id", id, "error", msg)
				return nil, &RemoteJobError{JobID: id, Message: msg}
			}
			L_elapsed(start, "stt: transcript completed", "id", id, "polls", attempt)
			return t, nil
		}
		if t.Status != StatusQueued && t.Status != StatusProcessing {
			return nil, &ProtocolError{Op: "poll", JobID: id, Detail: fmt.Sprintf("unknown status %q", t.Status)}
		}
		L_debug("stt: transcript pending", "id", id, "status", t.Status, "attempt", attempt)

		timer := time.NewTimer(a.config.PollInterval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			return nil, a.timeoutOr(ctx, pollCtx, id, pollCtx.Err())
		case <-timer.C:
		}
	}
}

// timeoutOr maps expiry of the poll ceiling to ErrTimeout. Cancellation of
// the parent context is returned as-is.
func (a *AssemblyAIProvider) timeoutOr(parent, pollCtx context.Context, id string, err error) error {
	if parent.Err() == nil && errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: transcript %s not finished after %s", ErrTimeout, id, a.config.Timeout)
	}
	return err
}

func (a *AssemblyAIProvider) poll(ctx context.Context, endpoint, id string) (*Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := a.do(req, "poll")
	if err != nil {
		return nil, err
	}
	return parseTranscript(id, body), nil
}

// parseTranscript reads the fields goscribe needs and keeps the body verbatim.
func parseTranscript(id string, body []byte) *Transcript {
	res := gjson.ParseBytes(body)

	t := &Transcript{
		ID:       id,
		Status:   Status(res.Get("status").String()),
		Text:     res.Get("text").String(),
		Language: res.Get("language_code").String(),
		Raw:      body,
	}
	res.Get("utterances").ForEach(func(_, u gjson.Result) bool {
		t.Utterances = append(t.Utterances, Utterance{
			Speaker: u.Get("speaker").String(),
			Text:    u.Get("text").String(),
		})
		return true
	})
	return t
}

// do sends req with the API token and returns the body of a 2xx response.
func (a *AssemblyAIProvider) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("Authorization", a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		L_debug("stt: assemblyai request failed", "op", op, "status", resp.StatusCode, "body", string(body))
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Body: errorMessage(body)}
	}
	return body, nil
}

// errorMessage prefers the service's {"error": "..."} field over the raw body.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.String() != "" {
		return msg.String()
	}
	return strings.TrimSpace(string(body))
}

// Name returns the provider name.
func (a *AssemblyAIProvider) Name() string {
	return "assemblyai"
}

// Close releases any resources (none for HTTP client).
func (a *AssemblyAIProvider) Close() error {
	a.client.CloseIdleConnections()
	return nil
}
