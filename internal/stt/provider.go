// Package stt provides speech-to-text transcription for audio content.
package stt

import "context"

// Sentinels meaning "no explicit value provided".
const (
	LanguageAuto  = "auto"
	SpeakersUnset = -1
)

// Options are the per-job transcription options.
type Options struct {
	Diarisation      bool
	ExpectedSpeakers int    // SpeakersUnset = let the service decide
	Language         string // LanguageAuto = detect
}

// DefaultOptions returns options with every sentinel unset.
func DefaultOptions() Options {
	return Options{ExpectedSpeakers: SpeakersUnset, Language: LanguageAuto}
}

func (o Options) hasLanguage() bool {
	return o.Language != "" && o.Language != LanguageAuto
}

func (o Options) hasExpectedSpeakers() bool {
	return o.ExpectedSpeakers != SpeakersUnset
}

// Status is the lifecycle state of a remote transcription job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Utterance is one speaker-labelled stretch of a diarised transcript.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Transcript is the result of a completed job.
type Transcript struct {
	ID         string
	Status     Status
	Text       string
	Language   string
	Utterances []Utterance // service order, only when diarisation was requested
	Raw        []byte      // last response body, verbatim
}

// Provider is the interface for STT implementations.
type Provider interface {
	// Transcribe turns an audio source (local path or http(s) URL) into a
	// finished transcript. It blocks until the job is terminal.
	Transcribe(ctx context.Context, source string, opts Options) (*Transcript, error)

	// Name returns the provider name (e.g., "assemblyai", "openai")
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}
