package stt

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when the optional poll ceiling is exceeded.
var ErrTimeout = errors.New("transcription timed out")

// TransportError is a non-success HTTP status or a network failure.
type TransportError struct {
	Op         string // "upload", "submit", "poll", "transcribe"
	StatusCode int    // 0 when the request never got a response
	Body       string // server-provided explanation, if any
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteJobError means the service reported status "error" for the job.
type RemoteJobError struct {
	JobID   string
	Message string
}

func (e *RemoteJobError) Error() string {
	return fmt.Sprintf("transcript %s failed: %s", e.JobID, e.Message)
}

// ProtocolError is a response the client does not understand: an unknown
// status value or a missing field.
type ProtocolError struct {
	Op     string
	JobID  string
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("%s: transcript %s: %s", e.Op, e.JobID, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}
