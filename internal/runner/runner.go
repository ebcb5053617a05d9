// Package runner drives one transcription: resolve the destination, short
// circuit on a previous result, otherwise transcribe, write and print.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	. "github.com/roelfdiedericks/goscribe/internal/logging"
	"github.com/roelfdiedericks/goscribe/internal/stt"
	"github.com/roelfdiedericks/goscribe/internal/transcript"
)

// Request is everything one run needs. It is passed by value and never
// modified.
type Request struct {
	Source  string // local path or http(s) URL
	Output  string // explicit path, transcript.StdoutSentinel, or "" to derive
	Options stt.Options
	Sidecar bool
}

// Result describes what a run did.
type Result struct {
	RunID   string
	Target  transcript.Target
	Text    string // exactly what was printed to stdout
	Skipped bool   // an existing output was surfaced instead of transcribing
	JobID   string
}

// Run executes req. The transcript (fresh or previously written) is printed
// once to stdout.
func Run(ctx context.Context, req Request, provider stt.Provider, stdout io.Writer) (*Result, error) {
	res := &Result{
		RunID:  uuid.New().String()[:8],
		Target: transcript.Resolve(req.Source, req.Output),
	}
	L_debug("run: destination resolved", "run", res.RunID, "source", req.Source, "target", res.Target)
	if res.Target.Overwrites(req.Source) {
		return nil, &transcript.IOError{Op: "resolve", Path: res.Target.Path, Err: transcript.ErrSameAsSource}
	}

	existing, ok, err := transcript.Existing(res.Target)
	if err != nil {
		return nil, err
	}
	if ok {
		L_info("transcript already exists, skipping", "run", res.RunID, "path", res.Target.Path)
		res.Skipped = true
		res.Text = existing
		if err := emit(stdout, existing); err != nil {
			return nil, err
		}
		return res, nil
	}

	start := time.Now()
	L_info("transcribing", "run", res.RunID, "source", req.Source, "provider", provider.Name())

	t, err := provider.Transcribe(ctx, req.Source, req.Options)
	if err != nil {
		return nil, err
	}
	res.JobID = t.ID
	L_elapsed(start, "transcription finished", "run", res.RunID, "id", t.ID)

	res.Text = transcript.Render(t, req.Options.Diarisation)
	if err := transcript.Write(res.Target, res.Text, t.Raw, req.Sidecar); err != nil {
		return nil, err
	}

	if err := emit(stdout, res.Text); err != nil {
		return nil, err
	}
	return res, nil
}

func emit(w io.Writer, text string) error {
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	return nil
}
