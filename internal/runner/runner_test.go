package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/roelfdiedericks/goscribe/internal/stt"
	"github.com/roelfdiedericks/goscribe/internal/transcript"
)

// fakeProvider returns a canned transcript and counts calls.
type fakeProvider struct {
	result *stt.Transcript
	err    error
	calls  int
	opts   stt.Options
}

func (f *fakeProvider) Transcribe(_ context.Context, _ string, opts stt.Options) (*stt.Transcript, error) {
	f.calls++
	f.opts = opts
	return f.result, f.err
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

func audioIn(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesDerivedTarget(t *testing.T) {
	src := audioIn(t)
	p := &fakeProvider{result: &stt.Transcript{ID: "tx-1", Status: stt.StatusCompleted, Text: "hello world", Raw: []byte(`{"text":"hello world"}`)}}
	var out bytes.Buffer

	res, err := Run(context.Background(), Request{Source: src, Options: stt.DefaultOptions(), Sidecar: true}, p, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := filepath.Join(filepath.Dir(src), "talk.txt")
	if res.Target.Path != want {
		t.Errorf("target = %q, want %q", res.Target.Path, want)
	}
	got, _ := os.ReadFile(want)
	if string(got) != "hello world\n" {
		t.Errorf("file = %q, want %q", got, "hello world\n")
	}
	if out.String() != "hello world\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if _, err := os.Stat(want + transcript.SidecarSuffix); err != nil {
		t.Errorf("sidecar missing: %v", err)
	}
	if res.Skipped || res.JobID != "tx-1" || res.RunID == "" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRunResumesFromExistingOutput(t *testing.T) {
	src := audioIn(t)
	existing := filepath.Join(filepath.Dir(src), "talk.txt")
	if err := os.WriteFile(existing, []byte("cached\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p := &fakeProvider{err: errors.New("must not be called")}
	var out bytes.Buffer

	res, err := Run(context.Background(), Request{Source: src, Options: stt.DefaultOptions()}, p, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times, want 0", p.calls)
	}
	if !res.Skipped || res.Text != "cached\n" || out.String() != "cached\n" {
		t.Errorf("resume surfaced %q / stdout %q, skipped=%v", res.Text, out.String(), res.Skipped)
	}
}

func TestRunTwiceDoesWorkOnce(t *testing.T) {
	src := audioIn(t)
	output := filepath.Join(t.TempDir(), "notes.txt")
	p := &fakeProvider{result: &stt.Transcript{Text: "once"}}
	req := Request{Source: src, Output: output, Options: stt.DefaultOptions()}

	var first, second bytes.Buffer
	if _, err := Run(context.Background(), req, p, &first); err != nil {
		t.Fatal(err)
	}
	res, err := Run(context.Background(), req, p, &second)
	if err != nil {
		t.Fatal(err)
	}

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
	if !res.Skipped || first.String() != second.String() {
		t.Errorf("second run should be a pure read: %q vs %q", first.String(), second.String())
	}
}

func TestRunStdoutSentinel(t *testing.T) {
	src := audioIn(t)
	p := &fakeProvider{result: &stt.Transcript{
		Text:       "hi there",
		Utterances: []stt.Utterance{{Speaker: "A", Text: "hi"}, {Speaker: "B", Text: "there"}},
	}}
	opts := stt.DefaultOptions()
	opts.Diarisation = true
	var out bytes.Buffer

	res, err := Run(context.Background(), Request{Source: src, Output: "-", Options: opts, Sidecar: true}, p, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Target.Stdout {
		t.Errorf("target = %+v, want stdout", res.Target)
	}
	if out.String() != "Speaker A: hi\nSpeaker B: there\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if !p.opts.Diarisation {
		t.Error("options not passed through to the provider")
	}

	entries, _ := os.ReadDir(filepath.Dir(src))
	if len(entries) != 1 {
		t.Errorf("expected only the input file, found %d entries", len(entries))
	}
}

func TestRunProviderErrorWritesNothing(t *testing.T) {
	src := audioIn(t)
	boom := &stt.RemoteJobError{JobID: "tx-1", Message: "no audio"}
	p := &fakeProvider{err: boom}
	var out bytes.Buffer

	_, err := Run(context.Background(), Request{Source: src, Options: stt.DefaultOptions()}, p, &out)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the provider error", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed, got %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(src), "talk.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no transcript file should exist: %v", err)
	}
}

func TestRunRefusesTextInputAsOwnOutput(t *testing.T) {
	src := filepath.Join(t.TempDir(), "memo.txt")
	if err := os.WriteFile(src, []byte("RIFF....WAVEfmt "), 0600); err != nil {
		t.Fatal(err)
	}
	p := &fakeProvider{result: &stt.Transcript{Text: "x"}}
	var out bytes.Buffer

	_, err := Run(context.Background(), Request{Source: src, Options: stt.DefaultOptions()}, p, &out)
	if !errors.Is(err, transcript.ErrSameAsSource) {
		t.Fatalf("err = %v, want ErrSameAsSource", err)
	}
	var ioErr *transcript.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("err = %T, want *transcript.IOError", err)
	}
	if p.calls != 0 || out.Len() != 0 {
		t.Errorf("input must not be surfaced as a transcript: calls=%d stdout=%q", p.calls, out.String())
	}

	got, _ := os.ReadFile(src)
	if string(got) != "RIFF....WAVEfmt " {
		t.Errorf("input modified: %q", got)
	}
}
