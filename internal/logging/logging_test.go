package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name    string
		quiet   bool
		verbose bool
		want    int
	}{
		{"default", false, false, LevelInfo},
		{"quiet", true, false, LevelError},
		{"verbose", false, true, LevelDebug},
		{"quiet wins", true, true, LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFor(tt.quiet, tt.verbose); got != tt.want {
				t.Errorf("LevelFor(%v, %v) = %d, want %d", tt.quiet, tt.verbose, got, tt.want)
			}
		})
	}
}

func TestQuietSuppressesStatusLines(t *testing.T) {
	var buf bytes.Buffer
	Init(&LogConfig{Level: LevelError, Output: &buf})
	defer Init(nil)

	L_info("transcript written", "path", "talk.txt")
	L_debug("polling")
	if buf.Len() != 0 {
		t.Fatalf("expected no output in quiet mode, got %q", buf.String())
	}

	L_error("upload failed", "error", "boom")
	if !strings.Contains(buf.String(), "upload failed") {
		t.Errorf("error line missing from output: %q", buf.String())
	}
}

func TestMessageFormats(t *testing.T) {
	var buf bytes.Buffer
	Init(&LogConfig{Level: LevelDebug, Output: &buf})
	defer Init(nil)

	L_info("attempt %d of %d", 2, 5)
	L_debug("structured", "status", "queued")

	out := buf.String()
	if !strings.Contains(out, "attempt 2 of 5") {
		t.Errorf("printf-style message not formatted: %q", out)
	}
	if !strings.Contains(out, "status=queued") {
		t.Errorf("structured key/value missing: %q", out)
	}
	if strings.Contains(out, "%!") {
		t.Errorf("key/value arguments were run through Sprintf: %q", out)
	}
}

func TestHasFmtVerb(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"plain", false},
		{"value %d", true},
		{"100%% done", false},
		{"trailing %", false},
	}
	for _, tt := range tests {
		if got := hasFmtVerb(tt.in); got != tt.want {
			t.Errorf("hasFmtVerb(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
