// Package transcript decides where a transcript goes, detects a previous
// run's output and writes the rendered result.
package transcript

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/roelfdiedericks/goscribe/internal/media"
	"github.com/roelfdiedericks/goscribe/internal/stt"
)

// StdoutSentinel as an output path means "print only, write no file".
const StdoutSentinel = "-"

// SidecarSuffix is appended to the output path for the raw response file.
const SidecarSuffix = ".response"

const fallbackName = "transcript.txt"

// ErrSameAsSource is returned when the destination is the audio input itself,
// e.g. a derived target for an input already named *.txt.
var ErrSameAsSource = errors.New("output path is the audio input, choose another with -o")

// Target is the resolved destination of a transcript.
type Target struct {
	Path   string // empty when Stdout
	Stdout bool
}

func (t Target) String() string {
	if t.Stdout {
		return "<stdout>"
	}
	return t.Path
}

// SidecarPath returns <output>.response, or "" for stdout targets.
func (t Target) SidecarPath() string {
	if t.Stdout {
		return ""
	}
	return t.Path + SidecarSuffix
}

// Overwrites reports whether t names the same file as a local source.
func (t Target) Overwrites(source string) bool {
	if t.Stdout || media.IsRemote(source) {
		return false
	}
	if filepath.Clean(t.Path) == filepath.Clean(source) {
		return true
	}
	dst, err := os.Stat(t.Path)
	if err != nil {
		return false
	}
	src, err := os.Stat(source)
	if err != nil {
		return false
	}
	return os.SameFile(dst, src)
}

// IOError is a local file failure on the output side.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Resolve picks the destination for source. An explicit output wins, "-"
// selects stdout, otherwise <source without extension>.txt is derived.
func Resolve(source, output string) Target {
	switch output {
	case StdoutSentinel:
		return Target{Stdout: true}
	case "":
		return Target{Path: derive(source)}
	default:
		return Target{Path: output}
	}
}

// derive keeps the directory of a local source. URL sources land in the
// working directory under the name of their last path segment.
func derive(source string) string {
	if media.IsRemote(source) {
		u, err := url.Parse(source)
		if err != nil {
			return fallbackName
		}
		base := path.Base(u.Path)
		if base == "." || base == "/" || base == "" {
			return fallbackName
		}
		return replaceExt(base)
	}
	return replaceExt(source)
}

func replaceExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".txt"
}

// Existing returns the content of a previous run's output. ok is false when
// nothing is there yet (or the target is stdout).
func Existing(t Target) (content string, ok bool, err error) {
	if t.Stdout {
		return "", false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, &IOError{Op: "stat", Path: t.Path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", false, &IOError{Op: "stat", Path: t.Path, Err: fmt.Errorf("not a regular file")}
	}

	data, err := os.ReadFile(t.Path)
	if err != nil {
		return "", false, &IOError{Op: "read", Path: t.Path, Err: err}
	}
	return string(data), true, nil
}

// Render formats a finished transcript. Diarised transcripts get one
// "Speaker <label>: <text>" line per utterance in service order; otherwise
// the full text is written with a trailing newline.
func Render(t *stt.Transcript, diarisation bool) string {
	if diarisation && len(t.Utterances) > 0 {
		var b strings.Builder
		for _, u := range t.Utterances {
			fmt.Fprintf(&b, "Speaker %s: %s\n", u.Speaker, u.Text)
		}
		return b.String()
	}
	return t.Text + "\n"
}
