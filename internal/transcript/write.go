package transcript

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"

	. "github.com/roelfdiedericks/goscribe/internal/logging"
	"github.com/roelfdiedericks/goscribe/internal/paths"
)

// Write stores content at t.Path. When raw is non-empty and sidecar is set,
// the raw response is also written to t.SidecarPath(); that write is
// best-effort and only logged on failure. Stdout targets are a no-op.
func Write(t Target, content string, raw []byte, sidecar bool) error {
	if t.Stdout {
		return nil
	}

	if err := AtomicWrite(t.Path, []byte(content), 0644); err != nil {
		return &IOError{Op: "write", Path: t.Path, Err: err}
	}
	L_info("transcript written", "path", t.Path)

	if sidecar && len(raw) > 0 {
		side := t.SidecarPath()
		if err := AtomicWrite(side, pretty.Pretty(raw), 0644); err != nil {
			L_warn("transcript: failed to write response sidecar", "path", side, "error", err)
		} else {
			L_debug("transcript: response sidecar written", "path", side)
		}
	}
	return nil
}

// AtomicWrite replaces path with data via a temp file in the same directory,
// so the resume check only ever sees complete transcripts.
func AtomicWrite(path string, data []byte, perm os.FileMode) (err error) {
	if err := paths.EnsureParentDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".goscribe-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
