package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path.toml", "/abs/path.toml"},
		{"relative/file", "relative/file"},
		{"~", home},
		{"~/notes/goscribe.toml", filepath.Join(home, "notes/goscribe.toml")},
	}

	for _, tt := range tests {
		got, err := ExpandTilde(tt.in)
		if err != nil {
			t.Fatalf("ExpandTilde(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "talk.txt")

	if err := EnsureParentDir(target); err != nil {
		t.Fatalf("EnsureParentDir: %v", err)
	}
	info, err := os.Stat(filepath.Dir(target))
	if err != nil {
		t.Fatalf("parent not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("parent is not a directory")
	}
}

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	got, err := ConfigPath()
	if err != nil || got != "" {
		t.Fatalf("ConfigPath() with no config = %q, %v", got, err)
	}

	global := filepath.Join(home, ".goscribe", ConfigFileName)
	if err := EnsureParentDir(global); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(global, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if got, _ := ConfigPath(); got != global {
		t.Errorf("ConfigPath() = %q, want %q", got, global)
	}

	if err := os.WriteFile(ConfigFileName, nil, 0600); err != nil {
		t.Fatal(err)
	}
	local, _ := filepath.Abs(ConfigFileName)
	if got, _ := ConfigPath(); got != local {
		t.Errorf("working directory config should win: got %q, want %q", got, local)
	}
}
