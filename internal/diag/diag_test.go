package diag

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jjamesmartiin/voice-transcriber/config"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "ok"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
		{Status(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestFailed(t *testing.T) {
	warnsOnly := []Result{
		{Name: "a", Status: StatusOK},
		{Name: "b", Status: StatusWarn},
	}
	if Failed(warnsOnly) {
		t.Error("warnings alone should not count as failure")
	}

	withFail := append(warnsOnly, Result{Name: "c", Status: StatusFail})
	if !Failed(withFail) {
		t.Error("a failing check should be reported")
	}
}

func TestCheckModelExplicitPath(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "ggml-tiny.bin")
	if err := os.WriteFile(modelPath, []byte("model"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.WhisperModelPath = modelPath

	r := checkModel(cfg)
	if r.Status != StatusOK {
		t.Fatalf("status = %v, detail %q", r.Status, r.Detail)
	}
	if r.Detail != modelPath {
		t.Errorf("detail = %q, want model path", r.Detail)
	}
}

func TestCheckModelMissing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WhisperModelPath = filepath.Join(t.TempDir(), "missing.bin")

	if r := checkModel(cfg); r.Status != StatusFail {
		t.Errorf("status = %v, want fail", r.Status)
	}
}

func TestCheckExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake executable script")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)
	t.Setenv("HOME", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.WhisperExecutable = ""

	r := checkExecutable(cfg)
	if r.Status != StatusOK {
		t.Fatalf("status = %v, detail %q", r.Status, r.Detail)
	}
	if r.Detail != script {
		t.Errorf("detail = %q, want %q", r.Detail, script)
	}
}

func TestCheckExecutableMissingIsWarning(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH isolation")
	}

	t.Setenv("PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.WhisperExecutable = ""

	r := checkExecutable(cfg)
	if r.Status != StatusWarn {
		t.Fatalf("status = %v, want warn", r.Status)
	}
	if !strings.Contains(r.Detail, "native bindings") {
		t.Errorf("detail %q should mention the native bindings escape hatch", r.Detail)
	}
}

func TestCheckOutputTools(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("clipboard helper detection is platform specific")
	}

	writeTool := func(dir, name string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	both := t.TempDir()
	writeTool(both, "xdotool")
	writeTool(both, "xclip")
	t.Setenv("PATH", both)
	if r := checkOutputTools(); r.Status != StatusOK {
		t.Errorf("typing+clipboard: status = %v, detail %q", r.Status, r.Detail)
	}

	typingOnly := t.TempDir()
	writeTool(typingOnly, "ydotool")
	t.Setenv("PATH", typingOnly)
	if r := checkOutputTools(); r.Status != StatusWarn {
		t.Errorf("typing only: status = %v, detail %q", r.Status, r.Detail)
	}

	t.Setenv("PATH", t.TempDir())
	if r := checkOutputTools(); r.Status != StatusFail {
		t.Errorf("nothing installed: status = %v, detail %q", r.Status, r.Detail)
	}
}
