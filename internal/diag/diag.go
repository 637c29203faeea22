// Package diag runs the environment checks behind the check subcommand:
// input device access, audio capture, model and executable discovery, text
// output tools and the notification bus.
package diag

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/jjamesmartiin/voice-transcriber/config"
	"github.com/jjamesmartiin/voice-transcriber/internal/textout"
	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/notify"
	"github.com/jjamesmartiin/voice-transcriber/pkg/transcription"
)

// Status grades one check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// String names the status for display.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Result is the outcome of one environment check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Run executes every check against the current environment.
func Run(cfg *config.Config) []Result {
	return []Result{
		checkInputAccess(cfg),
		checkAudio(),
		checkModel(cfg),
		checkExecutable(cfg),
		checkOutputTools(),
		checkNotifications(),
	}
}

// Failed reports whether any check failed outright.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

func checkAudio() Result {
	name := "audio capture"

	if err := audio.Initialize(); err != nil {
		return Result{Name: name, Status: StatusFail, Detail: err.Error()}
	}
	defer audio.Terminate()

	devices, err := audio.ListInputDevices()
	if err != nil {
		return Result{Name: name, Status: StatusFail, Detail: err.Error()}
	}

	detail := fmt.Sprintf("%d input device(s)", len(devices))
	for _, dev := range devices {
		if dev.IsDefault {
			detail += fmt.Sprintf(", default %q", dev.Name)
			break
		}
	}
	return Result{Name: name, Status: StatusOK, Detail: detail}
}

func checkModel(cfg *config.Config) Result {
	name := "whisper model"

	path, err := transcription.FindModel(cfg.WhisperModelPath, transcription.ModelSize(cfg.WhisperModelSize))
	if err != nil {
		return Result{Name: name, Status: StatusFail, Detail: err.Error()}
	}
	return Result{Name: name, Status: StatusOK, Detail: path}
}

func checkExecutable(cfg *config.Config) Result {
	name := "whisper executable"

	path, err := transcription.FindExecutable(cfg.WhisperExecutable)
	if err != nil {
		return Result{
			Name:   name,
			Status: StatusWarn,
			Detail: err.Error() + " (only needed without the native bindings)",
		}
	}
	return Result{Name: name, Status: StatusOK, Detail: path}
}

func checkOutputTools() Result {
	name := "text output"

	typing := textout.TypingTools()
	clip, clipOK := clipboardHelper()

	var parts []string
	if len(typing) > 0 {
		parts = append(parts, "typing via "+strings.Join(typing, ", "))
	}
	if clipOK {
		parts = append(parts, "clipboard via "+clip)
	}

	switch {
	case len(typing) > 0 && clipOK:
		return Result{Name: name, Status: StatusOK, Detail: strings.Join(parts, "; ")}
	case len(typing) > 0 || clipOK:
		return Result{Name: name, Status: StatusWarn, Detail: strings.Join(parts, "; ") + " (no fallback)"}
	default:
		return Result{
			Name:   name,
			Status: StatusFail,
			Detail: "no typing tool or clipboard helper found (install xdotool, ydotool, xclip or wl-clipboard)",
		}
	}
}

// clipboardHelper reports the command the clipboard library will shell out
// to on this platform, or the built-in API on Windows.
func clipboardHelper() (string, bool) {
	switch runtime.GOOS {
	case "windows":
		return "built-in clipboard API", true
	case "darwin":
		if _, err := exec.LookPath("pbcopy"); err == nil {
			return "pbcopy", true
		}
		return "", false
	default:
		for _, tool := range []string{"xclip", "xsel", "wl-copy"} {
			if _, err := exec.LookPath(tool); err == nil {
				return tool, true
			}
		}
		return "", false
	}
}

func checkNotifications() Result {
	name := "notifications"

	n, err := notify.NewDesktopNotifier()
	if err != nil {
		return Result{
			Name:   name,
			Status: StatusWarn,
			Detail: "session bus unreachable, desktop notifications disabled",
		}
	}
	n.Close()
	return Result{Name: name, Status: StatusOK, Detail: "notification service reachable"}
}
