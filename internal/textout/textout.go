// Package textout delivers recognized text to the desktop, either by typing
// it into the focused window or by copying it to the clipboard.
package textout

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/atotto/clipboard"

	"github.com/jjamesmartiin/voice-transcriber/config"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// Method names how a piece of text was delivered.
type Method string

const (
	// MethodTyped means the text was typed into the focused window.
	MethodTyped Method = "typed"
	// MethodClipboard means the text was copied to the clipboard.
	MethodClipboard Method = "clipboard"
)

// ErrNoOutputMethod means neither typing nor the clipboard accepted the text.
var ErrNoOutputMethod = errors.New("no output method available")

// clipboardWrite is a seam for tests; production code writes the real
// system clipboard.
var clipboardWrite = clipboard.WriteAll

// Emitter routes recognized text according to the configured output mode.
type Emitter struct {
	mode config.OutputMode
}

// New builds an Emitter for the given output mode.
func New(mode config.OutputMode) *Emitter {
	if mode == "" {
		mode = config.OutputModeAuto
	}
	return &Emitter{mode: mode}
}

// Emit delivers text and reports which method carried it. In auto mode the
// typing tools are tried first and the clipboard is the fallback, so the
// caller can word its completion message accordingly.
func (e *Emitter) Emit(text string) (Method, error) {
	if text == "" {
		return "", errors.New("nothing to emit")
	}

	switch e.mode {
	case config.OutputModeClipboard:
		if err := clipboardWrite(text); err != nil {
			return "", fmt.Errorf("copy to clipboard: %w", err)
		}
		return MethodClipboard, nil

	case config.OutputModeType:
		if err := typeText(text); err != nil {
			return "", err
		}
		return MethodTyped, nil

	default:
		if err := typeText(text); err == nil {
			return MethodTyped, nil
		} else {
			logger.Debug(logger.CategoryOutput, "typing unavailable: %v", err)
		}
		if err := clipboardWrite(text); err != nil {
			return "", fmt.Errorf("%w: clipboard also failed: %v", ErrNoOutputMethod, err)
		}
		return MethodClipboard, nil
	}
}

// typeText runs the first typing tool that accepts the text.
func typeText(text string) error {
	tools := TypingTools()
	if len(tools) == 0 {
		return errors.New("no typing tool installed (tried xdotool, ydotool)")
	}

	var lastErr error
	for _, tool := range tools {
		cmd := exec.Command(tool, "type", "--", text)
		if err := cmd.Run(); err != nil {
			lastErr = fmt.Errorf("%s: %w", tool, err)
			logger.Debug(logger.CategoryOutput, "%s failed: %v", tool, err)
			continue
		}
		return nil
	}
	return lastErr
}

// TypingTools lists the installed typing tools in preference order. Pure
// Wayland sessions get ydotool first; everything else prefers xdotool.
func TypingTools() []string {
	order := []string{"xdotool", "ydotool"}
	if os.Getenv("WAYLAND_DISPLAY") != "" && os.Getenv("DISPLAY") == "" {
		order = []string{"ydotool", "xdotool"}
	}

	var found []string
	for _, tool := range order {
		if _, err := exec.LookPath(tool); err == nil {
			found = append(found, tool)
		}
	}
	return found
}
