package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	terminalStyles = map[State]lipgloss.Style{
		StateRecording:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		StateProcessing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		StateCompleted:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		StateError:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		StateWarning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
	}

	terminalSymbols = map[State]string{
		StateRecording:  "●",
		StateProcessing: "⚡",
		StateCompleted:  "✔",
		StateError:      "✖",
		StateWarning:    "⚠",
	}
)

// TerminalNotifier prints one styled status line per state change.
type TerminalNotifier struct {
	out io.Writer
}

// NewTerminalNotifier writes status lines to stderr, next to the logs.
func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{out: os.Stderr}
}

// Notify prints the state change.
func (n *TerminalNotifier) Notify(state State, title, message string) {
	line := fmt.Sprintf("%s %s", terminalSymbols[state], title)
	if message != "" {
		line = fmt.Sprintf("%s: %s", line, message)
	}
	fmt.Fprintln(n.out, terminalStyles[state].Render(line))
}

// Close implements Notifier.
func (n *TerminalNotifier) Close() error {
	return nil
}
