package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jjamesmartiin/voice-transcriber/config"
	"github.com/jjamesmartiin/voice-transcriber/internal/diag"
)

var (
	checkOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A"))
	checkWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68"))
	checkFailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7768E"))
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the machine is set up for recording and transcription",
	Long: `Run setup checks: keyboard access, audio capture, the Whisper model
and executable, text output tools, and desktop notifications.

Each check prints its status with a hint when something needs fixing.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	results := diag.Run(config.Current)

	warnings := 0
	for _, res := range results {
		fmt.Printf(" %s %-19s %s\n", statusMark(res.Status), res.Name, res.Detail)
		if res.Status == diag.StatusWarn {
			warnings++
		}
	}
	fmt.Println()

	if diag.Failed(results) {
		return errors.New("some checks failed")
	}
	if warnings > 0 {
		fmt.Printf("Ready, with %d warning(s).\n", warnings)
	} else {
		fmt.Println("All checks passed.")
	}
	return nil
}

func statusMark(status diag.Status) string {
	switch status {
	case diag.StatusOK:
		return checkOKStyle.Render("✓")
	case diag.StatusWarn:
		return checkWarnStyle.Render("!")
	default:
		return checkFailStyle.Render("✗")
	}
}
