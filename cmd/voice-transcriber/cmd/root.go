// Package cmd implements the voice-transcriber command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jjamesmartiin/voice-transcriber/config"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "voice-transcriber",
	Short: "Hold a hotkey, speak, release, and the words are typed for you",
	Long: `voice-transcriber is a push-to-talk dictation daemon.

While the daemon runs, hold the configured key combination to record
from the microphone. Release the keys and the recording is transcribed
with Whisper and typed into the focused window (or copied to the
clipboard when typing is not available).`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	RunE:              runDaemon,
}

// Execute runs the root command. It is called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

func initApp(_ *cobra.Command, _ []string) error {
	logger.Initialize()

	if err := config.LoadConfig(); err != nil {
		logger.Warning(logger.CategoryApp, "Using default configuration: %v", err)
	}

	level := logger.ParseLevel(config.Current.LogLevel)
	if debugMode {
		level = logger.LevelDebug
	}
	logger.SetLevel(level)

	if level > logger.LevelDebug {
		logger.SuppressSoundServerWarnings(true)
	}
	return nil
}
