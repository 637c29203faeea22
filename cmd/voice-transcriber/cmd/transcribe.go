package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjamesmartiin/voice-transcriber/config"
	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
	"github.com/jjamesmartiin/voice-transcriber/pkg/transcription"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <recording.wav>",
	Short: "Transcribe a WAV file and print the text",
	Long: `Transcribe a 16-bit PCM WAV file and print the recognized text.

Useful for testing the Whisper setup and for transcribing recordings kept
with the keep_recordings option.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(_ *cobra.Command, args []string) error {
	cfg := config.Current

	samples, sampleRate, err := audio.ReadWAV(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	logger.Info(logger.CategoryTranscription, "Loaded %.1fs of audio at %d Hz from %s",
		float64(len(samples))/float64(sampleRate), sampleRate, args[0])

	transcriber, err := transcription.New(transcription.Config{
		ModelSize:      transcription.ModelSize(cfg.WhisperModelSize),
		ModelPath:      cfg.WhisperModelPath,
		Language:       cfg.WhisperLanguage,
		ExecutablePath: cfg.WhisperExecutable,
		PreferNative:   cfg.UseNativeTranscriber,
	})
	if err != nil {
		return fmt.Errorf("setting up transcription: %w", err)
	}
	defer transcriber.Close()

	start := time.Now()
	text, err := transcriber.Transcribe(samples, sampleRate)
	if err != nil {
		return fmt.Errorf("transcribing %s: %w", args[0], err)
	}
	logger.Info(logger.CategoryTranscription, "Transcribed in %.1fs via %s backend",
		time.Since(start).Seconds(), transcriber.Backend())

	if text == "" {
		logger.Warning(logger.CategoryTranscription, "No speech detected in %s", args[0])
		return nil
	}
	fmt.Println(text)
	return nil
}
