package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jjamesmartiin/voice-transcriber/config"
	"github.com/jjamesmartiin/voice-transcriber/internal/textout"
	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/hotkey"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
	"github.com/jjamesmartiin/voice-transcriber/pkg/notify"
	"github.com/jjamesmartiin/voice-transcriber/pkg/session"
	"github.com/jjamesmartiin/voice-transcriber/pkg/transcription"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dictation daemon (the default command)",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	cfg := config.Current

	combo, err := hotkey.FromSettings(cfg.HotKeyCtrl, cfg.HotKeyAlt, cfg.HotKeyShift, cfg.HotKeyKey)
	if err != nil {
		return fmt.Errorf("invalid hotkey configuration: %w", err)
	}

	logger.Info(logger.CategoryApp, "Starting voice-transcriber with hotkey %s", combo)

	if err := audio.Initialize(); err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer audio.Terminate()

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
	logger.Info(logger.CategoryTranscription, "Transcription backend: %s", transcriber.Backend())

	notifier := buildNotifier(cfg)
	defer notifier.Close()

	recordingsDir, err := config.GetRecordingsDir()
	if err != nil {
		logger.Warning(logger.CategoryApp, "Recordings directory unavailable: %v", err)
		recordingsDir = ""
	}

	processor := session.NewProcessor(transcriber, textout.New(cfg.Output), notifier, session.Options{
		RecordingsDir:  recordingsDir,
		KeepRecordings: cfg.KeepRecordings,
		VADPrecheck:    cfg.VADPrecheck,
	})
	controller := session.NewController(audio.NewNegotiator(cfg.AudioChannels), processor, notifier, cfg.AudioInputDevice)
	defer controller.Close()

	machine := hotkey.NewMachine(combo, controller)
	machine.SetObserver(25, func(keysDown int, engaged bool) {
		logger.Debug(logger.CategoryInput, "%d key(s) down, recording=%v", keysDown, engaged)
	})

	sources := buildSources(cfg, combo)
	dispatcher := hotkey.NewDispatcher(machine, sources...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info(logger.CategoryApp, "Received %v, shutting down", sig)
		cancel()
	}()

	fmt.Printf("Hold %s to record. Release to transcribe. Ctrl+C to quit.\n", combo)

	if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("keyboard monitoring stopped: %w", err)
	}
	return nil
}

// buildNotifier assembles the notification fan-out. The terminal notifier
// is always present so state changes are visible even without a desktop
// session or sound output.
func buildNotifier(cfg *config.Config) notify.Notifier {
	notifiers := []notify.Notifier{notify.NewTerminalNotifier()}

	if desktop, err := notify.NewDesktopNotifier(); err != nil {
		logger.Debug(logger.CategoryOutput, "Desktop notifications unavailable: %v", err)
	} else {
		notifiers = append(notifiers, desktop)
	}

	if cfg.SoundCues {
		if sound, err := notify.NewSoundNotifier(); err != nil {
			logger.Debug(logger.CategoryOutput, "Sound cues unavailable: %v", err)
		} else {
			notifiers = append(notifiers, sound)
		}
	}

	return notify.NewMulti(notifiers...)
}

// buildSources picks the keyboard event backends. Direct evdev access wins
// when the process can read /dev/input because it sees key state across all
// desktop environments. Otherwise the portable hook carries the load, with
// a registered OS hotkey added when the combo supports one, since the hook
// misses events on some Wayland compositors.
func buildSources(cfg *config.Config, combo *hotkey.ComboDefinition) []hotkey.EventSource {
	keyboards, err := hotkey.ListKeyboards()
	if err == nil && len(keyboards) > 0 {
		for _, kb := range keyboards {
			logger.Debug(logger.CategoryInput, "Keyboard: %s (%s)", kb.Name, kb.Path)
		}
		logger.Info(logger.CategoryInput, "Monitoring %d keyboard(s) via evdev", len(keyboards))
		return []hotkey.EventSource{hotkey.NewEvdevSource(cfg.ClearKeysOnDisconnect)}
	}
	if err != nil {
		logger.Warning(logger.CategoryInput, "No direct keyboard access (%v), using portable hook", err)
	} else {
		logger.Warning(logger.CategoryInput, "No keyboards found under /dev/input, using portable hook")
	}

	sources := []hotkey.EventSource{hotkey.NewHookSource()}
	if reg, err := hotkey.NewRegisteredSource(combo); err != nil {
		logger.Debug(logger.CategoryInput, "Registered hotkey unavailable: %v", err)
	} else {
		sources = append(sources, reg)
	}
	return sources
}
