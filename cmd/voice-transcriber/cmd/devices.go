package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjamesmartiin/voice-transcriber/config"
	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
	"github.com/jjamesmartiin/voice-transcriber/pkg/ui"
)

var (
	pickDevice bool
	showMeter  bool
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List, select, or monitor audio input devices",
	Long: `List the available audio input devices.

With --pick, choose the recording device interactively and save it to the
configuration. With --meter, open a live input level meter on the configured
device, which helps verify that the microphone actually picks up speech.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().BoolVar(&pickDevice, "pick", false, "choose the recording device interactively")
	devicesCmd.Flags().BoolVar(&showMeter, "meter", false, "show a live input level meter")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(_ *cobra.Command, _ []string) error {
	if err := audio.Initialize(); err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer audio.Terminate()

	devices, err := audio.ListInputDevices()
	if err != nil {
		return fmt.Errorf("listing input devices: %w", err)
	}

	switch {
	case pickDevice:
		dev, err := ui.NewDevicePicker().Pick(devices)
		if err != nil {
			return err
		}
		config.Current.AudioInputDevice = dev.Index
		if err := config.SaveConfig(); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}
		fmt.Printf("Saved %s as the recording device.\n", dev.Name)
	case !showMeter:
		printDevices(devices)
	}

	if showMeter {
		return runMeter(devices)
	}
	return nil
}

func printDevices(devices []audio.DeviceInfo) {
	fmt.Println("Audio input devices:")
	for _, dev := range devices {
		marker := " "
		if dev.Index == config.Current.AudioInputDevice {
			marker = "*"
		}
		suffix := ""
		if dev.IsDefault {
			suffix = " (system default)"
		}
		fmt.Printf(" %s [%d] %s%s\n", marker, dev.Index, dev.Name, suffix)
		fmt.Printf("       %d input channel(s), %.0f Hz native rate\n", dev.MaxInputChannels, dev.DefaultSampleRate)
	}
	fmt.Println()
	fmt.Println("* marks the configured recording device. Run with --pick to change it.")
}

func runMeter(devices []audio.DeviceInfo) error {
	handle, streamCfg, err := audio.NewNegotiator(config.Current.AudioChannels).Negotiate(config.Current.AudioInputDevice)
	if err != nil {
		return fmt.Errorf("opening input stream: %w", err)
	}
	defer handle.Close()

	if err := handle.Start(); err != nil {
		return fmt.Errorf("starting input stream: %w", err)
	}

	meter := ui.NewLevelMeter(deviceName(devices, config.Current.AudioInputDevice), streamCfg.SampleRate, streamCfg.ChunkSize)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			chunk, err := handle.ReadChunk()
			if err != nil && !errors.Is(err, audio.ErrInputOverflow) {
				logger.Error(logger.CategoryAudio, "Meter read failed: %v", err)
				meter.Quit()
				return
			}
			meter.Send(float32(audio.PeakAmplitude(chunk)) / 32768)
		}
	}()

	err = meter.Run()
	close(stop)
	<-done
	if stopErr := handle.Stop(); stopErr != nil {
		logger.Debug(logger.CategoryAudio, "Stopping meter stream: %v", stopErr)
	}
	return err
}

// deviceName resolves the display name for the configured device index,
// falling back to the system default entry.
func deviceName(devices []audio.DeviceInfo, index int) string {
	for _, dev := range devices {
		if dev.Index == index {
			return dev.Name
		}
	}
	for _, dev := range devices {
		if dev.IsDefault {
			return dev.Name
		}
	}
	return devices[0].Name
}
