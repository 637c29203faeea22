// Package ui holds the terminal surfaces: the interactive device picker used
// by the devices subcommand and the live input level meter.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// DevicePicker presents input devices as a numbered list and reads the
// user's selection.
type DevicePicker struct {
	in  io.Reader
	out io.Writer
}

// NewDevicePicker reads from stdin and writes to stdout.
func NewDevicePicker() *DevicePicker {
	return &DevicePicker{in: os.Stdin, out: os.Stdout}
}

// Pick shows the devices and returns the chosen one. An unparseable or
// out-of-range selection falls back to the system default device so a typo
// never leaves the user without a microphone.
func (p *DevicePicker) Pick(devices []audio.DeviceInfo) (audio.DeviceInfo, error) {
	if len(devices) == 0 {
		return audio.DeviceInfo{}, errors.New("no input devices to select from")
	}

	fmt.Fprintln(p.out, "\nAvailable audio input devices:")
	fmt.Fprintln(p.out, "------------------------------")

	for i, dev := range devices {
		marker := ""
		if dev.IsDefault {
			marker = " (system default)"
		}
		fmt.Fprintf(p.out, "%d. %s%s\n   %d input channel(s), %.0f Hz native rate\n\n",
			i+1, dev.Name, marker, dev.MaxInputChannels, dev.DefaultSampleRate)
	}

	fmt.Fprintf(p.out, "Enter your selection (1-%d): ", len(devices))

	reader := bufio.NewReader(p.in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		logger.Warning(logger.CategoryAudio, "Failed to read device selection: %v", err)
		return fallbackDevice(devices), fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	selected, err := strconv.Atoi(input)
	if err != nil || selected < 1 || selected > len(devices) {
		logger.Warning(logger.CategoryAudio, "Invalid device selection: %s", input)
		fallback := fallbackDevice(devices)
		fmt.Fprintf(p.out, "Invalid selection. Using %s.\n", fallback.Name)
		return fallback, nil
	}

	dev := devices[selected-1]
	fmt.Fprintf(p.out, "Selected: %s\n", dev.Name)
	return dev, nil
}

// fallbackDevice prefers the system default, then the first device.
func fallbackDevice(devices []audio.DeviceInfo) audio.DeviceInfo {
	for _, dev := range devices {
		if dev.IsDefault {
			return dev
		}
	}
	return devices[0]
}
