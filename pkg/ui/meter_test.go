package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLevelMeterSendTracksPeak(t *testing.T) {
	meter := NewLevelMeter("Mic", 48000, 128)

	meter.Send(0.3)
	meter.Send(0.7)
	meter.Send(0.2)

	if got := math.Float32frombits(meter.level.Load()); got != 0.2 {
		t.Errorf("level = %v, want the latest value 0.2", got)
	}
	if got := math.Float32frombits(meter.peak.Load()); got != 0.7 {
		t.Errorf("peak = %v, want 0.7", got)
	}
}

func TestLevelMeterSendClamps(t *testing.T) {
	meter := NewLevelMeter("Mic", 48000, 128)

	meter.Send(1.5)
	if got := math.Float32frombits(meter.level.Load()); got != 1 {
		t.Errorf("level = %v, want clamped 1", got)
	}

	meter.Send(-0.5)
	if got := math.Float32frombits(meter.level.Load()); got != 0 {
		t.Errorf("level = %v, want clamped 0", got)
	}
}

func TestMeterModelTickSamplesLevels(t *testing.T) {
	meter := NewLevelMeter("Mic", 48000, 128)
	meter.Send(0.5)

	m := newMeterModel(meter, "Mic", 48000, 128)
	_, cmd := m.Update(meterTickMsg(time.Now()))

	if m.level != 0.5 {
		t.Errorf("level after tick = %v, want 0.5", m.level)
	}
	if m.peak != 0.5 {
		t.Errorf("peak after tick = %v, want 0.5", m.peak)
	}
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestMeterModelQuitKey(t *testing.T) {
	meter := NewLevelMeter("Mic", 48000, 128)
	m := newMeterModel(meter, "Mic", 48000, 128)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not quit")
	}
	if !m.quitting {
		t.Error("model still rendering after quit")
	}
}

func TestMeterModelSpinnerTick(t *testing.T) {
	meter := NewLevelMeter("Mic", 48000, 128)
	m := newMeterModel(meter, "Mic", 48000, 128)

	_, cmd := m.Update(m.spin.Tick())
	if cmd == nil {
		t.Error("spinner tick should schedule the next frame")
	}
}

func TestRenderLevelBar(t *testing.T) {
	bar := renderLevelBar(0.5, 0.9)

	if got := strings.Count(bar, "█"); got != meterWidth/2 {
		t.Errorf("filled columns = %d, want %d", got, meterWidth/2)
	}
	if got := strings.Count(bar, "┃"); got != 1 {
		t.Errorf("peak markers = %d, want 1", got)
	}

	quiet := renderLevelBar(0, 0)
	if strings.ContainsAny(quiet, "█┃") {
		t.Errorf("silent bar should be empty, got %q", quiet)
	}
}

func TestMeterViewContents(t *testing.T) {
	meter := NewLevelMeter("USB Microphone", 48000, 128)
	m := newMeterModel(meter, "USB Microphone", 48000, 128)

	view := m.View()
	if !strings.Contains(view, "USB Microphone") {
		t.Error("view missing device name")
	}
	if !strings.Contains(view, "48000 Hz") {
		t.Error("view missing stream format")
	}
	if !strings.Contains(view, "no signal yet") {
		t.Error("view missing the no-signal hint before any audio")
	}
	if !strings.Contains(view, "q to quit") {
		t.Error("view missing quit hint")
	}

	m.quitting = true
	if m.View() != "" {
		t.Error("quitting model should render nothing")
	}
}
