package ui

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	meterWidth    = 30
	meterInterval = 50 * time.Millisecond
)

var (
	meterTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61E3FA"))

	meterInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A9B1D6"))

	meterPeakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7AA2F7"))
)

// LevelMeter shows a live input level bar for one opened capture stream.
// The capture goroutine feeds chunk peaks through Send at chunk rate; the
// display samples them on its own 50ms clock so rendering never backs up
// the reads.
type LevelMeter struct {
	program *tea.Program
	level   atomic.Uint32
	peak    atomic.Uint32
}

// NewLevelMeter builds a meter for the named device and stream format.
func NewLevelMeter(device string, sampleRate, chunkSize int) *LevelMeter {
	meter := &LevelMeter{}
	meter.program = tea.NewProgram(newMeterModel(meter, device, sampleRate, chunkSize))
	return meter
}

// Send records one chunk's peak level, normalized to [0, 1].
func (l *LevelMeter) Send(level float32) {
	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	l.level.Store(math.Float32bits(level))

	for {
		old := l.peak.Load()
		if level <= math.Float32frombits(old) || l.peak.CompareAndSwap(old, math.Float32bits(level)) {
			return
		}
	}
}

// Run blocks until the user quits the meter.
func (l *LevelMeter) Run() error {
	_, err := l.program.Run()
	return err
}

// Quit stops the meter from another goroutine.
func (l *LevelMeter) Quit() {
	l.program.Quit()
}

type meterTickMsg time.Time

func meterTick() tea.Cmd {
	return tea.Tick(meterInterval, func(t time.Time) tea.Msg {
		return meterTickMsg(t)
	})
}

type meterModel struct {
	meter      *LevelMeter
	spin       spinner.Model
	device     string
	sampleRate int
	chunkSize  int
	level      float32
	peak       float32
	quitting   bool
}

func newMeterModel(meter *LevelMeter, device string, sampleRate, chunkSize int) *meterModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A"))

	return &meterModel{
		meter:      meter,
		spin:       sp,
		device:     device,
		sampleRate: sampleRate,
		chunkSize:  chunkSize,
	}
}

func (m *meterModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, meterTick())
}

func (m *meterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case meterTickMsg:
		m.level = math.Float32frombits(m.meter.level.Load())
		m.peak = math.Float32frombits(m.meter.peak.Load())
		return m, meterTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *meterModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	title := meterTitleStyle.Render("Input level: " + m.device)
	format := meterInfoStyle.Render(fmt.Sprintf("(%d Hz, %d-sample chunks)", m.sampleRate, m.chunkSize))
	s.WriteString(title + " " + format + "\n\n")

	s.WriteString(renderLevelBar(m.level, m.peak))
	s.WriteString(fmt.Sprintf(" %3d%%", int(m.level*100)))
	if m.peak > 0 {
		s.WriteString(meterPeakStyle.Render(fmt.Sprintf("  peak %d%%", int(m.peak*100))))
	} else {
		s.WriteString(meterInfoStyle.Render("  no signal yet"))
	}
	s.WriteString("\n\n")

	s.WriteString(m.spin.View() + " " + meterInfoStyle.Render("Speak into the microphone. Press q to quit."))
	s.WriteString("\n")

	return s.String()
}

// renderLevelBar draws the instantaneous level with a peak-hold marker.
func renderLevelBar(level, peak float32) string {
	filled := int(level * meterWidth)
	if filled > meterWidth {
		filled = meterWidth
	}
	peakCol := int(peak*meterWidth) - 1

	color := getColorForLevel(level)

	var s strings.Builder
	s.WriteString("[")
	for i := 0; i < meterWidth; i++ {
		switch {
		case i < filled:
			s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		case i == peakCol:
			s.WriteString(meterPeakStyle.Render("┃"))
		default:
			s.WriteString(" ")
		}
	}
	s.WriteString("]")
	return s.String()
}

// getColorForLevel returns a color based on audio level
func getColorForLevel(level float32) string {
	switch {
	case level > 0.8:
		return "#F7768E" // Red for high levels
	case level > 0.5:
		return "#FF9E64" // Orange for medium-high levels
	case level > 0.3:
		return "#E0AF68" // Yellow for medium levels
	default:
		return "#9ECE6A" // Green for low levels
	}
}
