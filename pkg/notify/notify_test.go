package notify

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

type recordedCall struct {
	state   State
	title   string
	message string
}

type fakeNotifier struct {
	calls  []recordedCall
	closed bool
}

func (f *fakeNotifier) Notify(state State, title, message string) {
	f.calls = append(f.calls, recordedCall{state, title, message})
}

func (f *fakeNotifier) Close() error {
	f.closed = true
	return nil
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRecording, "recording"},
		{StateProcessing, "processing"},
		{StateCompleted, "completed"},
		{StateError, "error"},
		{StateWarning, "warning"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestMultiFansOut(t *testing.T) {
	a := &fakeNotifier{}
	b := &fakeNotifier{}
	m := NewMulti(a, nil, b)

	m.Notify(StateRecording, "Recording", "hold to talk")

	for name, n := range map[string]*fakeNotifier{"first": a, "second": b} {
		if len(n.calls) != 1 {
			t.Fatalf("%s notifier got %d calls, want 1", name, len(n.calls))
		}
		call := n.calls[0]
		if call.state != StateRecording || call.title != "Recording" || call.message != "hold to talk" {
			t.Errorf("%s notifier got %+v", name, call)
		}
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("Close did not reach every notifier")
	}
}

func TestTerminalNotifierOutput(t *testing.T) {
	var buf bytes.Buffer
	n := &TerminalNotifier{out: &buf}

	n.Notify(StateCompleted, "Transcription complete", "copied to clipboard")

	out := buf.String()
	if !strings.Contains(out, "Transcription complete") {
		t.Errorf("output %q missing title", out)
	}
	if !strings.Contains(out, "copied to clipboard") {
		t.Errorf("output %q missing message", out)
	}
}

func TestTerminalNotifierOmitsEmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	n := &TerminalNotifier{out: &buf}

	n.Notify(StateRecording, "Recording", "")

	if strings.Contains(buf.String(), ":") {
		t.Errorf("output %q should not have a message separator", buf.String())
	}
}

func TestSoundNotifierGeneratesCues(t *testing.T) {
	n := &SoundNotifier{player: "/bin/true", dir: t.TempDir()}

	path, err := n.cuePath(StateRecording)
	if err != nil {
		t.Fatalf("cuePath: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cue file not written: %v", err)
	}

	// Second call reuses the cached file.
	again, err := n.cuePath(StateRecording)
	if err != nil {
		t.Fatalf("cuePath (cached): %v", err)
	}
	if again != path {
		t.Errorf("cached cue path = %q, want %q", again, path)
	}
}

func TestSoundNotifierSilentStates(t *testing.T) {
	// No player resolved; Notify must not try to run anything for states
	// without a cue.
	n := &SoundNotifier{player: "/nonexistent/player", dir: t.TempDir()}
	n.Notify(StateProcessing, "Processing", "")
	n.Notify(StateWarning, "Warning", "")
}

func TestSynthesizeCueShape(t *testing.T) {
	samples := synthesizeCue(880)

	if len(samples) != int(cueDuration*cueRate) {
		t.Fatalf("cue length = %d, want %d", len(samples), int(cueDuration*cueRate))
	}

	peak := 0
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		t.Fatal("cue is silent")
	}
	ceiling := cueVolume * 32767
	if float64(peak) > ceiling+1 {
		t.Errorf("cue peak %d exceeds volume ceiling %.0f", peak, ceiling)
	}
}

func TestStateExpireTimeout(t *testing.T) {
	if got := stateExpireTimeout(StateRecording); got != 0 {
		t.Errorf("recording bubbles should stay until replaced, got %d", got)
	}
	if got := stateExpireTimeout(StateError); got != 3000 {
		t.Errorf("error timeout = %d, want 3000", got)
	}
	if got := stateExpireTimeout(StateCompleted); got != 2000 {
		t.Errorf("completed timeout = %d, want 2000", got)
	}
}

func TestStateUrgency(t *testing.T) {
	if got := stateUrgency(StateError); got != 2 {
		t.Errorf("error urgency = %d, want 2 (critical)", got)
	}
	if got := stateUrgency(StateRecording); got != 1 {
		t.Errorf("recording urgency = %d, want 1 (normal)", got)
	}
}
