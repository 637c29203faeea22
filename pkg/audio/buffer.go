package audio

import "time"

// SampleBuffer accumulates the 16-bit PCM samples of one recording session
// and tracks the peak absolute amplitude seen so far. It is written by
// exactly one capture goroutine; anyone else may read it only after that
// goroutine has been joined, so no lock is carried.
type SampleBuffer struct {
	samples []int16
	peak    int
}

// NewSampleBuffer creates a buffer sized for roughly ten seconds of audio at
// the given sample rate to keep early appends allocation-free.
func NewSampleBuffer(sampleRate int) *SampleBuffer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &SampleBuffer{
		samples: make([]int16, 0, sampleRate*10),
	}
}

// Append copies one captured chunk into the buffer and folds its peak into
// the running maximum.
func (b *SampleBuffer) Append(chunk []int16) {
	b.samples = append(b.samples, chunk...)
	if p := PeakAmplitude(chunk); p > b.peak {
		b.peak = p
	}
}

// Samples returns the accumulated samples.
func (b *SampleBuffer) Samples() []int16 {
	return b.samples
}

// Len returns the number of accumulated samples.
func (b *SampleBuffer) Len() int {
	return len(b.samples)
}

// Peak returns the largest absolute sample value appended so far.
func (b *SampleBuffer) Peak() int {
	return b.peak
}

// Duration returns the buffered audio length at the given sample rate.
func (b *SampleBuffer) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(sampleRate)
}

// PeakAmplitude returns the largest absolute sample value in the chunk.
func PeakAmplitude(chunk []int16) int {
	peak := 0
	for _, s := range chunk {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
