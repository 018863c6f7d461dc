package main

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
)

func drain(s beep.Streamer) (samples int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		samples += n
		for _, frame := range buf[:n] {
			peak = max(peak, frame[0], -frame[0])
		}
		if !ok {
			return samples, peak
		}
	}
}

func TestChimeLength(t *testing.T) {
	tests := []struct {
		name   string
		notes  []float64
		length time.Duration
	}{
		{"transit", transitNotes, transitNoteLength},
		{"win", winNotes, winNoteLength},
		{"bump", bumpNotes, bumpNoteLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, peak := drain(chime(tt.notes, tt.length))
			assert.Equal(t, len(tt.notes)*sampleRate.N(tt.length), samples)
			assert.Greater(t, peak, 0.0)
			assert.LessOrEqual(t, peak, 1.0)
		})
	}
}

func TestToneAboveNyquistIsSilent(t *testing.T) {
	samples, peak := drain(tone(float64(sampleRate), 10*time.Millisecond))
	assert.Equal(t, sampleRate.N(10*time.Millisecond), samples)
	assert.Equal(t, 0.0, peak)
}

func TestSoundManagerUninitializedIsSilent(t *testing.T) {
	sm := NewSoundManager()

	assert.NotPanics(t, func() {
		sm.PlayTransit()
		sm.PlayWin()
		sm.PlayBump()
		sm.Cleanup()
	})
	assert.Equal(t, 0, sm.mixer.Len())
}
