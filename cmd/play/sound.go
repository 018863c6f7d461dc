package main

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Chime notes in Hz
var (
	transitNotes = []float64{659.25, 987.77}
	winNotes     = []float64{523.25, 659.25, 783.99, 1046.50}
	bumpNotes    = []float64{110}
)

const (
	transitNoteLength = 45 * time.Millisecond
	winNoteLength     = 90 * time.Millisecond
	bumpNoteLength    = 60 * time.Millisecond
)

// SoundManager mixes the short game chimes onto the speaker
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSoundManager creates a silent sound manager; Initialize opens the speaker
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// PlayTransit plays the rising two-note chime of a door transit
func (sm *SoundManager) PlayTransit() {
	sm.play(chime(transitNotes, transitNoteLength))
}

// PlayWin plays the arpeggio of a solved level
func (sm *SoundManager) PlayWin() {
	sm.play(chime(winNotes, winNoteLength))
}

// PlayBump plays a low thud for a rejected move
func (sm *SoundManager) PlayBump() {
	sm.play(chime(bumpNotes, bumpNoteLength))
}

func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// chime plays notes back to back, each lasting length
func chime(notes []float64, length time.Duration) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, freq := range notes {
		parts = append(parts, tone(freq, length))
	}
	return beep.Seq(parts...)
}

// tone is a quiet sine note; frequencies the generator rejects become silence
func tone(freq float64, length time.Duration) beep.Streamer {
	n := sampleRate.N(length)
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(n)
	}
	return &effects.Volume{Streamer: beep.Take(n, sine), Base: 2, Volume: -2}
}
