// Package audio produces the CHIP-8 beep while the sound timer runs.
package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultFrequency  = 440.0
	volume            = 0.2
)

// Tone is a square wave streamer that is silent while inactive.
type Tone struct {
	active bool
	phase  float64
	step   float64
}

// NewTone returns an inactive tone of freq Hz at sample rate sr.
func NewTone(sr beep.SampleRate, freq float64) *Tone {
	return &Tone{step: freq / float64(sr)}
}

func (t *Tone) setActive(active bool) {
	if !active {
		t.phase = 0
	}
	t.active = active
}

// Stream fills samples; it never runs dry.
func (t *Tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := 0.0
		if t.active {
			if t.phase < 0.5 {
				v = volume
			} else {
				v = -volume
			}
			t.phase = math.Mod(t.phase+t.step, 1)
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (t *Tone) Err() error {
	return nil
}

// Speaker plays a Tone on the default output device.
type Speaker struct {
	tone   *Tone
	active bool
}

// OpenSpeaker initialises the output device and starts the (silent) tone.
func OpenSpeaker(sr beep.SampleRate, freq float64) (*Speaker, error) {
	if err := speaker.Init(sr, sr.N(time.Second/30)); err != nil {
		return nil, err
	}
	s := &Speaker{tone: NewTone(sr, freq)}
	speaker.Play(s.tone)
	return s, nil
}

// SetActive starts or stops the tone.
func (s *Speaker) SetActive(active bool) {
	if active == s.active {
		return
	}
	s.active = active
	speaker.Lock()
	s.tone.setActive(active)
	speaker.Unlock()
}
