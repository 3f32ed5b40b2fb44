package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToneSilentWhenInactive(t *testing.T) {
	tone := NewTone(DefaultSampleRate, DefaultFrequency)
	buf := make([][2]float64, 256)

	n, ok := tone.Stream(buf)
	assert.Equal(t, len(buf), n)
	assert.True(t, ok)
	for _, s := range buf {
		assert.Equal(t, [2]float64{0, 0}, s)
	}
	assert.NoError(t, tone.Err())
}

func TestToneSquareWave(t *testing.T) {
	// 4 samples per period: high, high, low, low.
	tone := NewTone(400, 100)
	tone.setActive(true)
	buf := make([][2]float64, 8)

	tone.Stream(buf)
	want := []float64{volume, volume, -volume, -volume, volume, volume, -volume, -volume}
	for i, s := range buf {
		assert.InDelta(t, want[i], s[0], 1e-9, "sample %d", i)
		assert.Equal(t, s[0], s[1])
	}

	tone.setActive(false)
	tone.Stream(buf)
	assert.Equal(t, [2]float64{0, 0}, buf[0])
}
