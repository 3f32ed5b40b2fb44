package chip8

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecay(t *testing.T) {
	c := New()
	c.dt = 5
	c.st = 2

	for i := 0; i < 5; i++ {
		c.Decay()
	}
	assert.Equal(t, uint8(0), c.DelayTimer())
	assert.Equal(t, uint8(0), c.SoundTimer())
	assert.False(t, c.SoundActive())

	c.Decay()
	assert.Equal(t, uint8(0), c.DelayTimer())
}

func TestTimerClock(t *testing.T) {
	clock := NewTimerClock(60)
	period := clock.Period()

	assert.Equal(t, 0, clock.Advance(period/2))
	assert.Equal(t, 1, clock.Advance(period/2))
	assert.Equal(t, 3, clock.Advance(3*period))
	assert.Equal(t, 0, clock.Advance(0))
	assert.Equal(t, 0, clock.Advance(-time.Second))
}

func TestTimerClockOneSecond(t *testing.T) {
	clock := NewTimerClock(0)

	ticks := 0
	for i := 0; i < 1000; i++ {
		ticks += clock.Advance(time.Millisecond)
	}
	assert.Equal(t, TimerHz, ticks)
}
