package chip8

import "time"

// TimerHz is the rate at which the delay and sound timers count down.
const TimerHz = 60

// Decay decrements the delay and sound timers toward zero.
func (m *Machine) Decay() {
	if m.dt > 0 {
		m.dt--
	}
	if m.st > 0 {
		m.st--
	}
}

// SoundActive reports whether the tone should be playing.
func (m *Machine) SoundActive() bool {
	return m.st > 0
}

// DelayTimer returns the delay timer.
func (m *Machine) DelayTimer() uint8 {
	return m.dt
}

// SoundTimer returns the sound timer.
func (m *Machine) SoundTimer() uint8 {
	return m.st
}

// TimerClock converts elapsed wall-clock time into timer ticks at a fixed
// rate, carrying the remainder between calls.
type TimerClock struct {
	period time.Duration
	acc    time.Duration
}

// NewTimerClock returns a clock ticking hz times per second. hz <= 0 means
// TimerHz.
func NewTimerClock(hz int) *TimerClock {
	if hz <= 0 {
		hz = TimerHz
	}
	return &TimerClock{period: time.Second / time.Duration(hz)}
}

// Advance adds elapsed to the clock and returns the number of ticks now due.
func (c *TimerClock) Advance(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	c.acc += elapsed
	n := int(c.acc / c.period)
	c.acc -= time.Duration(n) * c.period
	return n
}

// Period returns the duration of one tick.
func (c *TimerClock) Period() time.Duration {
	return c.period
}
