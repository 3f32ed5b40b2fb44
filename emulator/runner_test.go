package emulator

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuboc/chip8/chip8"
)

func newRunner(t *testing.T, rom []byte, opts ...RunnerOption) *Runner {
	t.Helper()
	m := chip8.New(chip8.WithSeed(1))
	require.NoError(t, m.LoadROM(rom))
	return NewRunner(m, opts...)
}

// v0 = 120, dt = v0, loop forever
var delayLoopROM = []byte{0x60, 0x78, 0xF0, 0x15, 0x12, 0x04}

func TestAdvanceTimersIndependentOfCycleRate(t *testing.T) {
	for _, cps := range []int{100, 480, 2000} {
		r := newRunner(t, delayLoopROM, WithCyclesPerSecond(cps))
		for i := 0; i < 8; i++ {
			_, err := r.Advance(125 * time.Millisecond)
			require.NoError(t, err)
		}
		assert.Equal(t, uint8(60), r.Machine().DelayTimer(), "cps %d", cps)
	}
}

func TestAdvanceRunsConfiguredCycles(t *testing.T) {
	// ADD V1,#01 then jump back.
	r := newRunner(t, []byte{0x71, 0x01, 0x12, 0x00}, WithCyclesPerSecond(200))

	_, err := r.Advance(200 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint8(20), r.Machine().Registers().V[1])
}

func TestAdvanceCapsFrameTime(t *testing.T) {
	r := newRunner(t, []byte{0x71, 0x01, 0x12, 0x00}, WithCyclesPerSecond(400))

	_, err := r.Advance(10 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint8(50), r.Machine().Registers().V[1])
}

func TestAdvanceReportsDraw(t *testing.T) {
	r := newRunner(t, []byte{0x00, 0xE0, 0x12, 0x02}, WithCyclesPerSecond(100))

	drawn, err := r.Advance(20 * time.Millisecond)
	require.NoError(t, err)
	assert.True(t, drawn)

	drawn, err = r.Advance(20 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, drawn)
}

func TestPausedRunner(t *testing.T) {
	r := newRunner(t, []byte{0x60, 0x07}, WithPaused(true))

	_, err := r.Advance(time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint16(chip8.ProgramOffset), r.Machine().PC())

	_, err = r.StepOnce()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), r.Machine().Registers().V[0])

	r.SetPaused(false)
	assert.False(t, r.Paused())
}

func TestFaultHalt(t *testing.T) {
	var buf bytes.Buffer
	rom := []byte{0x80, 0x08}
	r := newRunner(t, rom, WithLogger(log.New(&buf, "", 0)))

	_, err := r.RunCycles(1)
	assert.ErrorIs(t, err, chip8.ErrUnsupportedOpcode)
	assert.ErrorIs(t, r.Halted(), chip8.ErrUnsupportedOpcode)
	assert.Contains(t, buf.String(), "halted: unsupported opcode")

	_, err = r.Advance(time.Second)
	assert.ErrorIs(t, err, chip8.ErrUnsupportedOpcode)

	require.NoError(t, r.Reload([]byte{0x60, 0x01}))
	assert.NoError(t, r.Halted())
	_, err = r.RunCycles(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), r.Machine().Registers().V[0])
}

func TestFaultSkip(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(t, []byte{0x80, 0x08, 0x60, 0x05}, WithFaultPolicy(FaultSkip), WithLogger(log.New(&buf, "", 0)))

	_, err := r.RunCycles(2)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), r.Machine().Registers().V[0])
	assert.Contains(t, buf.String(), "skipping unsupported opcode")
}

func TestFaultSkipHaltsOnStackFault(t *testing.T) {
	r := newRunner(t, []byte{0x00, 0xEE}, WithFaultPolicy(FaultSkip))

	_, err := r.RunCycles(1)
	assert.ErrorIs(t, err, chip8.ErrStackUnderflow)
	assert.Error(t, r.Halted())
}

func TestFaultLog(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(t, []byte{0x80, 0x08}, WithFaultPolicy(FaultLog), WithLogger(log.New(&buf, "", 0)))

	_, err := r.RunCycles(5)
	require.NoError(t, err)
	assert.Equal(t, uint16(chip8.ProgramOffset), r.Machine().PC())
	assert.Equal(t, 1, strings.Count(buf.String(), "unsupported opcode"))
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(t, []byte{0x60, 0x01, 0x12, 0x02}, WithTrace(true), WithLogger(log.New(&buf, "", 0)))

	_, err := r.RunCycles(2)
	require.NoError(t, err)
	assert.Equal(t, "200-6001 LD   V0,#01\n202-1202 JP   #202\n", buf.String())
}

func TestParseFaultPolicy(t *testing.T) {
	p, err := ParseFaultPolicy("SKIP")
	require.NoError(t, err)
	assert.Equal(t, FaultSkip, p)
	assert.Equal(t, "skip", p.String())

	_, err = ParseFaultPolicy("explode")
	assert.Error(t, err)
}

func TestLoadROMFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "test.ch8")
	require.NoError(t, os.WriteFile(path, []byte{0x12, 0x00}, 0o644))

	m := chip8.New()
	rom, err := LoadROMFile(m, path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x00}, rom)
	b, err := m.ReadMemory(chip8.ProgramOffset)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x12), b)

	big := filepath.Join(dir, "big.ch8")
	require.NoError(t, os.WriteFile(big, make([]byte, chip8.MaxROMSize+1), 0o644))
	_, err = LoadROMFile(chip8.New(), big)
	assert.ErrorIs(t, err, chip8.ErrRomTooLarge)

	_, err = LoadROMFile(chip8.New(), filepath.Join(dir, "missing.ch8"))
	assert.Error(t, err)
}
