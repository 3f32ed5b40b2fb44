package headless

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuboc/chip8/chip8"
	"github.com/tuboc/chip8/emulator"
)

// LD V0,#0A; LD F,V0; DRW V1,V1,5; JP #206 draws the glyph "A" at 0,0.
var glyphROM = []byte{0x60, 0x0A, 0xF0, 0x29, 0xD1, 0x15, 0x12, 0x06}

func newRunner(t *testing.T, rom []byte) *emulator.Runner {
	t.Helper()
	m := chip8.New(chip8.WithSeed(1))
	require.NoError(t, m.LoadROM(rom))
	return emulator.NewRunner(m)
}

func TestRunCyclesASCII(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(t, glyphROM)

	require.NoError(t, Run(r, Options{Cycles: 4, Out: &out}))

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, chip8.DisplayH+1)
	assert.Equal(t, "####", lines[0][:4])
	assert.Equal(t, "#..#", lines[1][:4])
	assert.Equal(t, "####", lines[2][:4])
	assert.Equal(t, "#..#", lines[4][:4])
	assert.Equal(t, strings.Repeat(".", chip8.DisplayW), lines[5])
	assert.False(t, r.Machine().Display().Dirty())
}

func TestRunDuration(t *testing.T) {
	// LD V0,#3C; LD DT,V0; JP #204
	r := newRunner(t, []byte{0x60, 0x3C, 0xF0, 0x15, 0x12, 0x04})

	require.NoError(t, Run(r, Options{Duration: 500 * time.Millisecond}))
	assert.InDelta(t, 30, int(r.Machine().DelayTimer()), 1)
}

func TestRunPropagatesFault(t *testing.T) {
	r := newRunner(t, []byte{0x00, 0xEE})

	err := Run(r, Options{Cycles: 1})
	assert.ErrorIs(t, err, chip8.ErrStackUnderflow)
}

func TestImageScales(t *testing.T) {
	r := newRunner(t, glyphROM)
	_, err := r.RunCycles(4)
	require.NoError(t, err)

	fg := color.RGBA{G: 0xff, A: 0xff}
	bg := color.RGBA{A: 0xff}
	img := Image(r.Machine().Display(), 3, fg, bg)

	assert.Equal(t, chip8.DisplayW*3, img.Bounds().Dx())
	assert.Equal(t, chip8.DisplayH*3, img.Bounds().Dy())
	assert.Equal(t, fg, img.RGBAAt(0, 0))
	assert.Equal(t, fg, img.RGBAAt(2, 2))
	assert.Equal(t, bg, img.RGBAAt(3, 3))
	assert.Equal(t, fg, img.RGBAAt(9, 3))
}

func TestWritePNGFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	r := newRunner(t, glyphROM)
	require.NoError(t, Run(r, Options{Cycles: 4, Scale: 2, PNGPath: path}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // test cleanup

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, chip8.DisplayW*2, img.Bounds().Dx())
}
