package termui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuboc/chip8/chip8"
	"github.com/tuboc/chip8/emulator"
)

func TestRenderFrame(t *testing.T) {
	m := chip8.New()
	// LD I,#206; DRW V0,V0,2; JP #204; sprite rows 11000000 and 11010000
	require.NoError(t, m.LoadROM([]byte{0xA2, 0x06, 0xD0, 0x02, 0x12, 0x04, 0xC0, 0xD0}))
	for i := 0; i < 2; i++ {
		_, err := m.Step()
		require.NoError(t, err)
	}

	lines := strings.Split(RenderFrame(m.Display()), "\r\n")
	require.Len(t, lines, chip8.DisplayH/2+1)
	assert.Equal(t, "██ ▄", string([]rune(lines[0])[:4]))
	assert.Equal(t, strings.Repeat(" ", chip8.DisplayW), lines[1])
	assert.Equal(t, "", lines[len(lines)-1])
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := &bell{w: &buf}

	b.SetActive(true)
	b.SetActive(true)
	b.SetActive(false)
	b.SetActive(true)
	assert.Equal(t, "\a\a", buf.String())
}

func TestHandleInput(t *testing.T) {
	m := chip8.New()
	require.NoError(t, m.LoadROM([]byte{0xF0, 0x0A}))
	r := emulator.NewRunner(m)
	f := &Frontend{
		runner: r,
		rom:    []byte{0xF0, 0x0A},
		opts:   Options{Keymap: emulator.DefaultKeymap()},
		latch:  emulator.NewKeyLatch(0),
	}
	now := time.Unix(0, 0)

	assert.False(t, f.handleInput('w', now))
	assert.True(t, f.latch.Snapshot(now)[0x5])

	assert.False(t, f.handleInput(' ', now))
	assert.True(t, r.Paused())
	assert.False(t, f.handleInput(keyReturn, now))
	assert.False(t, r.Paused())

	assert.True(t, f.handleInput(keyEscape, now))
	assert.True(t, f.handleInput(keyCtrlC, now))
}

type endlessReader struct{}

func (endlessReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}

func TestReadInputStopsWhenDone(t *testing.T) {
	out := make(chan byte)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		readInput(endlessReader{}, out, done)
		close(exited)
	}()

	assert.Equal(t, byte('x'), <-out)
	close(done)

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("readInput kept running after done was closed")
	}
	_, ok := <-out
	assert.False(t, ok)
}

func TestReadInputClosesOnEOF(t *testing.T) {
	out := make(chan byte, 4)
	readInput(strings.NewReader("ab"), out, make(chan struct{}))

	var got []byte
	for b := range out {
		got = append(got, b)
	}
	assert.Equal(t, []byte("ab"), got)
}
