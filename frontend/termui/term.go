// Package termui runs the emulator inside a terminal: the display is drawn
// with half-block characters and the keyboard is read in raw mode.
package termui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/tuboc/chip8/chip8"
	"github.com/tuboc/chip8/emulator"
)

const (
	FrameRate = 60
	// MinCols and MinRows are the terminal size needed for one frame.
	MinCols = chip8.DisplayW
	MinRows = chip8.DisplayH/2 + 1

	keyCtrlC     = 0x03
	keyEscape    = 0x1b
	keyReturn    = '\r'
	keyBackspace = 0x7f
)

// Beeper is a tone sink driven once per frame.
type Beeper interface {
	SetActive(active bool)
}

// bell rings the terminal bell each time the tone starts.
type bell struct {
	w      io.Writer
	active bool
}

func (b *bell) SetActive(active bool) {
	if active && !b.active {
		fmt.Fprint(b.w, "\a")
	}
	b.active = active
}

type Options struct {
	Keymap emulator.Keymap
	Beeper Beeper
	Logger *log.Logger
}

type Frontend struct {
	runner *emulator.Runner
	rom    []byte
	opts   Options
	in     *os.File
	out    io.Writer
	latch  *emulator.KeyLatch
}

// New prepares a terminal frontend on stdin and stdout.
func New(r *emulator.Runner, rom []byte, opts Options) (*Frontend, error) {
	in := os.Stdin
	if !term.IsTerminal(int(in.Fd())) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err == nil && (cols < MinCols || rows < MinRows) {
		return nil, fmt.Errorf("terminal is %dx%d, need at least %dx%d", cols, rows, MinCols, MinRows)
	}

	if opts.Keymap == nil {
		opts.Keymap = emulator.DefaultKeymap()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	out := bufio.NewWriter(os.Stdout)
	if opts.Beeper == nil {
		opts.Beeper = &bell{w: os.Stdout}
	}
	return &Frontend{
		runner: r,
		rom:    rom,
		opts:   opts,
		in:     in,
		out:    out,
		latch:  emulator.NewKeyLatch(emulator.KeyRepeatDuration),
	}, nil
}

// Run puts the terminal in raw mode and loops until ctx is done, the user
// quits or the runner halts.
func (f *Frontend) Run(ctx context.Context) error {
	fd := int(f.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, state) }()

	fmt.Fprint(f.out, "\x1b[2J\x1b[?25l")
	defer fmt.Fprint(os.Stdout, "\x1b[?25h\r\n")

	defer f.opts.Beeper.SetActive(false)

	done := make(chan struct{})
	defer close(done)
	input := make(chan byte, 16)
	go readInput(f.in, input, done)

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			if quit := f.handleInput(b, time.Now()); quit {
				return nil
			}
		case now := <-ticker.C:
			m := f.runner.Machine()
			m.SetKeys(f.latch.Snapshot(now))
			_, err := f.runner.Advance(now.Sub(last))
			last = now
			f.opts.Beeper.SetActive(m.SoundActive())
			if err != nil {
				return err
			}
			if m.Display().Dirty() {
				f.render()
				m.Display().ClearDirty()
			}
		}
	}
}

// readInput forwards bytes from r until r fails or done is closed. A Read
// already blocked on a terminal only returns with the next key press, so the
// goroutine exits then.
func readInput(r io.Reader, out chan<- byte, done <-chan struct{}) {
	defer close(out)
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		for _, b := range buf[:n] {
			select {
			case out <- b:
			case <-done:
				return
			}
		}
	}
}

// handleInput applies one input byte and reports whether to quit.
func (f *Frontend) handleInput(b byte, now time.Time) bool {
	switch b {
	case keyCtrlC, keyEscape:
		return true
	case ' ':
		if !f.runner.Paused() {
			f.runner.SetPaused(true)
		} else if _, err := f.runner.StepOnce(); err != nil {
			f.opts.Logger.Printf("step: %v", err)
		}
	case keyReturn:
		f.runner.SetPaused(false)
	case keyBackspace:
		if err := f.runner.Reload(f.rom); err != nil {
			f.opts.Logger.Printf("reload: %v", err)
		}
	default:
		if key, ok := f.opts.Keymap.Lookup(string(rune(b))); ok {
			f.latch.Press(key, now)
		}
	}
	return false
}

func (f *Frontend) render() {
	fmt.Fprint(f.out, "\x1b[H")
	fmt.Fprint(f.out, RenderFrame(f.runner.Machine().Display()))
	if w, ok := f.out.(*bufio.Writer); ok {
		_ = w.Flush()
	}
}

// RenderFrame draws the display as 16 lines of half-block characters, two
// pixel rows per line, each line ending in CR LF for raw mode.
func RenderFrame(d *chip8.Display) string {
	var sb strings.Builder
	for y := 0; y < chip8.DisplayH; y += 2 {
		for x := 0; x < chip8.DisplayW; x++ {
			top, bottom := d.Pixel(x, y), d.Pixel(x, y+1)
			switch {
			case top == 1 && bottom == 1:
				sb.WriteRune('█')
			case top == 1:
				sb.WriteRune('▀')
			case bottom == 1:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
