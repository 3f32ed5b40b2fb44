// Package sdlui is the SDL2 frontend: a scaled window, keyboard input, a
// queued audio tone and an optional register overlay.
package sdlui

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/tuboc/chip8/chip8"
	"github.com/tuboc/chip8/emulator"
)

const (
	VBlankFrequency = 60
	AudioSamples    = 64
	SampleRate      = AudioSamples * VBlankFrequency
	ToneFrequency   = 480
	OverlayScale    = 2
	InformationH    = 2*glyphRowH + 4*OverlayScale
)

// Options controls the window.
type Options struct {
	Title      string
	Scale      int32
	Foreground color.RGBA
	Background color.RGBA
	Keymap     emulator.Keymap
	Debug      bool
	Logger     *log.Logger
}

type Frontend struct {
	runner   *emulator.Runner
	rom      []byte
	opts     Options
	window   *sdl.Window
	renderer *sdl.Renderer
	audio    sdl.AudioDeviceID
	keys     map[sdl.Scancode]uint8
	phase    float64
	running  bool
	focus    bool
}

func checkError(s string, e error) error {
	if e != nil {
		return fmt.Errorf("%s: %w", s, e)
	}
	return nil
}

func (f *Frontend) windowSize() (int32, int32) {
	w := chip8.DisplayW * f.opts.Scale
	h := chip8.DisplayH * f.opts.Scale
	if f.opts.Debug {
		h += InformationH
	}
	return w, h
}

func (f *Frontend) initRenderer() error {
	w, h := f.windowSize()
	window, err := sdl.CreateWindow(f.opts.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, w, h, sdl.WINDOW_SHOWN)
	if err := checkError("CreateWindow", err); err != nil {
		return err
	}
	f.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_PRESENTVSYNC)
	if err := checkError("CreateRenderer", err); err != nil {
		return err
	}
	f.renderer = renderer

	// workaround for https://bugzilla.libsdl.org/show_bug.cgi?id=4272
	// 	or update sdl2 to 2.0.9
	window.Hide()
	sdl.PumpEvents()
	window.Show()
	return nil
}

func (f *Frontend) initAudio() error {
	want := &sdl.AudioSpec{
		Freq:     SampleRate,
		Format:   sdl.AUDIO_F32LSB,
		Channels: 1,
		Samples:  AudioSamples,
	}
	have := &sdl.AudioSpec{}
	audio, err := sdl.OpenAudioDevice("", false, want, have, 0)
	if err := checkError("OpenAudioDevice", err); err != nil {
		return err
	}
	f.audio = audio

	sdl.PauseAudioDevice(audio, false)
	return nil
}

func (f *Frontend) initKeys() error {
	f.keys = map[sdl.Scancode]uint8{}
	for name, key := range f.opts.Keymap {
		sc := sdl.GetScancodeFromName(name)
		if sc == sdl.SCANCODE_UNKNOWN {
			return fmt.Errorf("keymap: SDL has no key named %q", name)
		}
		f.keys[sc] = key
	}
	return nil
}

// New opens the window and audio device. rom is kept for reloads.
func New(r *emulator.Runner, rom []byte, opts Options) (*Frontend, error) {
	if opts.Scale <= 0 {
		opts.Scale = 10
	}
	if opts.Title == "" {
		opts.Title = "Chip-8 Emulator"
	}
	if opts.Keymap == nil {
		opts.Keymap = emulator.DefaultKeymap()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	f := &Frontend{runner: r, rom: rom, opts: opts, running: true, focus: true}
	if err := f.initKeys(); err != nil {
		return nil, err
	}

	err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS)
	if err := checkError("sdl.Init", err); err != nil {
		return nil, err
	}
	if err := f.initRenderer(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.initAudio(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Close releases SDL resources.
func (f *Frontend) Close() {
	if f.audio != 0 {
		sdl.CloseAudioDevice(f.audio)
	}
	if f.renderer != nil {
		_ = f.renderer.Destroy()
	}
	if f.window != nil {
		_ = f.window.Destroy()
	}
	sdl.Quit()
}

// Run loops until the window is closed or the runner halts.
func (f *Frontend) Run() error {
	frame := time.Second / VBlankFrequency
	last := time.Now()

	for f.running {
		now := time.Now()
		elapsed := now.Sub(last)
		last = now

		if f.focus {
			if _, err := f.runner.Advance(elapsed); err != nil {
				return err
			}
			f.updateSound()
		}

		disp := f.runner.Machine().Display()
		if disp.Dirty() || f.opts.Debug {
			f.draw()
			disp.ClearDirty()
		}

		f.pollEvents()

		if spent := time.Since(now); spent < frame {
			sdl.Delay(uint32((frame - spent) / time.Millisecond))
		}
	}
	return nil
}

func (f *Frontend) setColor(c color.RGBA) {
	_ = f.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
}

func (f *Frontend) draw() {
	f.setColor(f.opts.Background)
	_ = f.renderer.Clear()

	// chip8 display
	scale := f.opts.Scale
	f.setColor(f.opts.Foreground)
	disp := f.runner.Machine().Display()
	for y := int32(0); y < chip8.DisplayH; y++ {
		for x := int32(0); x < chip8.DisplayW; x++ {
			if disp.Pixel(int(x), int(y)) != 0 {
				_ = f.renderer.FillRect(&sdl.Rect{X: x * scale, Y: y * scale, W: scale, H: scale})
			}
		}
	}

	if f.opts.Debug {
		f.drawDebugInfo()
	}

	f.renderer.Present()
}

func (f *Frontend) pollEvents() {
	m := f.runner.Machine()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			f.running = false
		case *sdl.KeyboardEvent:
			switch ev.Type {
			case sdl.KEYDOWN:
				if i, ok := f.keys[ev.Keysym.Scancode]; ok {
					m.Press(i)
				} else {
					f.handleControl(ev.Keysym.Scancode)
				}
			case sdl.KEYUP:
				if i, ok := f.keys[ev.Keysym.Scancode]; ok {
					m.Release(i)
				}
			}
		case *sdl.WindowEvent:
			switch ev.Event {
			case sdl.WINDOWEVENT_FOCUS_LOST:
				f.focus = false
			case sdl.WINDOWEVENT_FOCUS_GAINED:
				f.focus = true
			}
		}
	}
}

// handleControl handles the emulator keys: space steps (entering step mode
// first), return resumes, backspace reloads the rom and escape quits.
func (f *Frontend) handleControl(sc sdl.Scancode) {
	switch sc {
	case sdl.SCANCODE_SPACE:
		if !f.runner.Paused() {
			f.runner.SetPaused(true)
			return
		}
		if _, err := f.runner.StepOnce(); err != nil {
			f.opts.Logger.Printf("step: %v", err)
			return
		}
		for _, h := range f.runner.Machine().History() {
			f.opts.Logger.Print(h)
		}
	case sdl.SCANCODE_RETURN:
		f.runner.SetPaused(false)
	case sdl.SCANCODE_BACKSPACE:
		if err := f.runner.Reload(f.rom); err != nil {
			f.opts.Logger.Printf("reload: %v", err)
		}
	case sdl.SCANCODE_ESCAPE:
		f.running = false
	}
}

func (f *Frontend) updateSound() {
	if !f.runner.Machine().SoundActive() {
		f.phase = 0
		return
	}
	// keep roughly two frames queued
	if sdl.GetQueuedAudioSize(f.audio) > 2*4*AudioSamples {
		return
	}

	samples := make([]byte, 4*AudioSamples)
	step := 2.0 * math.Pi * ToneFrequency / SampleRate
	for i := 0; i < len(samples); i += 4 {
		v := float32(0.25 * math.Sin(f.phase))
		binary.LittleEndian.PutUint32(samples[i:], math.Float32bits(v))
		f.phase = math.Mod(f.phase+step, 2*math.Pi)
	}

	if err := sdl.QueueAudio(f.audio, samples); err != nil {
		f.opts.Logger.Println(err)
	}
}
