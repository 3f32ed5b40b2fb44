// Package headless runs a ROM without a window and exports the final frame
// as text or as a scaled PNG.
package headless

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/tuboc/chip8/chip8"
	"github.com/tuboc/chip8/emulator"
)

// FrameTime is the simulated time fed to the runner per frame.
const FrameTime = time.Second / 60

type Options struct {
	// Cycles runs exactly this many instructions. Ignored when Duration is set.
	Cycles int
	// Duration runs the machine for this much simulated time, timers included.
	Duration   time.Duration
	Scale      int
	Foreground color.Color
	Background color.Color
	// PNGPath, when set, receives the final frame.
	PNGPath string
	// Out, when set, receives the final frame as text.
	Out io.Writer
}

// Run executes the ROM loaded in r and exports the final frame.
func Run(r *emulator.Runner, opts Options) error {
	if err := execute(r, opts); err != nil {
		return err
	}

	disp := r.Machine().Display()
	if opts.Out != nil {
		if _, err := io.WriteString(opts.Out, ASCII(disp)); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writePNGFile(opts.PNGPath, Image(disp, opts.Scale, opts.Foreground, opts.Background)); err != nil {
			return err
		}
	}
	disp.ClearDirty()
	return nil
}

func execute(r *emulator.Runner, opts Options) error {
	if opts.Duration <= 0 {
		_, err := r.RunCycles(opts.Cycles)
		return err
	}
	for left := opts.Duration; left > 0; left -= FrameTime {
		step := FrameTime
		if left < step {
			step = left
		}
		if _, err := r.Advance(step); err != nil {
			return err
		}
	}
	return nil
}

// ASCII renders the display with '#' for lit pixels and '.' otherwise.
func ASCII(d *chip8.Display) string {
	var sb strings.Builder
	sb.Grow((chip8.DisplayW + 1) * chip8.DisplayH)
	for y := 0; y < chip8.DisplayH; y++ {
		for x := 0; x < chip8.DisplayW; x++ {
			if d.Pixel(x, y) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Image returns the display scaled by scale with nearest-neighbour sampling.
func Image(d *chip8.Display, scale int, fg, bg color.Color) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	if fg == nil {
		fg = color.White
	}
	if bg == nil {
		bg = color.Black
	}

	src := image.NewPaletted(image.Rect(0, 0, chip8.DisplayW, chip8.DisplayH), color.Palette{bg, fg})
	for y := 0; y < chip8.DisplayH; y++ {
		for x := 0; x < chip8.DisplayW; x++ {
			src.SetColorIndex(x, y, d.Pixel(x, y))
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, chip8.DisplayW*scale, chip8.DisplayH*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

func writePNGFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WritePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
