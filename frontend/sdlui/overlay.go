package sdlui

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/tuboc/chip8/chip8"
)

const (
	glyphW    = 5 * OverlayScale // 4 lit columns plus a gap
	glyphRowH = 7 * OverlayScale
)

// drawDebugInfo renders the registers under the display with the machine's
// own hex font: the first row holds V0-VF, the second PC, I, SP, DT and ST.
func (f *Frontend) drawDebugInfo() {
	top := chip8.DisplayH*f.opts.Scale + 2*OverlayScale
	regs := f.runner.Machine().Registers()

	f.setColor(f.opts.Foreground)
	x := int32(2 * OverlayScale)
	for _, v := range regs.V {
		x = f.drawHex(uint16(v), 2, x, top) + glyphW
	}

	y := top + glyphRowH
	x = 2 * OverlayScale
	x = f.drawHex(regs.PC, 3, x, y) + glyphW
	x = f.drawHex(regs.I, 4, x, y) + glyphW
	x = f.drawHex(uint16(regs.SP), 2, x, y) + glyphW
	x = f.drawHex(uint16(regs.DT), 2, x, y) + glyphW
	f.drawHex(uint16(regs.ST), 2, x, y)
}

// drawHex draws the low digits of v at (x, y) and returns the x after it.
func (f *Frontend) drawHex(v uint16, digits int, x, y int32) int32 {
	for d := digits - 1; d >= 0; d-- {
		f.drawGlyph(uint8(v>>(4*uint(d))), x, y)
		x += glyphW
	}
	return x
}

func (f *Frontend) drawGlyph(d uint8, x, y int32) {
	for row, bits := range chip8.Glyph(d) {
		for col := int32(0); col < 4; col++ {
			if bits&(0x80>>uint(col)) == 0 {
				continue
			}
			_ = f.renderer.FillRect(&sdl.Rect{
				X: x + col*OverlayScale,
				Y: y + int32(row)*OverlayScale,
				W: OverlayScale,
				H: OverlayScale,
			})
		}
	}
}
