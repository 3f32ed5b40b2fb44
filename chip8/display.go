package chip8

// Display is the 64x32 monochrome frame buffer, stored row-major with one
// byte per pixel holding 0 or 1.
type Display struct {
	pixels [DisplayW * DisplayH]uint8
	dirty  bool
}

// Pixel returns the cell at (x, y). Coordinates wrap.
func (d *Display) Pixel(x, y int) uint8 {
	x %= DisplayW
	y %= DisplayH
	if x < 0 {
		x += DisplayW
	}
	if y < 0 {
		y += DisplayH
	}
	return d.pixels[y*DisplayW+x]
}

// Pixels returns a copy of the frame buffer.
func (d *Display) Pixels() [DisplayW * DisplayH]uint8 {
	return d.pixels
}

// Dirty reports whether the buffer changed since the last ClearDirty.
func (d *Display) Dirty() bool {
	return d.dirty
}

// ClearDirty is called by the host once it has rendered the buffer.
func (d *Display) ClearDirty() {
	d.dirty = false
}

func (d *Display) clear() {
	d.pixels = [DisplayW * DisplayH]uint8{}
	d.dirty = true
}

// draw XORs sprite onto the buffer at (x, y), wrapping both axes, and reports
// whether any lit pixel was turned off.
func (d *Display) draw(x, y uint8, sprite []uint8) bool {
	flipped := false
	for iy, row := range sprite {
		ty := (int(y) + iy) % DisplayH
		for ix := 0; ix < 8; ix++ {
			if (row>>(7-uint(ix)))&0x01 == 0 {
				continue
			}
			tx := (int(x) + ix) % DisplayW
			p := &d.pixels[ty*DisplayW+tx]
			if *p == 1 {
				flipped = true
			}
			*p ^= 1
		}
	}
	d.dirty = true
	return flipped
}
