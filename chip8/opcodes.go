package chip8

// Step executes the instruction at PC. It reports whether the display was
// changed. On error the machine is unchanged and the error is a *Fault.
func (m *Machine) Step() (bool, error) {
	ins, err := m.Fetch()
	if err != nil {
		return false, err
	}

	pc := m.pc
	drawn, err := m.execOpcode(ins)
	if err != nil {
		return false, err
	}

	m.record(pc, ins.Opcode)
	return drawn, nil
}

func (m *Machine) fault(err error, ins Instruction) *Fault {
	return &Fault{Err: err, PC: m.pc, Opcode: ins.Opcode}
}

// checkRange faults unless [start, start+n) lies inside memory. An empty
// range still needs start <= MemorySize to be sliced.
func (m *Machine) checkRange(ins Instruction, start uint16, n int) error {
	if int(start)+n > MemorySize {
		f := m.fault(ErrMemoryOutOfBounds, ins)
		f.Addr = start
		if int(start) < MemorySize {
			f.Addr = MemorySize
		}
		return f
	}
	return nil
}

func (m *Machine) next() {
	m.pc += 2
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.pc += 4
	} else {
		m.pc += 2
	}
}

func (m *Machine) setFlag(b bool) {
	if b {
		m.v[0xf] = 1
	} else {
		m.v[0xf] = 0
	}
}

func (m *Machine) execOpcode(ins Instruction) (bool, error) {
	x, y, kk, nnn := ins.X, ins.Y, ins.KK, ins.NNN

	switch ins.Family {
	case 0x0:
		switch ins.Opcode {
		case 0x00E0: // clear display
			m.disp.clear()
			m.next()
			return true, nil

		case 0x00EE: // return from subroutine
			if m.sp == 0 {
				return false, m.fault(ErrStackUnderflow, ins)
			}
			m.sp--
			m.pc = m.stack[m.sp]

		default:
			return false, m.fault(ErrUnsupportedOpcode, ins)
		}

	case 0x1: // 1NNN goto NNN
		m.pc = nnn

	case 0x2: // 2NNN call NNN
		if int(m.sp) >= StackDepth {
			return false, m.fault(ErrStackOverflow, ins)
		}
		m.stack[m.sp] = m.pc + 2
		m.sp++
		m.pc = nnn

	case 0x3: // 3XNN if(Vx==NN)
		m.skipIf(m.v[x] == kk)

	case 0x4: // 4XNN if(Vx!=NN)
		m.skipIf(m.v[x] != kk)

	case 0x5: // 5XY0 if(Vx==Vy)
		if ins.N != 0 {
			return false, m.fault(ErrUnsupportedOpcode, ins)
		}
		m.skipIf(m.v[x] == m.v[y])

	case 0x6: // 6XNN Vx = NN
		m.v[x] = kk
		m.next()

	case 0x7: // 7XNN Vx += NN (carry flag is not changed)
		m.v[x] = uint8((uint16(m.v[x]) + uint16(kk)) & 0xff)
		m.next()

	case 0x8:
		if err := m.execALU(ins); err != nil {
			return false, err
		}
		m.next()

	case 0x9: // 9XY0 if(Vx!=Vy)
		if ins.N != 0 {
			return false, m.fault(ErrUnsupportedOpcode, ins)
		}
		m.skipIf(m.v[x] != m.v[y])

	case 0xA: // ANNN I = NNN
		m.i = nnn
		m.next()

	case 0xB: // BNNN PC = V0 + NNN
		m.pc = uint16(m.v[0]) + nnn

	case 0xC: // CXNN Vx = rand() & NN
		m.v[x] = uint8(m.rng.Intn(256)) & kk
		m.next()

	case 0xD: // DXYN draw(Vx, Vy, N)
		n := int(ins.N)
		if err := m.checkRange(ins, m.i, n); err != nil {
			return false, err
		}
		flipped := m.disp.draw(m.v[x], m.v[y], m.mem[int(m.i):int(m.i)+n])
		m.setFlag(flipped)
		m.next()
		return true, nil

	case 0xE:
		switch kk {
		case 0x9E: // EX9E if(key()==Vx)
			m.skipIf(m.keys.pressed(m.v[x]))

		case 0xA1: // EXA1 if(key()!=Vx)
			m.skipIf(!m.keys.pressed(m.v[x]))

		default:
			return false, m.fault(ErrUnsupportedOpcode, ins)
		}

	case 0xF:
		if err := m.execMisc(ins); err != nil {
			return false, err
		}
	}
	return false, nil
}

// execALU runs the 8XY_ family. VF is written after the result so that the
// flag wins when X is F.
func (m *Machine) execALU(ins Instruction) error {
	x, y := ins.X, ins.Y
	vx, vy := m.v[x], m.v[y]

	switch ins.N {
	case 0x0: // 8XY0 Vx = Vy
		m.v[x] = vy

	case 0x1: // 8XY1 Vx = Vx | Vy
		m.v[x] = vx | vy

	case 0x2: // 8XY2 Vx = Vx & Vy
		m.v[x] = vx & vy

	case 0x3: // 8XY3 Vx = Vx ^ Vy
		m.v[x] = vx ^ vy

	case 0x4: // 8XY4 Vx += Vy
		sum := uint16(vx) + uint16(vy)
		m.v[x] = uint8(sum & 0xff)
		m.setFlag(sum > 0xff)

	case 0x5: // 8XY5 Vx -= Vy
		m.v[x] = vx - vy
		m.setFlag(vx > vy)

	case 0x6: // 8XY6 Vx >>= 1
		m.v[x] = vx >> 1
		m.setFlag(vx&0x01 == 1)

	case 0x7: // 8XY7 Vx = Vy - Vx
		m.v[x] = vy - vx
		m.setFlag(vy > vx)

	case 0xE: // 8XYE Vx <<= 1
		m.v[x] = vx << 1
		m.setFlag(vx&0x80 != 0)

	default:
		return m.fault(ErrUnsupportedOpcode, ins)
	}
	return nil
}

// execMisc runs the FX__ family, advancing PC itself.
func (m *Machine) execMisc(ins Instruction) error {
	x := ins.X

	switch ins.KK {
	case 0x07: // FX07 Vx = get_delay()
		m.v[x] = m.dt

	case 0x0A: // FX0A Vx = get_key()
		key, ok := m.keys.firstPressed()
		if !ok {
			// PC stays put so the instruction runs again next step.
			return nil
		}
		m.v[x] = key

	case 0x15: // FX15 delay_timer(Vx)
		m.dt = m.v[x]

	case 0x18: // FX18 sound_timer(Vx)
		m.st = m.v[x]

	case 0x1E: // FX1E I += Vx
		m.i += uint16(m.v[x])

	case 0x29: // FX29 I = sprite_addr[Vx]
		m.i = FontOffset + uint16(m.v[x]&0x0f)*FontGlyphBytes

	case 0x33: // FX33 set_BCD(Vx)
		if err := m.checkRange(ins, m.i, 3); err != nil {
			return err
		}
		vx := m.v[x]
		m.mem[m.i+0] = vx / 100
		m.mem[m.i+1] = (vx % 100) / 10
		m.mem[m.i+2] = vx % 10

	case 0x55: // FX55 reg_dump(Vx, &I)
		n := int(x) + 1
		if err := m.checkRange(ins, m.i, n); err != nil {
			return err
		}
		copy(m.mem[m.i:int(m.i)+n], m.v[:n])
		m.i += uint16(n)

	case 0x65: // FX65 reg_load(Vx, &I)
		n := int(x) + 1
		if err := m.checkRange(ins, m.i, n); err != nil {
			return err
		}
		copy(m.v[:n], m.mem[m.i:int(m.i)+n])
		m.i += uint16(n)

	default:
		return m.fault(ErrUnsupportedOpcode, ins)
	}

	m.next()
	return nil
}
