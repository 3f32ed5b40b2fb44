package chip8

// Instruction is a decoded 16-bit instruction word.
type Instruction struct {
	Opcode uint16
	Family uint8  // leading nibble
	X      uint8  // bits 8-11
	Y      uint8  // bits 4-7
	N      uint8  // low nibble
	KK     uint8  // low byte
	NNN    uint16 // low 12 bits
}

// Decode splits op into its fields.
func Decode(op uint16) Instruction {
	return Instruction{
		Opcode: op,
		Family: uint8(op >> 12),
		X:      uint8((op >> 8) & 0xf),
		Y:      uint8((op >> 4) & 0xf),
		N:      uint8(op & 0xf),
		KK:     uint8(op & 0xff),
		NNN:    op & 0x0fff,
	}
}

// Fetch decodes the big-endian word at PC without advancing it.
func (m *Machine) Fetch() (Instruction, error) {
	if int(m.pc)+1 >= MemorySize {
		return Instruction{}, &Fault{Err: ErrMemoryOutOfBounds, PC: m.pc, Addr: m.pc}
	}
	op := uint16(m.mem[m.pc])<<8 | uint16(m.mem[m.pc+1])
	return Decode(op), nil
}
