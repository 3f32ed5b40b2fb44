// Package chip8 implements the CHIP-8 virtual machine: memory, registers,
// stack, timers, keypad, display and the fetch-decode-execute step.
//
// The machine never performs I/O. A host copies a ROM in with LoadROM,
// supplies the keypad before each Step, renders the Display when it is dirty,
// calls Decay at 60 Hz and polls SoundActive to drive a tone.
package chip8

import (
	"fmt"
	"math/rand"
	"time"
)

// Machine geometry.
const (
	DisplayW       = 64                         // display width in pixels
	DisplayH       = 32                         // display height in pixels
	MemorySize     = 4096                       // addressable bytes
	RegisterCount  = 16                         // V0-VF
	StackDepth     = 16                         // nested calls before overflow
	KeyCount       = 16                         // logical keys 0x0-0xF
	FontOffset     = 0x050                      // address of the hex font
	FontGlyphBytes = 5                          // bytes per font glyph
	ProgramOffset  = 0x200                      // load address and initial PC
	MaxROMSize     = MemorySize - ProgramOffset // largest loadable ROM
	OpHistoryNum   = 16                         // instructions kept by History
)

// Rand is the source of random bytes for Cxkk. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Machine is the complete CHIP-8 state. It is not safe for concurrent use.
type Machine struct {
	mem   [MemorySize]uint8    // memory
	pc    uint16               // program counter
	v     [RegisterCount]uint8 // registers
	i     uint16               // index register
	dt    uint8                // delay timer
	st    uint8                // sound timer
	sp    uint8                // stack pointer, number of pending calls
	stack [StackDepth]uint16   // stack
	keys  Keypad               // keyboards state
	disp  Display              // graphics

	rng    Rand
	seed   int64
	seeded bool

	ophistory      [OpHistoryNum]HistoryEntry
	ophistoryIndex int
	ophistoryLen   int
}

var characterSprites = [...]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the 5-byte font sprite for the hex digit d (low nibble).
func Glyph(d uint8) []uint8 {
	off := int(d&0x0f) * FontGlyphBytes
	return characterSprites[off : off+FontGlyphBytes]
}

// Option configures a Machine.
type Option func(*Machine)

// WithRand makes Cxkk draw from r.
func WithRand(r Rand) Option {
	return func(m *Machine) {
		m.rng = r
		m.seeded = false
	}
}

// WithSeed makes Cxkk deterministic. Reset restarts the sequence.
func WithSeed(seed int64) Option {
	return func(m *Machine) {
		m.seed = seed
		m.seeded = true
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// New returns a machine in its power-on state: memory zeroed, font installed,
// PC at ProgramOffset.
func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m.Reset()
	return m
}

// Reset returns the machine to its power-on state. The ROM must be loaded
// again afterwards.
func (m *Machine) Reset() {
	m.mem = [MemorySize]uint8{}
	m.v = [RegisterCount]uint8{}
	m.stack = [StackDepth]uint16{}
	m.pc = ProgramOffset
	m.i = 0
	m.sp = 0
	m.dt = 0
	m.st = 0
	m.keys = Keypad{}
	m.disp = Display{}
	m.ophistory = [OpHistoryNum]HistoryEntry{}
	m.ophistoryIndex = 0
	m.ophistoryLen = 0

	copy(m.mem[FontOffset:], characterSprites[:])

	if m.seeded {
		m.rng = rand.New(rand.NewSource(m.seed))
	}
}

// LoadROM copies rom verbatim into memory at ProgramOffset.
func (m *Machine) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrRomTooLarge, len(rom), MaxROMSize)
	}
	copy(m.mem[ProgramOffset:], rom)
	return nil
}

// Registers is a copy of the CPU registers for debuggers and overlays.
type Registers struct {
	PC uint16
	I  uint16
	SP uint8
	DT uint8
	ST uint8
	V  [RegisterCount]uint8
}

// Registers returns a snapshot of the CPU registers.
func (m *Machine) Registers() Registers {
	return Registers{PC: m.pc, I: m.i, SP: m.sp, DT: m.dt, ST: m.st, V: m.v}
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// ReadMemory returns the byte at addr.
func (m *Machine) ReadMemory(addr uint16) (uint8, error) {
	if int(addr) >= MemorySize {
		return 0, &Fault{Err: ErrMemoryOutOfBounds, PC: m.pc, Addr: addr}
	}
	return m.mem[addr], nil
}

// Display returns the frame buffer. The host clears its dirty flag after
// rendering.
func (m *Machine) Display() *Display {
	return &m.disp
}

// Skip advances PC past the current instruction without executing it.
func (m *Machine) Skip() {
	m.pc += 2
}
