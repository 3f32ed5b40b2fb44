package chip8

import "fmt"

// HistoryEntry is one executed instruction.
type HistoryEntry struct {
	PC     uint16
	Opcode uint16
}

func (h HistoryEntry) String() string {
	return fmt.Sprintf("%03X-%04X %s", h.PC, h.Opcode, Disassemble(h.Opcode))
}

func (m *Machine) record(pc, op uint16) {
	m.ophistory[m.ophistoryIndex] = HistoryEntry{PC: pc, Opcode: op}
	m.ophistoryIndex = (m.ophistoryIndex + 1) % OpHistoryNum
	if m.ophistoryLen < OpHistoryNum {
		m.ophistoryLen++
	}
}

// History returns up to the last OpHistoryNum executed instructions, oldest
// first.
func (m *Machine) History() []HistoryEntry {
	out := make([]HistoryEntry, 0, m.ophistoryLen)
	start := (m.ophistoryIndex - m.ophistoryLen + OpHistoryNum) % OpHistoryNum
	for i := 0; i < m.ophistoryLen; i++ {
		out = append(out, m.ophistory[(start+i)%OpHistoryNum])
	}
	return out
}
