package chip8

// Keypad holds the pressed state of the 16 logical keys 0x0-0xF.
type Keypad [KeyCount]bool

// SetKeys replaces the keypad snapshot. Hosts call it before Step.
func (m *Machine) SetKeys(k Keypad) {
	m.keys = k
}

// Keys returns the current keypad snapshot.
func (m *Machine) Keys() Keypad {
	return m.keys
}

// Press marks key as held.
func (m *Machine) Press(key uint8) {
	m.keys[key&0x0f] = true
}

// Release marks key as up.
func (m *Machine) Release(key uint8) {
	m.keys[key&0x0f] = false
}

func (k *Keypad) pressed(key uint8) bool {
	return k[key&0x0f]
}

// firstPressed returns the lowest held key.
func (k *Keypad) firstPressed() (uint8, bool) {
	for i, v := range k {
		if v {
			return uint8(i), true
		}
	}
	return 0, false
}
