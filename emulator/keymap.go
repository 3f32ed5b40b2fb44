package emulator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tuboc/chip8/chip8"
)

// Keymap maps physical key names, lower case, to logical CHIP-8 keys.
type Keymap map[string]uint8

// DefaultLayout is the usual QWERTY arrangement of the hex keypad:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
var DefaultLayout = map[string]string{
	"1": "1", "2": "2", "3": "3", "c": "4",
	"4": "q", "5": "w", "6": "e", "d": "r",
	"7": "a", "8": "s", "9": "d", "e": "f",
	"a": "z", "0": "x", "b": "c", "f": "v",
}

// DefaultKeymap returns the keymap for DefaultLayout.
func DefaultKeymap() Keymap {
	k, err := ParseKeymap(DefaultLayout)
	if err != nil {
		panic(err)
	}
	return k
}

// ParseKeymap builds a keymap from a layout of logical key (hex digit) to
// physical key name. All 16 logical keys must be bound to distinct names.
func ParseKeymap(layout map[string]string) (Keymap, error) {
	k := Keymap{}
	for logical, name := range layout {
		v, err := strconv.ParseUint(logical, 16, 8)
		if err != nil || v >= chip8.KeyCount {
			return nil, fmt.Errorf("invalid logical key %q", logical)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return nil, fmt.Errorf("logical key %X has no physical key", v)
		}
		if prev, ok := k[name]; ok {
			return nil, fmt.Errorf("key %q bound to both %X and %X", name, prev, v)
		}
		k[name] = uint8(v)
	}
	if len(k) != chip8.KeyCount {
		return nil, fmt.Errorf("keymap binds %d keys, want %d", len(k), chip8.KeyCount)
	}
	return k, nil
}

// Lookup returns the logical key for a physical key name.
func (k Keymap) Lookup(name string) (uint8, bool) {
	v, ok := k[strings.ToLower(name)]
	return v, ok
}

// KeyRepeatDuration is how long a key stays held after a press event when
// the input device reports no releases.
const KeyRepeatDuration = time.Second / 5

// KeyLatch turns press-only input, such as a terminal, into a keypad
// snapshot by holding each key for a fixed duration after its last press.
type KeyLatch struct {
	hold  time.Duration
	until [chip8.KeyCount]time.Time
}

// NewKeyLatch returns a latch holding keys for hold. hold <= 0 means
// KeyRepeatDuration.
func NewKeyLatch(hold time.Duration) *KeyLatch {
	if hold <= 0 {
		hold = KeyRepeatDuration
	}
	return &KeyLatch{hold: hold}
}

// Press records a press of key at now.
func (l *KeyLatch) Press(key uint8, now time.Time) {
	l.until[key&0x0f] = now.Add(l.hold)
}

// Snapshot returns the keys held at now.
func (l *KeyLatch) Snapshot(now time.Time) chip8.Keypad {
	var k chip8.Keypad
	for i, t := range l.until {
		k[i] = now.Before(t)
	}
	return k
}
