package term

import (
	"time"

	"github.com/mnafees/chopper/v2/internal"
)

// HoldTime is how long a key counts as held after its last byte arrived.
// Terminals report no key releases, auto repeat keeps held keys alive.
const HoldTime = 150 * time.Millisecond

// Keypad turns terminal key presses into a held key snapshot.
type Keypad struct {
	hold    time.Duration
	pressed [internal.KeyCount]time.Time
}

// NewKeypad returns a keypad that releases keys hold after their last press.
func NewKeypad(hold time.Duration) *Keypad {
	return &Keypad{hold: hold}
}

// Press records the key mapped to r at time now. It returns false for runes
// that are not mapped to the keypad.
func (k *Keypad) Press(r rune, now time.Time) bool {
	key, ok := keymap(r)
	if !ok {
		return false
	}
	k.pressed[key] = now
	return true
}

// Snapshot returns the keys held at time now.
func (k *Keypad) Snapshot(now time.Time) internal.Keys {
	var keys internal.Keys
	for i, t := range k.pressed {
		if t.IsZero() {
			continue
		}
		keys[i] = now.Sub(t) < k.hold
	}
	return keys
}

// Maps keys from a QWERTY keyboard to the keypad used by CHIP-8
// +--------+--------+--------+--------+
// | 1 -> 1 | 2 -> 2 | 3 -> 3 | 4 -> C |
// +--------+--------+--------+--------+
// | Q -> 4 | W -> 5 | E -> 6 | R -> D |
// +--------+--------+--------+--------+
// | A -> 7 | S -> 8 | D -> 9 | F -> E |
// +--------+--------+--------+--------+
// | Z -> A | X -> 0 | C -> B | V -> F |
// +--------+--------+--------+--------+
func keymap(r rune) (uint8, bool) {
	switch r {
	case '1':
		return 0x1, true
	case '2':
		return 0x2, true
	case '3':
		return 0x3, true
	case '4':
		return 0xC, true
	case 'q', 'Q':
		return 0x4, true
	case 'w', 'W':
		return 0x5, true
	case 'e', 'E':
		return 0x6, true
	case 'r', 'R':
		return 0xD, true
	case 'a', 'A':
		return 0x7, true
	case 's', 'S':
		return 0x8, true
	case 'd', 'D':
		return 0x9, true
	case 'f', 'F':
		return 0xE, true
	case 'z', 'Z':
		return 0xA, true
	case 'x', 'X':
		return 0x0, true
	case 'c', 'C':
		return 0xB, true
	case 'v', 'V':
		return 0xF, true
	default:
		return 0, false
	}
}
