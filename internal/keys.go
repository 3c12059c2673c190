package internal

// KeyCount is the number of keys on the hex keypad
const KeyCount = 16

// Keys is a snapshot of the hex keypad, indexed by key code 0x0-0xF
type Keys [KeyCount]bool

// Pressed reports whether key is held. Codes above 0xF are never held.
func (k Keys) Pressed(key uint8) bool {
	return int(key) < KeyCount && k[key]
}

// First returns the lowest held key code
func (k Keys) First() (uint8, bool) {
	for i := 0; i < KeyCount; i++ {
		if k[i] {
			return uint8(i), true
		}
	}
	return 0, false
}
