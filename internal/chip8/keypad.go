package chip8

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// Keypad is a snapshot of the hex keypad state, indexed 0x0-0xF.
// It is passed by value so the interpreter always sees a consistent state
// for the duration of one step.
type Keypad [KeyCount]bool

// Pressed returns whether the key is held down. Only the low nibble of key is used.
func (k Keypad) Pressed(key byte) bool {
	return k[key&0x0F]
}

// FirstPressed returns the lowest indexed pressed key.
func (k Keypad) FirstPressed() (byte, bool) {
	for i, pressed := range k {
		if pressed {
			return byte(i), true
		}
	}
	return 0, false
}
