package emulator

import "github.com/retroenv/retrochip8/internal/chip8"

// Headless is a frontend without input or output, for batch runs.
// It counts the frames it was asked to render.
type Headless struct {
	Rendered int
}

// Keys returns a keypad with no key pressed.
func (h *Headless) Keys() (chip8.Keypad, error) {
	return chip8.Keypad{}, nil
}

// Render counts the rendered frame.
func (h *Headless) Render(*chip8.Display) error {
	h.Rendered++
	return nil
}

// SetTone does nothing.
func (h *Headless) SetTone(bool) {}
