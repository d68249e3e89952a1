package chip8

import "fmt"

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: unused interpreter area
//	0x050-0x09F: built-in hex digit glyphs (16 x 5 bytes)
//	0x200-0xFFF: program ROM and work RAM
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// GlyphStart is the address of the first glyph byte.
	GlyphStart = 0x050

	// GlyphSize is the number of bytes of a single hex digit glyph.
	GlyphSize = 5

	// ProgramStart is the address where programs are loaded and execution starts.
	ProgramStart = 0x200

	// MaxProgramSize is the largest ROM that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart
)

// Memory is the flat 4KB byte store of the machine.
type Memory struct {
	data [MemorySize]byte
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if int(address) >= MemorySize {
		return 0, addressError(int(address))
	}
	return m.data[address], nil
}

// Write stores a byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if int(address) >= MemorySize {
		return addressError(int(address))
	}
	m.data[address] = value
	return nil
}

// LoadGlyphs writes the built-in hex digit glyph table to GlyphStart.
func (m *Memory) LoadGlyphs() {
	copy(m.data[GlyphStart:], glyphs[:])
}

// LoadProgram writes the ROM to ProgramStart and clears the remaining program area.
// Memory is left untouched if the ROM does not fit.
func (m *Memory) LoadProgram(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrRomTooLarge, len(rom), MaxProgramSize)
	}
	area := m.data[ProgramStart:]
	n := copy(area, rom)
	clear(area[n:])
	return nil
}

// checkRange verifies that count bytes starting at address are addressable.
func checkRange(address uint16, count int) error {
	if end := int(address) + count - 1; count > 0 && end >= MemorySize {
		return addressError(end)
	}
	return nil
}
