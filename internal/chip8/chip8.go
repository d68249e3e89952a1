// Package chip8 implements the CHIP-8 virtual machine: memory, registers,
// call stack, timers, framebuffer and the fetch-decode-execute cycle.
//
// The package performs no I/O. A host loads a ROM with Load, calls Step with
// a keypad snapshot as often as it wants instructions to run, calls
// TickTimers at 60 Hz and reads the Display and SoundActive state to render
// video and audio.
package chip8

import "time"

// RegisterCount is the number of general purpose registers V0-VF.
const RegisterCount = 16

// flagRegister is the index of VF, written as a side channel by
// arithmetic, shift and draw instructions.
const flagRegister = 0xF

// Chip8 is the interpreter core. It exclusively owns all machine state.
type Chip8 struct {
	memory  Memory
	display Display
	stack   Stack

	v  [RegisterCount]byte
	i  uint16
	pc uint16

	delayTimer byte
	soundTimer byte

	random RandomSource
}

// Option configures a new Chip8 instance.
type Option func(*Chip8)

// WithRandom sets the source used by the random-masked instruction.
func WithRandom(source RandomSource) Option {
	return func(c *Chip8) {
		c.random = source
	}
}

// New returns a machine in power-on state with the glyph table loaded.
func New(opts ...Option) *Chip8 {
	c := &Chip8{}
	for _, opt := range opts {
		opt(c)
	}
	if c.random == nil {
		c.random = NewRandom(uint64(time.Now().UnixNano()))
	}

	c.memory.LoadGlyphs()
	c.Reset()
	return c
}

// Reset returns registers, stack, timers and display to power-on state.
// Memory, including a loaded program, is kept.
func (c *Chip8) Reset() {
	c.v = [RegisterCount]byte{}
	c.i = 0
	c.pc = ProgramStart
	c.stack = Stack{}
	c.delayTimer = 0
	c.soundTimer = 0
	c.display = Display{}
}

// Load copies the ROM into memory at ProgramStart and resets the machine.
// On error the machine is left unchanged.
func (c *Chip8) Load(rom []byte) error {
	if err := c.memory.LoadProgram(rom); err != nil {
		return err
	}
	c.Reset()
	return nil
}

// TickTimers decrements the delay and sound timers by one, stopping at zero.
// The host calls it at a fixed 60 Hz, independent of the instruction rate.
func (c *Chip8) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// SoundActive returns whether the tone should be playing.
func (c *Chip8) SoundActive() bool {
	return c.soundTimer > 0
}

// DelayTimer returns the current delay timer value.
func (c *Chip8) DelayTimer() byte {
	return c.delayTimer
}

// SoundTimer returns the current sound timer value.
func (c *Chip8) SoundTimer() byte {
	return c.soundTimer
}

// Display returns the framebuffer.
func (c *Chip8) Display() *Display {
	return &c.display
}

// Memory returns the machine memory.
func (c *Chip8) Memory() *Memory {
	return &c.memory
}

// PC returns the program counter.
func (c *Chip8) PC() uint16 {
	return c.pc
}

// SkipInstruction advances the program counter past the current instruction.
func (c *Chip8) SkipInstruction() {
	c.pc += 2
}

// State is a copy of the register level machine state.
type State struct {
	PC         uint16
	I          uint16
	V          [RegisterCount]byte
	SP         int
	Stack      [StackDepth]uint16
	DelayTimer byte
	SoundTimer byte
}

// Snapshot returns a copy of the current register level state.
func (c *Chip8) Snapshot() State {
	return State{
		PC:         c.pc,
		I:          c.i,
		V:          c.v,
		SP:         c.stack.pointer,
		Stack:      c.stack.entries,
		DelayTimer: c.delayTimer,
		SoundTimer: c.soundTimer,
	}
}
