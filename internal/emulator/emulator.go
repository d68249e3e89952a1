// Package emulator drives a CHIP-8 interpreter at a configurable instruction
// rate with a fixed 60 Hz timer and frame cadence, and connects it to a frontend.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// FrameRate is the timer and display refresh rate in Hz.
const FrameRate = 60

// ErrQuit is returned by a frontend that was closed by the user.
var ErrQuit = errors.New("frontend closed")

// Frontend presents the machine state to the user and supplies input.
type Frontend interface {
	// Keys returns the current keypad state. It returns ErrQuit once the
	// user asked to exit.
	Keys() (chip8.Keypad, error)
	// Render draws the display. It is only called when the display is dirty.
	Render(display *chip8.Display) error
	// SetTone starts or stops the tone.
	SetTone(active bool)
}

// Emulator schedules instruction steps and timer ticks of one machine.
type Emulator struct {
	logger *log.Logger
	vm     *chip8.Chip8
	opts   options.Emulator

	stepBudget int // instructions per second not yet executed, in 1/60 units
	frames     int
	tone       bool
}

// New returns an emulator driving the given machine.
func New(logger *log.Logger, vm *chip8.Chip8, opts options.Emulator) *Emulator {
	if opts.Speed <= 0 {
		opts.Speed = options.DefaultSpeed
	}
	return &Emulator{
		logger: logger,
		vm:     vm,
		opts:   opts,
	}
}

// Machine returns the driven machine.
func (e *Emulator) Machine() *chip8.Chip8 {
	return e.vm
}

// Frames returns the number of frames executed so far.
func (e *Emulator) Frames() int {
	return e.frames
}

// FrameLimitReached returns whether the configured frame limit has been reached.
func (e *Emulator) FrameLimitReached() bool {
	return e.opts.Frames > 0 && e.frames >= e.opts.Frames
}

// RunFrame executes the instructions of one 60 Hz frame followed by one timer tick.
// The instruction count per frame is Speed/60, remainders carry over to later frames.
func (e *Emulator) RunFrame(keys chip8.Keypad) error {
	e.stepBudget += e.opts.Speed
	steps := e.stepBudget / FrameRate
	e.stepBudget %= FrameRate

	for range steps {
		if err := e.step(keys); err != nil {
			return err
		}
	}

	e.vm.TickTimers()
	e.frames++
	return nil
}

func (e *Emulator) step(keys chip8.Keypad) error {
	pc := e.vm.PC()
	if e.opts.Trace {
		e.trace(pc)
	}

	err := e.vm.Step(keys)
	if err == nil {
		return nil
	}

	if e.opts.ErrorPolicy != options.ErrorPolicySkip {
		return fmt.Errorf("executing instruction at $%03X: %w", pc, err)
	}

	var opErr *chip8.UnsupportedOpcodeError
	if !errors.As(err, &opErr) {
		// only a failing instruction word can be skipped, a bad fetch or
		// stack fault would fail again on the next step
		return fmt.Errorf("executing instruction at $%03X: %w", pc, err)
	}

	e.logger.Warn("Skipping unsupported instruction",
		log.Hex("pc", pc),
		log.Hex("opcode", opErr.Word))
	e.vm.SkipInstruction()
	return nil
}

func (e *Emulator) trace(pc uint16) {
	memory := e.vm.Memory()
	hi, errHi := memory.Read(pc)
	lo, errLo := memory.Read(pc + 1)
	if errHi != nil || errLo != nil {
		return
	}

	opcode := uint16(hi)<<8 | uint16(lo)
	ins, _ := disasm.Decode(opcode)
	fields := []log.Field{
		log.Hex("pc", pc),
		log.Hex("opcode", opcode),
		log.String("instruction", ins.String()),
	}
	if flow := ins.Flow(); flow != disasm.FlowNone {
		fields = append(fields, log.String("flow", flow.String()))
	}
	if target, ok := ins.Target(); ok {
		fields = append(fields, log.Hex("target", target))
	}
	e.logger.Debug("Step", fields...)
}

// Present pushes the frame state to the frontend: the display if it changed
// and the tone state if it toggled.
func (e *Emulator) Present(frontend Frontend) error {
	display := e.vm.Display()
	if display.IsDirty() {
		if err := frontend.Render(display); err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
		display.ClearDirty()
	}

	if tone := e.vm.SoundActive(); tone != e.tone {
		e.tone = tone
		frontend.SetTone(tone)
	}
	return nil
}

// Run executes frames until the context is cancelled, the frontend quits,
// the frame limit is reached or an instruction fails under the halt policy.
// Frames are paced at 60 Hz unless throttling is disabled.
func (e *Emulator) Run(ctx context.Context, frontend Frontend) error {
	var tick <-chan time.Time
	if e.opts.Throttle {
		ticker := time.NewTicker(time.Second / FrameRate)
		defer ticker.Stop()
		tick = ticker.C
	}

	e.logger.Debug("Emulation started", log.Int("speed", e.opts.Speed))
	defer func() {
		frontend.SetTone(false)
		e.logger.Debug("Emulation stopped", log.Int("frames", e.frames))
	}()

	for !e.FrameLimitReached() {
		if err := waitFrame(ctx, tick); err != nil {
			return err
		}

		keys, err := frontend.Keys()
		if err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if err := e.RunFrame(keys); err != nil {
			return err
		}
		if err := e.Present(frontend); err != nil {
			return err
		}
	}
	return nil
}

// waitFrame blocks until the next frame is due. A nil tick channel does not block.
func waitFrame(ctx context.Context, tick <-chan time.Time) error {
	if tick == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tick:
		return nil
	}
}
