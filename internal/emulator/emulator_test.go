package emulator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// recordingFrontend replays a fixed key sequence and records output calls.
type recordingFrontend struct {
	keys     []chip8.Keypad
	quitAt   int
	polled   int
	rendered int
	tones    []bool
}

func (f *recordingFrontend) Keys() (chip8.Keypad, error) {
	f.polled++
	if f.quitAt > 0 && f.polled >= f.quitAt {
		return chip8.Keypad{}, ErrQuit
	}
	if len(f.keys) == 0 {
		return chip8.Keypad{}, nil
	}
	return f.keys[(f.polled-1)%len(f.keys)], nil
}

func (f *recordingFrontend) Render(*chip8.Display) error {
	f.rendered++
	return nil
}

func (f *recordingFrontend) SetTone(active bool) {
	f.tones = append(f.tones, active)
}

func newMachine(t *testing.T, words ...uint16) *chip8.Chip8 {
	t.Helper()
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	vm := chip8.New(chip8.WithRandom(&chip8.FixedRandom{}))
	assert.NoError(t, vm.Load(rom))
	return vm
}

func TestRunFrame_StepsPerFrame(t *testing.T) {
	// ADD V0, $01; JP $200
	vm := newMachine(t, 0x7001, 0x1200)
	emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 600})

	assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
	// 10 steps: 5 additions and 5 jumps
	assert.Equal(t, uint16(0x200), vm.PC())
	assert.Equal(t, byte(5), vm.Snapshot().V[0])
	assert.Equal(t, 1, emu.Frames())
}

func TestRunFrame_CarriesRemainder(t *testing.T) {
	vm := newMachine(t, 0x7001, 0x1200)
	emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 90})

	// 1.5 steps per frame alternate between 1 and 2 steps
	assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
	assert.Equal(t, uint16(0x202), vm.PC())
	assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
	assert.Equal(t, uint16(0x202), vm.PC())

	for range 2 {
		assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
	}
	// 6 steps: 3 additions
	assert.Equal(t, byte(3), vm.Snapshot().V[0])
}

func TestRunFrame_TicksTimersOncePerFrame(t *testing.T) {
	// LD V0, $05; LD DT, V0; LD ST, V0; JP $206
	vm := newMachine(t, 0x6005, 0xF015, 0xF018, 0x1206)
	emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 6000})

	assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
	assert.Equal(t, byte(4), vm.DelayTimer())
	assert.Equal(t, byte(4), vm.SoundTimer())

	for range 10 {
		assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
	}
	assert.Equal(t, byte(0), vm.DelayTimer())
	assert.False(t, vm.SoundActive())
}

func TestRunFrame_ErrorPolicy(t *testing.T) {
	t.Run("halt", func(t *testing.T) {
		vm := newMachine(t, 0x6001, 0xFFFF, 0x6002)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 180, ErrorPolicy: options.ErrorPolicyHalt})

		err := emu.RunFrame(chip8.Keypad{})
		assert.True(t, errors.Is(err, chip8.ErrUnsupportedOpcode))
		assert.Equal(t, uint16(0x202), vm.PC())
	})

	t.Run("skip", func(t *testing.T) {
		vm := newMachine(t, 0x6001, 0xFFFF, 0x6002)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 180, ErrorPolicy: options.ErrorPolicySkip})

		assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
		assert.Equal(t, uint16(0x206), vm.PC())
		assert.Equal(t, byte(2), vm.Snapshot().V[0])
	})

	t.Run("skip does not hide stack faults", func(t *testing.T) {
		vm := newMachine(t, 0x00EE)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 60, ErrorPolicy: options.ErrorPolicySkip})

		err := emu.RunFrame(chip8.Keypad{})
		assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
	})
}

func TestRunFrame_Trace(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Level = log.DebugLevel
	cfg.Output = &buf
	cfg.TimeFormat = "-"

	// CLS; JP $202
	vm := newMachine(t, 0x00E0, 0x1202)
	emu := New(log.NewWithConfig(cfg), vm, options.Emulator{Speed: 120, Trace: true})

	assert.NoError(t, emu.RunFrame(chip8.Keypad{}))
	assert.Equal(t, uint16(0x202), vm.PC())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"instruction":"cls"`)
	assert.NotContains(t, lines[0], `"flow"`)
	assert.Contains(t, lines[1], `"instruction":"jp $202"`)
	assert.Contains(t, lines[1], `"flow":"jump"`)
	assert.Contains(t, lines[1], `"target":"0x0202"`)
}

func TestRun(t *testing.T) {
	t.Run("frame limit", func(t *testing.T) {
		// CLS; LD V0, $02; LD ST, V0; JP $206
		vm := newMachine(t, 0x00E0, 0x6002, 0xF018, 0x1206)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 240, Frames: 5})
		frontend := &recordingFrontend{}

		assert.NoError(t, emu.Run(context.Background(), frontend))
		assert.Equal(t, 5, emu.Frames())
		assert.True(t, emu.FrameLimitReached())
		assert.Equal(t, 1, frontend.rendered)
		// tone on, tone off after the timer expired, off again on exit
		assert.Equal(t, []bool{true, false, false}, frontend.tones)
	})

	t.Run("frontend quit", func(t *testing.T) {
		vm := newMachine(t, 0x1200)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 60})
		frontend := &recordingFrontend{quitAt: 3}

		assert.NoError(t, emu.Run(context.Background(), frontend))
		assert.Equal(t, 2, emu.Frames())
	})

	t.Run("wait for key", func(t *testing.T) {
		// LD V3, K; JP $202
		vm := newMachine(t, 0xF30A, 0x1202)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 120, Frames: 3})
		frontend := &recordingFrontend{keys: []chip8.Keypad{{}, {}, {0xB: true}}}

		assert.NoError(t, emu.Run(context.Background(), frontend))
		assert.Equal(t, byte(0xB), vm.Snapshot().V[3])
	})

	t.Run("cancelled", func(t *testing.T) {
		vm := newMachine(t, 0x1200)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 60, Throttle: true})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := emu.Run(ctx, &Headless{})
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("halt error", func(t *testing.T) {
		vm := newMachine(t, 0x0000)
		emu := New(log.NewTestLogger(t), vm, options.Emulator{Speed: 60, ErrorPolicy: options.ErrorPolicyHalt})

		err := emu.Run(context.Background(), &Headless{})
		assert.True(t, errors.Is(err, chip8.ErrUnsupportedOpcode))
	})
}
