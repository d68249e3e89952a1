// Package terminal implements a text mode frontend that draws the CHIP-8
// display with Unicode half blocks and reads the keypad from raw stdin.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/emulator"
	"golang.org/x/term"
)

// holdFrames is how long a key stays pressed after its last key press event.
// Terminals report no key release, auto repeat keeps held keys alive.
const holdFrames = 6

// Control bytes that end the session.
const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B
)

// ErrTerminalTooSmall is returned when the terminal cannot fit the display.
var ErrTerminalTooSmall = errors.New("terminal too small")

// keymap maps the host keyboard 4x4 block 1234/QWER/ASDF/ZXCV to the hex keypad
// layout 123C/456D/789E/A0BF.
var keymap = map[byte]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Compile-time check to ensure Frontend implements emulator.Frontend.
var _ emulator.Frontend = (*Frontend)(nil)

// Frontend is the terminal frontend.
type Frontend struct {
	in       *os.File
	out      *bufio.Writer
	input    chan byte
	done     chan struct{}
	stop     sync.Once
	hold     [chip8.KeyCount]int
	oldState *term.State
	quit     bool
}

// New puts the input terminal into raw mode, if it is one, and starts reading keys.
// Close must be called to restore the terminal.
func New(in *os.File, out io.Writer) (*Frontend, error) {
	f := &Frontend{
		in:    in,
		out:   bufio.NewWriter(out),
		input: make(chan byte, 64),
		done:  make(chan struct{}),
	}

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		width, height, err := term.GetSize(fd)
		if err == nil && (width < chip8.DisplayWidth || height < chip8.DisplayHeight/2+1) {
			return nil, fmt.Errorf("%w: %dx%d, need %dx%d", ErrTerminalTooSmall,
				width, height, chip8.DisplayWidth, chip8.DisplayHeight/2+1)
		}

		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("enabling raw mode: %w", err)
		}
		f.oldState = state
	}

	// hide cursor and clear screen
	_, _ = f.out.WriteString("\x1b[?25l\x1b[2J")
	go f.readInput()
	return f, nil
}

// Close stops the key reader and restores the terminal state.
func (f *Frontend) Close() error {
	f.stop.Do(func() {
		close(f.done)
		// unblocks a pending read on files that support deadlines
		_ = f.in.SetReadDeadline(time.Now())
	})

	_, _ = f.out.WriteString("\x1b[?25h\r\n")
	if err := f.out.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	if f.oldState != nil {
		if err := term.Restore(int(f.in.Fd()), f.oldState); err != nil {
			return fmt.Errorf("restoring terminal: %w", err)
		}
	}
	return nil
}

// readInput forwards key bytes until the input fails or Close is called.
func (f *Frontend) readInput() {
	defer close(f.input)

	buf := make([]byte, 16)
	for {
		n, err := f.in.Read(buf)
		for _, b := range buf[:n] {
			select {
			case f.input <- b:
			case <-f.done:
				return
			}
		}
		if err != nil {
			return
		}

		select {
		case <-f.done:
			return
		default:
		}
	}
}

// Keys drains pending key presses and returns the keypad state.
func (f *Frontend) Keys() (chip8.Keypad, error) {
	for i := range f.hold {
		if f.hold[i] > 0 {
			f.hold[i]--
		}
	}

	for pending := true; pending; {
		select {
		case b, ok := <-f.input:
			if !ok {
				pending = false
				break
			}
			f.press(b)
		default:
			pending = false
		}
	}

	if f.quit {
		return chip8.Keypad{}, emulator.ErrQuit
	}

	var keys chip8.Keypad
	for i, frames := range f.hold {
		keys[i] = frames > 0
	}
	return keys, nil
}

func (f *Frontend) press(b byte) {
	if b == keyCtrlC || b == keyEscape {
		f.quit = true
		return
	}
	if key, ok := keymap[toLower(b)]; ok {
		f.hold[key] = holdFrames
	}
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

// Render draws the display at the top left corner of the terminal.
func (f *Frontend) Render(display *chip8.Display) error {
	if _, err := f.out.WriteString("\x1b[H"); err != nil {
		return err
	}
	if err := WriteFrame(f.out, display); err != nil {
		return err
	}
	return f.out.Flush()
}

// SetTone rings the terminal bell when the tone starts.
func (f *Frontend) SetTone(active bool) {
	if !active {
		return
	}
	_, _ = f.out.WriteString("\a")
	_ = f.out.Flush()
}

// WriteFrame writes the display as text, two pixel rows per line using
// Unicode half blocks. Lines end with CRLF to render correctly in raw mode.
func WriteFrame(w io.Writer, display *chip8.Display) error {
	var sb strings.Builder
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := range chip8.DisplayWidth {
			top := display.Pixel(x, y)
			bottom := display.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
