package terminal

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrogolib/assert"
)

func newTestFrontend(input ...byte) *Frontend {
	f := &Frontend{input: make(chan byte, 64)}
	for _, b := range input {
		f.input <- b
	}
	return f
}

func TestWriteFrame(t *testing.T) {
	vm := chip8.New(chip8.WithRandom(&chip8.FixedRandom{}))
	// LD I, glyph 0 at $050; DRW V0, V0, 1 draws the top row of the glyph 0
	assert.NoError(t, vm.Load([]byte{0xA0, 0x50, 0xD0, 0x01}))
	assert.NoError(t, vm.Step(chip8.Keypad{}))
	assert.NoError(t, vm.Step(chip8.Keypad{}))

	var buf bytes.Buffer
	assert.NoError(t, WriteFrame(&buf, vm.Display()))

	lines := strings.Split(buf.String(), "\r\n")
	assert.Len(t, lines, chip8.DisplayHeight/2+1)
	assert.Equal(t, "▀▀▀▀", string([]rune(lines[0])[:4]))
	assert.Equal(t, " ", string([]rune(lines[0])[4:5]))
	assert.Equal(t, strings.Repeat(" ", chip8.DisplayWidth), lines[1])
	assert.Empty(t, lines[len(lines)-1])
}

func TestKeys_Mapping(t *testing.T) {
	tests := []struct {
		input byte
		key   byte
	}{
		{'1', 0x1}, {'4', 0xC}, {'q', 0x4}, {'R', 0xD},
		{'a', 0x7}, {'f', 0xE}, {'x', 0x0}, {'V', 0xF},
	}

	for _, tt := range tests {
		f := newTestFrontend(tt.input)
		keys, err := f.Keys()
		assert.NoError(t, err)
		assert.True(t, keys.Pressed(tt.key))
	}
}

func TestKeys_Hold(t *testing.T) {
	f := newTestFrontend('w')

	for range holdFrames {
		keys, err := f.Keys()
		assert.NoError(t, err)
		assert.True(t, keys.Pressed(0x5))
	}

	keys, err := f.Keys()
	assert.NoError(t, err)
	_, pressed := keys.FirstPressed()
	assert.False(t, pressed)
}

func TestKeys_Quit(t *testing.T) {
	for _, b := range []byte{keyCtrlC, keyEscape} {
		f := newTestFrontend('1', b)
		_, err := f.Keys()
		assert.True(t, errors.Is(err, emulator.ErrQuit))
	}
}

func TestKeys_ClosedInput(t *testing.T) {
	f := newTestFrontend('z')
	close(f.input)

	keys, err := f.Keys()
	assert.NoError(t, err)
	assert.True(t, keys.Pressed(0xA))
}

func TestSetTone(t *testing.T) {
	var buf bytes.Buffer
	f := newTestFrontend()
	f.out = bufio.NewWriter(&buf)

	f.SetTone(false)
	assert.Empty(t, buf.String())
	f.SetTone(true)
	assert.Equal(t, "\a", buf.String())
}

// waitInputClosed drains the key channel and fails if the reader does not exit.
func waitInputClosed(t *testing.T, f *Frontend) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-f.input:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("key reader still running after Close")
		}
	}
}

func TestClose_StopsKeyReader(t *testing.T) {
	t.Run("blocked read", func(t *testing.T) {
		r, w, err := os.Pipe()
		assert.NoError(t, err)
		t.Cleanup(func() {
			_ = r.Close()
			_ = w.Close()
		})

		var out bytes.Buffer
		f, err := New(r, &out)
		assert.NoError(t, err)

		assert.NoError(t, f.Close())
		waitInputClosed(t, f)
		assert.True(t, strings.HasSuffix(out.String(), "\x1b[?25h\r\n"))
	})

	t.Run("undrained keys", func(t *testing.T) {
		r, w, err := os.Pipe()
		assert.NoError(t, err)
		t.Cleanup(func() {
			_ = r.Close()
			_ = w.Close()
		})

		f, err := New(r, &bytes.Buffer{})
		assert.NoError(t, err)

		// more key presses than the channel buffers, nobody polls Keys
		_, err = w.Write(bytes.Repeat([]byte{'q'}, 256))
		assert.NoError(t, err)

		assert.NoError(t, f.Close())
		assert.NoError(t, f.Close())
		waitInputClosed(t, f)
	})
}
