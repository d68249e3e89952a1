// Package window implements the desktop frontend using ebiten for graphics
// and input and oto for the buzzer.
package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/frontend/tone"
	"github.com/retroenv/retrogolib/log"
)

// keymap maps the host keyboard 4x4 block 1234/QWER/ASDF/ZXCV to the hex keypad
// layout 123C/456D/789E/A0BF.
var keymap = [chip8.KeyCount]ebiten.Key{
	0x1: ebiten.Key1, 0x2: ebiten.Key2, 0x3: ebiten.Key3, 0xC: ebiten.Key4,
	0x4: ebiten.KeyQ, 0x5: ebiten.KeyW, 0x6: ebiten.KeyE, 0xD: ebiten.KeyR,
	0x7: ebiten.KeyA, 0x8: ebiten.KeyS, 0x9: ebiten.KeyD, 0xE: ebiten.KeyF,
	0xA: ebiten.KeyZ, 0x0: ebiten.KeyX, 0xB: ebiten.KeyC, 0xF: ebiten.KeyV,
}

// RGBA colors of lit and unlit pixels.
var (
	colorOn  = [4]byte{0xE0, 0xF0, 0xD0, 0xFF}
	colorOff = [4]byte{0x10, 0x18, 0x10, 0xFF}
)

// Compile-time check to ensure Window implements emulator.Frontend and ebiten.Game.
var (
	_ emulator.Frontend = (*Window)(nil)
	_ ebiten.Game       = (*Window)(nil)
)

// Window runs the emulator inside the ebiten game loop, which calls Update at 60 Hz.
type Window struct {
	ctx    context.Context
	logger *log.Logger
	emu    *emulator.Emulator
	scale  int

	pixels    []byte
	offscreen *ebiten.Image
	beep      *tone.SquareWave
	player    *oto.Player
	err       error
}

// New returns a window frontend for the emulator. The window is opened by Run.
func New(ctx context.Context, logger *log.Logger, emu *emulator.Emulator, scale int) *Window {
	return &Window{
		ctx:    ctx,
		logger: logger,
		emu:    emu,
		scale:  scale,
		pixels: make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*4),
		beep:   tone.NewSquareWave(tone.Frequency),
	}
}

// Run opens the window and blocks until it is closed, the frame limit is
// reached or the emulation fails. Audio failures are logged and leave the
// emulation running without sound.
func (w *Window) Run() error {
	if err := w.openAudio(); err != nil {
		w.logger.Warn("Audio not available", log.Err(err))
	}
	defer w.closeAudio()

	w.fill(nil)
	ebiten.SetWindowTitle(app.Name)
	ebiten.SetWindowSize(chip8.DisplayWidth*w.scale, chip8.DisplayHeight*w.scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(emulator.FrameRate)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return w.err
}

func (w *Window) openAudio() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   tone.SampleRate,
		ChannelCount: tone.ChannelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	w.player = ctx.NewPlayer(w.beep)
	w.player.SetVolume(0.5)
	w.player.Play()
	return nil
}

func (w *Window) closeAudio() {
	if w.player == nil {
		return
	}
	w.beep.SetActive(false)
	if err := w.player.Close(); err != nil {
		w.logger.Warn("Closing audio player failed", log.Err(err))
	}
}

// Update advances the emulation by one frame.
func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}

	keys, err := w.Keys()
	if err != nil {
		return ebiten.Termination
	}

	if err := w.emu.RunFrame(keys); err != nil {
		w.err = err
		return ebiten.Termination
	}
	if err := w.emu.Present(w); err != nil {
		w.err = err
		return ebiten.Termination
	}

	if w.emu.FrameLimitReached() {
		return ebiten.Termination
	}
	return nil
}

// Draw copies the last rendered frame to the screen.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.offscreen == nil {
		w.offscreen = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}
	w.offscreen.WritePixels(w.pixels)
	screen.DrawImage(w.offscreen, nil)
}

// Layout returns the native display resolution, ebiten scales it to the window.
func (w *Window) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth, chip8.DisplayHeight
}

// Keys returns the keypad state from the host keyboard. Escape closes the window.
func (w *Window) Keys() (chip8.Keypad, error) {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return chip8.Keypad{}, emulator.ErrQuit
	}

	var keys chip8.Keypad
	for i, key := range keymap {
		keys[i] = ebiten.IsKeyPressed(key)
	}
	return keys, nil
}

// Render converts the display to RGBA pixels for the next Draw call.
func (w *Window) Render(display *chip8.Display) error {
	if display == nil {
		return errors.New("missing display")
	}
	w.fill(display)
	return nil
}

// SetTone starts or stops the beep.
func (w *Window) SetTone(active bool) {
	w.beep.SetActive(active)
}

// fill converts the display to RGBA pixels, a nil display results in a blank frame.
func (w *Window) fill(display *chip8.Display) {
	for y := range chip8.DisplayHeight {
		for x := range chip8.DisplayWidth {
			color := colorOff
			if display != nil && display.Pixel(x, y) {
				color = colorOn
			}
			offset := (y*chip8.DisplayWidth + x) * 4
			copy(w.pixels[offset:offset+4], color[:])
		}
	}
}
