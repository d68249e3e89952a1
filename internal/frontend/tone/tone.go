// Package tone generates the buzzer signal as signed 16 bit little endian PCM.
package tone

import "sync/atomic"

// Default signal parameters.
const (
	SampleRate    = 44100
	ChannelCount  = 2
	Frequency     = 440
	amplitude     = 0x1800
	bytesPerFrame = ChannelCount * 2
)

// SquareWave is an endless square wave stream that outputs silence while muted.
// Reading and muting may happen from different goroutines.
type SquareWave struct {
	period   int // in sample frames
	position int
	active   atomic.Bool
}

// NewSquareWave returns a muted square wave of the given frequency.
func NewSquareWave(frequency int) *SquareWave {
	if frequency <= 0 {
		frequency = Frequency
	}
	period := SampleRate / frequency
	if period < 2 {
		period = 2
	}
	return &SquareWave{period: period}
}

// SetActive unmutes or mutes the signal.
func (s *SquareWave) SetActive(active bool) {
	s.active.Store(active)
}

// Active returns whether the signal is audible.
func (s *SquareWave) Active() bool {
	return s.active.Load()
}

// Read fills p with whole sample frames and never returns an error.
func (s *SquareWave) Read(p []byte) (int, error) {
	n := len(p) - len(p)%bytesPerFrame
	active := s.active.Load()

	for i := 0; i < n; i += bytesPerFrame {
		var sample int16
		if active {
			sample = amplitude
			if s.position >= s.period/2 {
				sample = -amplitude
			}
		}
		s.position = (s.position + 1) % s.period

		for ch := range ChannelCount {
			offset := i + ch*2
			p[offset] = byte(sample)
			p[offset+1] = byte(uint16(sample) >> 8)
		}
	}
	return n, nil
}
