package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStack(t *testing.T) {
	var s Stack

	_, err := s.Pop()
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	for i := range StackDepth {
		assert.NoError(t, s.Push(uint16(0x200+i*2)))
	}
	assert.Equal(t, StackDepth, s.Len())

	err = s.Push(0x300)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, StackDepth, s.Len())

	address, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200+(StackDepth-1)*2), address)
	assert.Equal(t, StackDepth-1, s.Len())
}
