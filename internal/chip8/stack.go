package chip8

// StackDepth is the number of return addresses the call stack can hold.
const StackDepth = 16

// Stack is the fixed depth return address stack.
// The pointer references the next free slot.
type Stack struct {
	entries [StackDepth]uint16
	pointer int
}

// Push stores a return address on the stack.
func (s *Stack) Push(address uint16) error {
	if s.pointer >= StackDepth {
		return ErrStackOverflow
	}
	s.entries[s.pointer] = address
	s.pointer++
	return nil
}

// Pop removes and returns the most recently pushed address.
func (s *Stack) Pop() (uint16, error) {
	if s.pointer == 0 {
		return 0, ErrStackUnderflow
	}
	s.pointer--
	return s.entries[s.pointer], nil
}

// Len returns the number of addresses on the stack.
func (s *Stack) Len() int {
	return s.pointer
}
