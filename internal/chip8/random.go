package chip8

import "math/rand/v2"

// RandomSource supplies the bytes used by the random-masked instruction.
type RandomSource interface {
	RandomByte() byte
}

// Random is the default RandomSource backed by a PCG generator.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random source that produces a reproducible sequence for the given seed.
func NewRandom(seed uint64) *Random {
	return &Random{
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// RandomByte returns a byte drawn uniformly from [0, 255].
func (r *Random) RandomByte() byte {
	return byte(r.rng.UintN(256))
}

// FixedRandom returns the bytes of its sequence in order and wraps around.
// An empty sequence always returns 0.
type FixedRandom struct {
	Sequence []byte
	next     int
}

// RandomByte returns the next byte of the sequence.
func (f *FixedRandom) RandomByte() byte {
	if len(f.Sequence) == 0 {
		return 0
	}
	b := f.Sequence[f.next%len(f.Sequence)]
	f.next++
	return b
}
