package engine

import (
	"math/bits"
	"time"
)

// NoiseSource produces pseudo-random float32 samples in [-1, 1]. Modeled
// as a small interface rather than a concrete type so deterministic
// seedable sources can be substituted in tests for the production
// XorShiftNoise, which is deliberately non-reproducible across runs (it is
// an acoustic noise floor, not a test fixture).
type NoiseSource interface {
	Step() float32
}

// XorShiftNoise is a 128-bit xorshift PRNG seeded from wall-clock
// nanoseconds, used for intake noise and crankshaft jitter.
type XorShiftNoise struct {
	x, y, z, w uint32
}

// NewXorShiftNoise seeds a XorShiftNoise from the current time. One
// nanosecond clock read is split into its high and low 32-bit halves,
// which are rotated and XORed with distinct constants to fill all four
// state words, so a coarse clock value cannot zero out the state.
func NewXorShiftNoise() *XorShiftNoise {
	now := uint64(time.Now().UnixNano())
	hi := uint32(now >> 32)
	lo := uint32(now)
	return &XorShiftNoise{
		x: lo ^ 0x9e3779b9,
		y: hi ^ 0x85ebca6b,
		z: bits.RotateLeft32(lo, 13) ^ 0xc2b2ae35,
		w: bits.RotateLeft32(hi, 7) ^ 0x27d4eb2f,
	}
}

// NewSeededXorShiftNoise builds a deterministic XorShiftNoise for tests;
// production code always uses NewXorShiftNoise.
func NewSeededXorShiftNoise(seed uint32) *XorShiftNoise {
	x := &XorShiftNoise{x: seed | 1, y: 0x9e3779b9, z: 0x85ebca6b, w: 0xc2b2ae35}
	// warm up a few rounds so a low-entropy seed doesn't show in the first samples
	for i := 0; i < 8; i++ {
		x.next()
	}
	return x
}

func (x *XorShiftNoise) next() uint32 {
	t := x.x ^ (x.x << 11)
	x.x, x.y, x.z = x.y, x.z, x.w
	x.w = x.w ^ (x.w >> 19) ^ t ^ (t >> 8)
	return x.w
}

// Step returns u32/(u32max/2) - 1, mapping the full uint32 range to
// approximately [-1, 1].
func (x *XorShiftNoise) Step() float32 {
	const halfMax = float32(^uint32(0)) / 2
	return float32(x.next())/halfMax - 1
}
