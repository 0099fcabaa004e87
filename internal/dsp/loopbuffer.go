package dsp

import "math"

// LoopBuffer is a fixed-length ring of float32 samples with a monotonically
// increasing write cursor. Its backing storage is padded to a multiple of
// Width so LowPassFilter can sum it with a width-unrolled loop without a
// bounds check on every lane; the padding is always zero and the logical
// length (Len) — not the storage length — is what normalizes an average.
//
// Delay is the authoritative field when a LoopBuffer is (de)serialized: the
// sample count is always re-derived from Delay against the target sample
// rate on load (see internal/config), never stored directly.
type LoopBuffer struct {
	Delay float64 // seconds

	len  int       // logical length in samples, >= 1
	data []float32 // len(data) % Width == 0, len(data) >= len
	pos  uint64    // write cursor, wraps modulo len on index
}

// NewLoopBuffer allocates a LoopBuffer holding delaySeconds worth of
// samples at sampleRate, per spec: len = round(delay * sample_rate), >= 1.
func NewLoopBuffer(delaySeconds float64, sampleRate int) *LoopBuffer {
	n := int(math.Round(delaySeconds * float64(sampleRate)))
	if n < 1 {
		n = 1
	}
	return newLoopBufferLen(delaySeconds, n)
}

// NewLoopBufferSamples allocates a LoopBuffer of an exact sample length,
// deriving Delay from sampleRate. Used where a caller already computed the
// sample count (e.g. LowPassFilter's ceil(len) buffer).
func NewLoopBufferSamples(lenSamples int, sampleRate int) *LoopBuffer {
	if lenSamples < 1 {
		lenSamples = 1
	}
	delay := float64(lenSamples) / float64(sampleRate)
	return newLoopBufferLen(delay, lenSamples)
}

func newLoopBufferLen(delaySeconds float64, lenSamples int) *LoopBuffer {
	return &LoopBuffer{
		Delay: delaySeconds,
		len:   lenSamples,
		data:  make([]float32, paddedLen(lenSamples)),
	}
}

// Len returns the logical (unpadded) length in samples.
func (b *LoopBuffer) Len() int { return b.len }

// Push writes v at the current cursor position. Does not advance; the
// waveguide contract is pop → compute → push → advance within one sample.
func (b *LoopBuffer) Push(v float32) {
	b.data[int(b.pos%uint64(b.len))] = v
}

// Pop returns the value in the slot after the cursor, written len-1
// advances ago — the slot that will be overwritten next after Advance.
func (b *LoopBuffer) Pop() float32 {
	return b.data[int((b.pos+1)%uint64(b.len))]
}

// Advance moves the write cursor forward by one sample.
func (b *LoopBuffer) Advance() {
	b.pos++
}

// Reset zeroes all storage (including the SIMD padding tail) and rewinds
// the cursor to zero. Configuration (Delay, len) is untouched.
func (b *LoopBuffer) Reset() {
	for i := range b.data {
		b.data[i] = 0
	}
	b.pos = 0
}
