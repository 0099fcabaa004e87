// Package dsp implements the low-level signal-processing primitives shared
// by every acoustic cavity in the synthesizer: a SIMD-padded circular
// buffer (LoopBuffer), a delay element built on top of it (DelayLine), and
// a rolling-average low-pass filter (LowPassFilter).
package dsp

import "golang.org/x/sys/cpu"

// Width is the number of float32 lanes every LoopBuffer's backing storage
// is padded to. It is chosen once at process start by probing the host's
// vector instruction set and never changes afterwards — per-call dispatch
// would pay the branch cost on every sample for no benefit, since the
// width is a property of the CPU, not of any particular filter.
//
// This mirrors a real SIMD backend's register width (SSE2/SSE4.1 operate
// on 128-bit registers = 4 float32 lanes, AVX2 on 256-bit = 8 lanes) but
// the rolling sum itself (see LowPassFilter.Filter) is a width-unrolled
// plain Go loop rather than hand-written vector assembly: no library in
// this module's dependency graph exposes portable SIMD intrinsics to pure
// Go, and the property that actually matters for correctness — storage
// length is a multiple of Width, with the tail zeroed — holds regardless
// of whether the accumulation is literally vectorized.
var Width = detectWidth()

func detectWidth() int {
	if cpu.X86.HasAVX2 {
		return 8
	}
	if cpu.X86.HasSSE41 || cpu.X86.HasSSE2 {
		return 4
	}
	return 1
}

// paddedLen returns the smallest multiple of Width that is >= n.
func paddedLen(n int) int {
	if n <= 0 {
		return Width
	}
	return ((n-1)/Width + 1) * Width
}
