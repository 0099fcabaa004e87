// Package waveguide implements the digital waveguide model used for every
// acoustic cavity in the synthesizer (intake, exhaust, extractor, the
// muffler's straight pipe and its side-branch elements): a pair of
// counter-propagating delay lines with partial reflection at each end and
// a soft-clip limiter that bounds feedback energy.
package waveguide

import "github.com/DasEtwas/enginesound/internal/dsp"

// MaxAmp is the soft-clip damping threshold from spec §4.4. Chamber samples
// whose magnitude exceeds this are compressed through a monotonic, bounded
// curve rather than hard-clipped, so the cylinder/straight-pipe feedback
// loop cannot diverge even when user-supplied reflectivities approach ±1.
const MaxAmp = 20.0

// WaveGuide is a bidirectional delay line pair with reflection
// coefficients Alpha (at the chamber0 end) and Beta (at the chamber1 end).
// Alpha is commonly mutated every sample from a valve-opening function;
// Beta is a user parameter held fixed between parameter edits.
type WaveGuide struct {
	Chamber0, Chamber1 *dsp.DelayLine
	Alpha, Beta        float32

	c0Out, c1Out float32 // last popped values; Pop and Push are separate phases within one sample
}

// New builds a WaveGuide whose chambers both hold delaySamples samples.
func New(delaySamples int, alpha, beta float32, sampleRate int) *WaveGuide {
	return &WaveGuide{
		Chamber0: dsp.NewDelayLine(delaySamples, sampleRate),
		Chamber1: dsp.NewDelayLine(delaySamples, sampleRate),
		Alpha:    clamp1(alpha),
		Beta:     clamp1(beta),
	}
}

func clamp1(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// softClip compresses x through a monotonic, bounded curve once |x|
// exceeds MaxAmp; the sign is preserved and the curve approaches
// ±(1+MaxAmp) asymptotically, never reaching it.
func softClip(x float32) (clamped float32, dampened bool) {
	abs := x
	if abs < 0 {
		abs = -abs
	}
	if abs <= MaxAmp {
		return x, false
	}
	sign := float32(1.0)
	if x < 0 {
		sign = -1.0
	}
	return sign * (-1.0/(abs-MaxAmp+1.0) + 1.0 + MaxAmp), true
}

// Pop reads both chambers, applies soft-clip damping, and returns the
// alpha-side and beta-side outputs plus whether damping engaged on either
// side this sample. Must be called before Push within the same sample.
func (w *WaveGuide) Pop() (outAlphaSide, outBetaSide float32, dampened bool) {
	raw1 := w.Chamber1.Pop()
	raw0 := w.Chamber0.Pop()

	c1, d1 := softClip(raw1)
	c0, d0 := softClip(raw0)
	w.c1Out = c1
	w.c0Out = c0

	absAlpha := w.Alpha
	if absAlpha < 0 {
		absAlpha = -absAlpha
	}
	absBeta := w.Beta
	if absBeta < 0 {
		absBeta = -absBeta
	}

	return w.c1Out * (1 - absAlpha), w.c0Out * (1 - absBeta), d0 || d1
}

// Push feeds x0In/x1In into the waveguide along with the scattered
// feedback computed at the last Pop, then advances both chambers. Must be
// called after Pop within the same sample.
func (w *WaveGuide) Push(x0In, x1In float32) {
	c0In := w.c1Out*w.Alpha + x0In
	c1In := w.c0Out*w.Beta + x1In

	w.Chamber0.Push(c0In)
	w.Chamber1.Push(c1In)
	w.Chamber0.Advance()
	w.Chamber1.Advance()
}

// Reset zeroes both chambers (including SIMD padding) and the last-popped
// outputs. Alpha/Beta and chamber length are untouched.
func (w *WaveGuide) Reset() {
	w.Chamber0.Reset()
	w.Chamber1.Reset()
	w.c0Out = 0
	w.c1Out = 0
}

// Len returns the chamber length in samples (both chambers are always
// equal length).
func (w *WaveGuide) Len() int { return w.Chamber0.Len() }

// GetAlpha returns the chamber0-end reflection coefficient.
func (w *WaveGuide) GetAlpha() float32 { return w.Alpha }

// SetAlpha sets the chamber0-end reflection coefficient, as a cylinder's
// valve cam function does every sample.
func (w *WaveGuide) SetAlpha(alpha float32) { w.Alpha = alpha }

// GetBeta returns the chamber1-end reflection coefficient.
func (w *WaveGuide) GetBeta() float32 { return w.Beta }

// GetChanged returns a replacement WaveGuide if delaySamples, alpha or beta
// differ from the current configuration, carrying over a fading copy of
// each chamber's tail as a cosmetic courtesy against an audible pop on
// resize; returns nil if nothing changed.
func (w *WaveGuide) GetChanged(delaySamples int, alpha, beta float32, sampleRate int) *WaveGuide {
	alpha = clamp1(alpha)
	beta = clamp1(beta)
	if delaySamples == w.Len() && alpha == w.Alpha && beta == w.Beta {
		return nil
	}

	next := New(delaySamples, alpha, beta, sampleRate)
	fadeCopyTail(next.Chamber0, w.Chamber0)
	fadeCopyTail(next.Chamber1, w.Chamber1)
	return next
}

// fadeCopyTail copies min(dst, src length) samples from src into dst,
// reading src in pop order from its current cursor (so when src is longer
// than dst, its older stored samples are the ones copied) and scaling them
// linearly from 1 down to 1/n, so a resize does not produce an abrupt
// discontinuity in the cavity's stored energy. It advances src's cursor.
func fadeCopyTail(dst, src *dsp.DelayLine) {
	n := dst.Len()
	if src.Len() < n {
		n = src.Len()
	}
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		v := src.PopAndAdvance()
		g := float32(n-i) / float32(n)
		dst.Push(v * g)
		dst.Advance()
	}
}
