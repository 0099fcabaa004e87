package dsp

import "math"

// LowPassFilter is a moving-average low-pass filter with a (possibly
// fractional) window length. Delay (= 1/cutoff frequency, in seconds) is
// the authoritative field when serialized; LenF (the derived window
// length in samples) and the backing LoopBuffer are always recomputed
// against the target sample rate on load.
type LowPassFilter struct {
	Delay float64 // 1 / cutoff frequency, seconds

	lenF    float64 // clamp(sampleRate/freq, 1, sampleRate), may be fractional
	samples *LoopBuffer
}

// NewLowPassFilter builds a LowPassFilter from a cutoff frequency in Hz.
func NewLowPassFilter(freqHz float64, sampleRate int) *LowPassFilter {
	return newLowPassFilter(1.0/freqHz, sampleRate)
}

// NewLowPassFilterFromDelay builds a LowPassFilter from its serialized
// delay (1/cutoff, seconds) — the form config files persist.
func NewLowPassFilterFromDelay(delaySeconds float64, sampleRate int) *LowPassFilter {
	return newLowPassFilter(delaySeconds, sampleRate)
}

func newLowPassFilter(delaySeconds float64, sampleRate int) *LowPassFilter {
	freq := 1.0 / delaySeconds
	lenF := float64(sampleRate) / freq
	if lenF < 1 {
		lenF = 1
	}
	if lenF > float64(sampleRate) {
		lenF = float64(sampleRate)
	}
	return &LowPassFilter{
		Delay:   delaySeconds,
		lenF:    lenF,
		samples: NewLoopBufferSamples(int(math.Ceil(lenF)), sampleRate),
	}
}

// LenF returns the derived (possibly fractional) window length in samples.
func (f *LowPassFilter) LenF() float64 { return f.lenF }

// Filter pushes sample into the rolling window, advances the cursor, and
// returns the (possibly fractionally corrected) moving average.
func (f *LowPassFilter) Filter(sample float32) float32 {
	f.samples.Push(sample)
	f.samples.Advance()

	sum := rollingSum(f.samples.data)

	whole, frac := math.Modf(f.lenF)
	if frac != 0 {
		sum -= f.samples.data[int(whole)] * float32(1.0-frac)
	}
	return sum / float32(f.lenF)
}

// Reset zeroes the underlying window (including SIMD padding) and rewinds
// the cursor; Delay and the derived length are untouched.
func (f *LowPassFilter) Reset() { f.samples.Reset() }

// rollingSum adds up every padded slot of data (the padding tail is always
// zero so it never perturbs the sum) using a Width-lane unrolled
// accumulation chain — the same data-parallel shape a real SIMD horizontal
// add would use, see the Width doc comment in simd.go.
func rollingSum(data []float32) float32 {
	w := Width
	if w <= 1 || len(data) < w {
		var s float32
		for _, v := range data {
			s += v
		}
		return s
	}

	lanes := make([]float32, w)
	copy(lanes, data[:w])
	for i := w; i < len(data); i += w {
		chunk := data[i : i+w]
		for lane := 0; lane < w; lane++ {
			lanes[lane] += chunk[lane]
		}
	}

	var total float32
	for _, v := range lanes {
		total += v
	}
	return total
}
