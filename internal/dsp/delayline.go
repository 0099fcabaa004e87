package dsp

// DelayLine names the "delay element" role a LoopBuffer plays inside a
// WaveGuide, as opposed to the generic rolling-average window a
// LowPassFilter builds on the same primitive. The contract is identical;
// this type exists so waveguide code reads as "two delay lines" rather
// than "two loop buffers".
type DelayLine struct {
	Samples *LoopBuffer
}

// NewDelayLine builds a DelayLine of the given length in samples.
func NewDelayLine(lenSamples int, sampleRate int) *DelayLine {
	return &DelayLine{Samples: NewLoopBufferSamples(lenSamples, sampleRate)}
}

// NewDelayLineFromDelay builds a DelayLine from a delay in seconds.
func NewDelayLineFromDelay(delaySeconds float64, sampleRate int) *DelayLine {
	return &DelayLine{Samples: NewLoopBuffer(delaySeconds, sampleRate)}
}

func (d *DelayLine) Push(v float32) { d.Samples.Push(v) }
func (d *DelayLine) Pop() float32   { return d.Samples.Pop() }
func (d *DelayLine) Advance()       { d.Samples.Advance() }
func (d *DelayLine) Reset()         { d.Samples.Reset() }
func (d *DelayLine) Len() int       { return d.Samples.Len() }

// PopAndAdvance reads the oldest stored sample and advances past it in one
// step, used when draining a chamber's history independently of the
// regular pop/push/advance cooperative protocol (e.g. WaveGuide resize).
func (d *DelayLine) PopAndAdvance() float32 {
	v := d.Pop()
	d.Advance()
	return v
}
