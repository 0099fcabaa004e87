// Package engine implements the acoustic simulation core of the
// synthesizer: the per-cylinder waveguide model, the muffler's straight
// pipe and side-branch elements, the crankshaft cycle functions, and the
// top-level Engine aggregate that ties them together one sample at a
// time. It deliberately knows nothing about audio devices, volumes, or
// DC blocking — those live one layer up, in internal/synth, which drives
// Engine.Step once per output sample.
package engine

import "github.com/DasEtwas/enginesound/internal/dsp"

// Engine is the top-level acoustic aggregate: a bank of cylinders feeding
// a shared muffler, an intake-noise source, and the three low-pass filters
// that smooth the intake noise, crankshaft jitter, and the summed engine
// vibration. RPM and the valve
// cam shifts are live-tunable parameters; CrankshaftPos, ExhaustCollector
// and IntakeCollector are running state reset to zero by Reset.
type Engine struct {
	RPM float32

	Cylinders []*Cylinder
	Muffler   Muffler

	IntakeNoise       NoiseSource
	IntakeNoiseFactor float32
	IntakeNoiseLP     *dsp.LowPassFilter

	EngineVibrationFilter *dsp.LowPassFilter

	IntakeValveShift  float32 // [-0.5, 0.5], added before frac per the resolved sign convention
	ExhaustValveShift float32

	CrankshaftFluctuation   float32
	CrankshaftFluctuationLP *dsp.LowPassFilter

	// running state, zeroed by Reset
	CrankshaftPos    float32
	ExhaustCollector float32
	IntakeCollector  float32
}

// Step advances the crankshaft by inc (computed by the caller from RPM,
// sample rate, and the 4-stroke timing constant) and performs one full
// pop/push cycle across every cylinder and the muffler. It returns the
// per-sample intake contribution, vibration contribution, and muffler
// exhaust-side contribution that the caller (internal/synth's Generator)
// mixes with its own volumes, plus whether any waveguide in the graph
// dampened this sample.
//
// Every waveguide in the graph is popped before any is pushed, matching
// the cooperative scheduling contract the whole synthesis model depends
// on for correctness, not just performance.
func (e *Engine) Step(inc float32) (intakeContribution, vibration, exhaustContribution float32, dampened bool) {
	e.CrankshaftPos = frac(e.CrankshaftPos + inc)

	intakeNoise := e.IntakeNoiseLP.Filter(e.IntakeNoise.Step()) * e.IntakeNoiseFactor
	crankJitter := e.CrankshaftFluctuationLP.Filter(e.IntakeNoise.Step())

	numCyl := float32(len(e.Cylinders))
	lastExhaustCollector := e.ExhaustCollector / numCyl
	e.ExhaustCollector = 0
	e.IntakeCollector = 0

	crankPos := e.CrankshaftPos + e.CrankshaftFluctuation*crankJitter

	var engineVibration float32
	var anyDampened bool

	// pop phase
	for _, cyl := range e.Cylinders {
		in, ex, vib, d := cyl.Pop(crankPos, lastExhaustCollector, e.IntakeValveShift, e.ExhaustValveShift)
		e.IntakeCollector += in
		e.ExhaustCollector += ex
		engineVibration += vib
		anyDampened = anyDampened || d
	}

	spA, spB, dSP := e.Muffler.StraightPipe.Pop()
	anyDampened = anyDampened || dSP

	var mufA, mufB float32
	for _, el := range e.Muffler.Elements {
		a, b, d := el.Pop()
		mufA += a
		mufB += b
		anyDampened = anyDampened || d
	}

	// push phase
	for _, cyl := range e.Cylinders {
		cylIntakeValve := intakeValve(frac(crankPos + cyl.CrankOffset))
		cyl.Push(e.IntakeCollector/numCyl + intakeNoise*cylIntakeValve)
	}

	e.Muffler.StraightPipe.Push(e.ExhaustCollector, mufA)
	e.ExhaustCollector += spA

	numElements := float32(len(e.Muffler.Elements))
	for _, el := range e.Muffler.Elements {
		el.Push(spB/numElements, 0)
	}

	engineVibration = e.EngineVibrationFilter.Filter(engineVibration)

	return e.IntakeCollector, engineVibration, mufB, anyDampened
}

// Reset zeroes every waveguide, filter, and running scalar. RPM, valve
// shifts, crankshaft fluctuation amount, and cylinder/muffler
// configuration are untouched.
func (e *Engine) Reset() {
	for _, cyl := range e.Cylinders {
		cyl.Reset()
	}
	e.Muffler.Reset()
	e.IntakeNoiseLP.Reset()
	e.EngineVibrationFilter.Reset()
	e.CrankshaftFluctuationLP.Reset()
	e.CrankshaftPos = 0
	e.ExhaustCollector = 0
	e.IntakeCollector = 0
}
