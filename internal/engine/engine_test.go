package engine

import (
	"testing"

	"github.com/DasEtwas/enginesound/internal/dsp"
	"github.com/DasEtwas/enginesound/internal/waveguide"
)

const testSampleRate = 48000

func newTestCylinder(crankOffset float32) *Cylinder {
	return &Cylinder{
		CrankOffset:        crankOffset,
		Intake:             waveguide.New(64, 0, 0, testSampleRate),
		Exhaust:            waveguide.New(64, 0, 0, testSampleRate),
		Extractor:          waveguide.New(32, 0.5, 0.5, testSampleRate),
		PistonMotionFactor: 0,
		IgnitionFactor:     0,
		IgnitionTime:       0.1,
	}
}

func newTestEngine(cylinders []*Cylinder, numElements int) *Engine {
	var elements []WaveGuide
	for i := 0; i < numElements; i++ {
		elements = append(elements, waveguide.New(16, 0.5, 0.5, testSampleRate))
	}
	return &Engine{
		RPM:       0,
		Cylinders: cylinders,
		Muffler: Muffler{
			StraightPipe: waveguide.New(128, 0.5, 0.5, testSampleRate),
			Elements:     elements,
		},
		IntakeNoise:             NewSeededXorShiftNoise(1),
		IntakeNoiseFactor:       0,
		IntakeNoiseLP:           dsp.NewLowPassFilter(2000, testSampleRate),
		EngineVibrationFilter:   dsp.NewLowPassFilter(2000, testSampleRate),
		CrankshaftFluctuation:   0,
		CrankshaftFluctuationLP: dsp.NewLowPassFilter(2000, testSampleRate),
	}
}

// TestSingleCylinderSilentEngine mirrors spec scenario S1: with every
// emitter (piston motion, ignition, intake noise) at zero and the
// cylinder's valve reflectivities at zero, the engine must stay silent.
func TestSingleCylinderSilentEngine(t *testing.T) {
	cyl := newTestCylinder(0)
	e := newTestEngine([]*Cylinder{cyl}, 4)

	for i := 0; i < 1024; i++ {
		in, vib, ex, dampened := e.Step(0)
		if in != 0 || vib != 0 || ex != 0 {
			t.Fatalf("sample %d: expected silence, got in=%v vib=%v ex=%v", i, in, vib, ex)
		}
		if dampened {
			t.Fatalf("sample %d: unexpected dampening in silent engine", i)
		}
	}
}

// TestEngineProducesSoundWithIgnition mirrors S2: a driven cylinder with
// nonzero ignition/piston factors and a running crank should produce
// nonzero output within one second of samples.
func TestEngineProducesSoundWithIgnition(t *testing.T) {
	cyl := newTestCylinder(0)
	cyl.IgnitionFactor = 1
	cyl.PistonMotionFactor = 1
	cyl.ExhaustOpenRefl = 0.3
	cyl.ExhaustClosedRefl = -0.3
	cyl.IntakeOpenRefl = 0.3
	cyl.IntakeClosedRefl = -0.3

	e := newTestEngine([]*Cylinder{cyl}, 4)

	const inc = float32(3000) / (testSampleRate * 120)

	var sawNonZero bool
	for i := 0; i < testSampleRate; i++ {
		in, vib, ex, _ := e.Step(inc)
		if in != 0 || vib != 0 || ex != 0 {
			sawNonZero = true
		}
	}
	if !sawNonZero {
		t.Fatalf("expected a driven engine to produce nonzero output within one second")
	}
}

// TestEngineResetMatchesFreshEngine checks spec property 5: generate,
// reset, and the engine's next step must match a freshly built engine's
// first step (using a fixed seed so noise is reproducible across the two
// engines, as the test-only seeded source allows).
func TestEngineResetMatchesFreshEngine(t *testing.T) {
	build := func() *Engine {
		cyl := newTestCylinder(0)
		cyl.IgnitionFactor = 1
		cyl.PistonMotionFactor = 1
		cyl.ExhaustOpenRefl = 0.4
		cyl.ExhaustClosedRefl = -0.2
		cyl.IntakeOpenRefl = 0.4
		cyl.IntakeClosedRefl = -0.2
		e := newTestEngine([]*Cylinder{cyl}, 4)
		e.IntakeNoise = NewSeededXorShiftNoise(42)
		e.IntakeNoiseFactor = 0.2
		return e
	}

	const inc = float32(3000) / (testSampleRate * 120)

	fresh := build()
	freshIn, freshVib, freshEx, _ := fresh.Step(inc)

	warm := build()
	for i := 0; i < 5000; i++ {
		warm.Step(inc)
	}
	warm.Reset()
	warm.IntakeNoise = NewSeededXorShiftNoise(42)

	in, vib, ex, _ := warm.Step(inc)
	if in != freshIn || vib != freshVib || ex != freshEx {
		t.Fatalf("reset engine diverged from fresh engine: got (%v,%v,%v) want (%v,%v,%v)", in, vib, ex, freshIn, freshVib, freshEx)
	}
}
