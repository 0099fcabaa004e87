// Package synth implements the Generator: the synthesis entry point that
// owns an Engine, applies master/submix volumes and DC blocking, and
// hands the result to an optional recorder. It is the layer a GUI thread
// and a generator worker thread contend over through a single
// coarse-grained lock (spec §5) — the audio callback never touches it.
package synth

import (
	"sync"

	"github.com/DasEtwas/enginesound/internal/dsp"
	"github.com/DasEtwas/enginesound/internal/engine"
)

// Recorder is the subset of internal/wavrecorder.Recorder that Generator
// depends on, kept as a narrow interface here to avoid a package cycle.
type Recorder interface {
	Record(samples []float32)
}

// Generator owns the acoustic Engine plus the mixing stage spec §4.6
// steps 14-16 describe: master volume, three independent submix volumes,
// and a DC-blocking filter. WaveguidesDampened and
// RecordingCurrentlyClipping are diagnostic flags reset at the start of
// every Generate call and ORed true during it.
type Generator struct {
	mu sync.RWMutex

	Engine *engine.Engine

	Volume                 float32
	IntakeVolume           float32
	ExhaustVolume          float32
	EngineVibrationsVolume float32

	dcLP *dsp.LowPassFilter

	SamplesPerSecond int
	Recorder         Recorder

	WaveguidesDampened         bool
	RecordingCurrentlyClipping bool
}

// New builds a Generator over an already-configured Engine. The DC
// blocker's cutoff is fixed at a delay of 1/4 second, per spec §3.
func New(e *engine.Engine, sampleRate int) *Generator {
	return &Generator{
		Engine:           e,
		Volume:           0.1,
		SamplesPerSecond: sampleRate,
		dcLP:             dsp.NewLowPassFilterFromDelay(0.25, sampleRate),
	}
}

// Generate fills buf with one block of synthesized audio. It takes the
// generator's exclusive lock for the whole call: every sample in buf
// observes a config mutation only if the GUI released the lock before
// Generate was called, never mid-call (spec §5's ordering guarantee).
func (g *Generator) Generate(buf []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.WaveguidesDampened = false
	g.RecordingCurrentlyClipping = false

	inc := g.Engine.RPM / (float32(g.SamplesPerSecond) * 120)

	for i := range buf {
		intake, vibration, exhaust, dampened := g.Engine.Step(inc)

		mix := g.Volume * (intake*g.IntakeVolume + vibration*g.EngineVibrationsVolume + exhaust*g.ExhaustVolume)
		out := mix - g.dcLP.Filter(mix)
		buf[i] = out

		g.WaveguidesDampened = g.WaveguidesDampened || dampened
	}

	if g.Recorder != nil {
		for _, s := range buf {
			if s > 1 || s < -1 {
				g.RecordingCurrentlyClipping = true
				break
			}
		}
		cp := make([]float32, len(buf))
		copy(cp, buf)
		g.Recorder.Record(cp)
	}
}

// Reset zeroes every waveguide, filter, and running scalar in the engine
// and the generator's own DC blocker. Configuration (volumes, RPM, valve
// shifts, cavity parameters) is untouched.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Engine.Reset()
	g.dcLP.Reset()
}

// WithLock runs fn while holding the generator's exclusive lock, for GUI
// code that mutates multiple parameters atomically (e.g. swapping a
// cylinder's waveguide after a cavity-length edit).
func (g *Generator) WithLock(fn func(e *engine.Engine)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.Engine)
}

// Snapshot returns a read-only copy of the flags surfaced to a UI,
// acquired under a read lock so it can run concurrently with other
// readers without contending with the generator worker beyond its own
// write sections.
func (g *Generator) Snapshot() (waveguidesDampened, recordingClipping bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.WaveguidesDampened, g.RecordingCurrentlyClipping
}
