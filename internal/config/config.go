// Package config implements the .esc configuration format: a YAML
// document that stores only the *intent* of an Engine (cutoff
// frequencies as delays in seconds, cavity lengths as delays in
// seconds, reflectivities, RPM) and never the *derived* runtime state
// (buffer contents, SIMD-padded storage sizes). Loading always
// reconstructs every LowPassFilter and DelayLine against the target
// sample rate, per spec §6 and the original project's fix_engine pass.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/DasEtwas/enginesound/internal/dsp"
	"github.com/DasEtwas/enginesound/internal/engine"
	"github.com/DasEtwas/enginesound/internal/waveguide"
)

// WaveGuideConfig is the on-disk shape of a waveguide: its shared chamber
// delay in seconds, and its two reflection coefficients.
type WaveGuideConfig struct {
	Delay float64 `yaml:"delay"`
	Alpha float32 `yaml:"alpha"`
	Beta  float32 `yaml:"beta"`
}

// CylinderConfig is the on-disk shape of one Cylinder.
type CylinderConfig struct {
	CrankOffset float32 `yaml:"crank_offset"`

	IntakeWaveguide    WaveGuideConfig `yaml:"intake_waveguide"`
	ExhaustWaveguide   WaveGuideConfig `yaml:"exhaust_waveguide"`
	ExtractorWaveguide WaveGuideConfig `yaml:"extractor_waveguide"`

	IntakeOpenRefl    float32 `yaml:"intake_open_refl"`
	IntakeClosedRefl  float32 `yaml:"intake_closed_refl"`
	ExhaustOpenRefl   float32 `yaml:"exhaust_open_refl"`
	ExhaustClosedRefl float32 `yaml:"exhaust_closed_refl"`

	PistonMotionFactor float32 `yaml:"piston_motion_factor"`
	IgnitionFactor     float32 `yaml:"ignition_factor"`
	IgnitionTime       float32 `yaml:"ignition_time"`
}

// MufflerConfig is the on-disk shape of the Muffler.
type MufflerConfig struct {
	StraightPipe    WaveGuideConfig   `yaml:"straight_pipe"`
	MufflerElements []WaveGuideConfig `yaml:"muffler_elements"`
}

// Document is the root of an .esc file: the full intent-level description
// of an Engine, independent of sample rate.
type Document struct {
	RPM float32 `yaml:"rpm"`

	Cylinders []CylinderConfig `yaml:"cylinders"`
	Muffler   MufflerConfig    `yaml:"muffler"`

	IntakeNoiseFactor  float32 `yaml:"intake_noise_factor"`
	IntakeNoiseLPDelay float64 `yaml:"intake_noise_lp_delay"`

	EngineVibrationFilterDelay float64 `yaml:"engine_vibration_filter_delay"`

	IntakeValveShift  float32 `yaml:"intake_valve_shift"`
	ExhaustValveShift float32 `yaml:"exhaust_valve_shift"`

	CrankshaftFluctuation        float32 `yaml:"crankshaft_fluctuation"`
	CrankshaftFluctuationLPDelay float64 `yaml:"crankshaft_fluctuation_lp_delay"`
}

// Load reads and parses path as an .esc document and builds a runtime
// Engine fixed up for sampleRate. Out-of-range fields are clamped and
// logged rather than rejected, per spec §7.
func Load(path string, sampleRate int) (*engine.Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	var doc Document
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	clamp(&doc)
	return build(&doc, sampleRate), nil
}

// SpeedOfSound is the speed of sound in air, in meters/second, used to
// convert cavity lengths between seconds and meters so a future UI can
// let users reason about waveguide length in physical units rather than
// delay seconds.
const SpeedOfSound = 343.0

// SecondsToDistance converts a WaveGuide/LowPassFilter delay in seconds to
// the cavity length in meters it represents.
func SecondsToDistance(seconds float64) float64 {
	return seconds * SpeedOfSound
}

// DistanceToSeconds converts a cavity length in meters to the delay in
// seconds sound takes to traverse it.
func DistanceToSeconds(meters float64) float64 {
	return meters / SpeedOfSound
}

// DistanceToSamples converts a cavity length in meters directly to a
// sample count at sampleRate, clamped to at least 1 sample.
func DistanceToSamples(meters float64, sampleRate int) int {
	n := int(DistanceToSeconds(meters) * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	return n
}

// SamplesToDistance converts a sample count at sampleRate back to a cavity
// length in meters.
func SamplesToDistance(samples int, sampleRate int) float64 {
	return SecondsToDistance(float64(samples) / float64(sampleRate))
}

// Default returns a modest four-cylinder inline engine with a two-element
// muffler, fixed up for sampleRate — the engine cmd/enginesound runs when
// invoked without --config.
func Default(sampleRate int) *engine.Engine {
	cyl := func(offset float32) CylinderConfig {
		return CylinderConfig{
			CrankOffset:        offset,
			IntakeWaveguide:    WaveGuideConfig{Delay: 1.0 / 343 * 1.5, Alpha: 0.8, Beta: -0.3},
			ExhaustWaveguide:   WaveGuideConfig{Delay: 1.0 / 343 * 1.5, Alpha: 0.85, Beta: 0.3},
			ExtractorWaveguide: WaveGuideConfig{Delay: 1.0 / 343 * 1.0, Alpha: 0.6, Beta: -0.6},
			IntakeOpenRefl:     0.8,
			IntakeClosedRefl:   -0.8,
			ExhaustOpenRefl:    0.8,
			ExhaustClosedRefl:  -0.8,
			PistonMotionFactor: 0.05,
			IgnitionFactor:     1.2,
			IgnitionTime:       0.1,
		}
	}

	doc := Document{
		RPM: 800,
		Cylinders: []CylinderConfig{
			cyl(0.0 / 4), cyl(1.0 / 4), cyl(2.0 / 4), cyl(3.0 / 4),
		},
		Muffler: MufflerConfig{
			StraightPipe: WaveGuideConfig{Delay: 1.0 / 343 * 4.0, Alpha: 0.7, Beta: 0.6},
			MufflerElements: []WaveGuideConfig{
				{Delay: 1.0 / 343 * 0.5, Alpha: 0.5, Beta: -0.5},
				{Delay: 1.0 / 343 * 0.7, Alpha: 0.5, Beta: -0.5},
			},
		},
		IntakeNoiseFactor:            0.2,
		IntakeNoiseLPDelay:           1.0 / 2000,
		EngineVibrationFilterDelay:   1.0 / 200,
		IntakeValveShift:             0,
		ExhaustValveShift:            0,
		CrankshaftFluctuation:        0.0015,
		CrankshaftFluctuationLPDelay: 1.0 / 50,
	}

	clamp(&doc)
	return build(&doc, sampleRate)
}

// Save writes e's current configuration to path as an .esc document. Only
// intent fields are serialized; buffer contents and derived lengths are
// never written.
func Save(path string, e *engine.Engine) error {
	doc := toDocument(e)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}

func buildWaveGuide(c WaveGuideConfig, sampleRate int) *waveguide.WaveGuide {
	lenSamples := int(math.Round(c.Delay * float64(sampleRate)))
	if lenSamples < 1 {
		lenSamples = 1
	}
	return waveguide.New(lenSamples, c.Alpha, c.Beta, sampleRate)
}

func waveGuideToConfig(w *waveguide.WaveGuide) WaveGuideConfig {
	return WaveGuideConfig{
		Delay: w.Chamber0.Samples.Delay,
		Alpha: w.Alpha,
		Beta:  w.Beta,
	}
}

func build(doc *Document, sampleRate int) *engine.Engine {
	cylinders := make([]*engine.Cylinder, len(doc.Cylinders))
	for i, cc := range doc.Cylinders {
		cylinders[i] = &engine.Cylinder{
			CrankOffset:        cc.CrankOffset,
			Intake:             buildWaveGuide(cc.IntakeWaveguide, sampleRate),
			Exhaust:            buildWaveGuide(cc.ExhaustWaveguide, sampleRate),
			Extractor:          buildWaveGuide(cc.ExtractorWaveguide, sampleRate),
			IntakeOpenRefl:     cc.IntakeOpenRefl,
			IntakeClosedRefl:   cc.IntakeClosedRefl,
			ExhaustOpenRefl:    cc.ExhaustOpenRefl,
			ExhaustClosedRefl:  cc.ExhaustClosedRefl,
			PistonMotionFactor: cc.PistonMotionFactor,
			IgnitionFactor:     cc.IgnitionFactor,
			IgnitionTime:       cc.IgnitionTime,
		}
	}

	elements := make([]engine.WaveGuide, len(doc.Muffler.MufflerElements))
	for i, ec := range doc.Muffler.MufflerElements {
		elements[i] = buildWaveGuide(ec, sampleRate)
	}

	return &engine.Engine{
		RPM:                     doc.RPM,
		Cylinders:               cylinders,
		Muffler:                 engine.Muffler{StraightPipe: buildWaveGuide(doc.Muffler.StraightPipe, sampleRate), Elements: elements},
		IntakeNoise:             engine.NewXorShiftNoise(),
		IntakeNoiseFactor:       doc.IntakeNoiseFactor,
		IntakeNoiseLP:           dsp.NewLowPassFilterFromDelay(doc.IntakeNoiseLPDelay, sampleRate),
		EngineVibrationFilter:   dsp.NewLowPassFilterFromDelay(doc.EngineVibrationFilterDelay, sampleRate),
		IntakeValveShift:        doc.IntakeValveShift,
		ExhaustValveShift:       doc.ExhaustValveShift,
		CrankshaftFluctuation:   doc.CrankshaftFluctuation,
		CrankshaftFluctuationLP: dsp.NewLowPassFilterFromDelay(doc.CrankshaftFluctuationLPDelay, sampleRate),
	}
}

func toDocument(e *engine.Engine) *Document {
	doc := &Document{
		RPM:                          e.RPM,
		IntakeNoiseFactor:            e.IntakeNoiseFactor,
		IntakeNoiseLPDelay:           e.IntakeNoiseLP.Delay,
		EngineVibrationFilterDelay:   e.EngineVibrationFilter.Delay,
		IntakeValveShift:             e.IntakeValveShift,
		ExhaustValveShift:            e.ExhaustValveShift,
		CrankshaftFluctuation:        e.CrankshaftFluctuation,
		CrankshaftFluctuationLPDelay: e.CrankshaftFluctuationLP.Delay,
	}

	doc.Cylinders = make([]CylinderConfig, len(e.Cylinders))
	for i, c := range e.Cylinders {
		doc.Cylinders[i] = CylinderConfig{
			CrankOffset:        c.CrankOffset,
			IntakeWaveguide:    waveGuideToConfig(c.Intake.(*waveguide.WaveGuide)),
			ExhaustWaveguide:   waveGuideToConfig(c.Exhaust.(*waveguide.WaveGuide)),
			ExtractorWaveguide: waveGuideToConfig(c.Extractor.(*waveguide.WaveGuide)),
			IntakeOpenRefl:     c.IntakeOpenRefl,
			IntakeClosedRefl:   c.IntakeClosedRefl,
			ExhaustOpenRefl:    c.ExhaustOpenRefl,
			ExhaustClosedRefl:  c.ExhaustClosedRefl,
			PistonMotionFactor: c.PistonMotionFactor,
			IgnitionFactor:     c.IgnitionFactor,
			IgnitionTime:       c.IgnitionTime,
		}
	}

	doc.Muffler.StraightPipe = waveGuideToConfig(e.Muffler.StraightPipe.(*waveguide.WaveGuide))
	doc.Muffler.MufflerElements = make([]WaveGuideConfig, len(e.Muffler.Elements))
	for i, el := range e.Muffler.Elements {
		doc.Muffler.MufflerElements[i] = waveGuideToConfig(el.(*waveguide.WaveGuide))
	}

	return doc
}

// logger is the package-wide logger; cmd/enginesound may replace its output
// target but not its identity, so clamp warnings always carry the
// "config" prefix.
var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "config"})
