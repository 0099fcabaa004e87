// Package render implements headless rendering: warm up a Generator,
// record a fixed duration, optionally splice the result into a
// seamless loop via a half-buffer-shift crossfade, and write the result
// to a WAV file.
package render

import (
	"math"

	"github.com/DasEtwas/enginesound/internal/synth"
	"github.com/DasEtwas/enginesound/internal/wavrecorder"
)

// Params configures a headless render, all in seconds.
type Params struct {
	WarmupSeconds    float64
	RecordSeconds    float64
	CrossfadeSeconds float64
}

// Generate runs warmup (discarded), then records RecordSeconds worth of
// audio from g, then applies the crossfade splice if CrossfadeSeconds >
// 0. It does not write a file; callers needing a WAV should follow up
// with WriteWAV.
func Generate(g *synth.Generator, sampleRate int, p Params) []float32 {
	warmupN := int(p.WarmupSeconds * float64(sampleRate))
	if warmupN > 0 {
		discard := make([]float32, warmupN)
		g.Generate(discard)
	}

	recordN := int(p.RecordSeconds * float64(sampleRate))
	output := make([]float32, recordN)
	g.Generate(output)

	if p.CrossfadeSeconds > 0 {
		output = crossfadeSplice(output, p.CrossfadeSeconds, sampleRate)
	}
	return output
}

// crossfadeSplice implements spec §4.9: shift the buffer by half its
// length so both the start and end of the result sit deep inside
// steady-state output, then linearly crossfade across the remaining
// seam. F is the crossfade half-width in samples.
func crossfadeSplice(output []float32, crossfadeSeconds float64, sampleRate int) []float32 {
	L := len(output)
	H := L / 2

	raw := crossfadeSeconds * float64(sampleRate)
	if raw < 1 {
		raw = 1
	}
	F := int(math.Round(raw / 2))
	if F < 1 {
		F = 1
	}
	if F >= H {
		F = H - 1
	}

	shifted := make([]float32, L)
	for i := 0; i < L; i++ {
		shifted[i] = output[(H+i)%L]
	}

	result := make([]float32, 0, L-F)
	result = append(result, shifted[:H]...)
	result = append(result, shifted[H+F:L]...)

	for i := H - F; i < H; i++ {
		f := float32(i-(H-F)) / float32(F)
		result[i] = shifted[i]*(1-f) + shifted[i+F]*f
	}

	return result
}

// WriteWAV records samples to path at sampleRate and waits for the
// recorder to finish flushing before returning.
func WriteWAV(samples []float32, path string, sampleRate int) error {
	rec, err := wavrecorder.New(path, sampleRate)
	if err != nil {
		return err
	}
	rec.Record(samples)
	rec.StopWait()
	return nil
}
