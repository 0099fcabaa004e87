package waveguide

import (
	"testing"

	"pgregory.net/rapid"
)

// TestEnergyBoundProperty is the generative counterpart to TestEnergyBound
// (spec §8 property 3): for any |alpha|,|beta| < 1 and any bounded input
// sequence, the stored chamber energy never exceeds the damping ceiling.
func TestEnergyBoundProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		alpha := float32(rapid.Float64Range(-0.99, 0.99).Draw(t, "alpha"))
		beta := float32(rapid.Float64Range(-0.99, 0.99).Draw(t, "beta"))
		steps := rapid.IntRange(1, 2000).Draw(t, "steps")

		wg := New(8, alpha, beta, 48000)

		for i := 0; i < steps; i++ {
			x := float32(rapid.Float64Range(-1, 1).Draw(t, "x"))
			a, b, _ := wg.Pop()
			wg.Push(a*0.5+x, b*0.5)

			for _, v := range []float32{wg.c0Out, wg.c1Out} {
				if v > MaxAmp+1.0 || v < -(MaxAmp+1.0) {
					t.Fatalf("alpha=%v beta=%v step=%d: chamber energy %v exceeded damping ceiling", alpha, beta, i, v)
				}
			}
		}
	})
}

// TestDampingActivationProperty is the generative counterpart to
// TestDampingActivation/TestNoDampingBelowThreshold (spec §8 property 4):
// pop reports dampened exactly when a chamber's popped amplitude exceeds
// MaxAmp.
func TestDampingActivationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amp := float32(rapid.Float64Range(-100, 100).Draw(t, "amp"))

		wg := New(1, 0, 0, 48000)
		wg.Chamber1.Push(amp)
		wg.Chamber1.Advance()

		_, _, dampened := wg.Pop()

		abs := amp
		if abs < 0 {
			abs = -abs
		}
		want := abs > MaxAmp
		if dampened != want {
			t.Fatalf("amp=%v: dampened=%v, want %v", amp, dampened, want)
		}
	})
}
