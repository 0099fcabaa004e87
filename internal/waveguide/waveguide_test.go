package waveguide

import "testing"

func TestDampingActivation(t *testing.T) {
	wg := New(4, 0.5, 0.5, 48000)

	// drive chamber1 (read by the alpha side) to an amplitude above MaxAmp;
	// chamber length 4, so the value written first is the one Pop sees
	// after exactly len-1 advances (see DelayLine pop/push/advance
	// contract in internal/dsp).
	wg.Chamber1.Push(MaxAmp + 5)
	wg.Chamber1.Advance()
	wg.Chamber1.Push(0)
	wg.Chamber1.Advance()
	wg.Chamber1.Push(0)
	wg.Chamber1.Advance()

	_, _, dampened := wg.Pop()
	if !dampened {
		t.Fatalf("expected dampened=true when chamber amplitude exceeds MaxAmp")
	}
}

func TestNoDampingBelowThreshold(t *testing.T) {
	wg := New(4, 0.5, 0.5, 48000)
	for i := 0; i < 4; i++ {
		wg.Chamber0.Push(1.0)
		wg.Chamber0.Advance()
		wg.Chamber1.Push(1.0)
		wg.Chamber1.Advance()
	}
	_, _, dampened := wg.Pop()
	if dampened {
		t.Fatalf("expected dampened=false for amplitude within bounds")
	}
}

// TestEnergyBound pumps a long bounded random-ish input through a closed
// loop (beta feeds back into itself) and checks the stored chamber energy
// never exceeds the damping ceiling by more than a small margin.
func TestEnergyBound(t *testing.T) {
	wg := New(8, 0.95, 0.95, 48000)
	var x float32 = 0.7
	for i := 0; i < 200000; i++ {
		// cheap deterministic pseudo-random bounded driver
		x = x*1.0000001 + float32(i%7-3)
		a, b, _ := wg.Pop()
		wg.Push(a*0.01+x*0.001, b*0.01)

		for _, v := range []float32{wg.c0Out, wg.c1Out} {
			if v > MaxAmp+1.0 || v < -(MaxAmp+1.0) {
				t.Fatalf("iteration %d: chamber energy %v exceeded damping ceiling", i, v)
			}
		}
	}
}

func TestGetChangedDetectsDifference(t *testing.T) {
	wg := New(4, 0.2, 0.3, 48000)
	if wg.GetChanged(4, 0.2, 0.3, 48000) != nil {
		t.Fatalf("expected nil when nothing changed")
	}
	if wg.GetChanged(8, 0.2, 0.3, 48000) == nil {
		t.Fatalf("expected a replacement when length changes")
	}
	if wg.GetChanged(4, 0.9, 0.3, 48000) == nil {
		t.Fatalf("expected a replacement when alpha changes")
	}
}

func TestGetChangedFadeCopiesTail(t *testing.T) {
	wg := New(4, 0.1, 0.1, 48000)
	for i := 0; i < 4; i++ {
		wg.Chamber0.Push(1)
		wg.Chamber0.Advance()
	}
	next := wg.GetChanged(4, 0.9, 0.1, 48000)
	if next == nil {
		t.Fatalf("expected replacement")
	}
	// the fade-copied tail should not be all zero, since the source had energy
	var any float32
	for i := 0; i < next.Chamber0.Len(); i++ {
		v := next.Chamber0.Pop()
		next.Chamber0.Advance()
		any += v
	}
	if any == 0 {
		t.Fatalf("expected fade-copied tail to carry some energy from source")
	}
}
