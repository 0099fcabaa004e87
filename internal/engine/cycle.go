package engine

import "math"

// frac returns the fractional part of x, always in [0, 1) regardless of sign,
// matching the crank-position wraparound used throughout the step loop.
func frac(x float32) float32 {
	f := x - float32(math.Floor(float64(x)))
	if f < 0 {
		f++
	}
	return f
}

// exhaustValve is nonzero only during the exhaust stroke, the last quarter
// of the 4-stroke cycle.
func exhaustValve(x float32) float32 {
	if x > 0.75 && x < 1.0 {
		return -float32(math.Sin(4 * math.Pi * float64(x)))
	}
	return 0
}

// intakeValve is nonzero only during the intake stroke, the first quarter
// of the cycle.
func intakeValve(x float32) float32 {
	if x > 0.0 && x < 0.25 {
		return float32(math.Sin(4 * math.Pi * float64(x)))
	}
	return 0
}

// pistonMotion approximates piston velocity over the full cycle.
func pistonMotion(x float32) float32 {
	return float32(math.Cos(4 * math.Pi * float64(x)))
}

// fuelIgnition is a single half-sine pulse of width t/2 starting at crank
// position 0.5.
func fuelIgnition(x, t float32) float32 {
	if x > 0.5 && x < 0.5+t/2 {
		return float32(math.Sin(2 * math.Pi * float64(x-0.5) / float64(t)))
	}
	return 0
}
