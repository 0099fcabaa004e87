package engine

// WaveGuide is the pop/push/reset surface Cylinder and Muffler depend on.
// *waveguide.WaveGuide satisfies it; tests substitute a mutation-recording
// double to verify the pop-before-push scheduling property (spec §8.8)
// without touching production code paths.
type WaveGuide interface {
	Pop() (outAlphaSide, outBetaSide float32, dampened bool)
	Push(x0In, x1In float32)
	Reset()
	Len() int
	GetAlpha() float32
	SetAlpha(alpha float32)
	GetBeta() float32
}

// Cylinder aggregates the three waveguides that model one cylinder's
// acoustic path (intake, exhaust, extractor) along with the scalar
// parameters driving its piston and valve motion. Pop and Push are split
// into separate methods so Engine can sum all cylinders' contributions
// into the shared collectors between the two phases.
type Cylinder struct {
	CrankOffset float32

	Intake, Exhaust, Extractor WaveGuide

	IntakeOpenRefl, IntakeClosedRefl   float32
	ExhaustOpenRefl, ExhaustClosedRefl float32

	PistonMotionFactor float32
	IgnitionFactor     float32
	IgnitionTime       float32

	// running state, zeroed on Reset
	CylSound        float32
	ExtractorExhaust float32
}

// Pop computes this cylinder's own crank-relative phase, blends the
// exhaust/intake waveguides' alpha from the valve cam functions, and pops
// all three waveguides. It returns the intake contribution, the exhaust
// contribution, this cylinder's vibration (piston + ignition) sample, and
// whether any of the three waveguides dampened this sample.
func (c *Cylinder) Pop(crankPos, exhaustCollector, ivShift, evShift float32) (inContribution, exContribution, vibration float32, dampened bool) {
	crank := frac(crankPos + c.CrankOffset)

	c.CylSound = pistonMotion(crank)*c.PistonMotionFactor + fuelIgnition(crank, c.IgnitionTime)*c.IgnitionFactor

	exV := exhaustValve(frac(crank + evShift))
	inV := intakeValve(frac(crank + ivShift))

	c.Exhaust.SetAlpha(c.ExhaustClosedRefl + (c.ExhaustOpenRefl-c.ExhaustClosedRefl)*exV)
	c.Intake.SetAlpha(c.IntakeClosedRefl + (c.IntakeOpenRefl-c.IntakeClosedRefl)*inV)

	_, exB, dE := c.Exhaust.Pop()
	_, inB, dI := c.Intake.Pop()

	extA, extB, dX := c.Extractor.Pop()
	c.ExtractorExhaust = extA
	c.Extractor.Push(exB, exhaustCollector)

	return inB, extB, c.CylSound, dE || dI || dX
}

// Push feeds this sample's piston/ignition sound into the exhaust and
// intake waveguides, split evenly between the two and scaled by the
// portion of each waveguide's energy that isn't reflected back (1-|alpha|).
// intakeMix is the engine-wide intake collector share plus this
// cylinder's intake-noise contribution.
func (c *Cylinder) Push(intakeMix float32) {
	absExA := c.Exhaust.GetAlpha()
	if absExA < 0 {
		absExA = -absExA
	}
	exIn := (1 - absExA) * c.CylSound * 0.5
	c.Exhaust.Push(exIn, c.ExtractorExhaust)

	absInA := c.Intake.GetAlpha()
	if absInA < 0 {
		absInA = -absInA
	}
	inIn := (1 - absInA) * c.CylSound * 0.5
	c.Intake.Push(inIn, intakeMix)
}

// Reset zeroes the three waveguides and the running scalars. Reflectivity,
// crank offset, and the other configuration parameters are untouched.
func (c *Cylinder) Reset() {
	c.Intake.Reset()
	c.Exhaust.Reset()
	c.Extractor.Reset()
	c.CylSound = 0
	c.ExtractorExhaust = 0
}
