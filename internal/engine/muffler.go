package engine

// Muffler is a straight pipe waveguide in parallel with a bank of
// side-branch "muffler element" waveguides fed off its far end. The
// built-in default engine (config.Default) has two elements, but the
// pop/push sequence in Engine.Step is agnostic to how many there are.
type Muffler struct {
	StraightPipe WaveGuide
	Elements     []WaveGuide
}

// Reset zeroes the straight pipe and every element.
func (m *Muffler) Reset() {
	m.StraightPipe.Reset()
	for _, e := range m.Elements {
		e.Reset()
	}
}
