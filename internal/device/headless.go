//go:build headless

package device

// otoOutput is the headless build's stand-in for the live oto backend:
// a build configuration that never links an audio library at all (e.g.
// a server deployment with no sound hardware). It drains the upstream
// channel so the generator worker never blocks on a full channel.
type otoOutput struct {
	in      <-chan []float32
	started bool
}

// NewOto returns a no-op Output; sampleRate is accepted for interface
// parity with the live backend but unused.
func NewOto(sampleRate int, in <-chan []float32) (Output, error) {
	return &otoOutput{in: in}, nil
}

func (o *otoOutput) Start() error {
	o.started = true
	go o.drain()
	return nil
}

func (o *otoOutput) drain() {
	for o.started {
		if _, ok := <-o.in; !ok {
			return
		}
	}
}

func (o *otoOutput) Stop() {
	o.started = false
}

func (o *otoOutput) Close() {
	o.started = false
}
