//go:build !headless && !(linux && cgo && alsa)

package device

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/oto/v3"

	"github.com/DasEtwas/enginesound/internal/stream"
)

// otoOutput is the default live backend, playing the generator's output
// through the platform's native audio API via oto. Read is the hot path:
// it must never block on anything but the upstream channel the
// generator worker feeds.
type otoOutput struct {
	ctx    *oto.Context
	player *oto.Player

	streamer  *stream.ExactStreamer[float32]
	sampleBuf []float32

	mu      sync.Mutex
	started bool
}

// NewOto opens the default output device at sampleRate and returns an
// Output that pulls exact-size fills from in, a channel of
// GeneratorBufferSize-sample buffers produced by the generator worker.
func NewOto(sampleRate int, in <-chan []float32) (Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   GeneratorBufferSize,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	o := &otoOutput{
		ctx:       ctx,
		streamer:  stream.New[float32](GeneratorBufferSize, in),
		sampleBuf: make([]float32, GeneratorBufferSize),
	}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read implements io.Reader for oto's player: it fills p with exactly
// len(p)/4 float32 samples pulled through the ExactStreamer.
func (o *otoOutput) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	if cap(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]

	if err := o.streamer.Fill(samples); err != nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (o *otoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		o.player.Play()
		o.started = true
	}
	return nil
}

func (o *otoOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		o.player.Pause()
		o.started = false
	}
}

func (o *otoOutput) Close() {
	o.Stop()
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = o.player.Close()
}
