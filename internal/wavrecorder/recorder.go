// Package wavrecorder implements a background WAV writer fed by a queue
// of sample batches, so the generator thread producing audio never
// blocks on file I/O.
package wavrecorder

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "wavrecorder"})

const (
	bitDepth        = 32
	numChannels     = 1
	ieeeFloatFormat = 3 // WAVE_FORMAT_IEEE_FLOAT
	recvTimeout     = 4 * time.Second
	queueCapacity   = 4096 // generous buffer standing in for the original's unbounded MPSC channel
)

// Recorder drains a queue of sample batches into a mono 32-bit-float WAV
// file on a dedicated goroutine. Record never blocks on I/O; the worker
// blocks on a receive-with-timeout so it notices Stop promptly even when
// no further batches arrive.
type Recorder struct {
	path string
	file *os.File
	enc  *wav.Encoder

	queue chan []float32

	running  atomic.Bool
	clipping atomic.Bool
	length   atomic.Int64
	done     chan struct{}
}

// New creates (truncating) the WAV file at path and starts the
// background writer. The file is mono 32-bit-float PCM at sampleRate.
func New(path string, sampleRate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav file %q: %w", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, numChannels, ieeeFloatFormat)

	r := &Recorder{
		path:  path,
		file:  f,
		enc:   enc,
		queue: make(chan []float32, queueCapacity),
		done:  make(chan struct{}),
	}
	r.running.Store(true)
	logger.Info("opened WAV file", "path", path, "sampleRate", sampleRate)
	go r.run(sampleRate)
	return r, nil
}

func (r *Recorder) run(sampleRate int) {
	defer close(r.done)

	for r.running.Load() {
		select {
		case batch := <-r.queue:
			r.writeBatch(sampleRate, batch)
		case <-time.After(recvTimeout):
		}
	}

	for {
		select {
		case batch := <-r.queue:
			r.writeBatch(sampleRate, batch)
		default:
			r.enc.Close()
			r.file.Close()
			logger.Info("closed WAV file", "path", r.path, "samples", r.length.Load())
			return
		}
	}
}

func (r *Recorder) writeBatch(sampleRate int, batch []float32) {
	data := make([]int, len(batch))
	clipped := false
	for i, v := range batch {
		data[i] = int(int32(math.Float32bits(v)))
		if v > 1 || v < -1 {
			clipped = true
		}
	}
	if clipped != r.clipping.Swap(clipped) {
		if clipped {
			logger.Warn("clipping detected", "path", r.path)
		} else {
			logger.Info("clipping cleared", "path", r.path)
		}
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	// the writer thread owns the encoder exclusively; an I/O error here
	// cannot be surfaced to the generator thread that enqueued the
	// batch, so it is swallowed (spec §7: a recorder error is fatal to
	// that recorder only, never to the generator).
	_ = r.enc.Write(buf)
}

// Record enqueues a copy of samples iff the recorder is still running.
func (r *Recorder) Record(samples []float32) {
	if !r.running.Load() {
		return
	}
	cp := make([]float32, len(samples))
	copy(cp, samples)
	r.length.Add(int64(len(samples)))
	r.queue <- cp
}

// IsRunning reports whether the recorder still accepts batches.
func (r *Recorder) IsRunning() bool { return r.running.Load() }

// IsClipping reports whether the most recently written batch contained a
// sample outside [-1, 1].
func (r *Recorder) IsClipping() bool { return r.clipping.Load() }

// GetLen returns the cumulative number of samples ever enqueued.
func (r *Recorder) GetLen() int64 { return r.length.Load() }

// Stop marks the recorder as no longer running. The worker finishes
// after its current blocking receive or the next timeout, drains
// whatever remains queued, and closes the file.
func (r *Recorder) Stop() {
	r.running.Store(false)
}

// StopWait stops the recorder, waits for the queue to drain, and blocks
// until the worker has closed the WAV file — so the caller can rely on
// the file being complete and flushed on return.
func (r *Recorder) StopWait() {
	r.Stop()
	for len(r.queue) > 0 {
		time.Sleep(time.Millisecond)
	}
	<-r.done
}
