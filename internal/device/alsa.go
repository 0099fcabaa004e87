//go:build linux && cgo && alsa && !headless

package device

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* es_open_pcm(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int es_setup_pcm(snd_pcm_t* handle, unsigned int rate) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, 1);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int es_write_pcm(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void es_close_pcm(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/DasEtwas/enginesound/internal/stream"
)

// alsaOutput talks to ALSA directly via cgo, bypassing oto. It is only
// built when the alsa build tag is set, since it requires libasound at
// link time.
type alsaOutput struct {
	handle *C.snd_pcm_t

	streamer *stream.ExactStreamer[float32]
	buf      []float32

	mu      sync.Mutex
	playing bool
}

// NewOto is the alsa-tagged build's live backend: it satisfies the same
// call site as the default oto backend (oto.go, excluded by this build's
// tag) but talks to ALSA directly via cgo.
func NewOto(sampleRate int, in <-chan []float32) (Output, error) {
	return NewALSA(sampleRate, in)
}

// NewALSA opens the default ALSA PCM device at sampleRate and returns an
// Output that pulls exact-size fills from in.
func NewALSA(sampleRate int, in <-chan []float32) (Output, error) {
	var cerr C.int
	handle := C.es_open_pcm(C.CString("default"), &cerr)
	if cerr < 0 {
		return nil, fmt.Errorf("alsa: open pcm device: %s", C.GoString(C.snd_strerror(cerr)))
	}

	if cerr = C.es_setup_pcm(handle, C.uint(sampleRate)); cerr < 0 {
		C.es_close_pcm(handle)
		return nil, fmt.Errorf("alsa: setup pcm: %s", C.GoString(C.snd_strerror(cerr)))
	}

	return &alsaOutput{
		handle:   handle,
		streamer: stream.New[float32](GeneratorBufferSize, in),
		buf:      make([]float32, GeneratorBufferSize),
	}, nil
}

func (a *alsaOutput) Start() error {
	a.mu.Lock()
	a.playing = true
	a.mu.Unlock()
	go a.loop()
	return nil
}

func (a *alsaOutput) loop() {
	for {
		a.mu.Lock()
		playing := a.playing
		a.mu.Unlock()
		if !playing {
			return
		}

		if err := a.streamer.Fill(a.buf); err != nil {
			return
		}
		a.write(a.buf)
	}
}

func (a *alsaOutput) write(samples []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.playing || a.handle == nil {
		return
	}

	frames := C.es_write_pcm(a.handle, (*C.float)(unsafe.Pointer(&samples[0])), C.int(len(samples)))
	if frames < 0 && C.int(frames) == -C.EPIPE {
		C.snd_pcm_prepare(a.handle)
		C.es_write_pcm(a.handle, (*C.float)(unsafe.Pointer(&samples[0])), C.int(len(samples)))
	}
}

func (a *alsaOutput) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
}

func (a *alsaOutput) Close() {
	a.Stop()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.handle != nil {
		C.es_close_pcm(a.handle)
		a.handle = nil
	}
}
