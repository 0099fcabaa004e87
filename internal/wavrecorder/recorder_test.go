package wavrecorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecorderWritesAndClosesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r, err := New(path, 48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 10; i++ {
		r.Record([]float32{0.1, -0.2, 0.3, -0.4})
	}
	r.StopWait()

	if got := r.GetLen(); got != 40 {
		t.Fatalf("GetLen() = %d, want 40", got)
	}
	if r.IsRunning() {
		t.Fatalf("expected recorder to report not running after StopWait")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output wav: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected a nonempty wav file")
	}
}

func TestRecorderDetectsClipping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r, err := New(path, 48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r.Record([]float32{0.1, -0.2, 0.3})
	deadline := time.Now().Add(time.Second)
	for r.GetLen() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.IsClipping() {
		t.Fatalf("expected no clipping for in-range samples")
	}

	r.Record([]float32{0.1, 1.5, -0.2})
	deadline = time.Now().Add(time.Second)
	for !r.IsClipping() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !r.IsClipping() {
		t.Fatalf("expected clipping to be detected within 1s")
	}

	r.StopWait()
}

func TestRecordAfterStopIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r, err := New(path, 48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Stop()
	r.Record([]float32{1, 2, 3})
	if got := r.GetLen(); got != 0 {
		t.Fatalf("GetLen() = %d, want 0 after stop", got)
	}
	r.StopWait()
}
