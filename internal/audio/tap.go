package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

const (
	// DefaultRingSize is how many recent stereo samples a Tap keeps.
	DefaultRingSize = 8192
	// LevelWindow is how many of the most recent samples Level measures.
	LevelWindow = 2048
	// Smoothing weights the previous level against the new measurement.
	Smoothing = 0.6
)

// Tap wraps a beep.Streamer and records the last samples into a ring buffer so
// the renderer can react to recently played audio.
type Tap struct {
	Source beep.Streamer

	mu        sync.RWMutex
	buffer    [][2]float64
	nextIndex int
	filled    int
	level     float64
}

func NewTap(src beep.Streamer, ringSize int) *Tap {
	if ringSize <= 0 {
		ringSize = DefaultRingSize
	}
	return &Tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex = (t.nextIndex + 1) % len(t.buffer)
		}
		t.filled = min(len(t.buffer), t.filled+n)
		t.mu.Unlock()
	}
	return n, ok
}

func (t *Tap) Err() error { return t.Source.Err() }

// Snapshot returns up to the last n samples, most recent last.
func (t *Tap) Snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n = min(n, t.filled)
	out := make([][2]float64, n)
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := range out {
		out[i] = t.buffer[idx]
		idx = (idx + 1) % len(t.buffer)
	}
	return out
}

// Level is the smoothed, compressed RMS energy of recent audio in [0,1].
func (t *Tap) Level() float64 {
	mag := RMS(t.Snapshot(LevelWindow))
	if mag > 0 {
		mag = math.Min(1, math.Pow(mag, 0.3))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = Smoothing*t.level + (1-Smoothing)*mag
	return t.level
}

// RMS is the root mean square of the mono mix of samples.
func RMS(samples [][2]float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		mono := (s[0] + s[1]) * 0.5
		sum += mono * mono
	}
	return math.Sqrt(sum / float64(len(samples)))
}
