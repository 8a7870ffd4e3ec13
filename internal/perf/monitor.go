// Package perf measures frame timing so effects can shed work on slow hosts.
package perf

import "time"

// DefaultWindow is how many frame durations a Monitor averages over.
const DefaultWindow = 120

// Monitor keeps a sliding window of frame durations.
type Monitor struct {
	samples []time.Duration
	next    int
	full    bool
	sum     time.Duration
	last    time.Time
}

func NewMonitor(window int) *Monitor {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Monitor{samples: make([]time.Duration, window)}
}

// Frame records the time since the previous Frame call.
func (m *Monitor) Frame(now time.Time) {
	if !m.last.IsZero() && now.After(m.last) {
		m.Record(now.Sub(m.last))
	}
	m.last = now
}

// Record adds one frame duration.
func (m *Monitor) Record(d time.Duration) {
	if d <= 0 {
		return
	}
	m.sum -= m.samples[m.next]
	m.samples[m.next] = d
	m.sum += d
	m.next++
	if m.next == len(m.samples) {
		m.next = 0
		m.full = true
	}
}

// Samples is the number of durations currently averaged.
func (m *Monitor) Samples() int {
	if m.full {
		return len(m.samples)
	}
	return m.next
}

// FPS is the mean frame rate over the window, or 0 with no samples.
func (m *Monitor) FPS() float64 {
	n := m.Samples()
	if n == 0 || m.sum <= 0 {
		return 0
	}
	mean := m.sum / time.Duration(n)
	return float64(time.Second) / float64(mean)
}

func (m *Monitor) Reset() {
	for i := range m.samples {
		m.samples[i] = 0
	}
	m.next, m.full, m.sum = 0, false, 0
	m.last = time.Time{}
}
