// Package loop provides the cooperative, single-goroutine scheduler every effect
// instance uses for its timers and frame callbacks. Each mounted effect owns one
// Scheduler so teardown can cancel everything it ever queued in one call.
package loop

import (
	"sort"
	"time"
)

// ID identifies a scheduled timer or frame callback. The zero ID is never issued.
type ID uint64

// FrameFunc receives the timestamp of the tick that ran it.
type FrameFunc func(now time.Time)

type timer struct {
	id    ID
	due   time.Time
	every time.Duration
	fn    func()
}

type frame struct {
	id ID
	fn FrameFunc
}

// Scheduler queues timers and frame callbacks and runs them from Tick.
// It is not safe for concurrent use; the host drives it from its update loop.
type Scheduler struct {
	clock  Clock
	next   ID
	timers map[ID]*timer
	frames []frame
	live   map[ID]struct{}
	closed bool
}

func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		clock:  clock,
		timers: make(map[ID]*timer),
		live:   make(map[ID]struct{}),
	}
}

// Now reports the scheduler clock.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// Alive is false once Close has run.
func (s *Scheduler) Alive() bool { return !s.closed }

// After runs fn once, d after now. Returns 0 when the scheduler is closed.
func (s *Scheduler) After(d time.Duration, fn func()) ID {
	return s.addTimer(d, 0, fn)
}

// Every runs fn each interval until cancelled.
func (s *Scheduler) Every(interval time.Duration, fn func()) ID {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return s.addTimer(interval, interval, fn)
}

func (s *Scheduler) addTimer(d, every time.Duration, fn func()) ID {
	if s.closed || fn == nil {
		return 0
	}
	s.next++
	id := s.next
	s.timers[id] = &timer{id: id, due: s.clock.Now().Add(d), every: every, fn: fn}
	return id
}

// RequestFrame queues fn for the next Tick. Callbacks requested while a tick is
// running are deferred to the following tick.
func (s *Scheduler) RequestFrame(fn FrameFunc) ID {
	if s.closed || fn == nil {
		return 0
	}
	s.next++
	id := s.next
	s.frames = append(s.frames, frame{id: id, fn: fn})
	s.live[id] = struct{}{}
	return id
}

// Cancel drops a timer or frame callback. Unknown IDs are ignored.
func (s *Scheduler) Cancel(id ID) {
	if id == 0 {
		return
	}
	delete(s.timers, id)
	delete(s.live, id)
}

// Pending counts queued timers and frame callbacks.
func (s *Scheduler) Pending() int {
	return len(s.timers) + len(s.live)
}

// Tick runs every timer due at the current clock time, then the frame callbacks
// queued before this tick started.
func (s *Scheduler) Tick() {
	if s.closed {
		return
	}
	now := s.clock.Now()

	due := make([]*timer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.due.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		if s.closed {
			return
		}
		if _, ok := s.timers[t.id]; !ok {
			continue
		}
		if t.every > 0 {
			t.due = t.due.Add(t.every)
			if !t.due.After(now) {
				t.due = now.Add(t.every)
			}
		} else {
			delete(s.timers, t.id)
		}
		t.fn()
	}

	queued := s.frames
	s.frames = nil
	for _, f := range queued {
		if s.closed {
			return
		}
		if _, ok := s.live[f.id]; !ok {
			continue
		}
		delete(s.live, f.id)
		f.fn(now)
	}
}

// Close cancels everything and refuses new work. Safe to call more than once.
func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.timers = make(map[ID]*timer)
	s.live = make(map[ID]struct{})
	s.frames = nil
}
