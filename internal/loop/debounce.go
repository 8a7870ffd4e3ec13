package loop

import "time"

// Debouncer collapses bursts of Trigger calls into one fn call, delay after the last.
type Debouncer struct {
	s     *Scheduler
	delay time.Duration
	fn    func()
	id    ID
}

func NewDebouncer(s *Scheduler, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{s: s, delay: delay, fn: fn}
}

func (d *Debouncer) Trigger() {
	d.s.Cancel(d.id)
	d.id = d.s.After(d.delay, func() {
		d.id = 0
		d.fn()
	})
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.s.Cancel(d.id)
	d.id = 0
}

func (d *Debouncer) Pending() bool { return d.id != 0 }
