package capability

import "sort"

// Viewport is the host's change notifier: it stands in for the window resize event
// and the media-query change events. Listeners are called synchronously from Notify.
type Viewport struct {
	next      int
	listeners map[int]func()
}

func NewViewport() *Viewport {
	return &Viewport{listeners: make(map[int]func())}
}

// OnChange registers fn and returns a func that removes it. The remover is
// idempotent.
func (v *Viewport) OnChange(fn func()) (remove func()) {
	v.next++
	id := v.next
	v.listeners[id] = fn
	return func() { delete(v.listeners, id) }
}

// Notify calls every listener registered at the time of the call, in
// registration order.
func (v *Viewport) Notify() {
	ids := make([]int, 0, len(v.listeners))
	for id := range v.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := v.listeners[id]; ok {
			fn()
		}
	}
}

// Listeners reports how many listeners are registered.
func (v *Viewport) Listeners() int { return len(v.listeners) }
