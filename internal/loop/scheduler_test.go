package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScheduler_AfterRunsOnceWhenDue(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	calls := 0
	s.After(100*time.Millisecond, func() { calls++ })

	s.Tick()
	assert.Equal(t, 0, calls)

	clock.Advance(100 * time.Millisecond)
	s.Tick()
	s.Tick()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_EveryRepeatsWithoutBurstCatchUp(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	calls := 0
	id := s.Every(5*time.Second, func() { calls++ })

	clock.Advance(5 * time.Second)
	s.Tick()
	assert.Equal(t, 1, calls)

	// A long stall fires once, not once per missed interval.
	clock.Advance(60 * time.Second)
	s.Tick()
	assert.Equal(t, 2, calls)

	s.Cancel(id)
	clock.Advance(5 * time.Second)
	s.Tick()
	assert.Equal(t, 2, calls)
}

func TestScheduler_FrameRequestedDuringTickRunsNextTick(t *testing.T) {
	s := NewScheduler(NewManualClock(epoch))

	var order []int
	var loopFn FrameFunc
	loopFn = func(time.Time) {
		order = append(order, len(order))
		if len(order) < 3 {
			s.RequestFrame(loopFn)
		}
	}
	s.RequestFrame(loopFn)

	s.Tick()
	assert.Len(t, order, 1)
	s.Tick()
	s.Tick()
	s.Tick()
	assert.Len(t, order, 3)
}

func TestScheduler_CancelFrame(t *testing.T) {
	s := NewScheduler(NewManualClock(epoch))
	ran := false
	id := s.RequestFrame(func(time.Time) { ran = true })
	s.Cancel(id)
	s.Tick()
	assert.False(t, ran)
}

func TestScheduler_CloseIsIdempotentAndDropsWork(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	ran := 0
	s.After(time.Millisecond, func() { ran++ })
	s.Every(time.Millisecond, func() { ran++ })
	s.RequestFrame(func(time.Time) { ran++ })
	require.Equal(t, 3, s.Pending())

	s.Close()
	s.Close()
	assert.False(t, s.Alive())
	assert.Equal(t, 0, s.Pending())

	assert.Equal(t, ID(0), s.After(0, func() { ran++ }))
	assert.Equal(t, ID(0), s.RequestFrame(func(time.Time) { ran++ }))

	clock.Advance(time.Second)
	s.Tick()
	assert.Equal(t, 0, ran)
}

func TestScheduler_CloseFromCallbackStopsTick(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	ran := 0
	s.After(0, func() { s.Close() })
	s.After(time.Nanosecond, func() { ran++ })
	s.RequestFrame(func(time.Time) { ran++ })

	clock.Advance(time.Millisecond)
	s.Tick()
	assert.Equal(t, 0, ran)
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	calls := 0
	d := NewDebouncer(s, 100*time.Millisecond, func() { calls++ })

	for i := 0; i < 5; i++ {
		d.Trigger()
		clock.Advance(50 * time.Millisecond)
		s.Tick()
	}
	assert.Equal(t, 0, calls)
	assert.True(t, d.Pending())

	clock.Advance(100 * time.Millisecond)
	s.Tick()
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())

	d.Trigger()
	d.Stop()
	clock.Advance(time.Second)
	s.Tick()
	assert.Equal(t, 1, calls)
}
