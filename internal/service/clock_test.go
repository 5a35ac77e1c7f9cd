package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Now only moves on Advance", func(t *testing.T) {
		// Given: a manual clock
		clock := NewManualClock(start)

		// When: advancing by a minute
		clock.Advance(time.Minute)

		// Then: Now reflects exactly the advance
		assert.Equal(t, start.Add(time.Minute), clock.Now())
	})

	t.Run("Advance fires due timers in deadline order", func(t *testing.T) {
		// Given: two timers armed out of order
		clock := NewManualClock(start)

		var order []string
		clock.AfterFunc(2*time.Second, func() { order = append(order, "second") })
		clock.AfterFunc(time.Second, func() { order = append(order, "first") })

		// When: advancing past both deadlines
		clock.Advance(3 * time.Second)

		// Then: they fired earliest-first
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("Undue timers survive an advance", func(t *testing.T) {
		// Given: one near and one far timer
		clock := NewManualClock(start)

		var fired []string
		clock.AfterFunc(time.Second, func() { fired = append(fired, "near") })
		clock.AfterFunc(time.Hour, func() { fired = append(fired, "far") })

		// When: advancing past only the near deadline
		clock.Advance(time.Minute)

		// Then: only the near timer fired; the far one fires later
		assert.Equal(t, []string{"near"}, fired)

		clock.Advance(time.Hour)
		assert.Equal(t, []string{"near", "far"}, fired)
	})

	t.Run("Stopped timers never fire", func(t *testing.T) {
		// Given: an armed then stopped timer
		clock := NewManualClock(start)

		fired := false
		timer := clock.AfterFunc(time.Second, func() { fired = true })
		assert.True(t, timer.Stop())

		// When: advancing past the deadline
		clock.Advance(time.Minute)

		// Then: the callback never ran and a second Stop reports false
		assert.False(t, fired)
		assert.False(t, timer.Stop())
	})

	t.Run("Stop after firing reports false", func(t *testing.T) {
		// Given: a timer that already fired
		clock := NewManualClock(start)
		timer := clock.AfterFunc(time.Second, func() {})
		clock.Advance(time.Minute)

		// When/Then: a late Stop cannot claim the cancellation
		assert.False(t, timer.Stop())
	})

	t.Run("Concurrent Stop and Advance are safe", func(t *testing.T) {
		// Given: many timers stopped from other goroutines mid-advance
		clock := NewManualClock(start)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			timer := clock.AfterFunc(time.Duration(i)*time.Millisecond, func() {})
			wg.Add(1)
			go func() {
				defer wg.Done()
				timer.Stop()
			}()
		}

		// When/Then: advancing races the stops without tripping the detector
		clock.Advance(time.Second)
		wg.Wait()
	})
}

func TestTurnScheduler(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Schedule fires after the delay", func(t *testing.T) {
		// Given: a scheduler over a manual clock
		clock := NewManualClock(start)
		scheduler := NewTurnScheduler(clock)

		fired := false
		scheduler.Schedule("turn:s1", 30*time.Second, func() { fired = true })

		// When: advancing past the delay
		clock.Advance(time.Minute)

		// Then: the callback ran
		assert.True(t, fired)
	})

	t.Run("Re-arming a key cancels the pending timer", func(t *testing.T) {
		// Given: a key armed twice in a row
		clock := NewManualClock(start)
		scheduler := NewTurnScheduler(clock)

		var fired []string
		scheduler.Schedule("turn:s1", 10*time.Second, func() { fired = append(fired, "first") })
		scheduler.Schedule("turn:s1", 30*time.Second, func() { fired = append(fired, "second") })

		// When: advancing past both deadlines
		clock.Advance(time.Minute)

		// Then: only the replacement fired
		assert.Equal(t, []string{"second"}, fired)
	})

	t.Run("Cancel stops the pending timer", func(t *testing.T) {
		// Given: an armed then cancelled key
		clock := NewManualClock(start)
		scheduler := NewTurnScheduler(clock)

		fired := false
		scheduler.Schedule("turn:s1", 10*time.Second, func() { fired = true })
		scheduler.Cancel("turn:s1")

		// When: advancing past the deadline
		clock.Advance(time.Minute)

		// Then: nothing fired
		assert.False(t, fired)
	})

	t.Run("Keys are independent", func(t *testing.T) {
		// Given: two keys armed, one cancelled
		clock := NewManualClock(start)
		scheduler := NewTurnScheduler(clock)

		var fired []string
		scheduler.Schedule("turn:s1", 10*time.Second, func() { fired = append(fired, "s1") })
		scheduler.Schedule("turn:s2", 10*time.Second, func() { fired = append(fired, "s2") })
		scheduler.Cancel("turn:s1")

		// When: advancing past the deadline
		clock.Advance(time.Minute)

		// Then: only the surviving key fired
		assert.Equal(t, []string{"s2"}, fired)
	})
}
