package service

import (
	"sync"
	"time"
)

// TurnScheduler keeps at most one pending timer per key (turn timers keyed
// by session id, grace timers keyed by player id). Arming a key cancels any
// timer already pending for it.
type TurnScheduler struct {
	clock Clock

	mu     sync.Mutex
	timers map[string]Timer
}

func NewTurnScheduler(clock Clock) *TurnScheduler {
	return &TurnScheduler{
		clock:  clock,
		timers: make(map[string]Timer),
	}
}

// Schedule - arms a single-shot timer for the key. Callbacks must
// re-validate session state on firing; a timer may fire after the state it
// captured has moved on.
func (that *TurnScheduler) Schedule(key string, d time.Duration, fn func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if pending, ok := that.timers[key]; ok {
		pending.Stop()
	}

	that.timers[key] = that.clock.AfterFunc(d, func() {
		that.mu.Lock()
		delete(that.timers, key)
		that.mu.Unlock()

		fn()
	})
}

// Cancel - stops the pending timer for the key, if any. Cancelling before
// mutating competing state is the caller's responsibility.
func (that *TurnScheduler) Cancel(key string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if pending, ok := that.timers[key]; ok {
		pending.Stop()
		delete(that.timers, key)
	}
}

func (that *TurnScheduler) Now() time.Time {
	return that.clock.Now()
}
