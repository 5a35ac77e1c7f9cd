package service

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts time for the scheduler so tests can advance virtual time
// deterministically instead of sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a test clock whose time only moves when Advance is called.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (that *ManualClock) Now() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.now
}

func (that *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	that.mu.Lock()
	defer that.mu.Unlock()

	timer := &manualTimer{clock: that, at: that.now.Add(d), fn: f}
	that.timers = append(that.timers, timer)

	return timer
}

// Advance - moves the clock forward and fires every due timer in order.
func (that *ManualClock) Advance(d time.Duration) {
	that.mu.Lock()
	that.now = that.now.Add(d)
	now := that.now

	var due []*manualTimer
	var rest []*manualTimer
	for _, timer := range that.timers {
		if !timer.stopped && !timer.at.After(now) {
			// Fired: a Stop arriving after this point reports false.
			timer.stopped = true
			due = append(due, timer)
			continue
		}
		rest = append(rest, timer)
	}
	that.timers = rest
	that.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, timer := range due {
		timer.fn()
	}
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Time
	fn      func()
	stopped bool
}

// Stop - guarded by the clock mutex: scheduler goroutines stop timers while
// Advance reads the stopped flags.
func (that *manualTimer) Stop() bool {
	that.clock.mu.Lock()
	defer that.clock.mu.Unlock()

	alreadyStopped := that.stopped
	that.stopped = true

	return !alreadyStopped
}
