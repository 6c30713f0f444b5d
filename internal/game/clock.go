package game

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts time for the engine so round timers can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing. A stopped timer that already fired is a no-op
	// for the caller either way.
	Stop() bool
}

type realClock struct{}

// RealClock returns the wall clock backed by the time package.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// ManualClock is a controllable clock for tests. Advance moves time forward
// and fires due timers synchronously, in scheduling order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	id      int
	when    time.Time
	fn      func()
	stopped bool
}

// NewManualClock creates a manual clock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, timers: make(map[int]*manualTimer)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, when: c.now.Add(d), fn: fn}
	c.timers[t.id] = t
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	delete(t.clock.timers, t.id)
	return true
}

// Advance moves the clock forward by d, firing every timer that comes due.
// Callbacks run outside the clock's own lock so they may schedule new timers.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		due := c.dueLocked(target)
		if len(due) == 0 {
			break
		}
		for _, t := range due {
			if c.now.Before(t.when) {
				c.now = t.when
			}
			t.stopped = true
			delete(c.timers, t.id)
			c.mu.Unlock()
			t.fn()
			c.mu.Lock()
		}
	}
	c.now = target
	c.mu.Unlock()
}

func (c *ManualClock) dueLocked(target time.Time) []*manualTimer {
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.when.After(target) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].when.Equal(due[j].when) {
			return due[i].id < due[j].id
		}
		return due[i].when.Before(due[j].when)
	})
	return due
}
