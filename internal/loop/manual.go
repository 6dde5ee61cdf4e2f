package loop

import (
	"sort"
	"time"
)

// Manual is a Clock driven by hand. Callbacks run synchronously inside
// Advance, in deadline order. It is meant for tests.
type Manual struct {
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

// NewManual creates a manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	clock    *Manual
	deadline time.Duration
	seq      uint64
	fn       func()
	done     bool
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}

// AfterFunc arms a timer firing d after the current manual time.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{clock: m, deadline: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Now returns the time elapsed since the clock was created.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	return len(m.timers)
}

// Advance moves time forward by d, firing every timer that becomes due,
// including timers armed by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.next()
		if t == nil || t.deadline > target {
			break
		}
		m.now = t.deadline
		t.done = true
		m.remove(t)
		t.fn()
	}
	m.now = target
}

// Flush fires timers until none are left and returns the elapsed time.
func (m *Manual) Flush() time.Duration {
	start := m.now
	for {
		t := m.next()
		if t == nil {
			return m.now - start
		}
		m.Advance(t.deadline - m.now)
	}
}

func (m *Manual) next() *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		a, b := m.timers[i], m.timers[j]
		if a.deadline != b.deadline {
			return a.deadline < b.deadline
		}
		return a.seq < b.seq
	})
	return m.timers[0]
}

func (m *Manual) remove(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
