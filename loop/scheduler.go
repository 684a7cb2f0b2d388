package loop

import (
	"sort"
	"time"
)

// Timer is a pending callback. Stop reports whether it prevented the
// callback; stopping a fired or stopped timer is a no-op.
type Timer interface {
	Stop() bool
}

// Scheduler arms timers whose callbacks run on the owning loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// ManualScheduler is a Scheduler driven by Advance instead of the wall clock.
// Callbacks run synchronously inside Advance.
type ManualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s        *ManualScheduler
	deadline time.Duration
	seq      int
	fn       func()
	done     bool
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.s.remove(t)
	return true
}

func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.seq++
	t := &manualTimer{s: s, deadline: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves virtual time forward by d, firing every timer that comes due
// in deadline order. Timers armed by a callback fire in the same call if
// their deadline also falls inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.deadline
		next.done = true
		s.remove(next)
		next.fn()
	}
	s.now = target
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *ManualScheduler) Now() time.Duration { return s.now }

// Pending returns the number of armed timers.
func (s *ManualScheduler) Pending() int { return len(s.timers) }

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].deadline != s.timers[j].deadline {
			return s.timers[i].deadline < s.timers[j].deadline
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	if s.timers[0].deadline > target {
		return nil
	}
	return s.timers[0]
}

func (s *ManualScheduler) remove(t *manualTimer) {
	for i, x := range s.timers {
		if x == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}
