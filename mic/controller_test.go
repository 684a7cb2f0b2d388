package mic

import (
	"context"
	"testing"
	"time"

	"micmute/loop"
	"micmute/mixer"
)

type countSound struct{ plays int }

func (s *countSound) Play() { s.plays++ }

type harness struct {
	f        *mixer.Fake
	src      *mixer.FakeStream
	tr       *Tracker
	c        *Controller
	sched    *loop.ManualScheduler
	feedback []Feedback
	on, off  countSound
	sounds   bool
}

func newHarness(t *testing.T, muted bool) *harness {
	t.Helper()
	h := &harness{f: mixer.NewFake(), sched: &loop.ManualScheduler{}, sounds: true}
	h.src = h.f.AddSource("mic", muted, 0x8000)
	h.tr = newTracker(t, h.f, TrackerOptions{})
	h.c = NewController(h.tr, ControllerOptions{
		Scheduler:  h.sched,
		OnFeedback: func(fb Feedback) { h.feedback = append(h.feedback, fb) },
		OnSound:    &h.on,
		OffSound:   &h.off,
		PlaySounds: func() bool { return h.sounds },
	})
	t.Cleanup(h.c.Close)
	return h
}

func (h *harness) count(muted bool) int {
	n := 0
	for _, fb := range h.feedback {
		if fb.Muted == muted {
			n++
		}
	}
	return n
}

var withOSD = ToggleOptions{ShowOSD: true}

func TestToggleMutesAfterDelay(t *testing.T) {
	h := newHarness(t, false)

	h.c.Toggle(withOSD)
	if h.tr.Muted() {
		t.Fatal("muted before the delay")
	}
	if len(h.feedback) != 1 || h.feedback[0].Muted || h.feedback[0].Level != 0.5 {
		t.Fatalf("feedback = %+v, want one unmuted at level 0.5", h.feedback)
	}

	h.sched.Advance(99 * time.Millisecond)
	if h.tr.Muted() {
		t.Fatal("muted at 99ms")
	}
	h.sched.Advance(time.Millisecond)
	if !h.tr.Muted() {
		t.Fatal("not muted at 100ms")
	}
	if h.count(true) != 1 {
		t.Fatalf("muted feedback = %d, want 1", h.count(true))
	}
	last := h.feedback[len(h.feedback)-1]
	if !last.Muted || last.Level != 0 {
		t.Errorf("last feedback = %+v, want muted at level 0", last)
	}
	if h.off.plays != 1 || h.on.plays != 0 {
		t.Errorf("sounds on=%d off=%d, want off once", h.on.plays, h.off.plays)
	}
	if h.c.Pending() {
		t.Error("timer still pending after firing")
	}
}

func TestRetriggerRestartsDelay(t *testing.T) {
	h := newHarness(t, false)

	h.c.Toggle(withOSD)
	h.sched.Advance(60 * time.Millisecond)
	h.c.Toggle(withOSD)
	h.sched.Advance(60 * time.Millisecond)
	if h.tr.Muted() {
		t.Fatal("muted 60ms after the second trigger")
	}
	if h.count(false) != 2 || h.count(true) != 0 {
		t.Fatalf("feedback = %+v, want two unmuted, no muted", h.feedback)
	}
	if h.sched.Pending() != 1 {
		t.Fatalf("%d timers armed, want 1", h.sched.Pending())
	}

	h.sched.Advance(40 * time.Millisecond)
	if !h.tr.Muted() {
		t.Fatal("not muted 100ms after the second trigger")
	}
	if h.count(true) != 1 {
		t.Fatalf("muted feedback = %d, want 1", h.count(true))
	}
}

func TestHeldKeyNeverMutes(t *testing.T) {
	h := newHarness(t, false)

	// Autorepeat at 30ms.
	for i := 0; i < 50; i++ {
		h.c.Toggle(withOSD)
		h.sched.Advance(30 * time.Millisecond)
	}
	if h.tr.Muted() || h.count(true) != 0 {
		t.Fatal("muted while the key was held")
	}
	if h.src.MuteRequests != 0 {
		t.Fatalf("%d mute requests while held", h.src.MuteRequests)
	}

	h.sched.Advance(70 * time.Millisecond)
	if !h.tr.Muted() {
		t.Fatal("not muted after release")
	}
	if h.src.MuteRequests != 1 {
		t.Errorf("mute requests = %d, want 1", h.src.MuteRequests)
	}
}

func TestToggleUnmutesImmediately(t *testing.T) {
	h := newHarness(t, true)

	h.c.Toggle(withOSD)
	if h.tr.Muted() {
		t.Fatal("still muted")
	}
	if len(h.feedback) != 1 || h.feedback[0].Muted || h.feedback[0].Level != 0.5 {
		t.Fatalf("feedback = %+v, want one unmuted at level 0.5", h.feedback)
	}
	if h.sched.Pending() != 0 {
		t.Error("unmute armed a timer")
	}
	if h.on.plays != 1 || h.off.plays != 0 {
		t.Errorf("sounds on=%d off=%d, want on once", h.on.plays, h.off.plays)
	}
}

func TestToggleWithoutOSD(t *testing.T) {
	h := newHarness(t, false)

	h.c.Toggle(ToggleOptions{})
	h.sched.Advance(DefaultMuteDelay)
	if !h.tr.Muted() {
		t.Fatal("not muted")
	}
	if len(h.feedback) != 0 {
		t.Fatalf("feedback = %+v, want none", h.feedback)
	}
	if h.off.plays != 1 {
		t.Error("sound gating should not depend on the OSD")
	}
}

func TestSoundsDisabled(t *testing.T) {
	h := newHarness(t, true)
	h.sounds = false

	h.c.Toggle(withOSD)
	h.c.Toggle(withOSD)
	h.sched.Advance(time.Second)
	if h.on.plays != 0 || h.off.plays != 0 {
		t.Errorf("sounds on=%d off=%d with sounds disabled", h.on.plays, h.off.plays)
	}
}

func TestNilSoundsAndFeedback(t *testing.T) {
	f := mixer.NewFake()
	f.AddSource("mic", false, 0x8000)
	tr := newTracker(t, f, TrackerOptions{})
	sched := &loop.ManualScheduler{}
	c := NewController(tr, ControllerOptions{Scheduler: sched})

	c.Toggle(withOSD)
	sched.Advance(time.Second)
	if !tr.Muted() {
		t.Fatal("not muted")
	}
}

func TestCustomDelay(t *testing.T) {
	h := newHarness(t, false)
	h.c.SetDelay(250 * time.Millisecond)

	h.c.Toggle(withOSD)
	h.sched.Advance(200 * time.Millisecond)
	if h.tr.Muted() {
		t.Fatal("muted before the configured delay")
	}
	h.sched.Advance(50 * time.Millisecond)
	if !h.tr.Muted() {
		t.Fatal("not muted at the configured delay")
	}
}

func TestCloseCancelsPendingMute(t *testing.T) {
	h := newHarness(t, false)

	h.c.Toggle(withOSD)
	h.c.Close()
	h.c.Close()
	h.sched.Advance(time.Second)
	if h.tr.Muted() {
		t.Fatal("pending mute fired after Close")
	}
	if h.sched.Pending() != 0 {
		t.Errorf("%d timers still armed", h.sched.Pending())
	}

	h.c.Toggle(withOSD)
	if h.sched.Pending() != 0 {
		t.Error("Toggle after Close armed a timer")
	}
}

func TestToggleWithLaggingBackend(t *testing.T) {
	h := newHarness(t, true)
	h.f.Async = true

	h.c.Toggle(withOSD)
	// The unmute request is in flight; the cached flag still says muted.
	h.c.Toggle(withOSD)
	if h.sched.Pending() != 0 {
		t.Fatal("armed a mute while the backend still reports muted")
	}
	h.f.FlushMutes()
	if h.tr.Muted() {
		t.Fatal("still muted after the backend caught up")
	}

	h.c.Toggle(withOSD)
	h.sched.Advance(DefaultMuteDelay)
	h.f.FlushMutes()
	if !h.tr.Muted() {
		t.Fatal("not muted")
	}
}

func TestPendingMuteCancelIsNoop(t *testing.T) {
	sched := &loop.ManualScheduler{}
	p := pendingMute{sched: sched}

	p.Cancel()

	fired := 0
	p.Reschedule(10*time.Millisecond, func() { fired++ })
	p.Reschedule(10*time.Millisecond, func() { fired++ })
	if sched.Pending() != 1 {
		t.Fatalf("%d timers armed, want 1", sched.Pending())
	}
	sched.Advance(10 * time.Millisecond)
	if fired != 1 || p.Pending() {
		t.Fatalf("fired=%d pending=%v", fired, p.Pending())
	}

	p.Cancel()
	p.Cancel()
	sched.Advance(time.Second)
	if fired != 1 {
		t.Errorf("fired = %d after cancel of a fired timer", fired)
	}
}

func TestControllerOnLoop(t *testing.T) {
	f := mixer.NewFake()
	f.AddSource("mic", false, 0x8000)

	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	defer func() {
		cancel()
		<-l.Done()
	}()

	var tr *Tracker
	var c *Controller
	muted := make(chan struct{})
	if err := l.Do(ctx, func() {
		var err error
		tr, err = NewTracker(f, TrackerOptions{})
		if err != nil {
			t.Error(err)
			return
		}
		closed := false
		tr.OnMutedChanged(func(m bool) {
			if m && !closed {
				closed = true
				close(muted)
			}
		})
		c = NewController(tr, ControllerOptions{Scheduler: l, Delay: 5 * time.Millisecond})
		c.Toggle(ToggleOptions{})
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-muted:
	case <-time.After(time.Second):
		t.Fatal("delayed mute never fired on the loop")
	}
	l.Do(ctx, func() {
		c.Close()
		tr.Close()
	})
}
