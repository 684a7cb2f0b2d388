package mic

import (
	"time"

	"micmute/loop"
)

// DefaultMuteDelay is how long a toggle waits before muting. Key repeat
// arrives faster than this, so a held key never mutes.
const DefaultMuteDelay = 100 * time.Millisecond

// Mic is the part of Tracker the controller drives.
type Mic interface {
	Muted() bool
	SetMuted(muted bool)
	Level() float64
}

// Feedback is what the on-screen display should show after a toggle.
type Feedback struct {
	Text  string
	Muted bool
	Level float64
}

type Sound interface {
	Play()
}

type ControllerOptions struct {
	Delay      time.Duration // DefaultMuteDelay when zero
	Scheduler  loop.Scheduler
	OnFeedback func(Feedback)
	OnSound    Sound
	OffSound   Sound
	// PlaySounds gates both cues. Nil means never.
	PlaySounds func() bool
}

type ToggleOptions struct {
	ShowOSD bool
}

// pendingMute owns at most one armed timer.
type pendingMute struct {
	sched loop.Scheduler
	timer loop.Timer
}

func (p *pendingMute) Reschedule(d time.Duration, fn func()) {
	p.Cancel()
	var t loop.Timer
	t = p.sched.AfterFunc(d, func() {
		if p.timer == t {
			p.timer = nil
		}
		fn()
	})
	p.timer = t
}

func (p *pendingMute) Cancel() {
	if p.timer == nil {
		return
	}
	p.timer.Stop()
	p.timer = nil
}

func (p *pendingMute) Pending() bool { return p.timer != nil }

type Controller struct {
	mic     Mic
	opts    ControllerOptions
	delay   time.Duration
	pending pendingMute
	closed  bool
}

func NewController(m Mic, opts ControllerOptions) *Controller {
	c := &Controller{
		mic:     m,
		opts:    opts,
		pending: pendingMute{sched: opts.Scheduler},
	}
	c.SetDelay(opts.Delay)
	return c
}

// SetDelay applies from the next toggle on.
func (c *Controller) SetDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultMuteDelay
	}
	c.delay = d
}

// Toggle unmutes at once when muted. Otherwise it (re)arms the delayed mute,
// so repeated triggers keep the microphone open.
func (c *Controller) Toggle(opts ToggleOptions) {
	if c.closed {
		return
	}
	c.pending.Cancel()

	if c.mic.Muted() {
		c.mic.SetMuted(false)
		c.feedback(opts, Feedback{Muted: false, Level: c.mic.Level()})
		c.play(c.opts.OnSound)
		return
	}

	c.pending.Reschedule(c.delay, func() { c.fire(opts) })
	c.feedback(opts, Feedback{Muted: false, Level: c.mic.Level()})
}

func (c *Controller) fire(opts ToggleOptions) {
	if c.closed {
		return
	}
	c.mic.SetMuted(true)
	c.feedback(opts, Feedback{Muted: true, Level: 0})
	c.play(c.opts.OffSound)
}

// Pending reports whether a delayed mute is armed.
func (c *Controller) Pending() bool { return c.pending.Pending() }

func (c *Controller) feedback(opts ToggleOptions, fb Feedback) {
	if !opts.ShowOSD || c.opts.OnFeedback == nil {
		return
	}
	c.opts.OnFeedback(fb)
}

func (c *Controller) play(s Sound) {
	if s == nil || c.opts.PlaySounds == nil || !c.opts.PlaySounds() {
		return
	}
	s.Play()
}

// Close cancels a pending mute. Safe to call more than once.
func (c *Controller) Close() {
	c.closed = true
	c.pending.Cancel()
}
