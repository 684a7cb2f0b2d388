// Package mic derives the microphone indicator state from the mixer and
// turns toggle triggers into mute requests.
//
// Nothing here is safe for concurrent use. All calls, and all backend
// callbacks, are expected on the goroutine of one loop.Loop.
package mic

import (
	"fmt"

	"micmute/mixer"
)

// ExcludedApps are recording clients that do not count as activity: volume
// controls keep a capture stream open to draw their level meters.
var ExcludedApps = []string{
	"org.gnome.VolumeControl",
	"org.PulseAudio.pavucontrol",
}

type TrackerOptions struct {
	// ControlAllInputs is consulted on every SetMuted. When it reports true
	// the request goes to all non-monitor sources, not only the default.
	ControlAllInputs func() bool
	// Excluded overrides ExcludedApps when non-nil.
	Excluded []string
}

type Tracker struct {
	backend  mixer.Backend
	opts     TrackerOptions
	excluded map[string]bool

	sub     mixer.Subscription
	stream  mixer.Stream
	unwatch func()
	active  Activity
	closed  bool

	activityChanged observers[bool]
	mutedChanged    observers[bool]
}

// NewTracker subscribes to b and computes the initial state. A subscription
// failure is returned; the tracker would otherwise never see a change.
func NewTracker(b mixer.Backend, opts TrackerOptions) (*Tracker, error) {
	excluded := opts.Excluded
	if excluded == nil {
		excluded = ExcludedApps
	}
	t := &Tracker{
		backend:  b,
		opts:     opts,
		excluded: make(map[string]bool, len(excluded)),
	}
	for _, id := range excluded {
		t.excluded[id] = true
	}

	sub, err := b.Subscribe(func(mixer.Event) { t.Recompute() })
	if err != nil {
		return nil, fmt.Errorf("subscribe to mixer: %w", err)
	}
	t.sub = sub
	t.Recompute()
	return t, nil
}

// Recompute rebinds the default input and rescans recording clients.
// MutedChanged is always emitted. ActivityChanged is emitted only on a flip
// between two known states.
func (t *Tracker) Recompute() {
	if t.closed {
		return
	}
	t.release()

	prev := t.active
	now := Inactive

	t.stream = t.backend.DefaultSource()
	if t.stream != nil {
		t.unwatch = t.stream.OnMuteChanged(t.notifyMuted)
		for _, app := range t.backend.RecordingApps() {
			if !t.excluded[app.ID] {
				now = Active
				break
			}
		}
	}
	t.active = now

	t.notifyMuted()
	if prev != Unknown && prev != now {
		t.activityChanged.emit(now == Active)
	}
}

func (t *Tracker) release() {
	if t.unwatch != nil {
		t.unwatch()
		t.unwatch = nil
	}
	t.stream = nil
}

func (t *Tracker) notifyMuted() {
	t.mutedChanged.emit(t.Muted())
}

// Muted reports true when no input is bound.
func (t *Tracker) Muted() bool {
	if t.stream == nil {
		return true
	}
	return t.stream.Muted()
}

// Level is the input volume as a fraction of the backend's normal maximum,
// clamped to [0,1]. It is 0 when no input is bound.
func (t *Tracker) Level() float64 {
	if t.stream == nil {
		return 0
	}
	norm := t.backend.VolumeMaxNorm()
	if norm == 0 {
		return 0
	}
	l := float64(t.stream.Volume()) / float64(norm)
	if l > 1 {
		return 1
	}
	return l
}

// SetMuted requests a mute change. The new value shows up in Muted once the
// backend reports it.
func (t *Tracker) SetMuted(muted bool) {
	if t.stream == nil {
		return
	}
	if t.opts.ControlAllInputs != nil && t.opts.ControlAllInputs() {
		for _, s := range t.backend.Sources() {
			if s.Monitor() {
				continue
			}
			s.SetMuted(muted)
		}
		return
	}
	t.stream.SetMuted(muted)
}

func (t *Tracker) Active() bool { return t.active == Active }

func (t *Tracker) Activity() Activity { return t.active }

// Source names the bound input, or "" when none is.
func (t *Tracker) Source() string {
	if t.stream == nil {
		return ""
	}
	return t.stream.Name()
}

func (t *Tracker) OnActivityChanged(fn func(active bool)) (unsubscribe func()) {
	return t.activityChanged.add(fn)
}

func (t *Tracker) OnMutedChanged(fn func(muted bool)) (unsubscribe func()) {
	return t.mutedChanged.add(fn)
}

// Close releases the mixer subscriptions. Safe to call more than once.
func (t *Tracker) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.release()
	if t.sub != nil {
		t.sub.Unsubscribe()
		t.sub = nil
	}
	t.activityChanged.clear()
	t.mutedChanged.clear()
}
