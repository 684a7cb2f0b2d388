// Package mixer is the audio-server side of the microphone indicator:
// which input is the default, who is recording from it, and its mute flag.
package mixer

import "errors"

var ErrClosed = errors.New("mixer closed")

type EventKind int

const (
	DefaultInputChanged EventKind = iota
	StreamAdded
	StreamRemoved
)

func (k EventKind) String() string {
	switch k {
	case DefaultInputChanged:
		return "default_input_changed"
	case StreamAdded:
		return "stream_added"
	case StreamRemoved:
		return "stream_removed"
	}
	return "unknown"
}

type Event struct {
	Kind  EventKind
	Index uint32
}

// RecordingApp is a client holding a capture stream.
type RecordingApp struct {
	ID   string // application.id, or application.name when unset
	Name string
}

type Subscription interface {
	Unsubscribe()
}

// Stream is an input source. Values returned by Backend are borrowed: they
// stay valid until the next DefaultInputChanged event.
type Stream interface {
	Name() string
	Muted() bool
	// SetMuted is a request. The new flag is visible once the server
	// reports the change.
	SetMuted(muted bool)
	Volume() uint32
	Monitor() bool
	OnMuteChanged(fn func()) (unsubscribe func())
}

// Backend callbacks (Subscribe, OnMuteChanged) are delivered on the
// goroutine the backend was configured to post to.
type Backend interface {
	Subscribe(fn func(Event)) (Subscription, error)
	// DefaultSource returns nil when there is no input device.
	DefaultSource() Stream
	Sources() []Stream
	RecordingApps() []RecordingApp
	VolumeMaxNorm() uint32
	Close()
}
