// Package hotkey delivers a global keyboard shortcut as a stream of triggers.
//
// A trigger is sent on key press and again on every autorepeat while the
// shortcut is held, so a consumer that delays its reaction past the repeat
// interval sees a held key as one long press.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Triggers() <-chan struct{}
}

func send(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
