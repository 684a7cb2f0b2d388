// Package tray shows the microphone state in the system tray.
//
// Run must own the main goroutine. Setters are safe from any goroutine and
// may be called before the tray is ready; the last state wins.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

type State struct {
	Muted   bool
	Active  bool // something is recording
	Visible bool
	Source  string
}

var (
	mu       sync.Mutex
	state    State
	ready    bool
	toggleFn func()
	quitFn   func()

	mToggle *systray.MenuItem
	mSource *systray.MenuItem
	mQuit   *systray.MenuItem
)

func OnToggle(fn func()) { mu.Lock(); toggleFn = fn; mu.Unlock() }
func OnQuit(fn func())   { mu.Lock(); quitFn = fn; mu.Unlock() }

// Run blocks until Quit. onReady runs once the icon exists.
func Run(onReady func()) {
	systray.Run(func() {
		setup()
		if onReady != nil {
			onReady()
		}
	}, func() {
		mu.Lock()
		ready = false
		mu.Unlock()
	})
}

func Quit() { systray.Quit() }

func setup() {
	systray.SetTitle("")
	systray.SetTooltip("micmute")

	mSource = systray.AddMenuItem("No microphone", "Default input")
	mSource.Disable()
	systray.AddSeparator()
	mToggle = systray.AddMenuItem("Toggle microphone", "Mute or unmute the default input")
	mQuit = systray.AddMenuItem("Quit", "Quit micmute")

	go func() {
		for {
			select {
			case <-mToggle.ClickedCh:
				mu.Lock()
				fn := toggleFn
				mu.Unlock()
				if fn != nil {
					fn()
				}
			case <-mQuit.ClickedCh:
				mu.Lock()
				fn := quitFn
				mu.Unlock()
				if fn != nil {
					fn()
				} else {
					systray.Quit()
				}
				return
			}
		}
	}()

	mu.Lock()
	ready = true
	s := state
	mu.Unlock()
	apply(s)
}

func SetState(s State) {
	mu.Lock()
	changed := s != state
	state = s
	r := ready
	mu.Unlock()
	if r && changed {
		apply(s)
	}
}

func Current() State {
	mu.Lock()
	defer mu.Unlock()
	return state
}

func apply(s State) {
	systray.SetIcon(IconFor(s))
	systray.SetTooltip(Tooltip(s))
	if s.Muted {
		mToggle.SetTitle("Unmute microphone")
	} else {
		mToggle.SetTitle("Mute microphone")
	}
	if s.Source == "" {
		mSource.SetTitle("No microphone")
	} else {
		mSource.SetTitle(s.Source)
	}
}

func Tooltip(s State) string {
	t := "micmute: "
	if s.Muted {
		t += "muted"
	} else {
		t += "live"
	}
	if s.Active {
		t += ", recording"
	}
	return t
}
