//go:build darwin || windows

package hotkey

import (
	"fmt"
	"sync"
	"time"

	"golang.design/x/hotkey"
)

// repeatInterval stands in for keyboard autorepeat, which x/hotkey does not
// report. It must stay below the mute delay.
const repeatInterval = 50 * time.Millisecond

type xHotkey struct {
	accel    Accelerator
	hk       *hotkey.Hotkey
	triggers chan struct{}
	stop     chan struct{}
	once     sync.Once
}

func New(accel Accelerator) Hotkey {
	return &xHotkey{
		accel:    accel,
		triggers: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

func (h *xHotkey) Register() error {
	key, ok := xKeys[h.accel.Key]
	if !ok {
		return fmt.Errorf("%s: %w", h.accel, ErrUnknownKey)
	}
	h.hk = hotkey.New(xModifiers(h.accel.Mods), key)
	if err := h.hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", h.accel, err)
	}
	go h.run()
	return nil
}

func (h *xHotkey) run() {
	var ticker *time.Ticker
	var tick <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-h.stop:
			return
		case <-h.hk.Keydown():
			send(h.triggers)
			stopTicker()
			ticker = time.NewTicker(repeatInterval)
			tick = ticker.C
		case <-h.hk.Keyup():
			stopTicker()
		case <-tick:
			send(h.triggers)
		}
	}
}

func (h *xHotkey) Unregister() {
	h.once.Do(func() {
		close(h.stop)
		if h.hk != nil {
			h.hk.Unregister()
		}
	})
}

func (h *xHotkey) Triggers() <-chan struct{} {
	return h.triggers
}

func Diagnose() (string, error) {
	return "hotkey support available (system hotkey API)", nil
}
