//go:build linux

package hotkey

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

const (
	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

var keyCodes = map[string]evdev.EvCode{
	"a": evdev.KEY_A, "b": evdev.KEY_B, "c": evdev.KEY_C, "d": evdev.KEY_D,
	"e": evdev.KEY_E, "f": evdev.KEY_F, "g": evdev.KEY_G, "h": evdev.KEY_H,
	"i": evdev.KEY_I, "j": evdev.KEY_J, "k": evdev.KEY_K, "l": evdev.KEY_L,
	"m": evdev.KEY_M, "n": evdev.KEY_N, "o": evdev.KEY_O, "p": evdev.KEY_P,
	"q": evdev.KEY_Q, "r": evdev.KEY_R, "s": evdev.KEY_S, "t": evdev.KEY_T,
	"u": evdev.KEY_U, "v": evdev.KEY_V, "w": evdev.KEY_W, "x": evdev.KEY_X,
	"y": evdev.KEY_Y, "z": evdev.KEY_Z,

	"1": evdev.KEY_1, "2": evdev.KEY_2, "3": evdev.KEY_3, "4": evdev.KEY_4,
	"5": evdev.KEY_5, "6": evdev.KEY_6, "7": evdev.KEY_7, "8": evdev.KEY_8,
	"9": evdev.KEY_9, "0": evdev.KEY_0,

	"f1": evdev.KEY_F1, "f2": evdev.KEY_F2, "f3": evdev.KEY_F3,
	"f4": evdev.KEY_F4, "f5": evdev.KEY_F5, "f6": evdev.KEY_F6,
	"f7": evdev.KEY_F7, "f8": evdev.KEY_F8, "f9": evdev.KEY_F9,
	"f10": evdev.KEY_F10, "f11": evdev.KEY_F11, "f12": evdev.KEY_F12,

	"space":            evdev.KEY_SPACE,
	"grave":            evdev.KEY_GRAVE,
	"minus":            evdev.KEY_MINUS,
	"equal":            evdev.KEY_EQUAL,
	"backslash":        evdev.KEY_BACKSLASH,
	"escape":           evdev.KEY_ESC,
	"tab":              evdev.KEY_TAB,
	"return":           evdev.KEY_ENTER,
	"pause":            evdev.KEY_PAUSE,
	"scroll_lock":      evdev.KEY_SCROLLLOCK,
	"insert":           evdev.KEY_INSERT,
	"delete":           evdev.KEY_DELETE,
	"home":             evdev.KEY_HOME,
	"end":              evdev.KEY_END,
	"page_up":          evdev.KEY_PAGEUP,
	"page_down":        evdev.KEY_PAGEDOWN,
	"xf86audiomicmute": evdev.KEY_MICMUTE,
}

var modifierCodes = map[evdev.EvCode]Modifier{
	evdev.KEY_LEFTCTRL:   ModCtrl,
	evdev.KEY_RIGHTCTRL:  ModCtrl,
	evdev.KEY_LEFTSHIFT:  ModShift,
	evdev.KEY_RIGHTSHIFT: ModShift,
	evdev.KEY_LEFTALT:    ModAlt,
	evdev.KEY_RIGHTALT:   ModAlt,
	evdev.KEY_LEFTMETA:   ModSuper,
	evdev.KEY_RIGHTMETA:  ModSuper,
}

// matcher tracks held modifiers across all devices. The shortcut matches
// when exactly its modifiers are down.
type matcher struct {
	key  evdev.EvCode
	mods Modifier
	held map[evdev.EvCode]bool
}

func newMatcher(key evdev.EvCode, mods Modifier) *matcher {
	return &matcher{key: key, mods: mods, held: make(map[evdev.EvCode]bool)}
}

// feed reports whether the key event is a trigger.
func (m *matcher) feed(code evdev.EvCode, value int32) bool {
	if _, ok := modifierCodes[code]; ok {
		switch value {
		case valuePress, valueRepeat:
			m.held[code] = true
		case valueRelease:
			delete(m.held, code)
		}
		return false
	}
	if code != m.key {
		return false
	}
	if value != valuePress && value != valueRepeat {
		return false
	}
	return m.current() == m.mods
}

func (m *matcher) current() Modifier {
	var mods Modifier
	for code := range m.held {
		mods |= modifierCodes[code]
	}
	return mods
}

type linuxHotkey struct {
	accel    Accelerator
	triggers chan struct{}

	mu      sync.Mutex
	match   *matcher
	devices []*evdev.InputDevice
	once    sync.Once
}

func New(accel Accelerator) Hotkey {
	return &linuxHotkey{
		accel:    accel,
		triggers: make(chan struct{}, 1),
	}
}

func (h *linuxHotkey) Register() error {
	code, ok := keyCodes[h.accel.Key]
	if !ok {
		return fmt.Errorf("%s: %w", h.accel, ErrUnknownKey)
	}
	h.match = newMatcher(code, h.accel.Mods)

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return fmt.Errorf("finding input devices: %w", err)
	}

	denied := false
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			if os.IsPermission(err) {
				denied = true
			}
			continue
		}
		if !capable(dev, code) {
			dev.Close()
			continue
		}
		h.devices = append(h.devices, dev)
		go h.readLoop(dev)
	}

	if len(h.devices) == 0 {
		if denied {
			return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
		}
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}
	return nil
}

// capable reports whether dev can produce the shortcut key or a modifier.
func capable(dev *evdev.InputDevice, key evdev.EvCode) bool {
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		if code == key {
			return true
		}
		if _, ok := modifierCodes[code]; ok {
			return true
		}
	}
	return false
}

func (h *linuxHotkey) readLoop(dev *evdev.InputDevice) {
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			return // closed by Unregister, or unplugged
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		h.mu.Lock()
		fire := h.match.feed(ev.Code, ev.Value)
		h.mu.Unlock()
		if fire {
			send(h.triggers)
		}
	}
}

func (h *linuxHotkey) Unregister() {
	h.once.Do(func() {
		for _, dev := range h.devices {
			dev.Close()
		}
	})
}

func (h *linuxHotkey) Triggers() <-chan struct{} {
	return h.triggers
}

func Diagnose() (string, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}

	var keyboards, opened int
	var name string
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			if os.IsPermission(err) {
				keyboards++
			}
			continue
		}
		if capable(dev, evdev.KEY_A) {
			keyboards++
			opened++
			if name == "" {
				name, _ = dev.Name()
			}
		}
		dev.Close()
	}
	if keyboards == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}
	if opened == 0 {
		return "", fmt.Errorf("found %d input device(s) but cannot open any (run: sudo usermod -aG input $USER)", keyboards)
	}
	return fmt.Sprintf("%d keyboard(s) readable, first: %s", opened, name), nil
}
