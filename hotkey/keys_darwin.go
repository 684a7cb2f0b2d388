package hotkey

import "golang.design/x/hotkey"

// kVK_ANSI_* virtual key codes the library has no names for.
const (
	darwinGrave     hotkey.Key = 0x32
	darwinMinus     hotkey.Key = 0x1B
	darwinEqual     hotkey.Key = 0x18
	darwinBackslash hotkey.Key = 0x2A
	darwinHome      hotkey.Key = 0x73
	darwinEnd       hotkey.Key = 0x77
	darwinPageUp    hotkey.Key = 0x74
	darwinPageDown  hotkey.Key = 0x79
)

var xKeys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3,
	"f4": hotkey.KeyF4, "f5": hotkey.KeyF5, "f6": hotkey.KeyF6,
	"f7": hotkey.KeyF7, "f8": hotkey.KeyF8, "f9": hotkey.KeyF9,
	"f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,

	"space":     hotkey.KeySpace,
	"escape":    hotkey.KeyEscape,
	"tab":       hotkey.KeyTab,
	"return":    hotkey.KeyReturn,
	"delete":    hotkey.KeyDelete,
	"grave":     darwinGrave,
	"minus":     darwinMinus,
	"equal":     darwinEqual,
	"backslash": darwinBackslash,
	"home":      darwinHome,
	"end":       darwinEnd,
	"page_up":   darwinPageUp,
	"page_down": darwinPageDown,
}

func xModifiers(m Modifier) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if m&ModCtrl != 0 {
		mods = append(mods, hotkey.ModCtrl)
	}
	if m&ModShift != 0 {
		mods = append(mods, hotkey.ModShift)
	}
	if m&ModAlt != 0 {
		mods = append(mods, hotkey.ModOption)
	}
	if m&ModSuper != 0 {
		mods = append(mods, hotkey.ModCmd)
	}
	return mods
}
