package hotkey

import "golang.design/x/hotkey"

// Virtual-key codes the library has no names for.
const (
	vkPause    hotkey.Key = 0x13
	vkPrior    hotkey.Key = 0x21
	vkNext     hotkey.Key = 0x22
	vkEnd      hotkey.Key = 0x23
	vkHome     hotkey.Key = 0x24
	vkInsert   hotkey.Key = 0x2D
	vkScroll   hotkey.Key = 0x91
	vkMicMute  hotkey.Key = 0xAD // VK_VOLUME_MUTE, the closest media key
	vkOemPlus  hotkey.Key = 0xBB
	vkOemMinus hotkey.Key = 0xBD
	vkOem3     hotkey.Key = 0xC0 // `~
	vkOem5     hotkey.Key = 0xDC // \|
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

	"space":            hotkey.KeySpace,
	"escape":           hotkey.KeyEscape,
	"tab":              hotkey.KeyTab,
	"return":           hotkey.KeyReturn,
	"delete":           hotkey.KeyDelete,
	"grave":            vkOem3,
	"minus":            vkOemMinus,
	"equal":            vkOemPlus,
	"backslash":        vkOem5,
	"pause":            vkPause,
	"scroll_lock":      vkScroll,
	"insert":           vkInsert,
	"home":             vkHome,
	"end":              vkEnd,
	"page_up":          vkPrior,
	"page_down":        vkNext,
	"xf86audiomicmute": vkMicMute,
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
		mods = append(mods, hotkey.ModAlt)
	}
	if m&ModSuper != 0 {
		mods = append(mods, hotkey.ModWin)
	}
	return mods
}
