package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKey      = errors.New("unknown key")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrMissingKey      = errors.New("missing key")
)

type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

var modifierNames = map[string]Modifier{
	"control": ModCtrl,
	"ctrl":    ModCtrl,
	"primary": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"mod1":    ModAlt,
	"super":   ModSuper,
	"meta":    ModSuper,
	"mod4":    ModSuper,
}

// keyNames are the keysyms an accelerator may end in, lowercased.
var keyNames = map[string]bool{
	"space": true, "grave": true, "minus": true, "equal": true,
	"backslash": true, "escape": true, "tab": true, "return": true,
	"pause": true, "scroll_lock": true, "insert": true, "delete": true,
	"home": true, "end": true, "page_up": true, "page_down": true,
	"xf86audiomicmute": true,
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		keyNames[string(c)] = true
	}
	for c := '0'; c <= '9'; c++ {
		keyNames[string(c)] = true
	}
	for i := 1; i <= 12; i++ {
		keyNames[fmt.Sprintf("f%d", i)] = true
	}
}

// Accelerator is a parsed shortcut such as "<Control><Shift>m".
type Accelerator struct {
	Mods Modifier
	Key  string // lowercased keysym
}

// Parse reads a GTK accelerator string. Modifier names are case-insensitive,
// and so is the key.
func Parse(s string) (Accelerator, error) {
	var a Accelerator
	rest := strings.TrimSpace(s)
	for strings.HasPrefix(rest, "<") {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return Accelerator{}, fmt.Errorf("%q: unterminated modifier", s)
		}
		name := strings.ToLower(rest[1:end])
		m, ok := modifierNames[name]
		if !ok {
			return Accelerator{}, fmt.Errorf("%q: %w %q", s, ErrUnknownModifier, name)
		}
		a.Mods |= m
		rest = rest[end+1:]
	}
	if rest == "" {
		return Accelerator{}, fmt.Errorf("%q: %w", s, ErrMissingKey)
	}
	key := strings.ToLower(rest)
	if !keyNames[key] {
		return Accelerator{}, fmt.Errorf("%q: %w %q", s, ErrUnknownKey, rest)
	}
	a.Key = key
	return a, nil
}

func MustParse(s string) Accelerator {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Accelerator) String() string {
	var b strings.Builder
	if a.Mods&ModCtrl != 0 {
		b.WriteString("<Control>")
	}
	if a.Mods&ModShift != 0 {
		b.WriteString("<Shift>")
	}
	if a.Mods&ModAlt != 0 {
		b.WriteString("<Alt>")
	}
	if a.Mods&ModSuper != 0 {
		b.WriteString("<Super>")
	}
	b.WriteString(a.Key)
	return b.String()
}
