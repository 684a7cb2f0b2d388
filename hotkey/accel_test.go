package hotkey

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		mods Modifier
		key  string
	}{
		{"<Super>grave", ModSuper, "grave"},
		{"<Control><Shift>m", ModCtrl | ModShift, "m"},
		{"<Primary><Alt>F9", ModCtrl | ModAlt, "f9"},
		{"<ctrl><mod1>Page_Up", ModCtrl | ModAlt, "page_up"},
		{"<Meta>space", ModSuper, "space"},
		{"XF86AudioMicMute", 0, "xf86audiomicmute"},
		{"  <Shift>Pause ", ModShift, "pause"},
	}
	for _, tt := range tests {
		a, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if a.Mods != tt.mods || a.Key != tt.key {
			t.Errorf("Parse(%q) = %+v, want mods %b key %q", tt.in, a, tt.mods, tt.key)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrMissingKey},
		{"<Super>", ErrMissingKey},
		{"<Hyper>a", ErrUnknownModifier},
		{"<Control>nosuchkey", ErrUnknownKey},
		{"<Control>ab", ErrUnknownKey},
	}
	for _, tt := range tests {
		_, err := Parse(tt.in)
		if !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestParseUnterminated(t *testing.T) {
	if _, err := Parse("<Control"); err == nil {
		t.Error("expected an error for an unterminated modifier")
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, in := range []string{"<Super>grave", "<Control><Shift>m", "<Control><Alt><Super>f12", "space"} {
		a := MustParse(in)
		b, err := Parse(a.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", a.String(), err)
		}
		if a != b {
			t.Errorf("%q -> %q -> %+v", in, a.String(), b)
		}
	}
}

func TestFakeTriggers(t *testing.T) {
	f := NewFake()
	if err := f.Register(); err != nil {
		t.Fatal(err)
	}
	go f.SimPress()
	<-f.Triggers()
	f.Unregister()
	if f.Registered {
		t.Error("still registered")
	}
}
