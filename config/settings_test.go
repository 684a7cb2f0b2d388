package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	is := is.New(t)
	s := Default()
	is.NoErr(s.Validate())
	is.True(s.ShowOSD)
	is.True(!s.PlayFeedbackSounds)
	is.True(!s.ControlAllInputs)
	is.Equal(s.IconVisibility, VisibilityWhenRecording)
	is.Equal(s.MuteDelay, 100*time.Millisecond)
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	is.NoErr(err)
	is.Equal(s, Default())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
play-feedback-sounds: true
icon-visibility: always
mute-delay: 250ms
`)

	s, err := Load(path)
	is.NoErr(err)
	is.True(s.PlayFeedbackSounds)
	is.Equal(s.IconVisibility, VisibilityAlways)
	is.Equal(s.MuteDelay, 250*time.Millisecond)
	is.True(s.ShowOSD)                     // default kept
	is.Equal(s.Keybinding, "<Super>grave") // default kept
}

func TestLoadBadYAML(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "show-osd: [true\n")

	_, err := Load(path)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "failed to parse YAML"))
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "on.flac")
	writeFile(t, existing, "fLaC")

	tests := []struct {
		name   string
		modify func(*Settings)
		key    string // "" means valid
	}{
		{"defaults", func(*Settings) {}, ""},
		{"never", func(s *Settings) { s.IconVisibility = VisibilityNever }, ""},
		{"bad visibility", func(s *Settings) { s.IconVisibility = "sometimes" }, "icon-visibility"},
		{"empty keybinding", func(s *Settings) { s.Keybinding = "" }, "keybinding-toggle-mute"},
		{"bad keybinding", func(s *Settings) { s.Keybinding = "<Hyper>x" }, "keybinding-toggle-mute"},
		{"negative delay", func(s *Settings) { s.MuteDelay = -time.Millisecond }, "mute-delay"},
		{"long delay", func(s *Settings) { s.MuteDelay = 3 * time.Second }, "mute-delay"},
		{"zero delay", func(s *Settings) { s.MuteDelay = 0 }, ""},
		{"sound file exists", func(s *Settings) { s.SoundOnFile = existing }, ""},
		{"sound file missing", func(s *Settings) { s.SoundOffFile = filepath.Join(dir, "x.flac") }, "sound-off-file"},
		{"metrics addr", func(s *Settings) { s.MetricsAddr = "localhost:9464" }, ""},
		{"bad metrics addr", func(s *Settings) { s.MetricsAddr = "localhost" }, "metrics-addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			s := Default()
			tt.modify(&s)
			err := s.Validate()
			if tt.key == "" {
				is.NoErr(err)
				return
			}
			var fe FieldError
			is.True(errors.As(err, &fe))
			is.Equal(fe.Key, tt.key)
		})
	}
}

func TestValidateMessage(t *testing.T) {
	is := is.New(t)
	s := Default()
	s.IconVisibility = "sometimes"
	err := s.Validate()
	is.Equal(err.Error(), "icon-visibility must be one of: always never when-recording")
}

func TestLoadRejectsInvalid(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "icon-visibility: sometimes\n")

	_, err := Load(path)
	var fe FieldError
	is.True(errors.As(err, &fe))
	is.Equal(fe.Key, "icon-visibility")
}

func TestSaveThenLoad(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "nested", FileName)

	s := Default()
	s.ControlAllInputs = true
	s.Keybinding = "<Control><Shift>m"
	s.MuteDelay = 150 * time.Millisecond
	is.NoErr(Save(path, s))

	data, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(data), "mute-delay: 150ms"))

	got, err := Load(path)
	is.NoErr(err)
	is.Equal(got, s)

	_, err = os.Stat(path + ".tmp")
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestSaveRejectsInvalid(t *testing.T) {
	is := is.New(t)
	s := Default()
	s.IconVisibility = "sometimes"
	is.True(Save(filepath.Join(t.TempDir(), FileName), s) != nil)
}

func TestVisible(t *testing.T) {
	tests := []struct {
		v      IconVisibility
		active bool
		want   bool
	}{
		{VisibilityAlways, false, true},
		{VisibilityAlways, true, true},
		{VisibilityNever, false, false},
		{VisibilityNever, true, false},
		{VisibilityWhenRecording, false, false},
		{VisibilityWhenRecording, true, true},
	}
	for _, tt := range tests {
		if got := tt.v.Visible(tt.active); got != tt.want {
			t.Errorf("%s.Visible(%v) = %v, want %v", tt.v, tt.active, got, tt.want)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	is := is.New(t)
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultPath()
	is.NoErr(err)
	is.True(strings.HasSuffix(p, filepath.Join("micmute", FileName)))
}
