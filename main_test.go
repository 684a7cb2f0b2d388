package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"micmute/config"
	"micmute/hotkey"
	"micmute/loop"
	"micmute/mixer"
)

func flagCmd(t *testing.T, f *rootFlags, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&f.accel, "accel", "", "")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestOverrideSettings(t *testing.T) {
	f := &rootFlags{}
	cmd := flagCmd(t, f, "--accel=<Control><Shift>m", "--metrics-addr=localhost:9464")

	s, err := overrideSettings(cmd, f, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if s.Keybinding != "<Control><Shift>m" || s.MetricsAddr != "localhost:9464" {
		t.Errorf("settings = %+v", s)
	}
}

func TestOverrideSettingsKeepsFileValues(t *testing.T) {
	f := &rootFlags{}
	cmd := flagCmd(t, f)

	in := config.Default()
	in.Keybinding = "<Alt>F9"
	s, err := overrideSettings(cmd, f, in)
	if err != nil {
		t.Fatal(err)
	}
	if s.Keybinding != "<Alt>F9" {
		t.Errorf("unset flag overrode the file: %q", s.Keybinding)
	}
}

func TestOverrideSettingsRejectsBadAccel(t *testing.T) {
	f := &rootFlags{}
	cmd := flagCmd(t, f, "--accel=<Hyper>x")
	if _, err := overrideSettings(cmd, f, config.Default()); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	f := &rootFlags{config: path}
	cmd := flagCmd(t, f)

	s, got, err := loadSettings(cmd, f)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	if s != config.Default() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"autostart", "doctor", "run", "sounds", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not found", name)
		}
	}
}

func TestSoundsExport(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	root.SetArgs([]string{"sounds", "export", dir})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"on.flac", "off.flac"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Error(err)
		}
	}
}

func TestForwardTriggersToggleOnLoop(t *testing.T) {
	l := loop.New()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	go l.Run(loopCtx)
	defer func() {
		stopLoop()
		<-l.Done()
	}()

	b := mixer.NewFake()
	src := b.AddSource("alsa_input.usb", false, 0x8000)
	var app *App
	var err error
	if doErr := l.Do(context.Background(), func() {
		app, err = NewApp(config.Default(), Deps{Backend: b, Scheduler: l})
	}); doErr != nil {
		t.Fatal(doErr)
	}
	if err != nil {
		t.Fatal(err)
	}
	defer l.Do(context.Background(), app.Close)

	hk := hotkey.NewFake()
	if err := hk.Register(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go forwardTriggers(ctx, hk, l.Post, func() { app.Toggle(PathHotkey) })

	hk.SimPress()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var muted bool
		var toggles int
		l.Do(context.Background(), func() {
			muted = src.Muted()
			toggles = app.Toggles()
		})
		if muted && toggles == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("muted=%v toggles=%d after trigger", muted, toggles)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBindingRebind(t *testing.T) {
	var keys []*hotkey.FakeHotkey
	toggled := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := &binding{
		ctx: ctx,
		newKey: func(hotkey.Accelerator) hotkey.Hotkey {
			k := hotkey.NewFake()
			keys = append(keys, k)
			return k
		},
		post:   func(fn func()) bool { fn(); return true },
		toggle: func() { toggled <- struct{}{} },
	}

	if err := b.bind(hotkey.MustParse("<Super>grave")); err != nil {
		t.Fatal(err)
	}
	if err := b.rebind("<Control><Shift>m"); err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0].Registered || !keys[1].Registered {
		t.Fatalf("old registered=%v new registered=%v", keys[0].Registered, keys[len(keys)-1].Registered)
	}

	keys[1].SimPress()
	select {
	case <-toggled:
	case <-time.After(2 * time.Second):
		t.Fatal("new shortcut not forwarded")
	}

	b.release()
	if keys[1].Registered {
		t.Error("shortcut still registered after release")
	}
}

func TestBindingRebindFailureKeepsOld(t *testing.T) {
	old := hotkey.NewFake()
	next := hotkey.NewFake()
	next.RegisterErr = errors.New("no keyboard devices")
	queue := []*hotkey.FakeHotkey{old, next}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := &binding{
		ctx: ctx,
		newKey: func(hotkey.Accelerator) hotkey.Hotkey {
			k := queue[0]
			queue = queue[1:]
			return k
		},
		post:   func(func()) bool { return true },
		toggle: func() {},
	}

	if err := b.bind(hotkey.MustParse("<Super>grave")); err != nil {
		t.Fatal(err)
	}
	if err := b.rebind("<Alt>F9"); err == nil {
		t.Fatal("expected a register error")
	}
	if !old.Registered {
		t.Error("old shortcut released after a failed rebind")
	}
	if err := b.rebind("<Hyper>x"); err == nil {
		t.Error("expected a parse error")
	}
	b.release()
}
