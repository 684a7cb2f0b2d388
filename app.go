package main

import (
	"micmute/config"
	"micmute/log"
	"micmute/loop"
	"micmute/metrics"
	"micmute/mic"
	"micmute/mixer"
	"micmute/osd"
	"micmute/tray"
)

// Toggle origins, as logged and counted.
const (
	PathHotkey = "hotkey"
	PathTray   = "tray"
	PathTUI    = "tui"
)

// Status is what the status views render.
type Status struct {
	Muted  bool
	Active bool
	Level  float64
	Source string
}

// Deps are the collaborators an App drives. Nil funcs and a nil Metrics are
// skipped; a nil Display shows nothing.
type Deps struct {
	Backend   mixer.Backend
	Scheduler loop.Scheduler
	Display   osd.Display
	OnCue     mic.Sound
	OffCue    mic.Sound
	Metrics   *metrics.Metrics

	Tray        func(tray.State)
	OnStatus    func(Status)
	QuitTray    func()
	CloseSounds func()

	// Rebind moves the global shortcut to a new keybinding.
	Rebind func(keybinding string) error
}

// App wires the tracker and controller to the tray, OSD, sounds and metrics.
// Every method runs on the loop goroutine.
type App struct {
	settings config.Settings
	deps     Deps
	tracker  *mic.Tracker
	ctrl     *mic.Controller
	unsub    []func()
	toggles  int
	closed   bool
}

func NewApp(s config.Settings, d Deps) (*App, error) {
	if d.Display == nil {
		d.Display = osd.Nop{}
	}
	a := &App{settings: s, deps: d}

	t, err := mic.NewTracker(d.Backend, mic.TrackerOptions{
		ControlAllInputs: func() bool { return a.settings.ControlAllInputs },
	})
	if err != nil {
		return nil, err
	}
	a.tracker = t
	a.ctrl = mic.NewController(t, mic.ControllerOptions{
		Delay:      s.MuteDelay,
		Scheduler:  d.Scheduler,
		OnFeedback: a.showFeedback,
		OnSound:    d.OnCue,
		OffSound:   d.OffCue,
		PlaySounds: func() bool { return a.settings.PlayFeedbackSounds },
	})
	a.unsub = append(a.unsub,
		t.OnActivityChanged(a.activityChanged),
		t.OnMutedChanged(a.mutedChanged),
	)

	// The tracker's first recompute happened before anyone listened.
	a.publish()
	if t.Active() && s.ShowOSD {
		d.Display.Show(osd.TextActivated, t.Muted(), osd.NoLevel)
	}
	return a, nil
}

func (a *App) Status() Status {
	return Status{
		Muted:  a.tracker.Muted(),
		Active: a.tracker.Active(),
		Level:  a.tracker.Level(),
		Source: a.tracker.Source(),
	}
}

func (a *App) Settings() config.Settings { return a.settings }

// Toggles counts triggers since start.
func (a *App) Toggles() int { return a.toggles }

// Toggle handles one trigger. Tray clicks never show the OSD.
func (a *App) Toggle(path string) {
	if a.closed {
		return
	}
	a.toggles++
	log.Toggle(path, a.tracker.Muted())
	if a.deps.Metrics != nil {
		a.deps.Metrics.Toggle(path)
	}
	a.ctrl.Toggle(mic.ToggleOptions{
		ShowOSD: path != PathTray && a.settings.ShowOSD,
	})
}

// ApplySettings takes a reloaded settings file. A keybinding that fails to
// register leaves the current one in place. Sound files are only read at
// startup.
func (a *App) ApplySettings(s config.Settings) {
	if a.closed {
		return
	}
	if s.Keybinding != a.settings.Keybinding {
		a.rebind(&s)
	}
	if s.SoundOnFile != a.settings.SoundOnFile || s.SoundOffFile != a.settings.SoundOffFile {
		log.Warnf("sound file changes apply after restart")
	}
	a.settings = s
	a.ctrl.SetDelay(s.MuteDelay)
	a.publish()
}

func (a *App) rebind(s *config.Settings) {
	if a.deps.Rebind == nil {
		log.Warnf("keybinding change to %s applies after restart", s.Keybinding)
		return
	}
	if err := a.deps.Rebind(s.Keybinding); err != nil {
		log.Warnf("keybinding %s: %v, keeping %s", s.Keybinding, err, a.settings.Keybinding)
		s.Keybinding = a.settings.Keybinding
		return
	}
	log.Infof("keybinding now %s", s.Keybinding)
}

func (a *App) activityChanged(active bool) {
	log.Activity(active, a.tracker.Source())
	a.publish()
	if !a.settings.ShowOSD {
		return
	}
	text := osd.TextDeactivated
	if active {
		text = osd.TextActivated
	}
	a.deps.Display.Show(text, a.tracker.Muted(), osd.NoLevel)
}

func (a *App) mutedChanged(muted bool) {
	log.Mute(muted, a.tracker.Level())
	a.publish()
}

func (a *App) showFeedback(fb mic.Feedback) {
	a.deps.Display.Show(fb.Text, fb.Muted, fb.Level)
}

// publish pushes the current state to the tray, status view and metrics.
func (a *App) publish() {
	st := a.Status()
	if a.deps.Metrics != nil {
		a.deps.Metrics.SetMuted(st.Muted, st.Level)
		a.deps.Metrics.SetActive(st.Active)
	}
	if a.deps.Tray != nil {
		a.deps.Tray(tray.State{
			Muted:   st.Muted,
			Active:  st.Active,
			Visible: a.settings.IconVisibility.Visible(st.Active),
			Source:  st.Source,
		})
	}
	if a.deps.OnStatus != nil {
		a.deps.OnStatus(st)
	}
}

// Close tears down in dependency order. Safe to call more than once.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.ctrl.Close()
	for _, fn := range a.unsub {
		fn()
	}
	a.tracker.Close()
	a.deps.Backend.Close()
	if a.deps.QuitTray != nil {
		a.deps.QuitTray()
	}
	a.deps.Display.Close()
	if a.deps.CloseSounds != nil {
		a.deps.CloseSounds()
	}
}
